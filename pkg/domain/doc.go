/*
Package domain contains the core entities of the Kinema player.

It defines playback configuration, the state machine definition model, events,
themes and the observer contracts. This package is kept pure and free of
external dependencies like I/O, rendering or persistence.

# Key Entities

  - Config: Immutable playback settings (mode, loop, speed, segment, layout...).
  - Definition: A state machine made of States, guarded Transitions and Interactions.
  - Event: Tagged input posted to the state machine (pointer, custom, completion).
  - Value: A typed trigger value (boolean, numeric, string, event).
  - Theme: Slot overrides applied to the active animation.
  - Observer / StateMachineObserver: Notification contracts, with func adapters (PlayerHooks, MachineHooks).
  - Snapshot: The resumable runtime state of a state machine.
*/
package domain
