/*
Package kinema is an embeddable, render-agnostic animation player for Lottie
documents and dotLottie bundles, paired with an interactive state machine
that lets authored content react to input without host code.

# Concept

The host owns the clock and the screen. It calls Tick with the elapsed
wall-clock time, reads the rendered frame from Buffer and forwards pointer
input to the state machine. Kinema owns everything in between: the playback
mode and loop bookkeeping, tweens, theme slots and the guarded transitions
of the state machine.

Rendering itself is delegated to a ports.Rasterizer. The default is the flat
reference rasterizer (pkg/adapters/flat), which paints solid rectangle
layers and is enough for headless hosts, tests and the CLI.

# Key Features

  - Deterministic: the same sequence of ticks, events and trigger writes
    always produces the same frames and notifications.
  - Copy-then-notify: observers are called after the player lock is
    released, so they may call back into the player.
  - Hexagonal: bundle loading, snapshot storage and rendering are ports
    with in-memory, file, Redis and Loam adapters.

# Usage

	player, err := kinema.New(domain.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	if err := player.LoadAnimationPath("button.lottie", 256, 256); err != nil {
		log.Fatal(err)
	}
	if err := player.StateMachineLoad("main"); err != nil {
		log.Fatal(err)
	}
	_ = player.StateMachineStart()

	for range time.Tick(16 * time.Millisecond) {
		player.Tick(16 * time.Millisecond)
		_ = player.StateMachineTick()
		draw(player.Buffer())
	}

Pointer input is posted as events in canvas pixel coordinates:

	_ = player.StateMachinePostEvent(domain.Click(x, y))

For a fixed-rate loop with signal handling see pkg/runner.
*/
package kinema
