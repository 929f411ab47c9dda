/*
Package ports defines the driven ports (interfaces) of the Kinema player.

These interfaces decouple the player from its collaborators: the vector
rasterizer that paints frames, the container loader that opens dotLottie
bundles, and the storage and coordination backends used by long-lived
player sessions.

# Key Interfaces

  - Rasterizer: Loads an animation document, paints frames and answers layer queries.
  - BundleLoader: Opens a dotLottie container and exposes its manifest and entries.
  - DefinitionSource: Lists and reads state machines, themes and animations of a project.
  - SnapshotStore: Persists state machine snapshots between process lifetimes.
  - DistributedLocker: Serializes access to a session across replicas.
*/
package ports
