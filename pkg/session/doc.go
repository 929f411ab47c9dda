/*
Package session keeps one player per session for the server surfaces.

A Manager serializes access to each session's player, persists state machine
snapshots through a ports.SnapshotStore and, with a ports.DistributedLocker,
coordinates replicas that share the store.
*/
package session
