/*
Package observability provides observers for monitoring a Kinema player.

LogObserver and MachineLogObserver write every notification to a slog
logger. Metrics records the same notifications as Prometheus counters so
they can be scraped through promhttp.
*/
package observability
