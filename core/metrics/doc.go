// Package metrics exposes Prometheus metrics for the consent engine.
//
// Metrics implements consent.Watcher, so registering it on a manager is enough
// to count consent updates, saves (by type and changed service) and apply
// passes. Render durations are observed by the HTTP feature.
package metrics
