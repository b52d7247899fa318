// Package infra contains technical adapters: the engine process runner, the
// results export reader, the MQTT status notifier and metrics exporters.
// These packages depend only on the interfaces defined in the core packages.
package infra
