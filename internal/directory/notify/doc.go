// Package notify delivers user-deleted events to downstream systems.
//
// A Publisher adapts a Sink to the directory's Notifier contract: it stamps
// each event, optionally buffers it for asynchronous delivery, and stops
// calling a sink that keeps failing until a cooldown has passed. Sinks
// exist for the structured log, a Redis set plus pub/sub channel, and a
// Kafka topic; Fanout combines several.
package notify
