// Package stream implements the token relay between an upstream model
// event-stream and a client-facing SSE response.
//
// A Relay parses the provider's server-sent events, drops everything except
// text deltas and the completion marker, and passes deltas through a
// Deduplicator that suppresses repeated and overlapping fragments. A Writer
// frames the surviving fragments for the client and terminates the stream
// with exactly one success or error frame.
//
// Relays and deduplicators are per-session: many can run concurrently, each
// owning its own buffer, with no shared mutable state between sessions.
package stream
