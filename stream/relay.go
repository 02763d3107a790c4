package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// Provider event discriminators recognized by the relay. Everything else is
// silently skipped.
const (
	eventTypeDelta     = "response.output_text.delta"
	eventTypeCompleted = "response.completed"
	doneSentinel       = "[DONE]"
)

// providerEvent is the JSON envelope of one upstream server-sent event.
type providerEvent struct {
	Type  string `json:"type"`
	Delta string `json:"delta"`
}

// Relay consumes an upstream event-stream of model output, filters it through
// a Deduplicator, and hands surviving text deltas to an emit callback. One
// Relay serves one stream session and is not safe for concurrent use.
type Relay struct {
	dedup  *Deduplicator
	logger *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRelay creates a relay with a fresh deduplication buffer.
func NewRelay(opts ...Option) *Relay {
	r := &Relay{
		dedup:  NewDeduplicator(),
		logger: slog.Default().With("component", "stream-relay"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Text returns the deduplicated text accumulated so far. The generation stage
// uses this to obtain the full drained response after Run returns.
func (r *Relay) Text() string {
	return r.dedup.Text()
}

// Run reads server-sent events from body until the stream ends and calls emit
// for every admitted delta.
//
// Termination:
//   - a "response.completed" event or the "[DONE]" sentinel ends the relay normally;
//   - end-of-stream without an explicit terminal marker is also treated as success;
//   - ctx cancellation ends the relay immediately with ctx.Err();
//   - an emit error or a read error is returned as-is.
//
// Non-JSON lines and unrecognized event types are skipped without logging
// noise; the upstream interleaves bookkeeping events we do not care about.
func (r *Relay) Run(ctx context.Context, body io.Reader, emit func(delta string) error) error {
	scanner := bufio.NewScanner(body)
	// Allow moderately large payload lines.
	scanner.Buffer(make([]byte, 0, 4096), 512*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(line[len("data:"):])
		if data == doneSentinel {
			return nil
		}

		var ev providerEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue
		}

		switch ev.Type {
		case eventTypeCompleted:
			return nil
		case eventTypeDelta:
			if ev.Delta == "" {
				continue
			}
			if !r.dedup.Admit(ev.Delta) {
				continue
			}
			if err := emit(ev.Delta); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		r.logger.Error("upstream stream read failed", "err", err)
		return err
	}
	return nil
}
