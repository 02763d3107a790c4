package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseStream(events ...string) io.Reader {
	var b strings.Builder
	for _, e := range events {
		b.WriteString("data: " + e + "\n\n")
	}
	return strings.NewReader(b.String())
}

func collect(t *testing.T, body io.Reader) ([]string, *Relay, error) {
	t.Helper()
	relay := NewRelay()
	var got []string
	err := relay.Run(context.Background(), body, func(delta string) error {
		got = append(got, delta)
		return nil
	})
	return got, relay, err
}

func TestRelayPassesDeltas(t *testing.T) {
	body := sseStream(
		`{"type":"response.output_text.delta","delta":"Hello"}`,
		`{"type":"response.output_text.delta","delta":" world"}`,
		`{"type":"response.completed"}`,
	)

	got, relay, err := collect(t, body)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", " world"}, got)
	assert.Equal(t, "Hello world", relay.Text())
}

func TestRelayDeduplicates(t *testing.T) {
	body := sseStream(
		`{"type":"response.output_text.delta","delta":"Hello"}`,
		`{"type":"response.output_text.delta","delta":"Hello"}`,
		`{"type":"response.output_text.delta","delta":" world"}`,
		`{"type":"response.completed"}`,
	)

	got, _, err := collect(t, body)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", " world"}, got)
}

func TestRelaySkipsUnrecognizedEvents(t *testing.T) {
	body := sseStream(
		`{"type":"response.created"}`,
		`not json at all`,
		`{"type":"response.output_text.delta","delta":"ok"}`,
		`{"type":"response.output_text.done"}`,
		`{"type":"response.completed"}`,
	)

	got, _, err := collect(t, body)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, got)
}

func TestRelayStopsAtCompleted(t *testing.T) {
	body := sseStream(
		`{"type":"response.output_text.delta","delta":"before"}`,
		`{"type":"response.completed"}`,
		`{"type":"response.output_text.delta","delta":"after"}`,
	)

	got, _, err := collect(t, body)
	require.NoError(t, err)
	assert.Equal(t, []string{"before"}, got, "no deltas after the completion event")
}

func TestRelayDoneSentinel(t *testing.T) {
	body := sseStream(
		`{"type":"response.output_text.delta","delta":"x"}`,
		`[DONE]`,
	)

	got, _, err := collect(t, body)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)
}

func TestRelayEOFWithoutTerminalIsSuccess(t *testing.T) {
	body := sseStream(`{"type":"response.output_text.delta","delta":"only"}`)

	got, _, err := collect(t, body)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, got)
}

func TestRelayEmitErrorStops(t *testing.T) {
	body := sseStream(
		`{"type":"response.output_text.delta","delta":"a"}`,
		`{"type":"response.output_text.delta","delta":"b"}`,
	)

	boom := errors.New("client gone")
	relay := NewRelay()
	var got []string
	err := relay.Run(context.Background(), body, func(delta string) error {
		got = append(got, delta)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, got)
}

func TestRelayCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := sseStream(`{"type":"response.output_text.delta","delta":"never"}`)
	relay := NewRelay()
	err := relay.Run(ctx, body, func(delta string) error {
		t.Fatal("emit called after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestRelayUpstreamReadError(t *testing.T) {
	relay := NewRelay()
	err := relay.Run(context.Background(), failingReader{}, func(string) error { return nil })
	assert.Error(t, err)
}
