package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/courseforge/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseEvent(delta string) string {
	return fmt.Sprintf("data: {\"type\":\"response.output_text.delta\",\"delta\":%q}\n\n", delta)
}

func TestStreamChatRelaysDeltas(t *testing.T) {
	var gotPath, gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseEvent("Hello"))
		fmt.Fprint(w, sseEvent(" world"))
		fmt.Fprint(w, "data: {\"type\":\"response.completed\"}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	config := ai.NewConfig(ai.WithHost(server.URL), ai.WithAPIKey("sk-test"))
	streamer, err := newStreamer(config)
	require.NoError(t, err)

	var got string
	err = streamer.StreamChat(context.Background(), &ai.ChatRequest{
		Messages: []ai.ChatMessage{{Role: ai.RoleUser, Content: "hi"}},
	}, func(delta string) error {
		got += delta
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello world", got)
	assert.Equal(t, "/v1/responses", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "text/event-stream", gotAccept)
}

func TestStreamChatSuppressesRepeatedDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseEvent("alpha"))
		fmt.Fprint(w, sseEvent("alpha"))
		fmt.Fprint(w, sseEvent(" beta"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	streamer, err := newStreamer(ai.NewConfig(ai.WithHost(server.URL)))
	require.NoError(t, err)

	var got string
	err = streamer.StreamChat(context.Background(), &ai.ChatRequest{
		Messages: []ai.ChatMessage{{Role: ai.RoleUser, Content: "hi"}},
	}, func(delta string) error {
		got += delta
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha beta", got)
}

func TestStreamChatUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	streamer, err := newStreamer(ai.NewConfig(ai.WithHost(server.URL)))
	require.NoError(t, err)

	err = streamer.StreamChat(context.Background(), &ai.ChatRequest{
		Messages: []ai.ChatMessage{{Role: ai.RoleUser, Content: "hi"}},
	}, func(delta string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestStreamChatCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseEvent("partial"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	streamer, err := newStreamer(ai.NewConfig(ai.WithHost(server.URL)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	err = streamer.StreamChat(ctx, &ai.ChatRequest{
		Messages: []ai.ChatMessage{{Role: ai.RoleUser, Content: "hi"}},
	}, func(delta string) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
