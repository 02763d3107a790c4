package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/stream"
)

// Streamer implements ai.ChatStreamer against the OpenAI Responses API.
// Each call opens a streaming request and relays the SSE events through a
// fresh deduplicating relay.
type Streamer struct {
	config     *ai.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// responsesRequest is the streaming request body for the Responses API.
type responsesRequest struct {
	Model           string           `json:"model"`
	Input           []ai.ChatMessage `json:"input"`
	Stream          bool             `json:"stream"`
	MaxOutputTokens int              `json:"max_output_tokens,omitempty"`
}

// newStreamer is an internal constructor that returns the concrete type.
func newStreamer(config *ai.Config) (*Streamer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Streamer{
		config: config,
		// No overall timeout: streams stay open for the whole response.
		// Cancellation comes from the request context.
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 60 * time.Second,
			},
		},
		logger: slog.Default().With("component", "openai-streamer"),
	}, nil
}

// NewStreamer creates a new chat streamer using the provided configuration.
//
// Returns ai.ChatStreamer interface to enforce abstraction.
func NewStreamer(config *ai.Config) (ai.ChatStreamer, error) {
	return newStreamer(config)
}

// StreamChat sends the request with stream:true and calls emit for every
// delta that survives deduplication.
func (s *Streamer) StreamChat(ctx context.Context, req *ai.ChatRequest, emit func(delta string) error) error {
	model := req.Model
	if model == "" {
		model = s.config.ChatModel
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = s.config.MaxOutputTokens
	}

	payload, err := json.Marshal(responsesRequest{
		Model:           model,
		Input:           req.Messages,
		Stream:          true,
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Host+"/responses", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	token := s.config.APIKey
	if token == "" {
		token = "none"
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	s.logger.Debug("opening response stream", "model", model, "messages", len(req.Messages))

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("opening response stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("response stream rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	relay := stream.NewRelay(stream.WithLogger(s.logger))
	return relay.Run(ctx, resp.Body, emit)
}
