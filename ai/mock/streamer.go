package mock

import (
	"context"

	"github.com/poiesic/courseforge/ai"
)

// MockChatStreamer is a test double for ai.ChatStreamer.
type MockChatStreamer struct {
	// StreamChatFunc is called by StreamChat if set.
	// If nil, emits the last user message back as a single delta.
	StreamChatFunc func(ctx context.Context, req *ai.ChatRequest, emit func(delta string) error) error

	callCount int
}

// NewMockChatStreamer creates a mock chat streamer with default behavior.
func NewMockChatStreamer() *MockChatStreamer {
	return &MockChatStreamer{}
}

// StreamChat emits the last user message back as a single delta.
func (m *MockChatStreamer) StreamChat(ctx context.Context, req *ai.ChatRequest, emit func(delta string) error) error {
	m.callCount++

	if m.StreamChatFunc != nil {
		return m.StreamChatFunc(ctx, req, emit)
	}

	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == ai.RoleUser {
			return emit(req.Messages[i].Content)
		}
	}
	return nil
}

// CallCount returns the number of times StreamChat was called.
func (m *MockChatStreamer) CallCount() int {
	return m.callCount
}
