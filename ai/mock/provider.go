// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/courseforge/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock service instances.
type MockProvider struct {
	embedder    *MockEmbedder
	generator   *MockGenerator
	transcriber *MockTranscriber
	streamer    *MockChatStreamer
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use the GetMock* accessors to reach concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:    NewMockEmbedder(),
		generator:   NewMockGenerator(),
		transcriber: NewMockTranscriber(),
		streamer:    NewMockChatStreamer(),
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the mock course generator.
func (p *MockProvider) Generator() ai.CourseGenerator {
	return p.generator
}

// Transcriber returns the mock transcriber.
func (p *MockProvider) Transcriber() ai.Transcriber {
	return p.transcriber
}

// ChatStreamer returns the mock chat streamer.
func (p *MockProvider) ChatStreamer() ai.ChatStreamer {
	return p.streamer
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}

// GetMockTranscriber returns the underlying mock transcriber for test assertions.
func (p *MockProvider) GetMockTranscriber() *MockTranscriber {
	return p.transcriber
}

// GetMockChatStreamer returns the underlying mock chat streamer for test assertions.
func (p *MockProvider) GetMockChatStreamer() *MockChatStreamer {
	return p.streamer
}
