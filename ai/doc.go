// Package ai defines the interfaces to external AI capabilities used by the
// enrichment pipeline and the chat service: text embeddings, course
// generation, speech-to-text transcription, and streaming chat.
//
// Concrete implementations live in subpackages:
//   - ai/openai: OpenAI-compatible services
//   - ai/mock: test doubles
package ai
