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


package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/storage"
)

const (
	// retrievalLimit caps how many passages are folded into a question.
	retrievalLimit = 5

	// similarityFloor filters out passages that only loosely match the
	// question.
	similarityFloor = 0.60
)

// Service streams tutoring conversations, optionally grounded in the
// indexed content of one course.
type Service struct {
	courses  storage.CourseRepository
	vectors  storage.VectorRepository
	embedder ai.Embedder
	streamer ai.ChatStreamer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock sets the time source used to date the system prompt.
// Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// NewService creates a new chat service.
func NewService(
	courses storage.CourseRepository,
	vectors storage.VectorRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Service, error) {
	if courses == nil {
		return nil, ErrCourseRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Service{
		courses:  courses,
		vectors:  vectors,
		embedder: provider.Embedder(),
		streamer: provider.ChatStreamer(),
		logger:   slog.Default(),
		now:      time.Now,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Stream assembles the session for req and streams the model's answer as
// deduplicated deltas through emit. It returns when the stream completes,
// when emit returns an error, or when ctx is cancelled.
func (s *Service) Stream(ctx context.Context, req *Request, emit func(delta string) error) error {
	if req == nil || len(req.Messages) == 0 {
		return ErrNoMessages
	}

	session := s.newSession(ctx, req)

	return s.streamer.StreamChat(ctx, &ai.ChatRequest{Messages: session.Messages}, emit)
}

// newSession builds the upstream message list for one request. Retrieval
// failures degrade to a plain conversation rather than failing the chat.
func (s *Service) newSession(ctx context.Context, req *Request) *Session {
	withRetrieval := req.CourseID != 0

	messages := make([]ai.ChatMessage, 0, len(req.Messages)+1)
	messages = append(messages, ai.ChatMessage{
		Role:    ai.RoleSystem,
		Content: systemPrompt(s.now(), withRetrieval),
	})

	if !withRetrieval {
		for _, m := range req.Messages {
			messages = append(messages, ai.ChatMessage{Role: normalizeRole(m.Role), Content: m.Content})
		}
		return &Session{Messages: messages}
	}

	// Pull the last user question out of the history; it gets re-added at
	// the end, wrapped in the retrieved course context.
	questionIdx := lastUserIndex(req.Messages)
	for i, m := range req.Messages {
		if i == questionIdx {
			continue
		}
		messages = append(messages, ai.ChatMessage{Role: normalizeRole(m.Role), Content: m.Content})
	}
	if questionIdx < 0 {
		return &Session{Messages: messages}
	}
	question := req.Messages[questionIdx].Content

	messages = append(messages, ai.ChatMessage{
		Role:    ai.RoleUser,
		Content: s.groundQuestion(ctx, req.CourseID, question),
	})

	return &Session{Messages: messages}
}

// groundQuestion wraps the question in passages retrieved from the course
// index. When the course is missing, unindexed, or retrieval fails, the
// plain question is returned so the conversation still works.
func (s *Service) groundQuestion(ctx context.Context, courseID core.ID, question string) string {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		s.logger.Warn("course lookup failed, answering without context", "courseID", courseID, "err", err)
		return question
	}

	embedding, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		s.logger.Warn("error generating embedding for question", "courseID", courseID, "err", err)
		return question
	}

	matches, err := s.vectors.FindSimilar(ctx, courseID, embedding, similarityFloor, retrievalLimit)
	if err != nil {
		s.logger.Warn("error querying for similar passages", "courseID", courseID, "err", err)
		return question
	}
	if len(matches) == 0 {
		s.logger.Debug("no similar passages found", "courseID", courseID)
		return question
	}

	return contextualQuestion(course, matches, question)
}
