package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/core"
	"github.com/yuin/goldmark"
)

// GenerationStage produces title, description, body and keywords for courses
// created from a bare topic request.
type GenerationStage struct {
	generator ai.CourseGenerator
	logger    *slog.Logger
}

// NewGenerationStage creates a generation stage.
func NewGenerationStage(generator ai.CourseGenerator, logger *slog.Logger) (*GenerationStage, error) {
	if generator == nil {
		return nil, ErrAIProviderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationStage{
		generator: generator,
		logger:    logger.With("stage", "generation"),
	}, nil
}

// Run generates a course document for the course's topic request, stores the
// full document on the course, and fills the presentation fields from it. On
// any failure the course is left untouched so the next tick retries it.
func (s *GenerationStage) Run(ctx context.Context, course *core.Course) error {
	if course.Request == nil || course.Request.Topic == "" {
		return core.ErrEmptyTopic
	}

	req := course.Request.Normalized()
	s.logger.Info("generating course", "course", course.Id, "topic", req.Topic)

	doc, err := s.generator.GenerateCourse(ctx, &req)
	if err != nil {
		return fmt.Errorf("generating course %d: %w", course.Id, err)
	}
	if err := core.ValidateCourseDocument(doc); err != nil {
		return fmt.Errorf("generated document for course %d rejected: %w", course.Id, err)
	}

	// The full document is kept so scenes, music, and quiz survive for
	// downstream consumers; the flat fields are what the pipeline reads.
	course.Document = doc
	course.Title = doc.Title
	course.Description = doc.Description
	course.BodyHTML = renderBody(doc.BodyHTML)
	course.Keywords = doc.Keywords

	s.logger.Info("course generated", "course", course.Id, "title", doc.Title,
		"scenes", len(doc.Scenes), "quiz", len(doc.Quiz))
	return nil
}

// renderBody returns the body as HTML. Models occasionally answer in markdown
// despite the prompt; anything that doesn't already look like markup is run
// through goldmark.
func renderBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.HasPrefix(trimmed, "<") {
		return trimmed
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(trimmed), &buf); err != nil {
		return trimmed
	}
	return buf.String()
}
