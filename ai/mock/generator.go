package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/courseforge/core"
)

// MockGenerator is a test double for ai.CourseGenerator.
type MockGenerator struct {
	// GenerateCourseFunc is called by GenerateCourse if set.
	// If nil, returns a small valid document built from the topic.
	GenerateCourseFunc func(ctx context.Context, req *core.TopicRequest) (*core.CourseDocument, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateCourse returns a minimal valid course document for the topic.
func (m *MockGenerator) GenerateCourse(ctx context.Context, req *core.TopicRequest) (*core.CourseDocument, error) {
	m.callCount++

	if m.GenerateCourseFunc != nil {
		return m.GenerateCourseFunc(ctx, req)
	}

	return &core.CourseDocument{
		Title:       req.Topic,
		Description: fmt.Sprintf("A short course about %s.", req.Topic),
		BodyHTML:    fmt.Sprintf("<h1>%s</h1><p>Lesson body.</p>", req.Topic),
		Scenes: []core.Scene{
			{Scene: 1, Time: "0-10 s", Visuals: "title card", Narration: "welcome"},
		},
		Music: core.Music{Style: "ambient", Tempo: "slow", Mood: "calm"},
		Quiz: []core.QuizItem{
			{
				Question: "What is this course about?",
				Answers: []core.QuizAnswer{
					{Text: req.Topic, Correct: true},
					{Text: "none of these"},
					{Text: "something else"},
					{Text: "unclear"},
				},
			},
		},
		Keywords: req.Topic,
	}, nil
}

// CallCount returns the number of times GenerateCourse was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// MockTranscriber is a test double for ai.Transcriber.
type MockTranscriber struct {
	// TranscribePartFunc is called by TranscribePart if set.
	// If nil, returns a fixed transcript naming the part file.
	TranscribePartFunc func(ctx context.Context, path string) (string, error)

	callCount int
}

// NewMockTranscriber creates a mock transcriber with default behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// TranscribePart returns a fixed transcript mentioning the part file.
func (m *MockTranscriber) TranscribePart(ctx context.Context, path string) (string, error) {
	m.callCount++

	if m.TranscribePartFunc != nil {
		return m.TranscribePartFunc(ctx, path)
	}

	return fmt.Sprintf("transcript of %s", path), nil
}

// CallCount returns the number of times TranscribePart was called.
func (m *MockTranscriber) CallCount() int {
	return m.callCount
}
