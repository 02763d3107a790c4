package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/ai/mock"
	"github.com/poiesic/courseforge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationFillsCourseFields(t *testing.T) {
	stage, err := NewGenerationStage(mock.NewMockGenerator(), nil)
	require.NoError(t, err)

	course := &core.Course{Id: 1, Request: &core.TopicRequest{Topic: "erosion"}}
	require.NoError(t, stage.Run(context.Background(), course))

	assert.Equal(t, "erosion", course.Title)
	assert.NotEmpty(t, course.Description)
	assert.Contains(t, course.BodyHTML, "<h1>")
	assert.Equal(t, "erosion", course.Keywords)

	// The full generated document is retained, not just the flat fields.
	require.NotNil(t, course.Document)
	assert.NotEmpty(t, course.Document.Scenes)
	assert.NotEmpty(t, course.Document.Quiz)
	assert.NotEmpty(t, course.Document.Music.Style)
}

func TestGenerationAppliesRequestDefaults(t *testing.T) {
	gen := mock.NewMockGenerator()
	var seen core.TopicRequest
	gen.GenerateCourseFunc = func(ctx context.Context, req *core.TopicRequest) (*core.CourseDocument, error) {
		seen = *req
		return mock.NewMockGenerator().GenerateCourse(ctx, req)
	}

	stage, err := NewGenerationStage(gen, nil)
	require.NoError(t, err)

	course := &core.Course{Id: 1, Request: &core.TopicRequest{Topic: "tides"}}
	require.NoError(t, stage.Run(context.Background(), course))

	assert.Equal(t, core.DefaultDurationSeconds, seen.DurationSeconds)
	assert.Equal(t, core.DefaultMinScenes, seen.MinScenes)
	assert.Equal(t, core.DefaultQuizCount, seen.QuizCount)
	assert.Equal(t, core.DefaultLanguage, seen.Language)
}

func TestGenerationFailureLeavesCourseUntouched(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateCourseFunc = func(ctx context.Context, req *core.TopicRequest) (*core.CourseDocument, error) {
		return nil, ai.ErrMalformedDocument
	}

	stage, err := NewGenerationStage(gen, nil)
	require.NoError(t, err)

	course := &core.Course{Id: 1, Request: &core.TopicRequest{Topic: "tides"}}
	err = stage.Run(context.Background(), course)
	assert.ErrorIs(t, err, ai.ErrMalformedDocument)
	assert.Empty(t, course.Title)
	assert.Empty(t, course.BodyHTML)
}

func TestGenerationRejectsInvalidDocument(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateCourseFunc = func(ctx context.Context, req *core.TopicRequest) (*core.CourseDocument, error) {
		return &core.CourseDocument{Title: ""}, nil
	}

	stage, err := NewGenerationStage(gen, nil)
	require.NoError(t, err)

	course := &core.Course{Id: 1, Request: &core.TopicRequest{Topic: "tides"}}
	err = stage.Run(context.Background(), course)
	require.Error(t, err)
	assert.Empty(t, course.Title)
}

func TestGenerationRequiresTopic(t *testing.T) {
	stage, err := NewGenerationStage(mock.NewMockGenerator(), nil)
	require.NoError(t, err)

	err = stage.Run(context.Background(), &core.Course{Id: 1})
	assert.ErrorIs(t, err, core.ErrEmptyTopic)
}

func TestRenderBodyMarkdownFallback(t *testing.T) {
	html := renderBody("# Erosion\n\nWater wears rock away.")
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Water wears rock away.")

	passthrough := renderBody("<h1>Erosion</h1>")
	assert.Equal(t, "<h1>Erosion</h1>", passthrough)
}

func TestNewGenerationStageRequiresGenerator(t *testing.T) {
	_, err := NewGenerationStage(nil, nil)
	assert.True(t, errors.Is(err, ErrAIProviderRequired))
}
