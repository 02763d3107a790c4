package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuiz() []QuizItem {
	return []QuizItem{
		{
			Question: "What do plants produce during photosynthesis?",
			Answers: []QuizAnswer{
				{Text: "Oxygen", Correct: true},
				{Text: "Nitrogen"},
				{Text: "Helium"},
				{Text: "Methane"},
			},
		},
	}
}

func TestValidateCourse(t *testing.T) {
	t.Run("nil course", func(t *testing.T) {
		err := ValidateCourse(nil)
		assert.ErrorIs(t, err, ErrInvalidCourse)
	})

	t.Run("no sources", func(t *testing.T) {
		err := ValidateCourse(&Course{})
		assert.ErrorIs(t, err, ErrEmptySource)
	})

	t.Run("topic request only", func(t *testing.T) {
		err := ValidateCourse(&Course{Request: &TopicRequest{Topic: "Photosynthesis"}})
		assert.NoError(t, err)
	})

	t.Run("media only", func(t *testing.T) {
		err := ValidateCourse(&Course{MediaRef: "media/a.mp3"})
		assert.NoError(t, err)
	})

	t.Run("empty topic is not a source", func(t *testing.T) {
		err := ValidateCourse(&Course{Request: &TopicRequest{}})
		assert.ErrorIs(t, err, ErrEmptySource)
	})
}

func TestValidateCourseDocument(t *testing.T) {
	base := func() *CourseDocument {
		return &CourseDocument{
			Title:       "Photosynthesis in 60 Seconds",
			Description: "How plants turn light into sugar.",
			BodyHTML:    "<h1>Photosynthesis</h1>",
			Quiz:        validQuiz(),
		}
	}

	t.Run("valid document", func(t *testing.T) {
		assert.NoError(t, ValidateCourseDocument(base()))
	})

	t.Run("nil document", func(t *testing.T) {
		assert.ErrorIs(t, ValidateCourseDocument(nil), ErrInvalidDocument)
	})

	t.Run("missing title", func(t *testing.T) {
		doc := base()
		doc.Title = ""
		assert.ErrorIs(t, ValidateCourseDocument(doc), ErrEmptyTitle)
	})

	t.Run("title over 50 characters", func(t *testing.T) {
		doc := base()
		doc.Title = strings.Repeat("x", MaxTitleLength+1)
		assert.ErrorIs(t, ValidateCourseDocument(doc), ErrTitleTooLong)
	})

	t.Run("description over 100 characters", func(t *testing.T) {
		doc := base()
		doc.Description = strings.Repeat("y", MaxDescriptionLength+1)
		assert.ErrorIs(t, ValidateCourseDocument(doc), ErrDescriptionTooLong)
	})

	t.Run("quiz with three answers", func(t *testing.T) {
		doc := base()
		doc.Quiz[0].Answers = doc.Quiz[0].Answers[:3]
		assert.ErrorIs(t, ValidateCourseDocument(doc), ErrBadQuizShape)
	})

	t.Run("quiz with two correct answers", func(t *testing.T) {
		doc := base()
		doc.Quiz[0].Answers[1].Correct = true
		assert.ErrorIs(t, ValidateCourseDocument(doc), ErrBadQuizShape)
	})

	t.Run("empty quiz list is allowed", func(t *testing.T) {
		doc := base()
		doc.Quiz = nil
		assert.NoError(t, ValidateCourseDocument(doc))
	})
}

func TestIDFromContent(t *testing.T) {
	a := IDFromContent("course text")
	b := IDFromContent("course text")
	c := IDFromContent("other text")

	require.Equal(t, a, b, "identical content must produce identical IDs")
	assert.NotEqual(t, a, c)
	assert.NotZero(t, a)
}
