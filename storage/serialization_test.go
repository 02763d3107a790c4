package storage

import (
	"testing"
	"time"

	"github.com/poiesic/courseforge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	course := &core.Course{
		Id: core.ID(77),
		Request: &core.TopicRequest{
			Topic:           "plate tectonics",
			DurationSeconds: 240,
			MinScenes:       5,
			QuizCount:       4,
			Language:        "en",
		},
		Title:       "Plate Tectonics",
		Description: "Why continents drift.",
		BodyHTML:    "<h1>Plate Tectonics</h1><p>Continents drift.</p>",
		Document:    &core.CourseDocument{
			Title:       "Plate Tectonics",
			Description: "Why continents drift.",
			BodyHTML:    "# Plate Tectonics",
			Scenes: []core.Scene{
				{Scene: 1, Time: "0-12 s", Visuals: "world map", Narration: "continents drift"},
				{Scene: 2, Time: "12-30 s", Visuals: "ridge cross-section", Narration: "new crust forms"},
			},
			Music: core.Music{Style: "ambient", Tempo: "slow", Mood: "curious"},
			Quiz: []core.QuizItem{
				{
					Question: "What drives the plates?",
					Answers: []core.QuizAnswer{
						{Text: "mantle convection", Correct: true},
						{Text: "wind"},
						{Text: "tides"},
						{Text: "erosion"},
					},
				},
			},
			Keywords: "plates, mantle, drift",
		},
		RawDocumentRef:       "tectonics.html",
		RawDocumentText:      "Continents drift over the mantle.",
		MediaRef:             "tectonics.mp4",
		MediaText:            "in this video we look at plate boundaries",
		MediaDurationSeconds: 312.4,
		Keywords:             "plates, mantle, drift",
		VectorIndexRef:       "course77.txt",
		InsertedAt:           now,
		UpdatedAt:            now,
	}

	got, err := UnmarshalCourse(MarshalCourse(course))
	require.NoError(t, err)
	assert.Equal(t, course, got)
}

func TestCourseRoundTripNilRequest(t *testing.T) {
	course := &core.Course{
		Id:             core.ID(3),
		RawDocumentRef: "notes.txt",
	}

	got, err := UnmarshalCourse(MarshalCourse(course))
	require.NoError(t, err)
	assert.Nil(t, got.Request)
	assert.Equal(t, course, got)
}

func TestVectorChunkRoundTrip(t *testing.T) {
	chunk := &core.VectorChunk{
		Id:       core.ID(101),
		CourseId: core.ID(77),
		Seq:      2,
		Text:     "the mid-ocean ridge is a divergent boundary",
		Vector:   []float32{0.25, -1.5, 0, 3.75},
	}

	got, err := UnmarshalVectorChunk(MarshalVectorChunk(chunk))
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
}

func TestUnmarshalCourseTruncated(t *testing.T) {
	data := MarshalCourse(&core.Course{Id: 1, Title: "short"})
	_, err := UnmarshalCourse(data[:len(data)/2])
	assert.Error(t, err)
}
