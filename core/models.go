package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// TopicRequest describes a requested course generation: what to teach,
// how long the produced video should run, and how much supporting material
// (scenes, quiz questions) to ask for.
type TopicRequest struct {
	Topic           string
	DurationSeconds int
	MinScenes       int
	QuizCount       int
	Language        string
}

// Default request parameters used when a TopicRequest leaves them zero.
const (
	DefaultDurationSeconds = 45
	DefaultMinScenes       = 5
	DefaultQuizCount       = 5
	DefaultLanguage        = "English"
)

// Normalized returns a copy of the request with zero-valued parameters
// replaced by their defaults. Topic is left as-is.
func (r TopicRequest) Normalized() TopicRequest {
	if r.DurationSeconds <= 0 {
		r.DurationSeconds = DefaultDurationSeconds
	}
	if r.MinScenes <= 0 {
		r.MinScenes = DefaultMinScenes
	}
	if r.QuizCount <= 0 {
		r.QuizCount = DefaultQuizCount
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	return r
}

// Course is the enrichable content unit. It is created with at least one of
// {Request, RawDocumentRef, MediaRef} populated and is mutated exclusively by
// the enrichment pipeline, one stage at a time.
type Course struct {
	Id                   ID
	Request              *TopicRequest
	Title                string // Set once generation completes; never regenerated
	Description          string
	BodyHTML             string
	Document             *CourseDocument // Full generated document; nil for courses never generated
	RawDocumentRef       string
	RawDocumentText      string
	MediaRef             string
	MediaText            string
	MediaDurationSeconds float64
	Keywords             string
	VectorIndexRef       string // Name of the vector collection; empty until indexed
	InsertedAt           time.Time
	UpdatedAt            time.Time
}

// Scene is one timed segment of the generated course video.
type Scene struct {
	Scene     int
	Time      string // Time slot within the requested duration, e.g. "0-12 s"
	Visuals   string
	Narration string
}

// Music describes the background music for the generated course video.
type Music struct {
	Style string
	Tempo string
	Mood  string
}

// QuizAnswer is one of the four answer choices of a quiz question.
type QuizAnswer struct {
	Text    string
	Correct bool
}

// QuizItem is a generated quiz question with exactly four answer choices,
// exactly one of which is marked correct.
type QuizItem struct {
	Question string
	Answers  []QuizAnswer
}

// CourseDocument is the structured output of the generation stage.
type CourseDocument struct {
	Title       string // <= 50 characters
	Description string // <= 100 characters
	BodyHTML    string
	Scenes      []Scene
	Music       Music
	Quiz        []QuizItem
	Keywords    string
}

// VectorChunk is one embedded window of a course's combined text, stored in
// the course's vector collection for retrieval-augmented answering.
type VectorChunk struct {
	Id       ID
	CourseId ID
	Seq      int // Window position within the source text
	Text     string
	Vector   []float32
}

// RetrievalMatch is a vector chunk match from similarity search.
type RetrievalMatch struct {
	Chunk *VectorChunk
	Score float32
}
