package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/core"
)

// generationMaxOutputTokens caps generation responses. A full course document
// is much larger than a chat turn, so this ignores the chat cap.
const generationMaxOutputTokens = 16384

// Generator implements ai.CourseGenerator over a streaming chat backend.
// The streamed deltas are drained into a buffer and parsed as JSON.
type Generator struct {
	config   *ai.Config
	streamer ai.ChatStreamer
	logger   *slog.Logger
}

// courseJSON mirrors the JSON shape the generation prompt asks for.
type courseJSON struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Movie       []struct {
		Scene     int    `json:"scene"`
		Time      string `json:"time"`
		Visuals   string `json:"visuals"`
		Narration string `json:"narration"`
	} `json:"movie"`
	Music struct {
		Style string `json:"style"`
		Tempo string `json:"tempo"`
		Mood  string `json:"mood"`
	} `json:"music"`
	Quiz []struct {
		Question string `json:"question"`
		Answers  []struct {
			Text    string `json:"text"`
			Correct bool   `json:"correct"`
		} `json:"answers"`
	} `json:"quiz"`
	Keywords keywordString `json:"keywords"`
}

// keywordString accepts both "a, b" and ["a", "b"] — models produce either.
type keywordString string

func (k *keywordString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = keywordString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*k = keywordString(strings.Join(list, ", "))
	return nil
}

// newGenerator is an internal constructor that returns the concrete type.
// The streamer is injected so tests can substitute a double.
func newGenerator(config *ai.Config, streamer ai.ChatStreamer) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Generator{
		config:   config,
		streamer: streamer,
		logger:   slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a course generator using the provided configuration.
//
// Returns ai.CourseGenerator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.CourseGenerator, error) {
	streamer, err := newStreamer(config)
	if err != nil {
		return nil, err
	}
	return newGenerator(config, streamer)
}

// GenerateCourse asks the model for a course document and parses the drained
// stream. Output that cannot be parsed is reported as ErrMalformedDocument;
// the raw text is included in the error for diagnosis.
func (g *Generator) GenerateCourse(ctx context.Context, req *core.TopicRequest) (*core.CourseDocument, error) {
	chatReq := &ai.ChatRequest{
		Messages: []ai.ChatMessage{
			{Role: ai.RoleUser, Content: buildCoursePrompt(req)},
		},
		Model:           g.config.GenerationModel,
		MaxOutputTokens: generationMaxOutputTokens,
	}

	var sb strings.Builder
	err := g.streamer.StreamChat(ctx, chatReq, func(delta string) error {
		sb.WriteString(delta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	text := stripCodeFences(sb.String())
	if text == "" {
		return nil, ai.ErrEmptyResponse
	}
	text = repairJSON(text)

	var parsed courseJSON
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		g.logger.Warn("could not parse generated document", "err", err, "length", len(text))
		return nil, fmt.Errorf("%w: %s", ai.ErrMalformedDocument, truncateForLog(text, 200))
	}

	return toDocument(&parsed), nil
}

// toDocument maps the wire shape onto the domain type.
func toDocument(parsed *courseJSON) *core.CourseDocument {
	doc := &core.CourseDocument{
		Title:       strings.TrimSpace(parsed.Title),
		Description: strings.TrimSpace(parsed.Description),
		BodyHTML:    strings.TrimSpace(parsed.Content),
		Music: core.Music{
			Style: parsed.Music.Style,
			Tempo: parsed.Music.Tempo,
			Mood:  parsed.Music.Mood,
		},
		Keywords: string(parsed.Keywords),
	}

	for _, scene := range parsed.Movie {
		doc.Scenes = append(doc.Scenes, core.Scene{
			Scene:     scene.Scene,
			Time:      scene.Time,
			Visuals:   scene.Visuals,
			Narration: scene.Narration,
		})
	}

	for _, item := range parsed.Quiz {
		quiz := core.QuizItem{Question: item.Question}
		for _, answer := range item.Answers {
			quiz.Answers = append(quiz.Answers, core.QuizAnswer{
				Text:    answer.Text,
				Correct: answer.Correct,
			})
		}
		doc.Quiz = append(doc.Quiz, quiz)
	}

	return doc
}

// stripCodeFences removes a surrounding markdown code fence if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
