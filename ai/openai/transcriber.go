package openai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	goopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/poiesic/courseforge/ai"
)

// Transcriber implements ai.Transcriber using the Whisper transcription API.
type Transcriber struct {
	client   goopenai.Client
	model    string
	language string
	logger   *slog.Logger
}

// newTranscriber is an internal constructor that returns the concrete type.
func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.APIKey
	if token == "" {
		token = "none"
	}

	client := goopenai.NewClient(
		option.WithAPIKey(token),
		option.WithBaseURL(config.Host),
	)

	return &Transcriber{
		client:   client,
		model:    config.TranscriptionModel,
		language: config.Language,
		logger:   slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a transcriber using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// TranscribePart transcribes the audio file at path and returns its text.
func (t *Transcriber) TranscribePart(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening audio part: %w", err)
	}
	defer f.Close()

	t.logger.Debug("transcribing audio part", "part", path, "model", t.model)

	params := goopenai.AudioTranscriptionNewParams{
		File:  f,
		Model: goopenai.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = goopenai.String(t.language)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", path, err)
	}

	return resp.Text, nil
}
