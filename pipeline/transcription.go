package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/media"
)

// MediaSplitter splits a media asset into transcription-sized audio parts.
// Satisfied by *media.Chunker.
type MediaSplitter interface {
	Split(ctx context.Context, srcPath string) (*media.SplitResult, error)
}

// TranscriptionStage turns a course's media asset into text.
type TranscriptionStage struct {
	splitter    MediaSplitter
	transcriber ai.Transcriber
	attempts    int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// NewTranscriptionStage creates a transcription stage.
func NewTranscriptionStage(splitter MediaSplitter, transcriber ai.Transcriber, logger *slog.Logger) (*TranscriptionStage, error) {
	if splitter == nil {
		return nil, ErrChunkerRequired
	}
	if transcriber == nil {
		return nil, ErrAIProviderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TranscriptionStage{
		splitter:    splitter,
		transcriber: transcriber,
		attempts:    retryAttempts,
		retryDelay:  retryBaseDelay,
		logger:      logger.With("stage", "transcription"),
	}, nil
}

// Run splits the course's media into parts, transcribes them in order, and
// joins the texts into MediaText. A failure on any part leaves MediaText
// empty so the whole asset is retried next tick; part files are removed
// either way.
func (s *TranscriptionStage) Run(ctx context.Context, course *core.Course) error {
	if course.MediaRef == "" {
		return core.ErrEmptySource
	}

	result, err := s.splitter.Split(ctx, course.MediaRef)
	if err != nil {
		return fmt.Errorf("splitting media for course %d: %w", course.Id, err)
	}
	defer removeParts(result.Parts, s.logger)

	s.logger.Info("transcribing media", "course", course.Id,
		"media", course.MediaRef, "parts", len(result.Parts))

	texts := make([]string, 0, len(result.Parts))
	for i, part := range result.Parts {
		var text string
		err := RetryWithBackoff(ctx, func() error {
			var partErr error
			text, partErr = s.transcriber.TranscribePart(ctx, part)
			return partErr
		}, s.attempts, s.retryDelay)
		if err != nil {
			return fmt.Errorf("transcribing part %d of course %d: %w", i, course.Id, err)
		}
		texts = append(texts, strings.TrimSpace(text))
	}

	course.MediaText = strings.Join(texts, "\n")
	course.MediaDurationSeconds = result.DurationSeconds
	return nil
}

func removeParts(parts []string, logger *slog.Logger) {
	for _, part := range parts {
		if err := os.Remove(part); err != nil && !os.IsNotExist(err) {
			logger.Warn("could not remove part file", "part", part, "err", err)
		}
	}
}
