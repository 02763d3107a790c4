package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/courseforge/ai/mock"
	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSplitter writes the requested number of part files into dir.
type fakeSplitter struct {
	dir      string
	parts    int
	duration float64
	err      error
}

func (f *fakeSplitter) Split(ctx context.Context, srcPath string) (*media.SplitResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := &media.SplitResult{DurationSeconds: f.duration}
	for i := 0; i < f.parts; i++ {
		path := filepath.Join(f.dir, filepath.Base(srcPath)+"_part"+string(rune('0'+i))+".mp3")
		if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
			return nil, err
		}
		result.Parts = append(result.Parts, path)
	}
	return result, nil
}

func TestTranscriptionJoinsPartsInOrder(t *testing.T) {
	splitter := &fakeSplitter{dir: t.TempDir(), parts: 3, duration: 120.5}
	transcriber := mock.NewMockTranscriber()
	calls := 0
	transcriber.TranscribePartFunc = func(ctx context.Context, path string) (string, error) {
		calls++
		switch calls {
		case 1:
			return "hello", nil
		case 2:
			return "from the", nil
		default:
			return "lecture", nil
		}
	}

	stage, err := NewTranscriptionStage(splitter, transcriber, nil)
	require.NoError(t, err)

	course := &core.Course{Id: 4, MediaRef: "lecture.mp4"}
	require.NoError(t, stage.Run(context.Background(), course))

	assert.Equal(t, "hello\nfrom the\nlecture", course.MediaText)
	assert.Equal(t, 120.5, course.MediaDurationSeconds)
	assert.Equal(t, 3, calls)
}

func TestTranscriptionRetriesTransientFailure(t *testing.T) {
	splitter := &fakeSplitter{dir: t.TempDir(), parts: 2, duration: 30}
	transcriber := mock.NewMockTranscriber()
	calls := 0
	transcriber.TranscribePartFunc = func(ctx context.Context, path string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("rate limited")
		}
		return "recovered", nil
	}

	stage, err := NewTranscriptionStage(splitter, transcriber, nil)
	require.NoError(t, err)
	stage.retryDelay = time.Millisecond

	course := &core.Course{Id: 4, MediaRef: "talk.mp3"}
	require.NoError(t, stage.Run(context.Background(), course))

	// Part 0 took two attempts, part 1 one.
	assert.Equal(t, "recovered\nrecovered", course.MediaText)
	assert.Equal(t, 3, calls)
}

func TestTranscriptionDeletesPartFiles(t *testing.T) {
	dir := t.TempDir()
	splitter := &fakeSplitter{dir: dir, parts: 2, duration: 10}

	stage, err := NewTranscriptionStage(splitter, mock.NewMockTranscriber(), nil)
	require.NoError(t, err)

	course := &core.Course{Id: 4, MediaRef: "talk.mp3"}
	require.NoError(t, stage.Run(context.Background(), course))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTranscriptionAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	splitter := &fakeSplitter{dir: dir, parts: 3, duration: 10}
	transcriber := mock.NewMockTranscriber()
	transcriber.TranscribePartFunc = func(ctx context.Context, path string) (string, error) {
		if strings.Contains(path, "_part1") {
			return "", errors.New("whisper unavailable")
		}
		return "ok", nil
	}

	stage, err := NewTranscriptionStage(splitter, transcriber, nil)
	require.NoError(t, err)
	stage.retryDelay = time.Millisecond

	course := &core.Course{Id: 4, MediaRef: "talk.mp3"}
	err = stage.Run(context.Background(), course)
	require.Error(t, err)

	// No partial transcript, and the part files are still cleaned up.
	assert.Empty(t, course.MediaText)
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestTranscriptionSplitFailure(t *testing.T) {
	splitter := &fakeSplitter{err: media.ErrUnsupportedMedia}

	stage, err := NewTranscriptionStage(splitter, mock.NewMockTranscriber(), nil)
	require.NoError(t, err)

	course := &core.Course{Id: 4, MediaRef: "slides.pdf"}
	err = stage.Run(context.Background(), course)
	assert.ErrorIs(t, err, media.ErrUnsupportedMedia)
	assert.Empty(t, course.MediaText)
}

func TestTranscriptionRequiresMediaRef(t *testing.T) {
	stage, err := NewTranscriptionStage(&fakeSplitter{}, mock.NewMockTranscriber(), nil)
	require.NoError(t, err)

	err = stage.Run(context.Background(), &core.Course{Id: 4})
	assert.ErrorIs(t, err, core.ErrEmptySource)
}
