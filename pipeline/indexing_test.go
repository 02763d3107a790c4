package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/courseforge/ai/mock"
	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/storage"
	"github.com/poiesic/courseforge/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIndexing(t *testing.T, opts ...IndexingOption) (*IndexingStage, storage.VectorRepository, string) {
	t.Helper()
	_, vectors, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		vectors.Close()
		backend.Close()
	})

	dir := t.TempDir()
	opts = append([]IndexingOption{WithArtifactDir(dir)}, opts...)
	stage, err := NewIndexingStage(vectors, mock.NewMockEmbedder(), opts...)
	require.NoError(t, err)
	t.Cleanup(stage.Release)
	return stage, vectors, dir
}

func TestIndexingStoresChunksAndArtifact(t *testing.T) {
	stage, vectors, dir := setupIndexing(t, WithWindow(40, 10))
	ctx := context.Background()

	course := &core.Course{
		Id:              9,
		RawDocumentText: strings.Repeat("sediment settles in layers. ", 10),
		MediaText:       "and the lecture covers compaction",
	}
	require.NoError(t, stage.Run(ctx, course))

	assert.Equal(t, "course9.txt", course.VectorIndexRef)

	artifact, err := os.ReadFile(filepath.Join(dir, "course9.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(artifact), "sediment settles")
	assert.Contains(t, string(artifact), "\n\nand the lecture covers compaction")

	count, err := vectors.CountChunks(ctx, 9)
	require.NoError(t, err)
	assert.Greater(t, count, 1)

	// Chunks preserve window order and carry vectors.
	matches, err := vectors.FindSimilar(ctx, 9, make([]float32, 384), -1, 1000)
	require.NoError(t, err)
	require.Len(t, matches, count)
	for _, match := range matches {
		assert.Len(t, match.Chunk.Vector, 384)
	}
}

func TestIndexingRebuildReplacesOldChunks(t *testing.T) {
	stage, vectors, _ := setupIndexing(t, WithWindow(40, 10))
	ctx := context.Background()

	course := &core.Course{Id: 9, RawDocumentText: strings.Repeat("first version text. ", 20)}
	require.NoError(t, stage.Run(ctx, course))
	before, err := vectors.CountChunks(ctx, 9)
	require.NoError(t, err)

	course.RawDocumentText = "short second version"
	require.NoError(t, stage.Run(ctx, course))
	after, err := vectors.CountChunks(ctx, 9)
	require.NoError(t, err)

	assert.Greater(t, before, after)
	assert.Equal(t, 1, after)
}

func TestIndexingReadsDocumentFile(t *testing.T) {
	stage, _, _ := setupIndexing(t)
	ctx := context.Background()

	docPath := filepath.Join(t.TempDir(), "notes.html")
	require.NoError(t, os.WriteFile(docPath,
		[]byte("<html><body><h1>Layers</h1><p>Rock forms in layers.</p><script>x()</script></body></html>"), 0644))

	course := &core.Course{Id: 2, RawDocumentRef: docPath}
	require.NoError(t, stage.Run(ctx, course))

	assert.Contains(t, course.RawDocumentText, "Rock forms in layers.")
	assert.NotContains(t, course.RawDocumentText, "x()")
}

func TestIndexingFallsBackToBodyHTML(t *testing.T) {
	stage, _, dir := setupIndexing(t)
	ctx := context.Background()

	course := &core.Course{
		Id:       3,
		Title:    "Layers",
		BodyHTML: "<h1>Layers</h1><p>Generated body text.</p>",
	}
	require.NoError(t, stage.Run(ctx, course))

	artifact, err := os.ReadFile(filepath.Join(dir, "course3.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(artifact), "Generated body text.")
}

func TestIndexingNothingToIndex(t *testing.T) {
	stage, _, _ := setupIndexing(t)

	course := &core.Course{Id: 5}
	err := stage.Run(context.Background(), course)
	assert.ErrorIs(t, err, ErrNothingToIndex)
	assert.Empty(t, course.VectorIndexRef)
}

func TestIndexingEmbedFailureLeavesRefUnset(t *testing.T) {
	_, vectors, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		vectors.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	stage, err := NewIndexingStage(vectors, embedder, WithArtifactDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(stage.Release)
	stage.retryDelay = time.Millisecond

	course := &core.Course{Id: 5, RawDocumentText: "some text"}
	err = stage.Run(context.Background(), course)
	require.Error(t, err)
	assert.Empty(t, course.VectorIndexRef)
}

func TestIndexingRetriesTransientEmbedFailure(t *testing.T) {
	stage, vectors, _ := setupIndexing(t)
	stage.retryDelay = time.Millisecond
	ctx := context.Background()

	fallback := mock.NewMockEmbedder()
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("embedding service hiccup")
		}
		return fallback.EmbedText(ctx, text)
	}
	stage.embedder = embedder

	course := &core.Course{Id: 6, RawDocumentText: "sediment settles in layers"}
	require.NoError(t, stage.Run(ctx, course))

	assert.Equal(t, "course6.txt", course.VectorIndexRef)
	count, err := vectors.CountChunks(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int32(2), calls.Load())
}
