package badger

import (
	"context"
	"testing"

	"github.com/poiesic/courseforge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceChunksAssignsSequence(t *testing.T) {
	_, vectors := setupRepos(t)
	ctx := context.Background()

	chunks, err := vectors.ReplaceChunks(ctx, 7,
		&core.VectorChunk{Text: "first", Vector: []float32{1, 0, 0}},
		&core.VectorChunk{Text: "second", Vector: []float32{0, 1, 0}},
		&core.VectorChunk{Text: "third", Vector: []float32{0, 0, 1}},
	)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Seq)
		assert.Equal(t, core.ID(7), chunk.CourseId)
		assert.NotZero(t, chunk.Id)
	}

	count, err := vectors.CountChunks(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestReplaceChunksDropsOldSet(t *testing.T) {
	_, vectors := setupRepos(t)
	ctx := context.Background()

	_, err := vectors.ReplaceChunks(ctx, 7,
		&core.VectorChunk{Text: "old a", Vector: []float32{1, 0}},
		&core.VectorChunk{Text: "old b", Vector: []float32{0, 1}},
		&core.VectorChunk{Text: "old c", Vector: []float32{1, 1}},
	)
	require.NoError(t, err)

	_, err = vectors.ReplaceChunks(ctx, 7,
		&core.VectorChunk{Text: "new", Vector: []float32{1, 0}},
	)
	require.NoError(t, err)

	count, err := vectors.CountChunks(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	matches, err := vectors.FindSimilar(ctx, 7, []float32{1, 0}, 0, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Chunk.Text)
}

func TestDeleteChunksIsIdempotent(t *testing.T) {
	_, vectors := setupRepos(t)
	ctx := context.Background()

	_, err := vectors.ReplaceChunks(ctx, 3,
		&core.VectorChunk{Text: "x", Vector: []float32{1}},
	)
	require.NoError(t, err)

	require.NoError(t, vectors.DeleteChunks(ctx, 3))
	require.NoError(t, vectors.DeleteChunks(ctx, 3))

	count, err := vectors.CountChunks(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFindSimilarScopedToCourse(t *testing.T) {
	_, vectors := setupRepos(t)
	ctx := context.Background()

	_, err := vectors.ReplaceChunks(ctx, 1,
		&core.VectorChunk{Text: "course one", Vector: []float32{1, 0}},
	)
	require.NoError(t, err)
	_, err = vectors.ReplaceChunks(ctx, 2,
		&core.VectorChunk{Text: "course two", Vector: []float32{1, 0}},
	)
	require.NoError(t, err)

	matches, err := vectors.FindSimilar(ctx, 1, []float32{1, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "course one", matches[0].Chunk.Text)
}

func TestFindSimilarOrderingAndLimit(t *testing.T) {
	_, vectors := setupRepos(t)
	ctx := context.Background()

	_, err := vectors.ReplaceChunks(ctx, 5,
		&core.VectorChunk{Text: "far", Vector: []float32{0.1, 0.9}},
		&core.VectorChunk{Text: "close", Vector: []float32{0.9, 0.1}},
		&core.VectorChunk{Text: "closest", Vector: []float32{1, 0}},
	)
	require.NoError(t, err)

	matches, err := vectors.FindSimilar(ctx, 5, []float32{1, 0}, 0, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "closest", matches[0].Chunk.Text)
	assert.Equal(t, "close", matches[1].Chunk.Text)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestFindSimilarThreshold(t *testing.T) {
	_, vectors := setupRepos(t)
	ctx := context.Background()

	_, err := vectors.ReplaceChunks(ctx, 9,
		&core.VectorChunk{Text: "aligned", Vector: []float32{1, 0}},
		&core.VectorChunk{Text: "orthogonal", Vector: []float32{0, 1}},
	)
	require.NoError(t, err)

	matches, err := vectors.FindSimilar(ctx, 9, []float32{1, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "aligned", matches[0].Chunk.Text)
}
