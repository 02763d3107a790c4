package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (*VectorRepository, error) {
	return &VectorRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *VectorRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *VectorRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// ReplaceChunks atomically replaces all chunks belonging to a course.
func (r *VectorRepository) ReplaceChunks(ctx context.Context, courseID core.ID, chunks ...*core.VectorChunk) ([]*core.VectorChunk, error) {
	now := time.Now().UTC()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteChunksTx(tx, courseID); err != nil {
			return err
		}

		for i, chunk := range chunks {
			chunk.CourseId = courseID
			chunk.Seq = i
			if chunk.Id == 0 {
				chunk.Id = core.IDFromContent(fmt.Sprintf("%d:%d:%s:%d", courseID, i, chunk.Text, now.UnixMicro()))
			}

			key := makeChunkKey(courseID, chunk.Seq)
			value := storage.MarshalVectorChunk(chunk)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// DeleteChunks removes all chunks belonging to a course.
func (r *VectorRepository) DeleteChunks(ctx context.Context, courseID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteChunksTx(tx, courseID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CountChunks reports how many chunks a course has.
func (r *VectorRepository) CountChunks(ctx context.Context, courseID core.ID) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(courseID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindSimilar delegates to the backend.
func (r *VectorRepository) FindSimilar(ctx context.Context, courseID core.ID, vector []float32, minSimilarity float32, limit int) ([]*core.RetrievalMatch, error) {
	return r.backend.FindSimilar(ctx, courseID, vector, minSimilarity, limit)
}

// deleteChunksTx removes all chunk keys under a course's prefix within tx.
func deleteChunksTx(tx *badger.Txn, courseID core.ID) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkKey(courseID)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
