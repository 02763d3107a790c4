package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/storage"
)

// CourseRepository implements storage.CourseRepository for BadgerDB.
type CourseRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.CourseRepository = (*CourseRepository)(nil)

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(backend *Backend) (*CourseRepository, error) {
	idSeq, err := backend.GetSequence(courseIDSeq)
	if err != nil {
		return nil, err
	}

	return &CourseRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *CourseRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *CourseRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddCourses adds one or more courses to storage.
func (r *CourseRepository) AddCourses(ctx context.Context, courses ...*core.Course) ([]*core.Course, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, course := range courses {
			if course.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				course.Id = core.ID(nextID)
			}

			if course.InsertedAt.IsZero() {
				course.InsertedAt = time.Now().UTC()
			}
			course.UpdatedAt = course.InsertedAt

			key := makeCourseKey(course.Id)
			value := storage.MarshalCourse(course)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return courses, err
}

// UpdateCourses updates existing courses.
func (r *CourseRepository) UpdateCourses(ctx context.Context, courses ...*core.Course) ([]*core.Course, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, course := range courses {
			key := makeCourseKey(course.Id)

			old, err := readCourse(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			course.UpdatedAt = time.Now().UTC()

			value := storage.MarshalCourse(course)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return courses, err
}

// DeleteCourses removes courses by their IDs, along with their vector chunks.
func (r *CourseRepository) DeleteCourses(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeCourseKey(id)

			course, err := readCourse(tx, key)
			if err != nil {
				return err
			}
			if course == nil {
				return storage.ErrNotFound
			}

			if err := deleteChunksTx(tx, id); err != nil {
				return err
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetCourse retrieves a single course by ID.
func (r *CourseRepository) GetCourse(ctx context.Context, id core.ID) (*core.Course, error) {
	var result *core.Course
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCourseKey(id)
		var err error
		result, err = readCourse(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListCourses retrieves all courses ordered by ID.
func (r *CourseRepository) ListCourses(ctx context.Context) ([]*core.Course, error) {
	var results []*core.Course
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(courseRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var course *core.Course
			err := iter.Item().Value(func(val []byte) error {
				var err error
				course, err = storage.UnmarshalCourse(val)
				return err
			})
			if err != nil {
				return err
			}
			if course != nil {
				results = append(results, course)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys sort lexicographically over decimal IDs, so re-sort numerically.
	slices.SortFunc(results, func(a, b *core.Course) int {
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})

	return results, nil
}

// ListPendingCourses retrieves courses that still have an enrichment stage
// to run, ordered by ID.
func (r *CourseRepository) ListPendingCourses(ctx context.Context) ([]*core.Course, error) {
	courses, err := r.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	var pending []*core.Course
	for _, course := range courses {
		if core.NextStage(course) != core.StageNone {
			pending = append(pending, course)
		}
	}
	return pending, nil
}

// readCourse reads a course from the transaction.
func readCourse(tx *badger.Txn, key []byte) (*core.Course, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var course *core.Course
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		course, unmarshalErr = storage.UnmarshalCourse(val)
		return unmarshalErr
	})
	return course, err
}
