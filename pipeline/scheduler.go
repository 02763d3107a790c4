package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/storage"
)

// DefaultTickInterval is how long the scheduler sleeps between passes.
const DefaultTickInterval = 60 * time.Second

// SleepFunc pauses between ticks. It returns early with ctx.Err() when the
// context is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Scheduler drives the enrichment stages. A single goroutine lists pending
// courses each tick and runs their stages in order; stage failures are
// logged and retried on a later tick, never propagated.
type Scheduler struct {
	courses       storage.CourseRepository
	generation    *GenerationStage
	transcription *TranscriptionStage
	indexing      *IndexingStage
	interval      time.Duration
	sleep         SleepFunc
	logger        *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler) error

// WithTickInterval overrides the sleep between passes.
func WithTickInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) error {
		if d > 0 {
			s.interval = d
		}
		return nil
	}
}

// WithSleep replaces the inter-tick sleep. Tests inject an immediate return.
func WithSleep(fn SleepFunc) SchedulerOption {
	return func(s *Scheduler) error {
		if fn != nil {
			s.sleep = fn
		}
		return nil
	}
}

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewScheduler creates a scheduler over the three enrichment stages.
func NewScheduler(
	courses storage.CourseRepository,
	generation *GenerationStage,
	transcription *TranscriptionStage,
	indexing *IndexingStage,
	opts ...SchedulerOption,
) (*Scheduler, error) {
	if courses == nil {
		return nil, ErrCourseRepositoryRequired
	}

	s := &Scheduler{
		courses:       courses,
		generation:    generation,
		transcription: transcription,
		indexing:      indexing,
		interval:      DefaultTickInterval,
		sleep:         sleepWithContext,
		logger:        slog.Default().With("component", "scheduler"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Run loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)
	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("scheduler stopped")
			return err
		}

		s.Tick(ctx)

		if err := s.sleep(ctx, s.interval); err != nil {
			s.logger.Info("scheduler stopped")
			return err
		}
	}
}

// Tick runs one scheduling pass: list pending courses once, then run each
// course's applicable stages in order. Within the same tick a course whose
// text changed is re-indexed immediately.
func (s *Scheduler) Tick(ctx context.Context) {
	pending, err := s.courses.ListPendingCourses(ctx)
	if err != nil {
		s.logger.Error("listing pending courses", "err", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	s.logger.Debug("processing pending courses", "count", len(pending))
	for _, course := range pending {
		if ctx.Err() != nil {
			return
		}
		s.processCourse(ctx, course)
	}
}

// processCourse runs the stages a course is eligible for. Each stage's
// outcome is persisted before the next stage runs.
func (s *Scheduler) processCourse(ctx context.Context, course *core.Course) {
	changed := false

	if s.generation != nil && course.Request != nil && course.Request.Topic != "" && course.Title == "" {
		if err := s.generation.Run(ctx, course); err != nil {
			s.logger.Error("generation failed", "course", course.Id, "err", err)
		} else {
			changed = true
		}
		s.save(ctx, course)
	}

	if s.transcription != nil && course.MediaRef != "" && course.MediaText == "" {
		if err := s.transcription.Run(ctx, course); err != nil {
			s.logger.Error("transcription failed", "course", course.Id, "err", err)
		} else {
			changed = true
		}
		s.save(ctx, course)
	}

	if s.indexing != nil && (changed || course.VectorIndexRef == "") && hasText(course) {
		if err := s.indexing.Run(ctx, course); err != nil {
			s.logger.Error("indexing failed", "course", course.Id, "err", err)
		}
		s.save(ctx, course)
	}
}

func (s *Scheduler) save(ctx context.Context, course *core.Course) {
	if _, err := s.courses.UpdateCourses(ctx, course); err != nil {
		s.logger.Error("saving course", "course", course.Id, "err", err)
	}
}

func hasText(course *core.Course) bool {
	return course.RawDocumentText != "" || course.RawDocumentRef != "" ||
		course.MediaText != "" || course.BodyHTML != ""
}

// sleepWithContext sleeps for d or until ctx is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
