package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/storage"
)

// Window defaults match the chunking the retrieval prompt was tuned against.
const (
	DefaultWindowSize    = 4000
	DefaultWindowOverlap = 200
)

// IndexingStage builds a course's vector collection from its combined text.
type IndexingStage struct {
	vectors     storage.VectorRepository
	embedder    ai.Embedder
	pool        *ants.Pool
	artifactDir string
	windowSize  int
	overlap     int
	attempts    int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// IndexingOption configures an IndexingStage.
type IndexingOption func(*IndexingStage) error

// WithWindow overrides the window size and overlap used for splitting text.
func WithWindow(size, overlap int) IndexingOption {
	return func(s *IndexingStage) error {
		if size <= 0 {
			return fmt.Errorf("window size must be positive, got %d", size)
		}
		if overlap < 0 || overlap >= size {
			return fmt.Errorf("overlap must be in [0, size), got %d", overlap)
		}
		s.windowSize = size
		s.overlap = overlap
		return nil
	}
}

// WithArtifactDir sets the directory where combined-text artifacts are written.
// Default is the OS temp directory.
func WithArtifactDir(dir string) IndexingOption {
	return func(s *IndexingStage) error {
		s.artifactDir = dir
		return nil
	}
}

// WithEmbedPoolSize sets the worker pool size for embedding windows.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithEmbedPoolSize(size int) IndexingOption {
	return func(s *IndexingStage) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithIndexingLogger sets a custom logger.
func WithIndexingLogger(logger *slog.Logger) IndexingOption {
	return func(s *IndexingStage) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewIndexingStage creates an indexing stage.
func NewIndexingStage(vectors storage.VectorRepository, embedder ai.Embedder, opts ...IndexingOption) (*IndexingStage, error) {
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &IndexingStage{
		vectors:     vectors,
		embedder:    embedder,
		pool:        pool,
		artifactDir: os.TempDir(),
		windowSize:  DefaultWindowSize,
		overlap:     DefaultWindowOverlap,
		attempts:    retryAttempts,
		retryDelay:  retryBaseDelay,
		logger:      slog.Default().With("stage", "indexing"),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	return s, nil
}

// Release releases the embedding worker pool.
// The stage should not be used after calling Release.
func (s *IndexingStage) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Run rebuilds the course's vector collection. The course's raw document
// text is loaded from RawDocumentRef if needed, combined with the media
// transcript, persisted as a text artifact, split into overlapping windows,
// embedded, and stored. VectorIndexRef is set last, so a failure anywhere
// leaves the course marked for re-indexing.
func (s *IndexingStage) Run(ctx context.Context, course *core.Course) error {
	if err := s.loadRawText(course); err != nil {
		return err
	}

	combined := combineText(course)
	if strings.TrimSpace(combined) == "" {
		return fmt.Errorf("course %d: %w", course.Id, ErrNothingToIndex)
	}

	artifact := fmt.Sprintf("course%d.txt", course.Id)
	artifactPath := filepath.Join(s.artifactDir, artifact)
	if err := os.WriteFile(artifactPath, []byte(combined), 0644); err != nil {
		return fmt.Errorf("writing artifact for course %d: %w", course.Id, err)
	}

	windows := splitWindows(combined, s.windowSize, s.overlap)
	s.logger.Info("indexing course", "course", course.Id, "windows", len(windows))

	vectors, err := s.embedWindows(ctx, windows)
	if err != nil {
		return fmt.Errorf("embedding course %d: %w", course.Id, err)
	}

	chunks := make([]*core.VectorChunk, len(windows))
	for i, window := range windows {
		chunks[i] = &core.VectorChunk{
			Seq:    i,
			Text:   window,
			Vector: vectors[i],
		}
	}

	if _, err := s.vectors.ReplaceChunks(ctx, course.Id, chunks...); err != nil {
		return fmt.Errorf("storing chunks for course %d: %w", course.Id, err)
	}

	course.VectorIndexRef = artifact
	return nil
}

// loadRawText fills RawDocumentText from the course's document file when it
// hasn't been read yet. Files that look like HTML are reduced to their
// visible text.
func (s *IndexingStage) loadRawText(course *core.Course) error {
	if course.RawDocumentText != "" || course.RawDocumentRef == "" {
		return nil
	}

	data, err := os.ReadFile(course.RawDocumentRef)
	if err != nil {
		return fmt.Errorf("reading document for course %d: %w", course.Id, err)
	}

	text := string(data)
	if strings.HasPrefix(strings.TrimSpace(text), "<") {
		text = extractText(text)
	}
	course.RawDocumentText = text
	return nil
}

// combineText joins the course's text sources in a stable order.
func combineText(course *core.Course) string {
	raw := course.RawDocumentText
	if raw == "" && course.BodyHTML != "" {
		raw = extractText(course.BodyHTML)
	}

	switch {
	case raw != "" && course.MediaText != "":
		return raw + "\n\n" + course.MediaText
	case raw != "":
		return raw
	default:
		return course.MediaText
	}
}

// embedWindows embeds all windows through the worker pool, preserving order.
func (s *IndexingStage) embedWindows(ctx context.Context, windows []string) ([][]float32, error) {
	vectors := make([][]float32, len(windows))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for i, window := range windows {
		i, window := i, window
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			var vec []float32
			err := RetryWithBackoff(ctx, func() error {
				var embedErr error
				vec, embedErr = s.embedder.EmbedText(ctx, window)
				return embedErr
			}, s.attempts, s.retryDelay)
			if err != nil {
				setErr(err)
				return
			}
			vectors[i] = vec
		})
		if err != nil {
			wg.Done()
			setErr(err)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}
