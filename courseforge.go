// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package courseforge

import (
	"log/slog"

	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/ai/openai"
	"github.com/poiesic/courseforge/chat"
	"github.com/poiesic/courseforge/media"
	"github.com/poiesic/courseforge/pipeline"
	"github.com/poiesic/courseforge/server"
	"github.com/poiesic/courseforge/storage"
	"github.com/poiesic/courseforge/storage/badger"
)

// App wires the storage backend, AI provider, and services together. It is
// the single entry point embedders of the module use; the CLI builds one App
// and hangs the scheduler and HTTP server off it.
type App struct {
	backend    *badger.Backend
	courseRepo storage.CourseRepository
	vectorRepo storage.VectorRepository
	provider   ai.AIProvider
	mediaDir   string
	indexing   []*pipeline.IndexingStage
	logger     *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	mediaDir string
	inMemory bool
}

// WithAIConfig overrides the AI provider configuration.
func WithAIConfig(config *ai.Config) AppOption {
	return func(o *appOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider instead of constructing the
// OpenAI one. Tests use this with the mock provider.
func WithProvider(provider ai.AIProvider) AppOption {
	return func(o *appOptions) {
		o.provider = provider
	}
}

// WithMediaDir sets the directory uploaded media and text artifacts live in.
func WithMediaDir(dir string) AppOption {
	return func(o *appOptions) {
		if dir != "" {
			o.mediaDir = dir
		}
	}
}

// WithInMemoryStorage keeps all data in memory. Tests use this.
func WithInMemoryStorage() AppOption {
	return func(o *appOptions) {
		o.inMemory = true
	}
}

// NewApp opens the storage backend at filePath and builds the repositories
// and AI provider around it.
func NewApp(filePath string, opts ...AppOption) (*App, error) {
	// Apply options
	options := &appOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		mediaDir: "media",
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create course repository
	courseRepo, err := badger.NewCourseRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create vector repository
	vectorRepo, err := badger.NewVectorRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &App{
		backend:    backend,
		courseRepo: courseRepo,
		vectorRepo: vectorRepo,
		provider:   provider,
		mediaDir:   options.mediaDir,
		logger:     slog.Default(),
	}, nil
}

// Close releases the AI provider, any worker pools, and the storage backend.
func (a *App) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	for _, stage := range a.indexing {
		stage.Release()
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// CourseRepository returns the course repository.
func (a *App) CourseRepository() storage.CourseRepository {
	return a.courseRepo
}

// VectorRepository returns the vector repository.
func (a *App) VectorRepository() storage.VectorRepository {
	return a.vectorRepo
}

// MediaDir returns the directory uploads and artifacts are stored in.
func (a *App) MediaDir() string {
	return a.mediaDir
}

// NewScheduler assembles the three enrichment stages and the scheduler that
// drives them. The indexing stage's worker pool is released on App.Close.
func (a *App) NewScheduler(opts ...pipeline.SchedulerOption) (*pipeline.Scheduler, error) {
	generation, err := pipeline.NewGenerationStage(a.provider.Generator(), a.logger)
	if err != nil {
		return nil, err
	}

	splitter := media.NewChunker(media.NewFFmpeg())
	transcription, err := pipeline.NewTranscriptionStage(splitter, a.provider.Transcriber(), a.logger)
	if err != nil {
		return nil, err
	}

	indexing, err := pipeline.NewIndexingStage(a.vectorRepo, a.provider.Embedder(),
		pipeline.WithArtifactDir(a.mediaDir))
	if err != nil {
		return nil, err
	}
	a.indexing = append(a.indexing, indexing)

	return pipeline.NewScheduler(a.courseRepo, generation, transcription, indexing, opts...)
}

// NewChatService builds the retrieval-grounded chat service.
func (a *App) NewChatService(opts ...chat.Option) (*chat.Service, error) {
	return chat.NewService(a.courseRepo, a.vectorRepo, a.provider, opts...)
}

// NewServer builds the HTTP server on addr, serving the streaming chat
// endpoint and chunked media uploads.
func (a *App) NewServer(addr string, opts ...chat.Option) (*server.Server, error) {
	chatService, err := a.NewChatService(opts...)
	if err != nil {
		return nil, err
	}

	return server.NewServer(server.ServerConfig{
		Addr:     addr,
		MediaDir: a.mediaDir,
		Chat:     chatService,
		Logger:   a.logger,
	}), nil
}
