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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/courseforge"
	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/pipeline"
	"github.com/poiesic/courseforge/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "courseforge",
		Usage: "Course content enrichment pipeline and tutoring API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the enrichment scheduler and HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "HTTP listen address",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name:  "media-dir",
						Usage: "Directory for uploaded media and text artifacts",
						Value: "media",
					},
					&cli.StringFlag{
						Name:  "openai-host",
						Usage: "OpenAI-compatible API base URL",
						Value: "https://api.openai.com/v1",
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "API key for the AI provider",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.StringFlag{
						Name:  "chat-model",
						Usage: "Model used for tutoring chat",
					},
					&cli.StringFlag{
						Name:  "generation-model",
						Usage: "Model used for course generation",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Model used for embeddings",
					},
					&cli.StringFlag{
						Name:  "transcription-model",
						Usage: "Model used for speech-to-text",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Transcription language hint",
					},
					&cli.DurationFlag{
						Name:  "tick-interval",
						Usage: "Pause between enrichment passes",
						Value: pipeline.DefaultTickInterval,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Insert a demo course for the pipeline to enrich",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "topic",
						Usage: "Topic to generate a course for",
						Value: "The Solar System",
					},
					&cli.IntFlag{
						Name:  "duration",
						Usage: "Requested video duration in seconds",
						Value: core.DefaultDurationSeconds,
					},
					&cli.IntFlag{
						Name:  "scenes",
						Usage: "Minimum number of scenes",
						Value: core.DefaultMinScenes,
					},
					&cli.IntFlag{
						Name:  "quiz",
						Usage: "Number of quiz questions",
						Value: core.DefaultQuizCount,
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Language for the generated course",
						Value: core.DefaultLanguage,
					},
					&cli.StringFlag{
						Name:  "media",
						Usage: "Path to an audio or video file to transcribe",
					},
					&cli.StringFlag{
						Name:  "document",
						Usage: "Path to a text or HTML document to index",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	// Model and language flags fall back to the provider defaults when unset.
	opts := []ai.ConfigOption{
		ai.WithHost(c.String("openai-host")),
		ai.WithAPIKey(c.String("api-key")),
	}
	if m := c.String("chat-model"); m != "" {
		opts = append(opts, ai.WithChatModel(m))
	}
	if m := c.String("generation-model"); m != "" {
		opts = append(opts, ai.WithGenerationModel(m))
	}
	if m := c.String("embedding-model"); m != "" {
		opts = append(opts, ai.WithEmbeddingModel(m))
	}
	if m := c.String("transcription-model"); m != "" {
		opts = append(opts, ai.WithTranscriptionModel(m))
	}
	if l := c.String("language"); l != "" {
		opts = append(opts, ai.WithLanguage(l))
	}
	aiConfig := ai.NewConfig(opts...)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	app, err := courseforge.NewApp(c.String("db"),
		courseforge.WithAIConfig(aiConfig),
		courseforge.WithMediaDir(c.String("media-dir")),
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer app.Close()

	scheduler, err := app.NewScheduler(pipeline.WithTickInterval(c.Duration("tick-interval")))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	srv, err := app.NewServer(c.String("addr"))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		_ = scheduler.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "err", err)
	}
	<-schedulerDone

	return nil
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewCourseRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}

	course := &core.Course{
		Request: &core.TopicRequest{
			Topic:           c.String("topic"),
			DurationSeconds: c.Int("duration"),
			MinScenes:       c.Int("scenes"),
			QuizCount:       c.Int("quiz"),
			Language:        c.String("language"),
		},
		MediaRef:       c.String("media"),
		RawDocumentRef: c.String("document"),
	}

	added, err := repo.AddCourses(ctx, course)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Inserted course %d (topic %q)\n", added[0].Id, course.Request.Topic)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
