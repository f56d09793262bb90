// Package app wires the configured collaborators into a ready-to-run
// application stack, shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/finsight/finsight/internal/archive"
	"github.com/finsight/finsight/internal/classify"
	"github.com/finsight/finsight/internal/config"
	"github.com/finsight/finsight/internal/extract"
	"github.com/finsight/finsight/internal/goals"
	"github.com/finsight/finsight/internal/pipeline"
	"github.com/finsight/finsight/internal/store"
	"github.com/finsight/finsight/internal/store/firestore"
	"github.com/finsight/finsight/internal/store/memory"
)

// App is the assembled application stack.
type App struct {
	Config    *config.Config
	Store     store.Store
	Pipeline  *pipeline.Pipeline
	Allocator *goals.Engine
	Log       zerolog.Logger

	closers []func() error
}

// New builds the stack from configuration. Callers must Close it.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("New: invalid configuration: %w", err)
	}

	a := &App{Config: cfg, Log: log}

	st, err := a.buildStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = st

	archiver, err := a.buildArchiver(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	classifier, err := classify.NewGeminiClassifier(ctx, cfg.GeminiModel)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("New: create classifier: %w", err)
	}

	a.Allocator = goals.NewEngine(st, log)
	a.Pipeline = pipeline.New(pipeline.Deps{
		Archiver:   archiver,
		Extractor:  extract.NewHTTPExtractor(cfg.ExtractorURL),
		Classifier: classify.NewOrchestrator(classifier, cfg.ChunkSize, cfg.ClassifyTimeout, log),
		Store:      st,
		Allocator:  a.Allocator,
		Tolerance:  cfg.OverrideTolerance,
		Log:        log,
	})

	return a, nil
}

func (a *App) buildStore(ctx context.Context) (store.Store, error) {
	switch a.Config.StoreBackend {
	case "firestore":
		fs, err := firestore.New(ctx, a.Config.FirestoreProject)
		if err != nil {
			return nil, fmt.Errorf("buildStore: connect firestore: %w", err)
		}
		a.closers = append(a.closers, fs.Close)
		return fs, nil
	case "memory":
		a.Log.Warn().Msg("using in-memory store, data will not survive restarts")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("buildStore: unknown backend %q", a.Config.StoreBackend)
	}
}

func (a *App) buildArchiver(ctx context.Context) (archive.Archiver, error) {
	if a.Config.ArchiveBucket == "" {
		a.Log.Info().Msg("no archive bucket configured, statement archival disabled")
		return archive.NopArchiver{}, nil
	}

	gcs, err := archive.NewGCSArchiver(ctx, a.Config.ArchiveBucket)
	if err != nil {
		return nil, fmt.Errorf("buildArchiver: %w", err)
	}
	a.closers = append(a.closers, gcs.Close)
	return gcs, nil
}

// Close releases every held resource, last acquired first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Error().Err(err).Msg("failed to close resource")
		}
	}
}
