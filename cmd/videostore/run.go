package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-stream/internal/app"
	"github.com/romariotrain/video-stream/internal/config"
	"github.com/romariotrain/video-stream/internal/media/httpapi"
	"github.com/romariotrain/video-stream/internal/media/repository"
	"github.com/romariotrain/video-stream/internal/media/service"
	"github.com/romariotrain/video-stream/internal/storage/blob"
	"github.com/romariotrain/video-stream/internal/storage/postgres"
)

func newRunner(cfg config.Store, logger zerolog.Logger) app.Runner {
	return func(ctx context.Context) error {
		return run(ctx, cfg, logger)
	}
}

func run(ctx context.Context, cfg config.Store, logger zerolog.Logger) error {
	blobs, err := blob.NewFileStore(cfg.VideoDir)
	if err != nil {
		return fmt.Errorf("video dir: %w", err)
	}

	var repo repository.VideoRepository
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL is empty, metadata is kept in memory")
		repo = repository.NewMemoryRepository()
	} else {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()

		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		repo = postgres.NewVideoRepo(db, postgres.NewOutboxRepo(db))
	}

	svc := service.New(repo, blobs, logger)
	h := httpapi.New(svc, logger, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("video_dir", blobs.Dir()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	}
}
