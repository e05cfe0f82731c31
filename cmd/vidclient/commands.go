package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-stream/internal/client/playback"
	"github.com/romariotrain/video-stream/internal/client/upload"
	"github.com/romariotrain/video-stream/internal/client/videoapi"
	"github.com/romariotrain/video-stream/internal/config"
	"github.com/romariotrain/video-stream/internal/media/models"
)

type env struct {
	api    *videoapi.Client
	cfg    config.Client
	logger zerolog.Logger
	out    io.Writer
}

func newEnv(cfg config.Client, logger zerolog.Logger, out io.Writer) (*env, error) {
	apiCfg := videoapi.DefaultConfig()
	apiCfg.BaseURL = cfg.BaseURL
	apiCfg.Logger = logger

	api, err := videoapi.New(apiCfg)
	if err != nil {
		return nil, err
	}
	return &env{api: api, cfg: cfg, logger: logger, out: out}, nil
}

func runUpload(ctx context.Context, e *env, path, title, description string) error {
	var file *models.File
	if path != "" {
		f, err := models.FileFromPath(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		file = f
	}

	ctrl := upload.New(e.api, upload.WithLogger(e.logger), upload.WithTimeout(e.cfg.Timeout))
	ctrl.Subscribe(func(s models.UploadSession) {
		if s.Phase == models.UploadTransferring {
			fmt.Fprintf(e.out, "\ruploading %3d%%", s.Progress)
		}
	})

	s := ctrl.Submit(ctx, models.UploadRequest{File: file, Title: title, Description: description})
	if s.Progress > 0 {
		fmt.Fprintln(e.out)
	}
	fmt.Fprintln(e.out, s.Message)

	if s.Phase != models.UploadSucceeded {
		if s.Err != nil {
			return s.Err
		}
		return errors.New(s.Message)
	}
	if s.Video != nil {
		fmt.Fprintf(e.out, "video id: %s\n", s.Video.ID)
	}
	return nil
}

func runPlay(ctx context.Context, e *env, id string) error {
	r := playback.New(e.api, playback.WithLogger(e.logger), playback.WithTimeout(e.cfg.Timeout))

	s := r.RequestPlayback(ctx, models.PlaybackQuery{VideoID: id})
	if s.Phase != models.PlaybackReady {
		fmt.Fprintln(e.out, s.Message)
		if s.Err != nil {
			return s.Err
		}
		return errors.New(s.Message)
	}

	fmt.Fprintln(e.out, s.MediaLocator)
	return nil
}

func runList(ctx context.Context, e *env) error {
	videos, err := e.api.ListVideos(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSIZE\tCREATED")
	for _, v := range videos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			v.ID, v.Title, v.ContentType, v.Size, v.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
