package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/romariotrain/video-stream/internal/media/models"
	"github.com/romariotrain/video-stream/internal/media/repository"
)

// BlobStore holds the video bytes. The repository holds the metadata.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (path string, size int64, err error)
	Open(path string) (io.ReadSeekCloser, error)
	Remove(path string) error
}

type Service struct {
	repo   repository.VideoRepository
	blobs  BlobStore
	logger zerolog.Logger
	clock  func() time.Time
	idGen  func() uuid.UUID
}

func New(repo repository.VideoRepository, blobs BlobStore, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		blobs:  blobs,
		logger: logger.With().Str("component", "video_service").Logger(),
		clock:  time.Now,
		idGen:  uuid.New,
	}
}

type StoreInput struct {
	Title       string
	Description string
	Filename    string
	ContentType string
	Content     io.Reader
}

// StoreVideo saves the content, then the metadata. Service owns the invariants:
// id, timestamps, non-empty title, description and content.
func (s *Service) StoreVideo(ctx context.Context, in StoreInput) (*models.Video, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || in.Content == nil {
		return nil, models.ErrInvalidArgument
	}

	id := s.idGen()
	name := id.String() + strings.ToLower(filepath.Ext(in.Filename))

	path, size, err := s.blobs.Save(ctx, name, in.Content)
	if err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}
	if size == 0 {
		s.removeBlob(path)
		return nil, models.ErrInvalidArgument
	}

	ct := in.ContentType
	if ct == "" {
		ct = models.DefaultContentType
	}

	now := s.clock()
	v := &models.Video{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		ContentType: ct,
		FilePath:    path,
		Size:        size,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, v, models.NewVideoStored(v, now)); err != nil {
		s.removeBlob(path)
		return nil, err
	}

	s.logger.Info().
		Str("video_id", v.ID.String()).
		Str("content_type", ct).
		Int64("size", size).
		Msg("video stored")

	return v, nil
}

// GetVideo passes through domain errors (e.g. models.ErrNotFound) so the
// transport layer can map them to HTTP.
func (s *Service) GetVideo(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListVideos(ctx context.Context) ([]models.Video, error) {
	return s.repo.List(ctx)
}

// OpenStream returns the metadata and an open reader for the video content.
// The caller closes the reader.
func (s *Service) OpenStream(ctx context.Context, id uuid.UUID) (*models.Video, io.ReadSeekCloser, error) {
	v, err := s.GetVideo(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.blobs.Open(v.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open content %s: %w", v.ID, err)
	}
	return v, f, nil
}

func (s *Service) removeBlob(path string) {
	if err := s.blobs.Remove(path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to remove orphan content")
	}
}
