package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/romariotrain/video-stream/internal/media/models"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Create(ctx context.Context, v *models.Video, events ...models.DomainEvent) error {
	args := m.Called(ctx, v, events)
	return args.Error(0)
}

func (m *StoreMock) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) List(ctx context.Context) ([]models.Video, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

type BlobMock struct {
	mock.Mock
}

func (m *BlobMock) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	args := m.Called(ctx, name, r)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *BlobMock) Open(path string) (io.ReadSeekCloser, error) {
	args := m.Called(path)
	if v := args.Get(0); v != nil {
		return v.(io.ReadSeekCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BlobMock) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}
