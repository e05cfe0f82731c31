package upload

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/romariotrain/video-stream/internal/media/models"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) StoreVideo(ctx context.Context, req models.UploadRequest) <-chan models.TransferEvent {
	args := m.Called(ctx, req)
	return args.Get(0).(<-chan models.TransferEvent)
}

type storeFunc func(ctx context.Context, req models.UploadRequest) <-chan models.TransferEvent

func (f storeFunc) StoreVideo(ctx context.Context, req models.UploadRequest) <-chan models.TransferEvent {
	return f(ctx, req)
}

// scripted returns a closed channel holding events.
func scripted(events ...models.TransferEvent) <-chan models.TransferEvent {
	ch := make(chan models.TransferEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func progressEvent(sent, total int64) models.TransferEvent {
	return models.TransferEvent{Kind: models.TransferProgress, Sent: sent, Total: total}
}
