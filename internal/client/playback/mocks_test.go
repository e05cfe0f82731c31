package playback

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type StreamerMock struct {
	mock.Mock
}

func (m *StreamerMock) Locator(videoID string) string {
	return "http://store.test/api/v1/videos/stream/" + videoID
}

func (m *StreamerMock) ProbeStream(ctx context.Context, locator string) error {
	args := m.Called(ctx, locator)
	return args.Error(0)
}
