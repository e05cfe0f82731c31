package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/romariotrain/video-stream/internal/media/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const locatorPrefix = "http://store.test/api/v1/videos/stream/"

type notFoundErr struct{}

func (notFoundErr) Error() string { return "unexpected status 404" }
func (notFoundErr) Is(target error) bool {
	return target == models.ErrVideoNotFound || target == models.ErrUnexpectedStatus
}

func TestRequestPlayback_BlankIdentifier(t *testing.T) {
	for _, id := range []string{"", "   ", "\t\n"} {
		t.Run(fmt.Sprintf("%q", id), func(t *testing.T) {
			st := new(StreamerMock)
			r := New(st)

			got := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: id})

			require.Equal(t, models.PlaybackErrored, got.Phase)
			require.Equal(t, MsgInvalidIdentifier, got.Message)
			require.ErrorIs(t, got.Err, models.ErrInvalidIdentifier)
			require.Empty(t, got.MediaLocator)
			st.AssertNotCalled(t, "ProbeStream", mock.Anything, mock.Anything)
		})
	}
}

func TestRequestPlayback_Ready(t *testing.T) {
	st := new(StreamerMock)
	r := New(st)

	st.On("ProbeStream", mock.Anything, locatorPrefix+"abc123").Return(nil).Twice()

	first := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "abc123"})
	require.Equal(t, models.PlaybackReady, first.Phase)
	require.Equal(t, locatorPrefix+"abc123", first.MediaLocator)
	require.Empty(t, first.Message)
	require.NoError(t, first.Err)

	// Same id, same locator. Surrounding whitespace is not part of the id.
	second := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "  abc123 "})
	require.Equal(t, first, second)
	st.AssertExpectations(t)
}

func TestRequestPlayback_NotFound(t *testing.T) {
	st := new(StreamerMock)
	r := New(st)

	st.On("ProbeStream", mock.Anything, locatorPrefix+"missing-id").Return(notFoundErr{}).Once()

	got := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "missing-id"})

	require.Equal(t, models.PlaybackNotFound, got.Phase)
	require.Equal(t, MsgNotFound, got.Message)
	require.ErrorIs(t, got.Err, models.ErrVideoNotFound)
	require.Empty(t, got.MediaLocator)
}

func TestRequestPlayback_UnexpectedStatus(t *testing.T) {
	st := new(StreamerMock)
	r := New(st)

	st.On("ProbeStream", mock.Anything, mock.Anything).
		Return(fmt.Errorf("probe: %w", models.ErrUnexpectedStatus)).Once()

	got := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "abc"})

	require.Equal(t, models.PlaybackErrored, got.Phase)
	require.Equal(t, MsgUnexpected, got.Message)
	require.Empty(t, got.MediaLocator)
}

func TestRequestPlayback_TransportFailure(t *testing.T) {
	st := new(StreamerMock)
	r := New(st)

	cause := errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")
	st.On("ProbeStream", mock.Anything, mock.Anything).Return(cause).Once()

	got := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "abc"})

	require.Equal(t, models.PlaybackErrored, got.Phase)
	require.Equal(t, MsgFetchFailedPrefix+cause.Error(), got.Message)
	require.ErrorIs(t, got.Err, cause)
	require.Empty(t, got.MediaLocator)
}

func TestRequestPlayback_ClearsStaleStateBeforeProbe(t *testing.T) {
	st := new(StreamerMock)
	r := New(st)

	var (
		mu        sync.Mutex
		snapshots []models.PlaybackSession
	)
	r.Subscribe(func(s models.PlaybackSession) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, s)
	})

	st.On("ProbeStream", mock.Anything, locatorPrefix+"missing-id").Return(notFoundErr{}).Once()
	st.On("ProbeStream", mock.Anything, locatorPrefix+"abc123").
		Run(func(args mock.Arguments) {
			// While the probe is running the session must not show the old error.
			s := r.Session()
			assert.Equal(t, models.PlaybackResolving, s.Phase)
			assert.Empty(t, s.Message)
			assert.Empty(t, s.MediaLocator)
			assert.NoError(t, s.Err)
		}).
		Return(nil).Once()

	r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "missing-id"})
	got := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "abc123"})
	require.Equal(t, models.PlaybackReady, got.Phase)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, snapshots, 4)
	assert.Equal(t, models.PlaybackResolving, snapshots[0].Phase)
	assert.Equal(t, models.PlaybackNotFound, snapshots[1].Phase)
	assert.Equal(t, models.PlaybackSession{Phase: models.PlaybackResolving}, snapshots[2])
	assert.Equal(t, models.PlaybackReady, snapshots[3].Phase)
	st.AssertExpectations(t)
}

func TestRequestPlayback_InvalidAfterReadyClearsLocator(t *testing.T) {
	st := new(StreamerMock)
	r := New(st)

	st.On("ProbeStream", mock.Anything, mock.Anything).Return(nil).Once()

	r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "abc123"})
	got := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: " "})

	require.Equal(t, models.PlaybackErrored, got.Phase)
	require.Empty(t, got.MediaLocator)
	require.Equal(t, got, r.Session())
}

func TestRequestPlayback_NewerRequestWins(t *testing.T) {
	release := make(chan struct{})
	st := new(StreamerMock)
	r := New(st)

	st.On("ProbeStream", mock.Anything, locatorPrefix+"slow").
		Run(func(mock.Arguments) { <-release }).
		Return(nil).Once()
	st.On("ProbeStream", mock.Anything, locatorPrefix+"fast").Return(notFoundErr{}).Once()

	done := make(chan models.PlaybackSession, 1)
	go func() {
		done <- r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "slow"})
	}()

	require.Eventually(t, func() bool {
		return r.Session().Phase == models.PlaybackResolving
	}, time.Second, 5*time.Millisecond)

	fast := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "fast"})
	require.Equal(t, models.PlaybackNotFound, fast.Phase)

	close(release)
	slow := <-done

	// The slow caller still learns its own outcome...
	require.Equal(t, models.PlaybackReady, slow.Phase)
	// ...but the session reflects the latest request.
	require.Equal(t, models.PlaybackNotFound, r.Session().Phase)
}

func TestRequestPlayback_Timeout(t *testing.T) {
	st := new(StreamerMock)
	r := New(st, WithTimeout(10*time.Millisecond))

	st.On("ProbeStream", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded).Once()

	got := r.RequestPlayback(context.Background(), models.PlaybackQuery{VideoID: "abc"})

	require.Equal(t, models.PlaybackErrored, got.Phase)
	require.ErrorIs(t, got.Err, context.DeadlineExceeded)
}

func TestNew_IdleSession(t *testing.T) {
	r := New(new(StreamerMock))
	assert.Equal(t, models.PlaybackSession{Phase: models.PlaybackIdle}, r.Session())
}
