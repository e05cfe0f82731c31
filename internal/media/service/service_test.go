package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/video-stream/internal/media/models"
)

func newService() (*Service, *StoreMock, *BlobMock) {
	st := new(StoreMock)
	bl := new(BlobMock)
	return New(st, bl, zerolog.Nop()), st, bl
}

func TestGetVideo_InvalidID(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newService()

	// Invalid input should be rejected before calling the repository.
	got, err := svc.GetVideo(ctx, uuid.Nil)
	require.ErrorIs(t, err, models.ErrInvalidArgument)
	require.Nil(t, got)
	st.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetVideo_Found(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newService()

	id := uuid.New()
	want := &models.Video{ID: id, Title: "t"}
	st.On("GetByID", mock.Anything, id).Return(want, nil).Once()

	got, err := svc.GetVideo(ctx, id)
	require.NoError(t, err)
	require.Equal(t, want, got)
	st.AssertExpectations(t)
}

func TestStoreVideo_InvalidArguments(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		in   StoreInput
	}{
		{name: "empty title", in: StoreInput{Description: "d", Content: strings.NewReader("x")}},
		{name: "blank description", in: StoreInput{Title: "t", Description: "  ", Content: strings.NewReader("x")}},
		{name: "no content", in: StoreInput{Title: "t", Description: "d"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, st, bl := newService()

			// Invalid arguments should short-circuit without touching storage.
			got, err := svc.StoreVideo(ctx, tc.in)
			require.ErrorIs(t, err, models.ErrInvalidArgument)
			require.Nil(t, got)
			bl.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
			st.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestStoreVideo_SetsFieldsAndPersists(t *testing.T) {
	ctx := context.Background()
	svc, st, bl := newService()

	fixedID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fixedTime := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.idGen = func() uuid.UUID { return fixedID }
	svc.clock = func() time.Time { return fixedTime }

	bl.On("Save", mock.Anything, fixedID.String()+".mp4", mock.Anything).
		Return("/videos/"+fixedID.String()+".mp4", int64(12), nil).Once()

	var (
		persisted *models.Video
		events    []models.DomainEvent
	)
	st.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*models.Video)
			events = args.Get(2).([]models.DomainEvent)
		}).
		Return(nil).
		Once()

	got, err := svc.StoreVideo(ctx, StoreInput{
		Title:       "Holiday",
		Description: "Beach",
		Filename:    "Clip.MP4",
		Content:     strings.NewReader("twelve bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, persisted, got)

	require.Equal(t, fixedID, got.ID)
	require.Equal(t, "Holiday", got.Title)
	require.Equal(t, "Beach", got.Description)
	require.Equal(t, models.DefaultContentType, got.ContentType)
	require.Equal(t, "/videos/"+fixedID.String()+".mp4", got.FilePath)
	require.Equal(t, int64(12), got.Size)
	require.Equal(t, fixedTime, got.CreatedAt)

	require.Len(t, events, 1)
	require.Equal(t, "VideoStored", events[0].EventType())
	require.Equal(t, fixedID, events[0].AggregateID())
	st.AssertExpectations(t)
	bl.AssertExpectations(t)
}

func TestStoreVideo_EmptyContentRemovesBlob(t *testing.T) {
	svc, st, bl := newService()

	bl.On("Save", mock.Anything, mock.Anything, mock.Anything).Return("/videos/x", int64(0), nil).Once()
	bl.On("Remove", "/videos/x").Return(nil).Once()

	got, err := svc.StoreVideo(context.Background(), StoreInput{
		Title: "t", Description: "d", Content: strings.NewReader(""),
	})
	require.ErrorIs(t, err, models.ErrInvalidArgument)
	require.Nil(t, got)
	st.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	bl.AssertExpectations(t)
}

func TestStoreVideo_RepoErrorRemovesBlob(t *testing.T) {
	svc, st, bl := newService()

	bl.On("Save", mock.Anything, mock.Anything, mock.Anything).Return("/videos/x", int64(3), nil).Once()
	bl.On("Remove", "/videos/x").Return(errors.New("busy")).Once()
	st.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(models.ErrConflict).Once()

	// Repository errors pass through to the caller.
	got, err := svc.StoreVideo(context.Background(), StoreInput{
		Title: "t", Description: "d", Content: strings.NewReader("abc"),
	})
	require.ErrorIs(t, err, models.ErrConflict)
	require.Nil(t, got)
	bl.AssertExpectations(t)
}

func TestStoreVideo_SaveError(t *testing.T) {
	svc, st, bl := newService()

	boom := errors.New("disk full")
	bl.On("Save", mock.Anything, mock.Anything, mock.Anything).Return("", int64(0), boom).Once()

	_, err := svc.StoreVideo(context.Background(), StoreInput{
		Title: "t", Description: "d", Content: strings.NewReader("abc"),
	})
	require.ErrorIs(t, err, boom)
	st.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenStream_NotFound(t *testing.T) {
	svc, st, bl := newService()

	id := uuid.New()
	st.On("GetByID", mock.Anything, id).Return(nil, models.ErrNotFound).Once()

	_, _, err := svc.OpenStream(context.Background(), id)
	require.ErrorIs(t, err, models.ErrNotFound)
	bl.AssertNotCalled(t, "Open", mock.Anything)
}
