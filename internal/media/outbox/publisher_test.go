package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/video-stream/internal/storage/postgres"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) GetPending(ctx context.Context, limit int) ([]postgres.OutboxRecord, error) {
	args := m.Called(ctx, limit)
	if v := args.Get(0); v != nil {
		return v.([]postgres.OutboxRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) MarkProcessed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type ProducerMock struct {
	mock.Mock
}

func (m *ProducerMock) Publish(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func newPublisher(t *testing.T, st Store, pr Producer) *Publisher {
	t.Helper()
	p, err := NewPublisher(PublisherConfig{
		Store:     st,
		Producer:  pr,
		Interval:  10 * time.Millisecond,
		BatchSize: 10,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	return p
}

func TestNewPublisher_Validation(t *testing.T) {
	st, pr := new(StoreMock), new(ProducerMock)

	tests := []struct {
		name    string
		cfg     PublisherConfig
		wantErr string
	}{
		{name: "no store", cfg: PublisherConfig{Producer: pr, Interval: time.Second, BatchSize: 1}, wantErr: "store is required"},
		{name: "no producer", cfg: PublisherConfig{Store: st, Interval: time.Second, BatchSize: 1}, wantErr: "producer is required"},
		{name: "zero interval", cfg: PublisherConfig{Store: st, Producer: pr, BatchSize: 1}, wantErr: "interval must be positive"},
		{name: "zero batch", cfg: PublisherConfig{Store: st, Producer: pr, Interval: time.Second}, wantErr: "batch size must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPublisher(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPublishBatch_PublishesAndMarks(t *testing.T) {
	st, pr := new(StoreMock), new(ProducerMock)
	p := newPublisher(t, st, pr)

	records := []postgres.OutboxRecord{
		{ID: 1, EventID: "e1", EventType: "VideoStored", AggregateID: "v1", Payload: []byte(`{"a":1}`)},
		{ID: 2, EventID: "e2", EventType: "VideoStored", AggregateID: "v2", Payload: []byte(`{"a":2}`)},
		{ID: 3, EventID: "e3", EventType: "VideoStored", AggregateID: "v3", Payload: []byte(`{"a":3}`)},
	}
	st.On("GetPending", mock.Anything, 10).Return(records, nil).Once()

	pr.On("Publish", mock.Anything, "v1", []byte(`{"a":1}`)).Return(nil).Once()
	pr.On("Publish", mock.Anything, "v2", []byte(`{"a":2}`)).Return(errors.New("leader not available")).Once()
	pr.On("Publish", mock.Anything, "v3", []byte(`{"a":3}`)).Return(nil).Once()

	st.On("MarkProcessed", mock.Anything, int64(1)).Return(nil).Once()
	st.On("MarkProcessed", mock.Anything, int64(3)).Return(errors.New("conn reset")).Once()

	res, err := p.publishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, batchResult{published: 2, failed: 1, marked: 1}, res)

	st.AssertExpectations(t)
	pr.AssertExpectations(t)
	st.AssertNotCalled(t, "MarkProcessed", mock.Anything, int64(2))
}

func TestPublishBatch_Empty(t *testing.T) {
	st, pr := new(StoreMock), new(ProducerMock)
	p := newPublisher(t, st, pr)

	st.On("GetPending", mock.Anything, 10).Return([]postgres.OutboxRecord{}, nil).Once()

	res, err := p.publishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, batchResult{}, res)
	pr.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishBatch_StoreError(t *testing.T) {
	st, pr := new(StoreMock), new(ProducerMock)
	p := newPublisher(t, st, pr)

	st.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db down")).Once()

	_, err := p.publishBatch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestStart_StopsOnCancel(t *testing.T) {
	st, pr := new(StoreMock), new(ProducerMock)
	p := newPublisher(t, st, pr)

	polled := make(chan struct{}, 1)
	st.On("GetPending", mock.Anything, 10).
		Run(func(mock.Arguments) {
			select {
			case polled <- struct{}{}:
			default:
			}
		}).
		Return([]postgres.OutboxRecord{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("publisher never polled")
	}

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}
