// Package playback resolves a video identifier into a media locator a player
// can bind to, after checking that the store can stream it.
package playback

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-stream/internal/media/domain"
	"github.com/romariotrain/video-stream/internal/media/models"
)

const (
	MsgInvalidIdentifier = "please enter a valid video ID"
	MsgNotFound          = "video not found, please check the video ID"
	MsgUnexpected        = "an unexpected error occurred"
	MsgFetchFailedPrefix = "failed to fetch video: "
)

// Streamer is the "fetch video stream by id" operation of the remote service.
// ProbeStream returns nil when the locator is playable, an error matching
// models.ErrVideoNotFound when the id is unknown and models.ErrUnexpectedStatus
// for any other refusal. Other errors are transport failures.
type Streamer interface {
	Locator(videoID string) string
	ProbeStream(ctx context.Context, locator string) error
}

type Option func(*Resolver)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = l.With().Str("component", "playback").Logger() }
}

func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

type Resolver struct {
	streamer Streamer
	logger   zerolog.Logger
	timeout  time.Duration

	mu        sync.Mutex
	session   models.PlaybackSession
	gen       uint64
	observers []func(models.PlaybackSession)
}

func New(streamer Streamer, opts ...Option) *Resolver {
	r := &Resolver{
		streamer: streamer,
		logger:   zerolog.Nop(),
		session:  models.PlaybackSession{Phase: models.PlaybackIdle},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Subscribe(fn func(models.PlaybackSession)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

func (r *Resolver) Session() models.PlaybackSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// RequestPlayback probes the stream for q once and returns the resulting
// snapshot. A newer request supersedes an older one still resolving: the
// older outcome is returned to its caller but not applied to the session.
func (r *Resolver) RequestPlayback(ctx context.Context, q models.PlaybackQuery) models.PlaybackSession {
	id := strings.TrimSpace(q.VideoID)

	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	if id == "" {
		r.logger.Info().Msg("playback rejected, empty video id")
		return r.settle(gen, models.PlaybackErrored, "", MsgInvalidIdentifier, models.ErrInvalidIdentifier)
	}

	locator := r.streamer.Locator(id)

	// Stale locator and message are gone before the probe resolves.
	r.update(gen, models.PlaybackResolving, "", "", nil)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	err := r.streamer.ProbeStream(ctx, locator)
	switch {
	case err == nil:
		r.logger.Info().Str("video_id", id).Msg("playback ready")
		return r.settle(gen, models.PlaybackReady, locator, "", nil)
	case errors.Is(err, models.ErrVideoNotFound):
		r.logger.Info().Str("video_id", id).Msg("video not found")
		return r.settle(gen, models.PlaybackNotFound, "", MsgNotFound, err)
	case errors.Is(err, models.ErrUnexpectedStatus):
		r.logger.Warn().Err(err).Str("video_id", id).Msg("stream probe refused")
		return r.settle(gen, models.PlaybackErrored, "", MsgUnexpected, err)
	default:
		r.logger.Warn().Err(err).Str("video_id", id).Msg("stream probe failed")
		return r.settle(gen, models.PlaybackErrored, "", MsgFetchFailedPrefix+err.Error(), err)
	}
}

// settle applies a terminal phase if gen is still the latest request and
// always returns the snapshot that request produced.
func (r *Resolver) settle(gen uint64, to models.PlaybackPhase, locator, msg string, err error) models.PlaybackSession {
	if s, ok := r.update(gen, to, locator, msg, err); ok {
		return s
	}
	return models.PlaybackSession{Phase: to, MediaLocator: locator, Message: msg, Err: err}
}

func (r *Resolver) update(gen uint64, to models.PlaybackPhase, locator, msg string, err error) (models.PlaybackSession, bool) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		r.logger.Debug().Str("phase", string(to)).Msg("superseded playback request")
		return models.PlaybackSession{}, false
	}
	if terr := domain.ValidatePlaybackTransition(r.session.Phase, to); terr != nil {
		s := r.session
		r.mu.Unlock()
		r.logger.Error().Err(terr).Msg("playback session transition rejected")
		return s, true
	}
	r.session = models.PlaybackSession{Phase: to, MediaLocator: locator, Message: msg, Err: err}
	s := r.session
	observers := slices.Clone(r.observers)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
	return s, true
}
