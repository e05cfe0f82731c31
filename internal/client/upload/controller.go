// Package upload drives the upload flow: validate the request, transfer it
// to the store while publishing progress, and settle in a terminal phase.
package upload

import (
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-stream/internal/media/domain"
	"github.com/romariotrain/video-stream/internal/media/models"
)

const (
	MsgMissingFile     = "please select a video file"
	MsgMissingMetadata = "please provide a video title and description"
	MsgSucceeded       = "video uploaded successfully"
	MsgFailedPrefix    = "upload failed: "
	MsgUnexpected      = "unexpected error"
)

var errNoOutcome = errors.New("transfer ended without an outcome")

// Store is the "store video" operation of the remote service. The channel
// carries progress events and one final outcome, then is closed.
type Store interface {
	StoreVideo(ctx context.Context, req models.UploadRequest) <-chan models.TransferEvent
}

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l.With().Str("component", "upload").Logger() }
}

// WithTimeout bounds a transfer. Without it a store that never answers
// leaves the session transferring.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// Controller owns one upload session and the request fields entered for it.
// At most one transfer is in flight at a time.
type Controller struct {
	store   Store
	logger  zerolog.Logger
	timeout time.Duration

	mu        sync.Mutex
	session   models.UploadSession
	request   models.UploadRequest
	observers []func(models.UploadSession)
}

func New(store Store, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		logger:  zerolog.Nop(),
		session: models.UploadSession{Phase: models.UploadIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn to receive every published snapshot, in order.
// fn runs on the goroutine that called Submit.
func (c *Controller) Subscribe(fn func(models.UploadSession)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Controller) Session() models.UploadSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Request returns the fields currently entered: retained after a failure,
// cleared after a success.
func (c *Controller) Request() models.UploadRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.request
}

// Submit runs one upload to completion and returns the terminal snapshot.
// While another submission is validating or transferring it does nothing and
// returns the current snapshot.
func (c *Controller) Submit(ctx context.Context, req models.UploadRequest) models.UploadSession {
	c.mu.Lock()
	if c.session.InFlight() {
		s := c.session
		c.mu.Unlock()
		c.logger.Debug().Str("phase", string(s.Phase)).Msg("submit ignored, upload in flight")
		return s
	}
	c.request = req
	s, observers, err := c.apply(models.UploadValidating, func(s *models.UploadSession) {
		s.Progress = 0
		s.Message = ""
		s.Err = nil
		s.Video = nil
	})
	c.mu.Unlock()
	if err != nil {
		c.logger.Error().Err(err).Msg("upload session transition rejected")
		return s
	}
	notify(observers, s)

	if err := req.Validate(); err != nil {
		msg := MsgMissingMetadata
		if errors.Is(err, models.ErrMissingFile) {
			msg = MsgMissingFile
		}
		c.logger.Info().Err(err).Msg("upload rejected")
		return c.fail(err, msg)
	}

	c.transition(models.UploadTransferring, nil)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Info().
		Str("file", req.File.Name).
		Int64("size", req.File.Size).
		Str("title", req.Title).
		Msg("upload started")

	var outcome *models.TransferEvent
	for ev := range c.store.StoreVideo(ctx, req) {
		ev := ev // per-iteration copy; go directive is below 1.22
		if outcome != nil {
			continue
		}
		switch ev.Kind {
		case models.TransferProgress:
			c.progress(ev.Sent, ev.Total)
		case models.TransferSucceeded, models.TransferFailed:
			outcome = &ev
		}
	}

	switch {
	case outcome == nil:
		c.logger.Error().Err(errNoOutcome).Msg("upload failed")
		return c.fail(errNoOutcome, MsgFailedPrefix+MsgUnexpected)
	case outcome.Kind == models.TransferSucceeded:
		return c.succeed(outcome.Video)
	default:
		err := outcome.Err
		msg := MsgFailedPrefix + MsgUnexpected
		if err != nil {
			msg = MsgFailedPrefix + err.Error()
		} else {
			err = errors.New(MsgUnexpected)
		}
		c.logger.Warn().Err(err).Msg("upload failed")
		return c.fail(err, msg)
	}
}

func (c *Controller) progress(sent, total int64) {
	if total <= 0 {
		return
	}
	pct := int(math.Round(float64(sent) * 100 / float64(total)))
	pct = min(max(pct, 0), 100)

	c.mu.Lock()
	if c.session.Phase != models.UploadTransferring || pct <= c.session.Progress {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.transition(models.UploadTransferring, func(s *models.UploadSession) {
		s.Progress = pct
	})
}

func (c *Controller) succeed(v *models.Video) models.UploadSession {
	c.mu.Lock()
	c.request = models.UploadRequest{}
	c.mu.Unlock()

	s := c.transition(models.UploadSucceeded, func(s *models.UploadSession) {
		s.Progress = 100
		s.Message = MsgSucceeded
		s.Video = v
	})

	ev := c.logger.Info()
	if v != nil {
		ev = ev.Str("video_id", v.ID.String())
	}
	ev.Msg("upload succeeded")
	return s
}

func (c *Controller) fail(err error, msg string) models.UploadSession {
	return c.transition(models.UploadFailed, func(s *models.UploadSession) {
		s.Message = msg
		s.Err = err
	})
}

// transition moves the session to phase, applies mutate and publishes the
// snapshot. Observers are called outside the lock.
func (c *Controller) transition(to models.UploadPhase, mutate func(*models.UploadSession)) models.UploadSession {
	c.mu.Lock()
	s, observers, err := c.apply(to, mutate)
	c.mu.Unlock()
	if err != nil {
		c.logger.Error().Err(err).Msg("upload session transition rejected")
		return s
	}
	notify(observers, s)
	return s
}

// apply must be called with c.mu held.
func (c *Controller) apply(to models.UploadPhase, mutate func(*models.UploadSession)) (models.UploadSession, []func(models.UploadSession), error) {
	if err := domain.ValidateUploadTransition(c.session.Phase, to); err != nil {
		return c.session, nil, err
	}
	c.session.Phase = to
	if mutate != nil {
		mutate(&c.session)
	}
	return c.session, slices.Clone(c.observers), nil
}

func notify(observers []func(models.UploadSession), s models.UploadSession) {
	for _, fn := range observers {
		fn(s)
	}
}
