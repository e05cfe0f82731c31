package domain

import (
	"fmt"

	"github.com/romariotrain/video-stream/internal/media/models"
)

func CanUploadTransition(from, to models.UploadPhase) bool {
	switch from {
	case models.UploadIdle:
		return to == models.UploadValidating
	case models.UploadValidating:
		return to == models.UploadTransferring || to == models.UploadFailed
	case models.UploadTransferring:
		return to == models.UploadSucceeded || to == models.UploadFailed
	case models.UploadSucceeded, models.UploadFailed:
		return to == models.UploadValidating
	default:
		return false
	}
}

// ValidateUploadTransition permits a no-op "transition" to the same phase only
// while transferring, where repeated progress updates keep the phase.
func ValidateUploadTransition(from, to models.UploadPhase) error {
	if from == to && from == models.UploadTransferring {
		return nil
	}
	if !CanUploadTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// CanPlaybackTransition: a play request re-enters resolving from any phase.
// Idle may jump straight to errored when the identifier is rejected locally.
func CanPlaybackTransition(from, to models.PlaybackPhase) bool {
	if to == models.PlaybackResolving {
		return true
	}
	switch from {
	case models.PlaybackResolving:
		return to == models.PlaybackReady || to == models.PlaybackNotFound || to == models.PlaybackErrored
	case models.PlaybackIdle, models.PlaybackReady, models.PlaybackNotFound, models.PlaybackErrored:
		return to == models.PlaybackErrored
	default:
		return false
	}
}

func ValidatePlaybackTransition(from, to models.PlaybackPhase) error {
	if !CanPlaybackTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
