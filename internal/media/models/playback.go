package models

type PlaybackPhase string

const (
	PlaybackIdle      PlaybackPhase = "idle"
	PlaybackResolving PlaybackPhase = "resolving"
	PlaybackReady     PlaybackPhase = "ready"
	PlaybackNotFound  PlaybackPhase = "not_found"
	PlaybackErrored   PlaybackPhase = "errored"
)

type PlaybackQuery struct {
	VideoID string
}

// PlaybackSession.MediaLocator is only set in PlaybackReady.
type PlaybackSession struct {
	Phase        PlaybackPhase
	MediaLocator string
	Message      string
	Err          error
}
