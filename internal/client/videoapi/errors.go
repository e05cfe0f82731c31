package videoapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/romariotrain/video-stream/internal/media/models"
)

// StatusError is a non-2xx response. It matches models.ErrUnexpectedStatus,
// and models.ErrVideoNotFound as well when the status is 404.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case models.ErrUnexpectedStatus:
		return true
	case models.ErrVideoNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

const maxErrorBody = 512

func newStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
