package videoapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Locator is the stream URL of videoID. The same id always yields the same
// locator, and a player can bind to it directly.
func (c *Client) Locator(videoID string) string {
	return c.baseURL + "/stream/" + url.PathEscape(videoID)
}

// ProbeStream checks that locator is playable. It requests a single byte so
// the video itself is not downloaded. A 404 matches models.ErrVideoNotFound,
// any other non-2xx status models.ErrUnexpectedStatus.
func (c *Client) ProbeStream(ctx context.Context, locator string) error {
	req, err := c.newRequest(ctx, http.MethodGet, locator)
	if err != nil {
		return fmt.Errorf("probe stream: %w", err)
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("locator", locator).
		Msg("stream probe rejected")
	return newStatusError(resp)
}
