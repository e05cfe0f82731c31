package videoapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/romariotrain/video-stream/internal/media/models"
)

// errUndecodedVideo marks a 2xx whose body is not a video. The store accepted
// the file, so the upload still succeeds, without metadata.
var errUndecodedVideo = errors.New("undecodable stored video")

// StoreVideo uploads req as one multipart POST. The returned channel yields
// progress events followed by exactly one outcome and is then closed. The
// caller must drain it.
func (c *Client) StoreVideo(ctx context.Context, req models.UploadRequest) <-chan models.TransferEvent {
	events := make(chan models.TransferEvent, 4)

	go func() {
		defer close(events)

		sink := &progressSink{ctx: ctx, events: events}
		video, err := c.storeVideo(ctx, req, sink)
		sink.stop()

		if errors.Is(err, errUndecodedVideo) {
			c.logger.Warn().Err(err).Str("file", fileName(req)).Msg("video stored without metadata")
			err = nil
		}
		if err != nil {
			c.logger.Warn().Err(err).Str("file", fileName(req)).Msg("store video failed")
			events <- models.TransferEvent{Kind: models.TransferFailed, Err: err}
			return
		}
		events <- models.TransferEvent{Kind: models.TransferSucceeded, Video: video}
	}()

	return events
}

func (c *Client) storeVideo(ctx context.Context, req models.UploadRequest, sink *progressSink) (*models.Video, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := newUploadBody(req)
	if err != nil {
		return nil, err
	}
	// The transport may still be reading body when Do returns early, e.g. on
	// a 413 sent before the upload finished. Close is idempotent and a read
	// after it fails, which the transport ignores at that point.
	defer body.Close()

	total := body.Len()
	r := newProgressReader(body, total, sink.report)

	httpReq, err := c.newRequest(ctx, http.MethodPost, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}
	httpReq.Body = r
	httpReq.ContentLength = total
	httpReq.Header.Set("Content-Type", body.contentType)
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("file", req.File.Name).
		Int64("bytes", total).
		Msg("uploading video")

	resp, err := c.base.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("store video: %w", newStatusError(resp))
	}

	var v models.Video
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", errUndecodedVideo, err)
	}
	return &v, nil
}

func fileName(req models.UploadRequest) string {
	if req.File == nil {
		return ""
	}
	return req.File.Name
}
