// Package videoapi is the HTTP client for the video store REST API. It
// implements the two operations the upload and playback flows depend on:
// storing a video with transfer progress and probing a stream by id.
package videoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/video-stream/internal/media/models"
)

const DefaultBaseURL = "http://localhost:8080/api/v1/videos"

type Config struct {
	// BaseURL of the videos collection, e.g. http://host/api/v1/videos.
	BaseURL string

	// Timeout for a whole request including the body. Zero means no timeout,
	// an unresponsive store then keeps the request open until ctx is done.
	Timeout time.Duration

	UserAgent string

	Logger zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: "vidclient/1.0",
		Logger:    zerolog.Nop(),
	}
}

type Client struct {
	base    *http.Client
	baseURL string
	agent   string
	logger  zerolog.Logger
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", cfg.BaseURL)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout cannot be negative")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}

	return &Client{
		base:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		agent:   cfg.UserAgent,
		logger:  cfg.Logger.With().Str("component", "videoapi").Logger(),
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.agent)
	return req, nil
}

// ListVideos returns the metadata of every stored video.
func (c *Client) ListVideos(ctx context.Context) ([]models.Video, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("list videos: %w", newStatusError(resp))
	}

	var videos []models.Video
	if err := json.NewDecoder(resp.Body).Decode(&videos); err != nil {
		return nil, fmt.Errorf("list videos: decode: %w", err)
	}
	return videos, nil
}
