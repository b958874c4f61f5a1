package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"yt-traffic/internal/httpx"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// MaxBatchSize is the most ids videos.list accepts in one call.
	MaxBatchSize = 50
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
	Log     *log.Logger // optional
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // per request
		},
		Retry: httpx.DefaultRetryConfig(),
	}
}

// ListVideos calls videos.list for up to MaxBatchSize ids. Transient
// failures are retried inside httpx; anything else comes back as *APIError.
func (c *Client) ListVideos(ctx context.Context, ids []string) (*VideoListResponse, error) {
	if len(ids) == 0 {
		return &VideoListResponse{}, nil
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("youtube: %d ids exceed the batch limit of %d", len(ids), MaxBatchSize)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, &APIError{Kind: KindInvalidKey, Message: "missing api key"}
	}

	u, err := url.Parse(c.BaseURL + "/videos")
	if err != nil {
		return nil, fmt.Errorf("youtube: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("part", "snippet,statistics")
	q.Set("id", strings.Join(ids, ","))
	q.Set("maxResults", strconv.Itoa(MaxBatchSize))
	q.Set("key", c.APIKey)
	u.RawQuery = q.Encode()
	endpoint := u.String()

	cfg := c.Retry
	cfg.Retryable = isTransient
	if c.Log != nil {
		cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
			c.Log.Warn("videos.list retry", "attempt", attempt, "delay", delay, "ids", len(ids), "err", err)
		}
	}

	var out VideoListResponse
	err = httpx.DoJSON(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("youtube: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, &out, cfg)
	if err != nil {
		var herr *httpx.HTTPError
		if errors.As(err, &herr) {
			return nil, Classify(herr)
		}
		return nil, fmt.Errorf("youtube: videos.list: %w", err)
	}

	if c.Log != nil {
		c.Log.Debug("videos.list", "requested", len(ids), "returned", len(out.Items))
	}
	return &out, nil
}
