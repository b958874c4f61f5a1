package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPError carries status/body for non-2xx responses.
// It lets callers decide if/when to retry.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, redactKey(e.URL), e.StatusCode, snippet(e.Body, 900))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// redactKey hides the api key query param so it never lands in logs.
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable url)"
	}
	q := u.Query()
	if !q.Has("key") {
		return raw
	}
	q.Set("key", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}

// RetryConfig controls retry behavior.
type RetryConfig struct {
	// MaxAttempts counts the first try, so 3 means at most two retries.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Jitter is the upper bound of the random delay added to each backoff.
	// Zero disables jitter.
	Jitter time.Duration

	// If true, retry any 5xx.
	Retry5xx bool

	// Extra statuses to retry (e.g. 429, 408).
	RetryStatuses map[int]bool

	// Retryable overrides the status based decision for HTTP errors.
	// APIs that report rate limits as 403 need it.
	Retryable func(*HTTPError) bool

	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, delay time.Duration, err error)

	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
		Jitter:      250 * time.Millisecond,
		Retry5xx:    true,
		RetryStatuses: map[int]bool{
			http.StatusTooManyRequests:    true, // 429
			http.StatusRequestTimeout:     true, // 408
			http.StatusTooEarly:           true, // 425 (rare)
			http.StatusServiceUnavailable: true, // 503
			http.StatusBadGateway:         true, // 502
			http.StatusGatewayTimeout:     true, // 504
		},
	}
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.RetryStatuses == nil {
		cfg.RetryStatuses = def.RetryStatuses
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepCtx
	}
	return cfg
}

// Backoff returns the delay before retry number attempt (1-based):
// base, 2*base, 4*base, ... capped at max. Jitter is applied separately.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 30 {
		return max
	}
	d := base * time.Duration(1<<(attempt-1))
	if d > max || d <= 0 {
		return max
	}
	return d
}

// retryState is the whole retry loop state. The loop only ever asks it
// whether another attempt is allowed and how long to wait first.
type retryState struct {
	attempt     int
	maxAttempts int
	delay       time.Duration
}

func newRetryState(maxAttempts int) *retryState {
	return &retryState{maxAttempts: maxAttempts}
}

// begin advances to the next attempt. It reports false once the cap is hit.
func (s *retryState) begin() bool {
	if s.attempt >= s.maxAttempts {
		return false
	}
	s.attempt++
	return true
}

func (s *retryState) canRetry() bool {
	return s.attempt < s.maxAttempts
}

// schedule computes the delay for the upcoming retry. A positive retryAfter
// from the server wins over the computed backoff.
func (s *retryState) schedule(cfg RetryConfig, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		s.delay = min(retryAfter, cfg.MaxDelay)
		return s.delay
	}
	s.delay = Backoff(s.attempt, cfg.BaseDelay, cfg.MaxDelay)
	if cfg.Jitter > 0 {
		s.delay += rand.N(cfg.Jitter)
	}
	return s.delay
}

// DoWithRetry executes a request (built by buildReq) with retries.
// It always reads the full body (even on error) so the underlying TCP connection
// can be reused by http.Transport.
func DoWithRetry(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	cfg RetryConfig,
) (*http.Response, []byte, error) {
	cfg = cfg.withDefaults()
	state := newRetryState(cfg.MaxAttempts)

	var lastErr error
	for state.begin() {
		req, err := buildReq(ctx)
		if err != nil {
			return nil, nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			if !isRetryableNetErr(err) {
				return nil, nil, err
			}
			lastErr = err
			if err := backoff(ctx, state, cfg, 0, err); err != nil {
				return nil, nil, err
			}
			continue
		}

		body, readErr := readAndClose(resp.Body)
		if readErr != nil {
			if !isRetryableNetErr(readErr) {
				return resp, body, readErr
			}
			lastErr = readErr
			if err := backoff(ctx, state, cfg, 0, readErr); err != nil {
				return nil, nil, err
			}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, body, nil
		}

		herr := &HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       body,
		}
		if !isRetryable(herr, cfg) {
			return resp, body, herr
		}
		lastErr = herr
		if err := backoff(ctx, state, cfg, ParseRetryAfter(resp), herr); err != nil {
			return nil, nil, err
		}
	}

	if lastErr != nil {
		return nil, nil, lastErr
	}
	return nil, nil, errors.New("httpx: request failed")
}

// backoff sleeps before the next attempt. When no attempt is left it returns
// nil and lets the loop exit with the last error.
func backoff(ctx context.Context, state *retryState, cfg RetryConfig, retryAfter time.Duration, cause error) error {
	if !state.canRetry() {
		return nil
	}
	d := state.schedule(cfg, retryAfter)
	if cfg.OnRetry != nil {
		cfg.OnRetry(state.attempt, d, cause)
	}
	return cfg.Sleep(ctx, d)
}

func readAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

func isRetryable(herr *HTTPError, cfg RetryConfig) bool {
	if cfg.Retryable != nil {
		return cfg.Retryable(herr)
	}
	return IsRetryableStatus(herr.StatusCode, cfg)
}

// IsRetryableStatus reports whether code is transient under cfg.
func IsRetryableStatus(code int, cfg RetryConfig) bool {
	if cfg.RetryStatuses != nil && cfg.RetryStatuses[code] {
		return true
	}
	if cfg.Retry5xx && code >= 500 && code <= 599 {
		return true
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRetryableNetErr reports whether a transport level error is worth retrying.
func IsRetryableNetErr(err error) bool {
	return isRetryableNetErr(err)
}

func isRetryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	// common transient I/O errors
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection reset") || strings.Contains(msg, "broken pipe") || strings.Contains(msg, "eof") {
		return true
	}
	return false
}

// ParseRetryAfter parses Retry-After header (seconds or HTTP date).
// Returns 0 when header is missing/invalid.
func ParseRetryAfter(resp *http.Response) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			return 0
		}
		return d
	}
	return 0
}

// DoJSON is a convenience wrapper over DoWithRetry that unmarshals JSON.
func DoJSON(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	out any,
	cfg RetryConfig,
) error {
	_, body, err := DoWithRetry(ctx, client, buildReq, cfg)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json parse error: %w body=%s", err, snippet(body, 900))
	}
	return nil
}
