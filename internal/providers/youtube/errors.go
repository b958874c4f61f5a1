package youtube

import (
	"encoding/json"
	"fmt"
	"net/http"

	"yt-traffic/internal/domain"
	"yt-traffic/internal/httpx"
)

type ErrorKind int

const (
	KindTransient ErrorKind = iota
	KindQuota
	KindInvalidKey
	KindBadRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindInvalidKey:
		return "invalid_key"
	case KindBadRequest:
		return "bad_request"
	default:
		return "transient"
	}
}

// APIError is a classified non-2xx response from the Data API.
// Fatal kinds unwrap to the matching domain sentinel.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube: %s (status=%d reason=%s): %s", e.Kind, e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube: %s (status=%d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindQuota:
		return domain.ErrQuotaExceeded
	case KindInvalidKey:
		return domain.ErrInvalidAPIKey
	case KindBadRequest:
		return domain.ErrBadRequest
	default:
		return nil
	}
}

func (e *APIError) Temporary() bool { return e.Kind == KindTransient }

var (
	quotaReasons = map[string]bool{
		"quotaExceeded":      true,
		"dailyLimitExceeded": true,
	}
	keyReasons = map[string]bool{
		"keyInvalid":          true,
		"keyExpired":          true,
		"accessNotConfigured": true,
		"forbidden":           true,
		"ipRefererBlocked":    true,
		"API_KEY_INVALID":     true,
		"API_KEY_EXPIRED":     true,
	}
	rateReasons = map[string]bool{
		"rateLimitExceeded":     true,
		"userRateLimitExceeded": true,
		"backendError":          true,
	}
)

// Classify maps an HTTP error to an APIError. The error reason in the body
// wins over the status code, since the API reports quota and rate limits as 403.
func Classify(herr *httpx.HTTPError) *APIError {
	out := &APIError{Status: herr.StatusCode}

	var body errorResponse
	var reasons []string
	if err := json.Unmarshal(herr.Body, &body); err == nil {
		out.Message = body.Error.Message
		for _, e := range body.Error.Errors {
			if e.Reason != "" {
				reasons = append(reasons, e.Reason)
			}
		}
		// newer responses carry the specific cause in details, e.g. API_KEY_INVALID
		for _, d := range body.Error.Details {
			if d.Reason != "" {
				reasons = append(reasons, d.Reason)
			}
		}
	}
	if out.Message == "" {
		out.Message = http.StatusText(herr.StatusCode)
	}

	for _, r := range reasons {
		switch {
		case quotaReasons[r]:
			out.Kind, out.Reason = KindQuota, r
			return out
		case keyReasons[r]:
			out.Kind, out.Reason = KindInvalidKey, r
			return out
		case rateReasons[r]:
			out.Kind, out.Reason = KindTransient, r
			return out
		}
	}
	if len(reasons) > 0 {
		out.Reason = reasons[0]
	}

	code := herr.StatusCode
	switch {
	case code == http.StatusUnauthorized:
		out.Kind = KindInvalidKey
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout, code >= 500:
		out.Kind = KindTransient
	default:
		out.Kind = KindBadRequest
	}
	return out
}

func isTransient(herr *httpx.HTTPError) bool {
	return Classify(herr).Kind == KindTransient
}
