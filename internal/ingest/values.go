package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var errOutOfRange = errors.New("out of range")

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// parseCount reads a non-negative integer. Blank is 0; "1,234" and "12.0" are accepted.
func parseCount(s string) (int64, error) {
	s = cleanNumber(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		n = int64(math.Round(f))
	}
	if n < 0 {
		return 0, errOutOfRange
	}
	return n, nil
}

func parseFloat(s string, lo, hi float64) (float64, error) {
	s = cleanNumber(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f < lo || f > hi {
		return 0, errOutOfRange
	}
	return f, nil
}

// parseDuration accepts H:MM:SS, M:SS or plain seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !strings.Contains(s, ":") {
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("not a duration: %q", s)
		}
		if secs < 0 {
			return 0, errOutOfRange
		}
		return time.Duration(secs * float64(time.Second)), nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("not a duration: %q", s)
	}
	var total int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("not a duration: %q", s)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("not a duration: %q", s)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}
