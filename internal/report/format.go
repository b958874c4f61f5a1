package report

import (
	"fmt"
	"strconv"
	"time"
)

// FormatNumber shortens large counts: 1500 -> "1.5K", 2300000 -> "2.3M".
func FormatNumber(n int64) string {
	v := float64(n)
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	}
	return strconv.FormatInt(n, 10)
}

// FormatDuration renders M:SS, or H:MM:SS from one hour up. Zero is "0:00".
func FormatDuration(d time.Duration) string {
	secs := int64(d.Round(time.Second) / time.Second)
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
