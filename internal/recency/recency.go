package recency

import (
	"time"

	"yt-traffic/internal/domain"
)

// Tier upper bounds in whole days, inclusive.
const (
	TwoWeeksDays    = 14
	FourWeeksDays   = 28
	ThreeMonthsDays = 90
)

// DaysSince returns whole days elapsed, floored. Future dates count as 0.
func DaysSince(publishedAt, now time.Time) int {
	d := now.Sub(publishedAt)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// Classify places a publish date in its recency bucket. A zero date means
// the platform did not give a usable one.
func Classify(publishedAt, now time.Time) domain.Bucket {
	if publishedAt.IsZero() {
		return domain.BucketUnknown
	}
	switch days := DaysSince(publishedAt, now); {
	case days <= TwoWeeksDays:
		return domain.BucketWithin2Weeks
	case days <= FourWeeksDays:
		return domain.Bucket2To4Weeks
	case days <= ThreeMonthsDays:
		return domain.Bucket1To3Months
	default:
		return domain.BucketOlderThan3Months
	}
}

// ClassifyLookup buckets a lookup result; anything without metadata is unknown.
func ClassifyLookup(l domain.VideoLookup, now time.Time) domain.Bucket {
	if l.Status != domain.StatusAvailable || l.Metadata == nil {
		return domain.BucketUnknown
	}
	return Classify(l.Metadata.PublishedAt, now)
}
