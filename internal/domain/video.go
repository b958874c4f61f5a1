package domain

import "time"

// VideoID is the platform identifier taken from a "SOURCE_TYPE.{id}" traffic source.
type VideoID string

// TrafficRow is one deduplicated row of the analytics traffic-source export.
// Rows are never mutated after ingestion.
type TrafficRow struct {
	VideoID       VideoID
	TrafficSource string // raw "YT_RELATED.abc" field

	Impressions     int64
	CTR             float64 // percent, 0..100
	Views           int64
	AvgViewDuration time.Duration
	WatchTimeHours  float64

	Line int // 1-based line in the source file
}

// VideoMetadata is what the platform reports for a public video.
type VideoMetadata struct {
	VideoID      VideoID
	Title        string
	ThumbnailURL string
	PublishedAt  time.Time // zero when missing or unparseable
	ViewCount    int64
}

type LookupStatus int

const (
	StatusFailed LookupStatus = iota
	StatusAvailable
	StatusUnavailable
)

func (s LookupStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "failed"
	}
}

// VideoLookup is the outcome of resolving one VideoID.
// Metadata is set only when Available, Err only when Failed.
type VideoLookup struct {
	Status   LookupStatus
	Metadata *VideoMetadata
	Err      error
}

func Available(m VideoMetadata) VideoLookup {
	return VideoLookup{Status: StatusAvailable, Metadata: &m}
}

func Unavailable() VideoLookup {
	return VideoLookup{Status: StatusUnavailable}
}

func Failed(err error) VideoLookup {
	return VideoLookup{Status: StatusFailed, Err: err}
}

// MergedVideo joins a traffic row with its lookup result.
type MergedVideo struct {
	TrafficRow
	Lookup VideoLookup
	Bucket Bucket
}

const watchURLPrefix = "https://www.youtube.com/watch?v="

// DisplayViews prefers the live platform count and falls back to the CSV count.
func (m MergedVideo) DisplayViews() int64 {
	if m.Lookup.Metadata != nil && m.Lookup.Metadata.ViewCount > 0 {
		return m.Lookup.Metadata.ViewCount
	}
	return m.Views
}

func (m MergedVideo) Title() string {
	if m.Lookup.Metadata != nil {
		return m.Lookup.Metadata.Title
	}
	return ""
}

func (m MergedVideo) URL() string {
	return watchURLPrefix + string(m.VideoID)
}
