package report

import (
	"errors"
	"slices"
	"time"

	"yt-traffic/internal/domain"
	"yt-traffic/internal/recency"
)

// ErrNotFetched marks a row whose id never got a lookup.
var ErrNotFetched = errors.New("report: video was not fetched")

// Merge joins every traffic row with its lookup, in row order.
// Rows without a lookup are treated as failed.
func Merge(rows []domain.TrafficRow, lookups map[domain.VideoID]domain.VideoLookup, now time.Time) []domain.MergedVideo {
	out := make([]domain.MergedVideo, 0, len(rows))
	for _, row := range rows {
		l, ok := lookups[row.VideoID]
		if !ok {
			l = domain.Failed(ErrNotFetched)
		}
		out = append(out, domain.MergedVideo{
			TrafficRow: row,
			Lookup:     l,
			Bucket:     recency.ClassifyLookup(l, now),
		})
	}
	return out
}

type Group struct {
	Bucket domain.Bucket
	Videos []domain.MergedVideo
}

// GroupByBucket returns one group per bucket in display order, each sorted
// by display views, highest first. Equal views keep merge order.
func GroupByBucket(videos []domain.MergedVideo) []Group {
	byBucket := make(map[domain.Bucket][]domain.MergedVideo, len(domain.Buckets))
	for _, v := range videos {
		byBucket[v.Bucket] = append(byBucket[v.Bucket], v)
	}

	groups := make([]Group, 0, len(domain.Buckets))
	for _, b := range domain.Buckets {
		vs := byBucket[b]
		slices.SortStableFunc(vs, func(a, b domain.MergedVideo) int {
			av, bv := a.DisplayViews(), b.DisplayViews()
			switch {
			case av > bv:
				return -1
			case av < bv:
				return 1
			}
			return 0
		})
		groups = append(groups, Group{Bucket: b, Videos: vs})
	}
	return groups
}

type Summary struct {
	Videos      int
	Available   int
	Unavailable int
	Failed      int
	TotalViews  int64
	ByBucket    map[domain.Bucket]int
}

func Summarize(videos []domain.MergedVideo) Summary {
	s := Summary{Videos: len(videos), ByBucket: make(map[domain.Bucket]int, len(domain.Buckets))}
	for _, v := range videos {
		s.ByBucket[v.Bucket]++
		s.TotalViews += v.DisplayViews()
		switch v.Lookup.Status {
		case domain.StatusAvailable:
			s.Available++
		case domain.StatusUnavailable:
			s.Unavailable++
		default:
			s.Failed++
		}
	}
	return s
}
