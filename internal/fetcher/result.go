package fetcher

import (
	"fmt"
	"slices"

	"yt-traffic/internal/domain"
)

type Summary struct {
	Requested   int
	CacheHits   int
	Available   int
	Unavailable int
	Failed      int
	APICalls    int
}

func (s Summary) String() string {
	return fmt.Sprintf("requested=%d cached=%d available=%d unavailable=%d failed=%d calls=%d",
		s.Requested, s.CacheHits, s.Available, s.Unavailable, s.Failed, s.APICalls)
}

// Result holds one lookup for every distinct id passed to Fetch.
type Result struct {
	Lookups map[domain.VideoID]domain.VideoLookup
	Summary Summary

	order []domain.VideoID
}

func newResult(ids []domain.VideoID) *Result {
	return &Result{
		Lookups: make(map[domain.VideoID]domain.VideoLookup, len(ids)),
		Summary: Summary{Requested: len(ids)},
		order:   ids,
	}
}

func (r *Result) set(id domain.VideoID, l domain.VideoLookup) {
	r.Lookups[id] = l
}

func (r *Result) finish() *Result {
	r.Summary.Available, r.Summary.Unavailable, r.Summary.Failed = 0, 0, 0
	for _, id := range r.order {
		switch r.Lookups[id].Status {
		case domain.StatusAvailable:
			r.Summary.Available++
		case domain.StatusUnavailable:
			r.Summary.Unavailable++
		default:
			r.Summary.Failed++
		}
	}
	return r
}

// IDs returns the requested ids in first-seen order.
func (r *Result) IDs() []domain.VideoID {
	return slices.Clone(r.order)
}

func (r *Result) FailedIDs() []domain.VideoID {
	var out []domain.VideoID
	for id, l := range r.Lookups {
		if l.Status == domain.StatusFailed {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
