package youtube

import (
	"context"
	"sort"
	"strings"
	"time"

	"yt-traffic/internal/domain"
)

// Provider adapts the YouTube client into the internal providers.MetadataProvider interface.
type Provider struct {
	C *Client
}

func (p Provider) Name() string { return "youtube" }

func (p Provider) ListVideos(ctx context.Context, ids []domain.VideoID) ([]domain.VideoMetadata, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	resp, err := p.C.ListVideos(ctx, raw)
	if err != nil {
		return nil, err
	}

	out := make([]domain.VideoMetadata, 0, len(resp.Items))
	for _, v := range resp.Items {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			continue
		}
		out = append(out, domain.VideoMetadata{
			VideoID:      domain.VideoID(id),
			Title:        v.Snippet.Title,
			ThumbnailURL: pickThumbnailURL(v.Snippet.Thumbnails),
			PublishedAt:  parsePublishedAt(v.Snippet.PublishedAt),
			ViewCount:    int64(v.Statistics.ViewCount),
		})
	}
	return out, nil
}

var thumbnailPreference = []string{"medium", "high", "default", "standard", "maxres"}

func pickThumbnailURL(thumbs map[string]Thumbnail) string {
	for _, k := range thumbnailPreference {
		if t, ok := thumbs[k]; ok && t.URL != "" {
			return t.URL
		}
	}
	keys := make([]string, 0, len(thumbs))
	for k := range thumbs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if u := thumbs[k].URL; u != "" {
			return u
		}
	}
	return ""
}

// parsePublishedAt returns the zero time when the value is missing or garbled.
func parsePublishedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
