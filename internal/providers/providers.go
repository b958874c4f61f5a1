package providers

import (
	"context"
	"yt-traffic/internal/domain"
)

// MetadataProvider resolves video metadata in batches.
// Ids the platform does not return are treated as unavailable by the caller.
type MetadataProvider interface {
	Name() string
	ListVideos(ctx context.Context, ids []domain.VideoID) ([]domain.VideoMetadata, error)
}
