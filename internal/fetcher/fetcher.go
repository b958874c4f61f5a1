package fetcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"yt-traffic/internal/domain"
	"yt-traffic/internal/providers"
)

const (
	// MaxBatchSize is the platform limit for ids per call.
	MaxBatchSize = 50

	DefaultBatchInterval = 100 * time.Millisecond
)

type Option func(*Fetcher)

// WithBatchSize sets ids per call, clamped to [1, MaxBatchSize].
func WithBatchSize(n int) Option {
	return func(f *Fetcher) { f.batchSize = clampBatchSize(n) }
}

// WithBatchInterval sets the minimum gap between calls. Zero disables pacing.
func WithBatchInterval(d time.Duration) Option {
	return func(f *Fetcher) {
		if d <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

func WithObserver(o Observer) Option {
	return func(f *Fetcher) {
		if o == nil {
			o = noopObserver{}
		}
		f.observer = o
	}
}

func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// Fetcher resolves video ids through a provider, serving repeats from its Cache.
// A Fetch run is sequential; the Cache may be shared by several Fetchers.
type Fetcher struct {
	provider  providers.MetadataProvider
	cache     *Cache
	batchSize int
	limiter   *rate.Limiter
	observer  Observer
	log       *log.Logger

	mu    sync.Mutex
	fatal error
}

func New(provider providers.MetadataProvider, cache *Cache, opts ...Option) *Fetcher {
	if cache == nil {
		cache = NewCache()
	}
	f := &Fetcher{
		provider:  provider,
		cache:     cache,
		batchSize: MaxBatchSize,
		limiter:   rate.NewLimiter(rate.Every(DefaultBatchInterval), 1),
		observer:  noopObserver{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Cache() *Cache { return f.cache }

// Err returns the fatal error that stopped an earlier run, if any.
func (f *Fetcher) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fatal
}

func (f *Fetcher) setFatal(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fatal == nil {
		f.fatal = err
	}
}

// Fetch returns a lookup for every distinct id in ids.
//
// Transient failures mark only the affected batch as failed. A fatal error
// (bad key, quota, rejected request) or a cancelled ctx marks every id not
// yet resolved as failed and is returned with the partial Result. A fatal
// error sticks: later calls only serve cache hits.
func (f *Fetcher) Fetch(ctx context.Context, ids []domain.VideoID) (*Result, error) {
	uniq := dedupe(ids)
	res := newResult(uniq)
	if len(uniq) == 0 {
		return res, nil
	}

	var misses []domain.VideoID
	for _, id := range uniq {
		if l, ok := f.cache.Get(id); ok {
			res.set(id, l)
			res.Summary.CacheHits++
			continue
		}
		misses = append(misses, id)
	}

	batches := partition(misses, f.batchSize)
	processed := res.Summary.CacheHits
	f.observer.OnProgress(Progress{Processed: processed, Total: len(uniq), Batches: len(batches)})

	if err := f.Err(); err != nil {
		f.failAll(res, misses, err)
		return res.finish(), err
	}

	for i, batch := range batches {
		if err := f.wait(ctx); err != nil {
			f.failAll(res, slices.Concat(batches[i:]...), err)
			return res.finish(), err
		}

		res.Summary.APICalls++
		videos, err := f.provider.ListVideos(ctx, batch)
		switch {
		case err == nil:
			f.apply(res, batch, videos)
		case domain.IsFatal(err):
			f.setFatal(err)
			f.failAll(res, slices.Concat(batches[i:]...), err)
			f.logError("fatal api error, stopping", err, i+1, len(batches))
			return res.finish(), err
		case ctx.Err() != nil:
			f.failAll(res, slices.Concat(batches[i:]...), ctx.Err())
			return res.finish(), ctx.Err()
		default:
			f.failAll(res, batch, err)
			f.logError("batch failed", err, i+1, len(batches))
		}

		processed += len(batch)
		f.observer.OnProgress(Progress{Processed: processed, Total: len(uniq), Batch: i + 1, Batches: len(batches)})
	}

	return res.finish(), nil
}

func (f *Fetcher) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.limiter == nil {
		return nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("fetcher: pacing: %w", err)
	}
	return nil
}

// apply records one successful batch. Requested ids missing from videos
// are unavailable; videos for ids not requested are ignored.
func (f *Fetcher) apply(res *Result, batch []domain.VideoID, videos []domain.VideoMetadata) {
	byID := make(map[domain.VideoID]domain.VideoMetadata, len(videos))
	for _, v := range videos {
		if _, dup := byID[v.VideoID]; !dup {
			byID[v.VideoID] = v
		}
	}
	for _, id := range batch {
		l := domain.Unavailable()
		if m, ok := byID[id]; ok {
			l = domain.Available(m)
		}
		f.cache.Put(id, l)
		res.set(id, l)
	}
}

func (f *Fetcher) failAll(res *Result, ids []domain.VideoID, err error) {
	l := domain.Failed(err)
	for _, id := range ids {
		f.cache.Put(id, l)
		res.set(id, l)
	}
}

func (f *Fetcher) logError(msg string, err error, batch, batches int) {
	if f.log == nil {
		return
	}
	f.log.Warn(msg, "provider", f.provider.Name(), "batch", batch, "batches", batches, "err", err)
}

func clampBatchSize(n int) int {
	return max(1, min(n, MaxBatchSize))
}

func dedupe(ids []domain.VideoID) []domain.VideoID {
	seen := make(map[domain.VideoID]struct{}, len(ids))
	out := make([]domain.VideoID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func partition(ids []domain.VideoID, size int) [][]domain.VideoID {
	if len(ids) == 0 {
		return nil
	}
	size = clampBatchSize(size)
	out := make([][]domain.VideoID, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

// IsFatal reports whether err stopped a run rather than a single batch.
func IsFatal(err error) bool {
	return domain.IsFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
