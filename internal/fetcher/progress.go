package fetcher

// Progress is emitted after the cache pass (Batch 0) and after every batch.
type Progress struct {
	Processed int // ids resolved so far, cache hits included
	Total     int // distinct ids requested
	Batch     int // 1-based index of the batch just finished
	Batches   int
}

func (p Progress) Done() bool { return p.Processed >= p.Total }

// Observer accepts progress events.
type Observer interface {
	OnProgress(Progress)
}

type ObserverFunc func(Progress)

func (f ObserverFunc) OnProgress(p Progress) { f(p) }

type noopObserver struct{}

func (noopObserver) OnProgress(Progress) {}
