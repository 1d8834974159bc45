package worker

import (
	"context"
	"sync"
	"time"
)

// Defaults for the external-lookup backpressure policy
const (
	DefaultBatchSize  = 5
	DefaultBatchDelay = time.Second
)

// Batcher runs jobs in fixed-size batches with a pause between batches.
// Jobs within a batch run concurrently; batches never overlap. Bounded
// fan-out toward the external API is the contract here, not a performance
// tunable: unbounded concurrent resolution is disallowed.
type Batcher struct {
	size  int
	delay time.Duration
}

// NewBatcher creates a batch scheduler
func NewBatcher(size int, delay time.Duration) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if delay < 0 {
		delay = DefaultBatchDelay
	}
	return &Batcher{size: size, delay: delay}
}

// Run executes fn for indices 0..n-1 in batches. It returns early with the
// context error when canceled between batches; the current batch always
// runs to completion first.
func (b *Batcher) Run(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	for start := 0; start < n; start += b.size {
		if start > 0 && b.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.delay):
			}
		}

		end := min(start+b.size, n)
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				fn(ctx, i)
			}(i)
		}
		wg.Wait()

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}
