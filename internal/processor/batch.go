package processor

import (
	"context"
	"sync"
	"time"
)

// Result reports the outcome of one batch item.
type Result[T any] struct {
	Item     T
	Err      error
	Duration time.Duration
}

type job[T any] struct {
	index int
	item  T
}

// ProcessAll runs fn over items with at most concurrency workers. Results keep the
// order of items. Items not started before ctx is done report ctx.Err().
func ProcessAll[T any](ctx context.Context, items []T, concurrency int, fn func(context.Context, T) error) []Result[T] {
	if concurrency <= 0 {
		concurrency = 1
	}

	jobs := make(chan job[T], len(items))
	results := make([]Result[T], len(items))

	go func() {
		for i, it := range items {
			jobs <- job[T]{index: i, item: it}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := Result[T]{Item: j.item}
				if err := ctx.Err(); err != nil {
					res.Err = err
				} else {
					start := time.Now()
					res.Err = fn(ctx, j.item)
					res.Duration = time.Since(start)
				}
				// each worker writes distinct indexes
				results[j.index] = res
			}
		}()
	}
	wg.Wait()

	return results
}
