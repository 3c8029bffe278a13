package main

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// outcome is the result of running one command over one file
type outcome[T any] struct {
	Path   string
	Result T
	Err    error
}

// forEachFile runs fn over paths with at most jobs files in flight. Results
// keep the order of paths; a failing file does not stop the others.
func forEachFile[T any](ctx context.Context, paths []string, jobs int, fn func(context.Context, string) (T, error)) []outcome[T] {
	if jobs < 1 {
		jobs = 1
	}
	outcomes := make([]outcome[T], len(paths))

	p := pool.New().WithContext(ctx).WithMaxGoroutines(jobs)
	for i, path := range paths {
		p.Go(func(ctx context.Context) error {
			result, err := fn(ctx, path)
			outcomes[i] = outcome[T]{Path: path, Result: result, Err: err}
			return nil
		})
	}
	_ = p.Wait()
	return outcomes
}

// failures counts the outcomes that carry an error
func failures[T any](outcomes []outcome[T]) error {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d file(s) failed", n, len(outcomes))
}
