package service

import (
	"github.com/sourcegraph/conc/pool"
)

// fanOut runs fn for every task concurrently and waits for all of them to settle.
// It returns the errors of the failed tasks, never stopping early.
func fanOut[T any](tasks []T, maxGoroutines int, fn func(T) error) []error {
	if len(tasks) == 0 {
		return nil
	}

	p := pool.NewWithResults[error]()
	if maxGoroutines > 0 {
		p = p.WithMaxGoroutines(maxGoroutines)
	}

	for _, task := range tasks {
		p.Go(func() error {
			return fn(task)
		})
	}

	var errs []error
	for _, err := range p.Wait() {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
