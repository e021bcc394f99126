package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers and hands results back in
// submission order, so a single consumer can write them sequentially
type Pool struct {
	workers int
}

// NewPool creates a pool with the given number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Run executes jobs and calls emit once per job, in job order, from the
// calling goroutine. Cancelling ctx stops dispatching; jobs already
// running finish and are still emitted in order.
func (p *Pool) Run(ctx context.Context, jobs []Job, emit func(index int, r Result)) {
	if len(jobs) == 0 {
		return
	}

	queue := make(chan indexedJob)
	results := make(chan indexedResult, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ij := range queue {
				results <- indexedResult{index: ij.index, result: ij.job.Execute(ctx)}
			}
		}()
	}

	go func() {
		defer close(queue)
		for i, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case queue <- indexedJob{index: i, job: job}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Reorder buffer: hold out-of-order results until their turn
	pending := make(map[int]Result)
	next := 0
	for ir := range results {
		pending[ir.index] = ir.result
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			emit(next, r)
			next++
		}
	}
}

// Collect runs jobs and returns results in job order. Jobs never
// dispatched because ctx was cancelled have no entry.
func (p *Pool) Collect(ctx context.Context, jobs []Job) []Result {
	out := make([]Result, 0, len(jobs))
	p.Run(ctx, jobs, func(_ int, r Result) {
		out = append(out, r)
	})
	return out
}
