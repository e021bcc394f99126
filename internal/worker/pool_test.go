package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	id  int
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	id        int
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
	running   *int32
	peak      *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.running != nil {
		n := atomic.AddInt32(j.running, 1)
		for {
			p := atomic.LoadInt32(j.peak)
			if n <= p || atomic.CompareAndSwapInt32(j.peak, p, n) {
				break
			}
		}
		defer atomic.AddInt32(j.running, -1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{id: j.id, err: errors.New("job error")}
	}
	return &mockResult{id: j.id}
}

func TestNewPool(t *testing.T) {
	if p := NewPool(5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(-1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_PreservesOrder(t *testing.T) {
	var executed int32
	jobs := make([]Job, 20)
	for i := range jobs {
		// Later jobs finish first
		jobs[i] = &mockJob{id: i, duration: time.Duration(20-i) * time.Millisecond, executed: &executed}
	}

	var order []int
	NewPool(5).Run(context.Background(), jobs, func(i int, r Result) {
		if r.(*mockResult).id != i {
			t.Errorf("index %d got result of job %d", i, r.(*mockResult).id)
		}
		order = append(order, i)
	})

	if executed != 20 {
		t.Errorf("expected 20 executions, got %d", executed)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("emit order %v", order)
		}
	}
}

func TestPool_Concurrency(t *testing.T) {
	var running, peak int32
	jobs := make([]Job, 12)
	for i := range jobs {
		jobs[i] = &mockJob{id: i, duration: 20 * time.Millisecond, running: &running, peak: &peak}
	}

	NewPool(3).Collect(context.Background(), jobs)

	if peak > 3 {
		t.Errorf("peak concurrency %d exceeds 3 workers", peak)
	}
	if peak < 2 {
		t.Errorf("expected parallel execution, peak %d", peak)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	jobs := []Job{
		&mockJob{id: 0},
		&mockJob{id: 1, shouldErr: true},
		&mockJob{id: 2},
	}
	results := NewPool(2).Collect(context.Background(), jobs)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].GetError() == nil || results[0].GetError() != nil {
		t.Errorf("errors not attached to the right results")
	}
}

func TestPool_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var executed int32
	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = &mockJob{id: i, duration: 10 * time.Millisecond, executed: &executed}
	}

	go func() {
		time.Sleep(25 * time.Millisecond)
		cancel()
	}()

	results := NewPool(1).Collect(ctx, jobs)
	if len(results) == len(jobs) {
		t.Error("expected cancellation to stop dispatch")
	}
	if int32(len(results)) != atomic.LoadInt32(&executed) {
		t.Errorf("emitted %d results for %d executions", len(results), executed)
	}
	for i, r := range results {
		if r.(*mockResult).id != i {
			t.Fatalf("results not a prefix in order")
		}
	}
}

func TestPool_Empty(t *testing.T) {
	called := false
	NewPool(2).Run(context.Background(), nil, func(int, Result) { called = true })
	if called {
		t.Error("emit called for empty job list")
	}
}
