// Package queue serializes the expensive compression work: a bounded FIFO
// with exactly one consumer, so at most one encoder runs at a time no matter
// how many requests the HTTP layer is juggling. A full queue rejects
// immediately instead of blocking.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull   = errors.New("compression queue is full")
	ErrQueueClosed = errors.New("compression queue is closed")
)

type Queue struct {
	jobs   chan *Job
	log    zerolog.Logger
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// New builds the queue and starts its single worker. The worker runs tasks
// strictly in submission order until ctx is cancelled or Close is called.
func New(ctx context.Context, capacity int, log zerolog.Logger) *Queue {
	q := &Queue{
		jobs: make(chan *Job, capacity),
		log:  log,
	}
	q.wg.Add(1)
	go q.worker(ctx)
	return q
}

// Submit enqueues a task without blocking. The returned channel delivers
// exactly one Result. A full queue fails immediately with ErrQueueFull; a
// closed queue with ErrQueueClosed. In-flight handlers may still call Submit
// while the server is shutting down, so this must never send on the closed
// channel.
func (q *Queue) Submit(task Task) (<-chan Result, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}

	job := &Job{task: task, done: make(chan Result, 1)}
	select {
	case q.jobs <- job:
		return job.done, nil
	default:
		return nil, ErrQueueFull
	}
}

// Close stops accepting jobs and waits for the pending ones to drain. Safe to
// call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for job := range q.jobs {
		select {
		case <-ctx.Done():
			job.done <- Result{Err: ctx.Err()}
			continue
		default:
		}

		res, err := job.task(ctx)
		if err != nil {
			q.log.Error().Err(err).Msg("compression job failed")
		}
		job.done <- Result{Res: res, Err: err}
	}
}
