package concurrent

import (
	"context"
	"sync"
)

type JobFunc[T any, G any] func(job T) G

// WorkerPool runs JobFunc over queued jobs on a fixed number of goroutines.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- jobFunc(job)
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

// Wait blocks until every worker exits, then closes the result channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}

// Close stops accepting jobs. workers drain the queue and exit.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

type indexed[G any] struct {
	pos int
	val G
}

// Map applies fn to every job on numWorkers goroutines and returns results in job order.
// jobs not started before ctx is done are skipped and ctx.Err() is returned.
func Map[T any, G any](ctx context.Context, numWorkers int, jobs []T, fn func(T) G) ([]G, error) {
	type posJob struct {
		pos int
		job T
	}

	wp := NewWorkerPool[posJob, indexed[G]](numWorkers, len(jobs))
	wp.Start(func(j posJob) indexed[G] {
		return indexed[G]{pos: j.pos, val: fn(j.job)}
	})

	var err error
	for i, job := range jobs {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		wp.AddJob(posJob{pos: i, job: job})
	}
	wp.Close()
	wp.Wait()

	out := make([]G, len(jobs))
	for res := range wp.CollectResults() {
		out[res.pos] = res.val
	}
	return out, err
}
