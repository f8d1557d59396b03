package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-row-raytracer/pkg/core"
)

// RowTask represents a row rendering task for the worker pool
type RowTask struct {
	Row int
}

// RowResult contains the result from rendering a row
type RowResult struct {
	Data     RowData
	Counters core.TraceCounters
	WorkerID int
}

// WorkerPool manages parallel row rendering
type WorkerPool struct {
	raytracer   *Raytracer
	taskQueue   chan RowTask
	resultQueue chan RowResult
	numWorkers  int
	group       *errgroup.Group
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// Both queues hold capacity tasks, so neither submitting nor reporting blocks
// as long as at most capacity rows are submitted.
func NewWorkerPool(raytracer *Raytracer, numWorkers, capacity int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		raytracer:   raytracer,
		taskQueue:   make(chan RowTask, capacity),
		resultQueue: make(chan RowResult, capacity),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers. They stop early, between rows, once ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	group, ctx := errgroup.WithContext(ctx)
	wp.group = group

	for id := 0; id < wp.numWorkers; id++ {
		group.Go(func() error {
			return wp.run(ctx, id)
		})
	}
}

// SubmitTask submits a row task to the worker pool
func (wp *WorkerPool) SubmitTask(task RowTask) {
	wp.taskQueue <- task
}

// Close signals that no more tasks will be submitted
func (wp *WorkerPool) Close() {
	close(wp.taskQueue)
}

// Wait blocks until every worker has exited, then closes the result queue.
// It returns the first worker error, which is the context error on cancellation.
func (wp *WorkerPool) Wait() error {
	err := wp.group.Wait()
	close(wp.resultQueue)
	return err
}

// Results returns the result queue; it is closed by Wait
func (wp *WorkerPool) Results() <-chan RowResult {
	return wp.resultQueue
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (wp *WorkerPool) run(ctx context.Context, id int) error {
	logger := wp.raytracer.logger()

	for task := range wp.taskQueue {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Each row gets its own sampler and counters, nothing is shared
		var counters core.TraceCounters
		data := wp.raytracer.RenderRow(task.Row, wp.raytracer.samplerFor(task.Row), &counters)

		logger.Debug("row complete", "row", task.Row, "worker", id, "rays", counters.Rays)

		wp.resultQueue <- RowResult{
			Data:     data,
			Counters: counters,
			WorkerID: id,
		}
	}
	return nil
}
