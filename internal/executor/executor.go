// Package executor runs independent tasks on a bounded pool of workers.
package executor

import (
	"context"
	"sync"

	"github.com/vk/torchgen/internal/ctxlog"
)

// DefaultWorkerCount is used when no positive worker count is configured.
const DefaultWorkerCount = 4

// Task is one unit of work, such as compiling a single document.
type Task struct {
	ID  string
	Run func(ctx context.Context) error
}

// Result is the outcome of a Task.
type Result struct {
	ID  string
	Err error
}

// Executor dispatches tasks to its workers. A failing task does not stop the
// others.
type Executor struct {
	workerCount int
}

// New creates an executor with workerCount concurrent workers.
func New(workerCount int) *Executor {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &Executor{workerCount: workerCount}
}

// Execute runs every task and returns their results in task order. Tasks
// still queued when ctx is cancelled are not started; their result carries
// the context error.
func (e *Executor) Execute(ctx context.Context, tasks []Task) []Result {
	logger := ctxlog.FromContext(ctx)
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	workers := e.workerCount
	if workers > len(tasks) {
		workers = len(tasks)
	}
	logger.Debug("Executor starting run.", "tasks", len(tasks), "workers", workers)

	readyChan := make(chan int)
	var wg sync.WaitGroup
	for id := 1; id <= workers; id++ {
		wg.Add(1)
		go e.worker(ctx, readyChan, tasks, results, id, &wg)
	}

	for i := range tasks {
		readyChan <- i
	}
	close(readyChan)
	wg.Wait()

	logger.Debug("Executor finished run.")
	return results
}
