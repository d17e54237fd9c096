package executor

import (
	"context"
	"sync"

	"github.com/vk/torchgen/internal/ctxlog"
)

// worker is the core processing loop for a single concurrent worker. Each
// index is owned by exactly one worker, so results needs no lock.
func (e *Executor) worker(ctx context.Context, readyChan <-chan int, tasks []Task, results []Result, workerID int, wg *sync.WaitGroup) {
	defer wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for i := range readyChan {
		t := tasks[i]
		workerLogger := logger.With("workerID", workerID, "taskID", t.ID)
		results[i].ID = t.ID

		if err := ctx.Err(); err != nil {
			workerLogger.Debug("Context done, skipping task.")
			results[i].Err = err
			continue
		}

		workerLogger.Debug("Worker picked up task for execution.")
		if err := t.Run(ctx); err != nil {
			workerLogger.Debug("Task failed.", "error", err)
			results[i].Err = err
			continue
		}
		workerLogger.Debug("Task succeeded.")
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
