package speechactivity

import (
	"golang.org/x/sync/semaphore"
)

// Executor runs background tasks of SpeechActivity instances, typically the event
// dispatcher. Execute must not block; if the task can not be scheduled it returns an
// error and the task is not run.
type Executor interface {
	Execute(task func()) error
}

// GoExecutor runs every task in its own goroutine.
type GoExecutor struct{}

func (GoExecutor) Execute(task func()) error {
	go task()
	return nil
}

// BoundedExecutor runs tasks in goroutines while capping the number of tasks running at the
// same time. It is meant to be shared by all the conferences of a server.
type BoundedExecutor struct {
	sem *semaphore.Weighted
}

// NewBoundedExecutor creates a BoundedExecutor running at most size tasks at once.
func NewBoundedExecutor(size int64) *BoundedExecutor {
	return &BoundedExecutor{
		sem: semaphore.NewWeighted(size),
	}
}

// Execute returns ErrExecutorSaturated when all slots are taken.
func (e *BoundedExecutor) Execute(task func()) error {
	if !e.sem.TryAcquire(1) {
		return ErrExecutorSaturated
	}
	go func() {
		defer e.sem.Release(1)
		task()
	}()
	return nil
}
