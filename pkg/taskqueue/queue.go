// Package taskqueue implements an in-memory queue of UploadTasks (it has
// no capacity limit),
// ordered so Immediate (foreground) tasks always drain before
// Background/Recovered ones, with a wake signal the Uploader watches
// between dequeues.
package taskqueue

import (
	"container/list"
	"context"
	"sync"

	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

// Signal is the queue's wake/pause state, watched by the Uploader.
type Signal int

const (
	// Proceed means the Uploader may dequeue and run tasks.
	Proceed Signal = iota
	// Stop means the Uploader should suspend until the signal changes.
	Stop
)

// Queue is safe for concurrent enqueue/dequeue from multiple goroutines.
type Queue struct {
	mu         sync.Mutex
	cond       *sync.Cond
	immediate  *list.List
	background *list.List

	signal Signal
}

// New creates an empty queue, starting in the Proceed state.
func New() *Queue {
	q := &Queue{
		immediate:  list.New(),
		background: list.New(),
		signal:     Proceed,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds a single task, placing it at the back of its class's
// sub-queue, and flips the signal to Proceed.
func (q *Queue) Enqueue(task uploadmodel.UploadTask) {
	q.mu.Lock()
	q.pushLocked(task)
	q.signal = Proceed
	q.mu.Unlock()
	q.cond.Broadcast()
}

// EnqueueBatch adds many tasks atomically with respect to dequeuers.
func (q *Queue) EnqueueBatch(tasks []uploadmodel.UploadTask) {
	if len(tasks) == 0 {
		return
	}
	q.mu.Lock()
	for _, t := range tasks {
		q.pushLocked(t)
	}
	q.signal = Proceed
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *Queue) pushLocked(task uploadmodel.UploadTask) {
	if task.Class == uploadmodel.TaskImmediate {
		q.immediate.PushBack(task)
	} else {
		q.background.PushBack(task)
	}
}

// Dequeue is a non-blocking peek+pop: Immediate tasks are returned before
// any Background/Recovered task regardless of arrival order; within a
// class, FIFO. Returns (task, true) or (zero, false) if empty.
func (q *Queue) Dequeue() (uploadmodel.UploadTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if front := q.immediate.Front(); front != nil {
		q.immediate.Remove(front)
		return front.Value.(uploadmodel.UploadTask), true
	}
	if front := q.background.Front(); front != nil {
		q.background.Remove(front)
		return front.Value.(uploadmodel.UploadTask), true
	}
	return uploadmodel.UploadTask{}, false
}

// Pause flips the wake signal to Stop; the Uploader observes this on its
// next AwaitSignal call and suspends until Resume or a new enqueue.
func (q *Queue) Pause() {
	q.mu.Lock()
	q.signal = Stop
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Resume flips the wake signal back to Proceed and wakes any waiter.
func (q *Queue) Resume() {
	q.mu.Lock()
	q.signal = Proceed
	q.mu.Unlock()
	q.cond.Broadcast()
}

// AwaitSignal suspends until ctx is cancelled or, if called while the
// signal is Stop, until the signal changes back to Proceed (via Resume or
// an enqueue); if called while the signal is Proceed, it suspends until a
// task is pending. Enqueue/EnqueueBatch/Resume all broadcast on the same
// condition variable, so a waiter never misses a wakeup.
func (q *Queue) AwaitSignal(ctx context.Context) {
	stopCh := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			q.cond.Broadcast()
		case <-stopCh:
		}
	}()
	defer close(stopCh)

	q.mu.Lock()
	defer q.mu.Unlock()
	enteredStopped := q.signal == Stop
	for (q.signal == Stop || (!enteredStopped && q.lenLocked() == 0)) && ctx.Err() == nil {
		q.cond.Wait()
	}
}

func (q *Queue) lenLocked() int {
	return q.immediate.Len() + q.background.Len()
}

// Len reports the total number of queued tasks across both classes,
// useful for metrics and tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}
