package taskqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

func identity(fileID string) uploadmodel.RecordIdentity {
	return uploadmodel.RecordIdentity{WorkspaceID: "ws", ParentDir: "/d", FileID: fileID}
}

func TestImmediateDrainsBeforeBackground(t *testing.T) {
	q := New()
	q.Enqueue(uploadmodel.NewBackgroundTask(identity("bg-1")))
	q.Enqueue(uploadmodel.NewImmediateTask(&uploadmodel.UploadFileRecord{FileID: "im-1"}))

	task, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, uploadmodel.TaskImmediate, task.Class)
	assert.Equal(t, "im-1", task.Record.FileID)

	task, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, uploadmodel.TaskBackground, task.Class)
}

func TestFIFOWithinClass(t *testing.T) {
	q := New()
	q.Enqueue(uploadmodel.NewBackgroundTask(identity("first")))
	q.Enqueue(uploadmodel.NewBackgroundTask(identity("second")))

	task, _ := q.Dequeue()
	assert.Equal(t, "first", task.Identity.FileID)
	task, _ = q.Dequeue()
	assert.Equal(t, "second", task.Identity.FileID)
}

func TestDequeueEmptyReturnsFalse(t *testing.T) {
	q := New()
	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestAwaitSignalUnblocksOnResume(t *testing.T) {
	q := New()
	q.Pause()

	done := make(chan struct{})
	go func() {
		q.AwaitSignal(context.Background())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("AwaitSignal returned before Resume")
	case <-time.After(50 * time.Millisecond):
	}

	q.Resume()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitSignal did not unblock after Resume")
	}
}

func TestAwaitSignalUnblocksOnContextCancel(t *testing.T) {
	q := New()
	q.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.AwaitSignal(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitSignal did not unblock after context cancel")
	}
}

func TestEnqueueBatch(t *testing.T) {
	q := New()
	q.EnqueueBatch([]uploadmodel.UploadTask{
		uploadmodel.NewRecoveredTask(identity("r1")),
		uploadmodel.NewRecoveredTask(identity("r2")),
	})
	assert.Equal(t, 2, q.Len())
}
