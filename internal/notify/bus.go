// Package notify implements the engine's outward notification channel,
// replacing the host application's own IPC bridge (an isolate-port
// mechanism in the original implementation, which has no Go equivalent)
// with a small buffered-channel broadcast, the same shape ProgressHub
// uses for its own fan-out layer.
package notify

import "sync"

// Kind distinguishes the two notifications the ErrorClassifier emits.
type Kind int

const (
	FileStorageLimitExceeded Kind = iota
	SingleFileLimitExceeded
)

// Notification carries the original error alongside the notification kind.
type Notification struct {
	Kind  Kind
	Err   error
	Files uploadIdentity
}

type uploadIdentity struct {
	WorkspaceID string
	ParentDir   string
	FileID      string
}

// NewIdentity builds the identity payload carried on a Notification.
func NewIdentity(workspaceID, parentDir, fileID string) uploadIdentity {
	return uploadIdentity{WorkspaceID: workspaceID, ParentDir: parentDir, FileID: fileID}
}

// Bus is a process-wide pub/sub for outward notifications. Publish never
// blocks: each subscriber has its own bounded channel, and a full
// subscriber simply misses the notification rather than stalling the
// publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Notification
	next int
}

// New creates an empty notification bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Notification)}
}

// Subscribe registers a new listener with the given channel capacity and
// returns the channel plus an unsubscribe function.
func (b *Bus) Subscribe(capacity int) (<-chan Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Notification, capacity)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[id]; ok {
			close(existing)
			delete(b.subs, id)
		}
	}

	return ch, unsubscribe
}

// Publish fans a notification out to every current subscriber without
// blocking on a slow or full one.
func (b *Bus) Publish(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
}
