// Package progresshub merges progress from all concurrent uploads and
// dispatches per-file notifications to subscribers that may appear or
// disappear at any time (spec §4.6). Two layers: a bounded process-wide
// broadcast with oldest-dropped overflow, and a per-file subscriber map
// that replays the latest state to new subscribers.
package progresshub

import (
	"sync"

	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

// broadcastCapacity matches the spec's "approximately 2000" bound.
const broadcastCapacity = 2000

// perFileCapacity bounds each file's own subscriber channel; a slow
// subscriber may miss intermediate values but the cached latest state
// (replayed on Subscribe) guarantees it still observes the terminal one.
const perFileCapacity = 16

type fileEntry struct {
	mu      sync.Mutex
	latest  uploadmodel.ProgressEvent
	hasLast bool
	subs    map[int]chan uploadmodel.ProgressEvent
	next    int
}

// Hub is the process-wide progress fan-out.
type Hub struct {
	broadcast chan uploadmodel.ProgressEvent

	mu    sync.Mutex
	files map[string]*fileEntry

	isCompleted func(fileID string) bool
}

// New creates a Hub. isCompleted lets Subscribe refuse to hand back a
// stream for a file the store already marks finished, per spec §4.6.
func New(isCompleted func(fileID string) bool) *Hub {
	return &Hub{
		broadcast:   make(chan uploadmodel.ProgressEvent, broadcastCapacity),
		files:       make(map[string]*fileEntry),
		isCompleted: isCompleted,
	}
}

// Publish never blocks: on broadcast overflow the oldest queued event is
// dropped to make room, and the per-file entry's subscribers follow the
// same non-blocking discipline.
func (h *Hub) Publish(event uploadmodel.ProgressEvent) {
	select {
	case h.broadcast <- event:
	default:
		select {
		case <-h.broadcast:
		default:
		}
		select {
		case h.broadcast <- event:
		default:
		}
	}

	h.entry(event.FileID).publish(event)
}

// Broadcast returns the process-wide stream of every ProgressEvent, for
// the host to fan out to external sinks (e.g. the demo CLI, an IPC port).
func (h *Hub) Broadcast() <-chan uploadmodel.ProgressEvent {
	return h.broadcast
}

// Subscribe returns a per-file stream, or (nil, false) if the store
// already marks the file complete. A new subscriber immediately receives
// the last-published state, if any.
func (h *Hub) Subscribe(fileID string) (<-chan uploadmodel.ProgressEvent, bool) {
	if h.isCompleted != nil && h.isCompleted(fileID) {
		return nil, false
	}

	entry := h.entry(fileID)
	ch, _ := entry.subscribe()
	return ch, true
}

// Snapshot returns the last-published state for a file, if any.
func (h *Hub) Snapshot(fileID string) (uploadmodel.ProgressEvent, bool) {
	entry := h.entry(fileID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.latest, entry.hasLast
}

func (h *Hub) entry(fileID string) *fileEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.files[fileID]
	if !ok {
		entry = &fileEntry{subs: make(map[int]chan uploadmodel.ProgressEvent)}
		h.files[fileID] = entry
	}
	return entry
}

func (e *fileEntry) publish(event uploadmodel.ProgressEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.latest = event
	e.hasLast = true

	for _, ch := range e.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (e *fileEntry) subscribe() (chan uploadmodel.ProgressEvent, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan uploadmodel.ProgressEvent, perFileCapacity)
	if e.hasLast {
		ch <- e.latest
	}

	id := e.next
	e.next++
	e.subs[id] = ch

	unsubscribe := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if existing, ok := e.subs[id]; ok {
			close(existing)
			delete(e.subs, id)
		}
	}

	return ch, unsubscribe
}
