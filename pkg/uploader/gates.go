package uploader

import "sync"

// gates holds the three orthogonal boolean conditions the Uploader
// consults before performing work (spec §4.5).
type gates struct {
	mu                   sync.Mutex
	networkReachable     bool
	storageWriteEnabled  bool
	quotaExceeded        bool
}

func newGates() *gates {
	return &gates{
		networkReachable:    true,
		storageWriteEnabled: true,
		quotaExceeded:       false,
	}
}

// forbidsProgress reports whether any gate currently blocks the Uploader.
func (g *gates) forbidsProgress() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.networkReachable || !g.storageWriteEnabled || g.quotaExceeded
}

func (g *gates) setNetworkReachable(reachable bool) {
	g.mu.Lock()
	g.networkReachable = reachable
	g.mu.Unlock()
}

func (g *gates) setStorageWriteEnabled(enabled bool) {
	g.mu.Lock()
	g.storageWriteEnabled = enabled
	g.mu.Unlock()
}

// latchQuotaExceeded is set by the ErrorClassifier on a quota-exceeded
// error and cleared only when the host observes a quota-refresh event.
func (g *gates) latchQuotaExceeded() {
	g.mu.Lock()
	g.quotaExceeded = true
	g.mu.Unlock()
}

func (g *gates) clearQuotaExceeded() {
	g.mu.Lock()
	g.quotaExceeded = false
	g.mu.Unlock()
}

func (g *gates) isQuotaExceeded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.quotaExceeded
}
