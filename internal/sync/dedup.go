package sync

import (
	"strings"
	"sync"
	"time"

	"boardroom/internal/domain"
)

// dedupKey identifies a broadcast delivery by what it describes, not by
// transport envelope, so redelivered copies of the same event collapse to one key.
func dedupKey(ev domain.ChangeEvent) string {
	parts := []string{string(ev.Type), ev.ItemID, strings.Join(ev.ItemIDs, ","), ev.Timestamp.UTC().Format(time.RFC3339Nano)}
	return strings.Join(parts, "|")
}

// dedupWindow remembers recently observed keys for a bounded time. The
// transport is at-least-once and unordered, so the same event may arrive more
// than once; observing a key twice within the window marks the second delivery
// as a duplicate. Expired keys are evicted opportunistically on each observe.
type dedupWindow struct {
	ttl  time.Duration
	mu   sync.Mutex
	seen map[string]time.Time
}

func newDedupWindow(ttl time.Duration) *dedupWindow {
	return &dedupWindow{
		ttl:  ttl,
		seen: make(map[string]time.Time),
	}
}

// observe records key at now and reports whether it is the first observation
// within the window.
func (w *dedupWindow) observe(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for k, t := range w.seen {
		if now.Sub(t) > w.ttl {
			delete(w.seen, k)
		}
	}
	if t, ok := w.seen[key]; ok && now.Sub(t) <= w.ttl {
		return false
	}
	w.seen[key] = now
	return true
}
