package transport

import "sync"

// dedupWindow remembers the last N message ids. EventSub may redeliver a
// notification after a reconnect; the window drops those duplicates before
// they reach the pipeline.
type dedupWindow struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	limit int
}

func newDedupWindow(limit int) *dedupWindow {
	return &dedupWindow{
		seen:  make(map[string]struct{}, limit),
		limit: limit,
	}
}

// Seen records id and reports whether it was already in the window.
func (d *dedupWindow) Seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	if len(d.order) > d.limit {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
	return false
}
