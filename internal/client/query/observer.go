package query

import "sync"

// observer delivers snapshots to one callback, one at a time and in version
// order. A snapshot arriving while the callback runs replaces any snapshot
// still waiting, so a slow callback sees the latest state rather than every
// intermediate one. The callback may call back into the Cache.
type observer struct {
	fn func(Snapshot)

	mu       sync.Mutex
	last     uint64
	started  bool
	pending  *Snapshot
	draining bool
	closed   bool
}

func (o *observer) deliver(s Snapshot) {
	o.mu.Lock()
	if o.closed || (o.started && s.version <= o.last) {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.last = s.version
	o.pending = &s
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	for o.pending != nil && !o.closed {
		next := *o.pending
		o.pending = nil
		o.mu.Unlock()
		o.fn(next)
		o.mu.Lock()
	}
	o.pending = nil
	o.draining = false
	o.mu.Unlock()
}

func (o *observer) close() {
	o.mu.Lock()
	o.closed = true
	o.pending = nil
	o.mu.Unlock()
}
