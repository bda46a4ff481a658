// Package query implements the client-side query cache: deduplicated,
// generation-tracked reads of remote resources with change notifications.
//
// Every cached entry carries a generation counter. Invalidation bumps it, and
// a fetch result is only stored when it belongs to the entry's current
// generation, so a response computed before an invalidation can never make
// the entry look fresh again.
package query

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/catalogkeeper/internal/logging"
	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the current value of a resource.
type FetchFunc func(ctx context.Context) (any, error)

// Snapshot is the untyped state of a cache entry.
type Snapshot struct {
	Value     any
	HasValue  bool
	Status    Status
	Fetching  bool
	Stale     bool
	Err       error
	UpdatedAt time.Time

	version uint64
}

type entry struct {
	key   Key
	fetch FetchFunc

	value     any
	hasValue  bool
	err       error
	status    Status
	stale     bool
	updatedAt time.Time

	gen       uint64
	seq       uint64
	fetching  bool
	fetchGen  uint64
	run       func() (any, error)
	cancel    context.CancelFunc
	version   uint64
	used      uint64
	observers []*observer
	evict     bool
}

func (e *entry) fresh() bool {
	return e.hasValue && !e.stale && e.err == nil
}

func (e *entry) call() string {
	return e.key.String() + "#" + strconv.FormatUint(e.seq, 10)
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Value:     e.value,
		HasValue:  e.hasValue,
		Status:    e.status,
		Fetching:  e.fetching,
		Stale:     e.stale,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		version:   e.version,
	}
}

// DefaultIdleLimit is the number of unobserved entries a Cache keeps unless
// WithIdleLimit says otherwise.
const DefaultIdleLimit = 128

// Cache holds one entry per Key. The zero value is not usable; call NewCache.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	group     singleflight.Group
	log       logging.Logger
	now       func() time.Time
	clock     uint64
	idleLimit int
}

type Option func(*Cache)

// WithIdleLimit caps the number of entries kept without observers. When the
// cap is exceeded the least recently read ones are dropped. n <= 0 disables
// the cap.
func WithIdleLimit(n int) Option {
	return func(c *Cache) { c.idleLimit = n }
}

func NewCache(log logging.Logger, opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[string]*entry),
		log:       logging.OrNop(log),
		now:       time.Now,
		idleLimit: DefaultIdleLimit,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// entryLocked returns the entry for key, creating it when missing. A non-nil
// fetch replaces the stored one so the latest loader is used on refetch.
func (c *Cache) entryLocked(key Key, fetch FetchFunc) *entry {
	e, ok := c.entries[key.String()]
	if !ok {
		e = &entry{key: key, stale: true}
		c.entries[key.String()] = e
	}
	if fetch != nil {
		e.fetch = fetch
	}
	c.clock++
	e.used = c.clock
	return e
}

// changedLocked records a state change and returns a function that delivers
// it to the entry's observers. Call the function after releasing c.mu.
func (c *Cache) changedLocked(e *entry) func() {
	e.version++
	if len(e.observers) == 0 {
		return func() {}
	}
	snap := e.snapshot()
	obs := append([]*observer(nil), e.observers...)
	return func() {
		for _, o := range obs {
			o.deliver(snap)
		}
	}
}

// startLocked joins the entry's in-flight fetch, starting one for the current
// generation when none is running. An entry never has more than one fetch in
// flight: a fetch of an older generation has to settle before the next one
// starts. Fetches run detached from ctx cancellation so joiners are not
// affected when the first caller gives up; invalidation cancels them.
func (c *Cache) startLocked(ctx context.Context, e *entry) (<-chan singleflight.Result, func()) {
	notify := func() {}
	if !e.fetching {
		e.seq++
		e.fetching = true
		e.fetchGen = e.gen
		if !e.hasValue {
			e.status = StatusLoading
		}

		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		gen, seq, fetch := e.gen, e.seq, e.fetch
		e.cancel = cancel
		e.run = func() (any, error) {
			defer cancel()
			v, err := fetch(fctx)
			c.settle(fctx, e, gen, seq, v, err)
			return v, err
		}
		notify = c.changedLocked(e)
		c.log.Debug(ctx, "query fetch started", "query_key", e.key.String(), "generation", e.gen)
	}
	return c.group.DoChan(e.call(), e.run), notify
}

// supersedeLocked bumps the entry's generation and cancels a fetch that is
// still running for an older one.
func (c *Cache) supersedeLocked(e *entry) {
	e.gen++
	if e.fetching && e.cancel != nil {
		e.cancel()
	}
}

// settle stores a fetch result, unless the entry has been evicted or the
// result belongs to a superseded generation. A superseded fetch hands over to
// a fetch of the current generation when the entry is observed.
func (c *Cache) settle(ctx context.Context, e *entry, gen, seq uint64, v any, err error) {
	c.mu.Lock()
	if e.seq == seq {
		e.fetching = false
		e.cancel = nil
	}
	if cur, ok := c.entries[e.key.String()]; !ok || cur != e {
		c.mu.Unlock()
		return
	}
	if gen != e.gen {
		var notify func()
		if len(e.observers) > 0 && e.fetch != nil {
			_, notify = c.startLocked(context.Background(), e)
		} else {
			notify = c.changedLocked(e)
			c.evictIdleLocked(e)
		}
		c.mu.Unlock()
		notify()
		c.log.Debug(ctx, "query result discarded", "query_key", e.key.String(), "generation", gen)
		return
	}

	if err != nil {
		e.err = err
		e.status = StatusError
		c.log.Warn(ctx, "query fetch failed", "query_key", e.key.String(), "error", err)
	} else {
		e.value = v
		e.hasValue = true
		e.err = nil
		e.status = StatusSuccess
		e.stale = false
		e.updatedAt = c.now()
		c.log.Debug(ctx, "query fetch succeeded", "query_key", e.key.String())
	}
	notify := c.changedLocked(e)
	c.evictIdleLocked(e)
	c.trimIdleLocked()
	c.mu.Unlock()
	notify()
}

// evictIdleLocked removes an entry whose last observer left while a fetch was
// in flight, once that fetch has finished.
func (c *Cache) evictIdleLocked(e *entry) {
	if !e.evict || len(e.observers) > 0 || e.fetching {
		return
	}
	delete(c.entries, e.key.String())
	c.log.Debug(context.Background(), "query evicted", "query_key", e.key.String())
}

// trimIdleLocked drops the least recently read unobserved entries above the
// idle limit. Entries with observers or a fetch in flight are kept.
func (c *Cache) trimIdleLocked() {
	if c.idleLimit <= 0 {
		return
	}
	var idle []*entry
	for _, e := range c.entries {
		if len(e.observers) == 0 && !e.fetching {
			idle = append(idle, e)
		}
	}
	if len(idle) <= c.idleLimit {
		return
	}
	slices.SortFunc(idle, func(a, b *entry) int { return cmp.Compare(a.used, b.used) })
	for _, e := range idle[:len(idle)-c.idleLimit] {
		delete(c.entries, e.key.String())
		c.log.Debug(context.Background(), "query trimmed", "query_key", e.key.String())
	}
}

// Fetch returns the value for key, fetching it with fetch unless a fresh value
// is cached. Concurrent callers share one fetch. When the key is invalidated
// while a fetch is in flight, Fetch waits for a fetch of the new generation.
func (c *Cache) Fetch(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	for {
		c.mu.Lock()
		e := c.entryLocked(key, fetch)
		if e.fresh() {
			v := e.value
			c.mu.Unlock()
			return v, nil
		}
		ch, notify := c.startLocked(ctx, e)
		gen := e.fetchGen
		c.mu.Unlock()
		notify()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			if c.superseded(e, gen) {
				continue
			}
			return res.Val, res.Err
		}
	}
}

// superseded reports whether the entry moved past generation gen, including
// by being cleared.
func (c *Cache) superseded(e *entry, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return e.gen != gen
}

// Peek returns the current state of key without fetching.
func (c *Cache) Peek(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return Snapshot{Stale: true}
	}
	return e.snapshot()
}

// Subscribe registers fn as an observer of key. fn is called with the current
// state right away and again after every change. The first observer of an
// entry that is not fresh triggers a fetch. The returned function removes the
// observer; removing the last one evicts the entry.
func (c *Cache) Subscribe(key Key, fetch FetchFunc, fn func(Snapshot)) (unsubscribe func()) {
	o := &observer{fn: fn}

	c.mu.Lock()
	e := c.entryLocked(key, fetch)
	e.observers = append(e.observers, o)
	e.evict = false
	notify := func() {}
	if !e.fresh() && !e.fetching && e.fetch != nil {
		_, notify = c.startLocked(context.Background(), e)
	}
	snap := e.snapshot()
	c.mu.Unlock()

	o.deliver(snap)
	notify()

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(e, o) })
	}
}

func (c *Cache) unsubscribe(e *entry, o *observer) {
	o.close()

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range e.observers {
		if x == o {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			break
		}
	}
	if len(e.observers) > 0 {
		return
	}
	if cur, ok := c.entries[e.key.String()]; ok && cur == e {
		e.evict = true
		c.evictIdleLocked(e)
	}
}

// Invalidate marks the given keys stale and bumps their generation. Keys that
// have observers are refetched in the background; Invalidate never waits.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	var notify []func()
	for _, k := range keys {
		if e, ok := c.entries[k.String()]; ok {
			notify = append(notify, c.invalidateLocked(e))
		}
	}
	c.mu.Unlock()
	for _, n := range notify {
		n()
	}
}

// InvalidatePrefix invalidates every key that starts with prefix.
func (c *Cache) InvalidatePrefix(prefix Key) {
	c.mu.Lock()
	var notify []func()
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			notify = append(notify, c.invalidateLocked(e))
		}
	}
	c.mu.Unlock()
	for _, n := range notify {
		n()
	}
}

func (c *Cache) InvalidateAll() {
	c.InvalidatePrefix(nil)
}

func (c *Cache) invalidateLocked(e *entry) func() {
	running := e.fetching
	c.supersedeLocked(e)
	e.stale = true
	c.log.Debug(context.Background(), "query invalidated", "query_key", e.key.String(), "generation", e.gen)
	if !running && len(e.observers) > 0 && e.fetch != nil {
		_, started := c.startLocked(context.Background(), e)
		return started
	}
	return c.changedLocked(e)
}

// Clear drops every cached value. Entries nobody observes are removed;
// observed entries are reset and refetched.
func (c *Cache) Clear() {
	c.mu.Lock()
	var notify []func()
	for k, e := range c.entries {
		running := e.fetching
		c.supersedeLocked(e)
		if len(e.observers) == 0 {
			delete(c.entries, k)
			continue
		}
		e.value = nil
		e.hasValue = false
		e.err = nil
		e.status = StatusIdle
		if running {
			e.status = StatusLoading
		}
		e.stale = true
		e.updatedAt = time.Time{}
		if !running && e.fetch != nil {
			_, started := c.startLocked(context.Background(), e)
			notify = append(notify, started)
		} else {
			notify = append(notify, c.changedLocked(e))
		}
	}
	c.mu.Unlock()
	for _, n := range notify {
		n()
	}
}

// Len reports the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
