// Package cache is the reactive query cache every data hook is built on: results are kept per
// semantic key, concurrent consumers share one in-flight request, failed attempts are retried
// with backoff and observed keys are polled.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Key identifies a query: operation name plus parameters.
type Key string

func NewKey(op string, params ...string) Key {
	return Key(strings.Join(append([]string{op}, params...), ":"))
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

// State is a snapshot of one entry. Value keeps the last successful result even when Err is set.
type State struct {
	Key          Key
	Status       Status
	Value        any
	Err          error
	UpdatedAt    time.Time
	FailureCount int
	Fetching     bool
}

type FetchFunc func(ctx context.Context) (any, error)

// Listener receives every state change of an observed key. It runs with the cache locked and
// must not call back into the cache.
type Listener func(State)

type call struct {
	seq        uint64
	done       chan struct{}
	superseded chan struct{}
	cancel     context.CancelFunc
	next       *call
	waiters    int
	// orphaned is set once the entry is evicted; the call then lives only for its waiters.
	orphaned bool
	val        any
	err        error
}

type entry struct {
	key      Key
	policy   Policy
	fetch    FetchFunc
	state    State
	hasValue bool
	// invalidated forces a refetch regardless of StaleTime.
	invalidated bool

	seq     uint64
	applied uint64
	call    *call

	observers map[uint64]Listener
	pollTimer Timer
	pollGen   uint64
	gcTimer   Timer
	gcGen     uint64
	removed   bool
}

type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	nextID  uint64

	clock   Clock
	log     *logrus.Entry
	metrics *Metrics

	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Cache)

func WithClock(clock Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

func WithLogger(log *logrus.Entry) Option {
	return func(c *Cache) { c.log = log }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func New(opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		entries: make(map[Key]*entry),
		clock:   realClock{},
		log:     logrus.WithField("component", "query_cache"),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached value of key when it is fresh, otherwise joins or starts the single
// in-flight request for it. ctx only bounds this caller's wait; the request itself keeps running
// for the other consumers.
func (c *Cache) Fetch(ctx context.Context, key Key, policy Policy, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key, policy, fetch)
	if c.freshLocked(e) {
		v := e.state.Value
		if len(e.observers) == 0 {
			c.scheduleGCLocked(e)
		}
		c.mu.Unlock()
		c.metrics.hit()
		return v, nil
	}
	cl := e.call
	if cl == nil {
		cl = c.startLocked(e)
	}
	cl.waiters++
	c.mu.Unlock()

	return c.wait(ctx, cl)
}

func (c *Cache) wait(ctx context.Context, cl *call) (any, error) {
	for {
		select {
		case <-cl.done:
			// A call superseded before it finished is never the answer.
			if next := c.successor(cl); next != nil {
				cl = next
				continue
			}
			return cl.val, cl.err
		case <-cl.superseded:
			cl = c.successor(cl)
		case <-ctx.Done():
			c.leave(cl)
			return nil, ctx.Err()
		}
	}
}

// leave drops a waiter that gave up. An orphaned call is cancelled when its last waiter leaves.
func (c *Cache) leave(cl *call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cl.waiters--
	if cl.waiters <= 0 && cl.orphaned {
		cl.cancel()
	}
}

func (c *Cache) successor(cl *call) *call {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl.next != nil {
		cl.next.waiters++
	}
	return cl.next
}

type Subscription struct {
	cache *Cache
	entry *entry
	id    uint64
	once  sync.Once
}

// Observe registers a listener for key. While at least one observer exists the key is refetched
// on mount when stale, on focus and on the policy's poll interval.
func (c *Cache) Observe(key Key, policy Policy, fetch FetchFunc, listener Listener) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key, policy, fetch)
	c.nextID++
	id := c.nextID
	e.observers[id] = listener
	c.metrics.observers(1)

	if e.hasValue || e.state.Err != nil || e.call != nil {
		listener(e.state)
	}
	if e.call == nil {
		if c.freshLocked(e) {
			if len(e.observers) == 1 {
				c.schedulePollLocked(e)
			}
		} else {
			c.startLocked(e)
		}
	}
	return &Subscription{cache: c, entry: e, id: id}
}

// Close stops delivering updates. Once a key has no observers its polling stops and it becomes
// eligible for eviction.
func (s *Subscription) Close() {
	s.once.Do(func() {
		c := s.cache
		c.mu.Lock()
		defer c.mu.Unlock()

		e := s.entry
		if _, ok := e.observers[s.id]; !ok {
			return
		}
		delete(e.observers, s.id)
		c.metrics.observers(-1)
		if len(e.observers) == 0 {
			c.stopPollLocked(e)
			c.scheduleGCLocked(e)
		}
	})
}

// Invalidate marks key stale. Observed keys refetch immediately and an in-flight request is
// superseded: its waiters move to the new request and its response is discarded.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.invalidated = true
	if old := e.call; old != nil {
		next := c.startLocked(e)
		old.next = next
		close(old.superseded)
		old.cancel()
		return
	}
	if len(e.observers) > 0 {
		c.startLocked(e)
	}
}

// Focus refetches the stale observed keys whose policy refetches on focus. It returns how many
// requests were started.
func (c *Cache) Focus() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	started := 0
	for _, e := range c.entries {
		if len(e.observers) == 0 || !e.policy.RefetchOnFocus || e.call != nil || c.freshLocked(e) {
			continue
		}
		c.startLocked(e)
		started++
	}
	return started
}

func (c *Cache) Get(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close cancels every in-flight request and drops all entries.
func (c *Cache) Close() {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		c.removeLocked(e)
	}
}

func (c *Cache) entryLocked(key Key, policy Policy, fetch FetchFunc) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{
			key:       key,
			state:     State{Key: key},
			observers: make(map[uint64]Listener),
		}
		c.entries[key] = e
	}
	e.policy = policy
	e.fetch = fetch
	c.stopGCLocked(e)
	return e
}

func (c *Cache) freshLocked(e *entry) bool {
	return e.hasValue && !e.invalidated && e.policy.fresh(e.state.UpdatedAt, c.clock.Now())
}

func (c *Cache) startLocked(e *entry) *call {
	e.seq++
	ctx, cancel := context.WithCancel(c.ctx)
	cl := &call{
		seq:        e.seq,
		done:       make(chan struct{}),
		superseded: make(chan struct{}),
		cancel:     cancel,
	}
	e.call = cl
	c.stopPollLocked(e)

	e.state.Fetching = true
	if !e.hasValue {
		e.state.Status = StatusLoading
	}
	c.notifyLocked(e)

	go c.run(ctx, e, cl, e.policy, e.fetch)
	return cl
}

func (c *Cache) run(ctx context.Context, e *entry, cl *call, policy Policy, fetch FetchFunc) {
	defer cl.cancel()

	var (
		val any
		err error
	)
	for attempt := 1; ; attempt++ {
		c.metrics.fetch()
		val, err = fetch(ctx)
		if err == nil {
			break
		}
		c.recordFailure(e, cl)
		if attempt >= policy.attempts() || ctx.Err() != nil {
			break
		}
		delay := Backoff(attempt)
		c.metrics.retry()
		c.log.WithFields(logrus.Fields{
			"key":     e.key,
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warnf("query attempt failed: %s", err)
		if serr := c.clock.Sleep(ctx, delay); serr != nil {
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	cl.val, cl.err = val, err
	close(cl.done)
	c.settleLocked(e, cl)
}

func (c *Cache) recordFailure(e *entry, cl *call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.call == cl && !e.removed {
		e.state.FailureCount++
	}
}

// settleLocked applies a finished call unless a newer one was issued or the key was abandoned.
func (c *Cache) settleLocked(e *entry, cl *call) {
	if e.call == cl {
		e.call = nil
	}
	if e.removed || cl.next != nil || cl.seq <= e.applied {
		c.metrics.discard()
		return
	}
	e.applied = cl.seq

	e.state.Fetching = false
	if cl.err == nil {
		e.hasValue = true
		e.invalidated = false
		e.state.Value = cl.val
		e.state.Err = nil
		e.state.Status = StatusSuccess
		e.state.UpdatedAt = c.clock.Now()
		e.state.FailureCount = 0
	} else {
		e.state.Err = cl.err
		e.state.Status = StatusError
		c.metrics.failed()
		c.log.WithFields(logrus.Fields{
			"key":      e.key,
			"failures": e.state.FailureCount,
		}).Errorf("query failed: %s", cl.err)
	}
	c.notifyLocked(e)

	if len(e.observers) > 0 {
		c.schedulePollLocked(e)
	} else {
		c.scheduleGCLocked(e)
	}
}

func (c *Cache) notifyLocked(e *entry) {
	for _, l := range e.observers {
		l(e.state)
	}
}

// schedulePollLocked arms the next poll. After a failed cycle the retry backoff wins over the
// poll interval until a success resets the failure count.
func (c *Cache) schedulePollLocked(e *entry) {
	c.stopPollLocked(e)
	if e.removed || len(e.observers) == 0 || e.policy.PollInterval <= 0 || e.call != nil {
		return
	}
	delay := e.policy.PollInterval
	if e.state.Err != nil {
		if b := Backoff(e.state.FailureCount); b > delay {
			delay = b
		}
	}
	gen := e.pollGen
	e.pollTimer = c.clock.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != e.pollGen || e.removed || len(e.observers) == 0 || e.call != nil {
			return
		}
		e.pollTimer = nil
		c.startLocked(e)
	})
}

func (c *Cache) stopPollLocked(e *entry) {
	e.pollGen++
	if e.pollTimer != nil {
		e.pollTimer.Stop()
		e.pollTimer = nil
	}
}

func (c *Cache) scheduleGCLocked(e *entry) {
	c.stopGCLocked(e)
	if e.removed || len(e.observers) > 0 {
		return
	}
	if e.policy.GCTime <= 0 {
		c.removeLocked(e)
		return
	}
	gen := e.gcGen
	e.gcTimer = c.clock.AfterFunc(e.policy.GCTime, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != e.gcGen || len(e.observers) > 0 {
			return
		}
		c.removeLocked(e)
	})
}

func (c *Cache) stopGCLocked(e *entry) {
	e.gcGen++
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
}

// removeLocked evicts e. An in-flight call still answers its direct waiters but is not applied.
func (c *Cache) removeLocked(e *entry) {
	e.removed = true
	c.stopPollLocked(e)
	c.stopGCLocked(e)
	if cl := e.call; cl != nil {
		cl.orphaned = true
		if cl.waiters == 0 {
			cl.cancel()
		}
	}
	if c.entries[e.key] == e {
		delete(c.entries, e.key)
	}
}
