// Package selection fetches details for the selected node while keeping only
// the latest selection's result.
package selection

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the details for one key. It must honor ctx cancellation.
type FetchFunc[V any] func(ctx context.Context, key string) (V, error)

// Result is a fetch outcome tagged with the generation that requested it.
type Result[V any] struct {
	Key        string
	Generation uint64
	Value      V
	Err        error
}

// Tracker coordinates detail fetches for a changing selection.
//
// Every Select bumps a monotonic generation. Selecting a different key
// cancels the in-flight fetch for the previous one; selecting the same key
// again joins the fetch already running. Only the caller holding the latest
// generation receives the result.
type Tracker[V any] struct {
	fetch  FetchFunc[V]
	group  singleflight.Group
	logger *log.Logger

	mu     sync.Mutex
	gen    uint64
	key    string
	ctx    context.Context
	cancel context.CancelFunc
	stale  int
}

// NewTracker creates a Tracker around fetch. A nil logger uses log.Default().
func NewTracker[V any](fetch FetchFunc[V], logger *log.Logger) *Tracker[V] {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker[V]{fetch: fetch, logger: logger}
}

// Select requests details for key and blocks until the fetch finishes.
// ok is false when a newer Select superseded this one; the result is then
// discarded and counted as stale.
func (t *Tracker[V]) Select(ctx context.Context, key string) (res Result[V], ok bool) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	if t.cancel == nil || key != t.key {
		if t.cancel != nil {
			t.cancel()
			t.group.Forget(t.key)
		}
		t.ctx, t.cancel = context.WithCancel(ctx)
		t.key = key
	}
	fetchCtx := t.ctx
	t.mu.Unlock()

	v, err, shared := t.group.Do(key, func() (any, error) {
		return t.fetch(fetchCtx, key)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		t.stale++
		t.logger.Debug("discarding stale selection result", "key", key, "generation", gen, "current", t.gen)
		return Result[V]{}, false
	}

	res = Result[V]{Key: key, Generation: gen, Err: err}
	if err == nil {
		res.Value, _ = v.(V)
	}
	t.logger.Debug("selection fetched", "key", key, "generation", gen, "shared", shared)
	return res, true
}

// Cancel aborts the in-flight fetch and invalidates every outstanding Select.
func (t *Tracker[V]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.group.Forget(t.key)
		t.cancel = nil
	}
	t.key = ""
}

// Generation returns the latest generation handed out.
func (t *Tracker[V]) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Current returns the key of the latest selection.
func (t *Tracker[V]) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.key
}

// Stale returns how many results were discarded because a newer selection won.
func (t *Tracker[V]) Stale() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stale
}
