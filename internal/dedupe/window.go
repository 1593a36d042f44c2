// ABOUTME: Bounded window of recently seen keys with time based expiry
// ABOUTME: Lets the chat bridge drop events the homeserver delivers twice

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type mark struct {
	key  string
	seen time.Time
}

// Window tracks at most size keys, each for ttl. Expired keys are
// pruned lazily on every call, so no background goroutine is needed.
type Window struct {
	mu    sync.Mutex
	ttl   time.Duration
	size  int
	order *list.List // oldest at front
	index map[string]*list.Element
	now   func() time.Time
}

// New creates a Window. A size below one is treated as one.
func New(ttl time.Duration, size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{
		ttl:   ttl,
		size:  size,
		order: list.New(),
		index: make(map[string]*list.Element),
		now:   time.Now,
	}
}

// Seen reports whether key was already recorded within the window and
// records it otherwise. Checking and recording happen atomically.
func (w *Window) Seen(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)

	if _, ok := w.index[key]; ok {
		return true
	}

	if w.order.Len() >= w.size {
		w.drop(w.order.Front())
	}
	w.index[key] = w.order.PushBack(mark{key: key, seen: now})
	return false
}

// Len returns the number of keys currently remembered
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(w.now())
	return w.order.Len()
}

// prune removes expired keys from the front. Must be called with mu held.
func (w *Window) prune(now time.Time) {
	for e := w.order.Front(); e != nil; e = w.order.Front() {
		if now.Sub(e.Value.(mark).seen) < w.ttl {
			return
		}
		w.drop(e)
	}
}

func (w *Window) drop(e *list.Element) {
	if e == nil {
		return
	}
	w.order.Remove(e)
	delete(w.index, e.Value.(mark).key)
}
