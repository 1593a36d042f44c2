// ABOUTME: In-memory conversation state store keyed by identity
// ABOUTME: Provides per-identity locking and expires abandoned dialogs

package session

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultIdleTimeout is used when NewStore is given a non-positive timeout
const DefaultIdleTimeout = 30 * time.Minute

// cleanupInterval is how often expired dialogs are swept
const cleanupInterval = time.Minute

// keyLock is a per-identity mutex with a count of holders and waiters
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Store holds dialog state for every identity. It is not durable:
// a restart drops all in-progress dialogs.
type Store struct {
	mu     sync.RWMutex
	states map[string]State

	locksMu sync.Mutex
	locks   map[string]*keyLock

	idleTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger

	done   chan struct{}
	closed bool
}

// NewStore creates a state store. Dialogs idle for longer than idleTimeout
// read as FlowNone and are removed by a background goroutine.
func NewStore(idleTimeout time.Duration, logger *slog.Logger) *Store {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		states:      make(map[string]State),
		locks:       make(map[string]*keyLock),
		idleTimeout: idleTimeout,
		now:         time.Now,
		logger:      logger.With("component", "session"),
		done:        make(chan struct{}),
	}
	go s.cleanup()
	return s
}

// Get returns the state for identity, or an empty state when there is none
// or the stored one has gone idle.
func (s *Store) Get(identity string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[identity]
	if !ok || s.expired(st) {
		return State{Fields: make(map[string]string)}
	}
	return st.clone()
}

// Set stores state for identity. A state whose step does not belong to
// its flow is rejected and the stored state is left unchanged.
func (s *Store) Set(identity string, state State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	if !state.Active() {
		s.Clear(identity)
		return nil
	}

	st := state.clone()
	st.UpdatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[identity] = st
	return nil
}

// Clear resets identity to FlowNone with no fields
func (s *Store) Clear(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, identity)
}

// Len returns the number of stored (possibly idle) dialogs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// Lock acquires the mutex for identity and returns the function that
// releases it. Turns for different identities never contend.
func (s *Store) Lock(identity string) (unlock func()) {
	s.locksMu.Lock()
	kl, ok := s.locks[identity]
	if !ok {
		kl = &keyLock{}
		s.locks[identity] = kl
	}
	kl.refs++
	s.locksMu.Unlock()

	kl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.mu.Unlock()

			s.locksMu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(s.locks, identity)
			}
			s.locksMu.Unlock()
		})
	}
}

// expired must be called with mu held
func (s *Store) expired(st State) bool {
	return s.now().Sub(st.UpdatedAt) > s.idleTimeout
}

// cleanup runs in a background goroutine, periodically removing idle dialogs.
func (s *Store) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runCleanup()
		case <-s.done:
			return
		}
	}
}

// runCleanup removes all idle dialogs from the store.
func (s *Store) runCleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for identity, st := range s.states {
		if s.expired(st) {
			delete(s.states, identity)
			s.logger.Debug("dropped idle dialog", "identity", identity, "flow", st.Flow, "step", st.Step)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.done)
		s.closed = true
	}
}
