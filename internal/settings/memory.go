package settings

import (
	"context"
	"sync"
)

// MemoryStore is a non-durable Store used for tests and --no-persist runs.
type MemoryStore struct {
	mu     sync.Mutex
	prefs  Preferences
	closed bool
	notify notifier
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Data returns the current snapshot.
func (s *MemoryStore) Data(ctx context.Context) (Preferences, error) {
	if err := ctx.Err(); err != nil {
		return Preferences{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Preferences{}, ErrClosed
	}
	return s.prefs.Clone(), nil
}

// Update applies fn atomically.
func (s *MemoryStore) Update(ctx context.Context, fn func(Preferences) (Preferences, error)) (Preferences, error) {
	if err := ctx.Err(); err != nil {
		return Preferences{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Preferences{}, ErrClosed
	}
	next, err := fn(s.prefs.Clone())
	if err != nil {
		s.mu.Unlock()
		return Preferences{}, err
	}
	s.prefs = next.Clone()
	s.mu.Unlock()

	s.notify.broadcast()
	return next, nil
}

// Subscribe returns a change notification channel.
func (s *MemoryStore) Subscribe() (<-chan struct{}, func()) {
	return s.notify.subscribe()
}

// Close closes the store and all subscriptions.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.notify.close()
	return nil
}
