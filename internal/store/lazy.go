package store

import "sync"

// Lazy opens a Store on first use and hands the same instance to every
// caller for the rest of the process. Concurrent first calls block until
// the single open attempt finishes; a failed open is not retried.
type Lazy struct {
	open func() (*Store, error)

	once  sync.Once
	mu    sync.Mutex
	store *Store
	err   error
}

// NewLazy returns a Lazy that calls open at most once.
func NewLazy(open func() (*Store, error)) *Lazy {
	return &Lazy{open: open}
}

// Get returns the shared Store, opening it on the first call.
func (l *Lazy) Get() (*Store, error) {
	l.once.Do(func() {
		s, err := l.open()
		l.mu.Lock()
		l.store, l.err = s, err
		l.mu.Unlock()
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store, l.err
}

// Close closes the Store if one was opened. Get returns ErrClosed afterwards.
func (l *Lazy) Close() error {
	// Claim the once so a later Get cannot open a fresh store.
	l.once.Do(func() {})

	l.mu.Lock()
	s := l.store
	l.store, l.err = nil, ErrClosed
	l.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}
