package clipboard

import "sync"

// Memory is an in-process clipboard. Every write signals watchers, even when
// the text is unchanged, the way a platform clipboard reports each copy.
type Memory struct {
	mu      sync.Mutex
	text    string
	hasText bool
	err     error
	writes  int

	watchCh chan struct{}
}

// NewMemory returns an empty Memory clipboard.
func NewMemory() *Memory {
	return &Memory{watchCh: make(chan struct{}, 1)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Watch() <-chan struct{} { return m.watchCh }

func (m *Memory) PrimaryText() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	return m.text, m.hasText, nil
}

func (m *Memory) SetText(text string) error {
	m.mu.Lock()
	m.text, m.hasText = text, true
	m.writes++
	m.mu.Unlock()

	signal(m.watchCh)
	return nil
}

// Clear leaves the clipboard without a text item and signals watchers.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.text, m.hasText = "", false
	m.mu.Unlock()

	signal(m.watchCh)
}

// FailReads makes PrimaryText return err until called again with nil.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Writes returns how many times SetText has been called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *Memory) Close() {}
