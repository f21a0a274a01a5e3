// Package clipboard provides the clipboard sources the capture listener
// watches: the system clipboard, a headless stand-in when no display is
// available, and an in-memory source for tests and tooling.
package clipboard

// Source is a clipboard that announces changes.
type Source interface {
	// Name returns a human-readable name for the source.
	Name() string

	// Watch returns a channel that receives a signal whenever the clipboard
	// may have changed. Signals coalesce; the channel is never closed.
	Watch() <-chan struct{}

	// PrimaryText returns the text of the current primary clip. ok is false
	// when the clipboard is empty or holds no text.
	PrimaryText() (text string, ok bool, err error)

	// SetText replaces the clipboard contents with text.
	SetText(text string) error

	// Close releases resources held by the source.
	Close()
}

// signal performs a non-blocking send on a buffered notification channel.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
