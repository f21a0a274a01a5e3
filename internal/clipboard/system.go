package clipboard

import (
	"bytes"
	"log/slog"
	"sync"
	"time"

	"golang.design/x/clipboard"

	"github.com/hpungsan/clipstash/internal/errors"
)

// DefaultPollInterval is used when NewSystem is given a non-positive interval.
const DefaultPollInterval = 250 * time.Millisecond

type systemSource struct {
	interval time.Duration
	watchCh  chan struct{}
	done     chan struct{}
	once     sync.Once
	lastText []byte
}

// NewSystem returns the system clipboard source, polled every interval, or a
// headless source if the display environment is unavailable (for example a
// server without X11 or Wayland). clipboard.Init is called here rather than
// in init() so commands that never touch the clipboard don't pay for it.
func NewSystem(interval time.Duration) Source {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return NewHeadless()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	s := &systemSource{
		interval: interval,
		watchCh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		// Content already on the clipboard at startup is not a change.
		lastText: clipboard.Read(clipboard.FmtText),
	}
	go s.poll()
	return s
}

func (s *systemSource) Name() string { return "system clipboard (poll)" }

func (s *systemSource) poll() {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			text := clipboard.Read(clipboard.FmtText)
			if !bytes.Equal(text, s.lastText) {
				s.lastText = text
				signal(s.watchCh)
			}
		}
	}
}

func (s *systemSource) Watch() <-chan struct{} { return s.watchCh }

func (s *systemSource) PrimaryText() (string, bool, error) {
	text := clipboard.Read(clipboard.FmtText)
	if text == nil {
		return "", false, nil
	}
	return string(text), true, nil
}

func (s *systemSource) SetText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (s *systemSource) Close() { s.once.Do(func() { close(s.done) }) }

// headlessSource never changes and cannot be written.
type headlessSource struct {
	watchCh chan struct{}
}

// NewHeadless returns a source with no clipboard behind it.
func NewHeadless() Source {
	return &headlessSource{watchCh: make(chan struct{})}
}

func (h *headlessSource) Name() string                       { return "headless (no clipboard)" }
func (h *headlessSource) Watch() <-chan struct{}             { return h.watchCh }
func (h *headlessSource) PrimaryText() (string, bool, error) { return "", false, nil }
func (h *headlessSource) Close()                             {}

func (h *headlessSource) SetText(string) error {
	return errors.NewUnavailable("clipboard unavailable: no display")
}
