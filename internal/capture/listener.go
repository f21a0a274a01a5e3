// Package capture turns clipboard changes into stored clips.
package capture

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/clipboard"
)

// ErrAlreadyActive is returned by Start on a running listener.
var ErrAlreadyActive = stderrors.New("capture: listener already active")

// State is the listener lifecycle state.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Inserter stores captured text. *store.Store satisfies it.
type Inserter interface {
	InsertIfAbsent(ctx context.Context, content string) (bool, error)
}

// Options configures a Listener.
type Options struct {
	// OnError receives store failures. With no hook the first failure stops
	// the listener and is returned from Wait.
	OnError func(error)

	// OnCapture is called after each insert attempt with the trimmed text.
	OnCapture func(content string, created bool)
}

// Stats counts what the listener has seen since it was created.
type Stats struct {
	Notifications int64 `json:"notifications"`
	Stored        int64 `json:"stored"`
	Duplicates    int64 `json:"duplicates"`
	Dropped       int64 `json:"dropped"`
	Failed        int64 `json:"failed"`
}

// Listener watches a clipboard Source and inserts each new text clip.
// Reads of the clipboard and store calls run on the listener's goroutine.
type Listener struct {
	src   clipboard.Source
	store Inserter
	opts  Options

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	notifications atomic.Int64
	stored        atomic.Int64
	duplicates    atomic.Int64
	dropped       atomic.Int64
	failed        atomic.Int64
}

// New returns an inactive Listener.
func New(src clipboard.Source, store Inserter, opts Options) *Listener {
	return &Listener{src: src, store: store, opts: opts}
}

// State returns the current lifecycle state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start registers for change notifications and begins capturing. The
// listener runs until Stop is called, ctx is done, or a store failure
// occurs with no OnError hook installed.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Active {
		return ErrAlreadyActive
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.state = Active
	l.cancel = cancel
	l.done = make(chan struct{})
	l.err = nil

	go l.run(runCtx, l.done)

	slog.Info("capture started", "source", l.src.Name())
	return nil
}

// Stop unregisters from the source and waits for the loop to exit. It is a
// no-op on an inactive listener.
func (l *Listener) Stop() {
	l.mu.Lock()
	if l.state != Active {
		l.mu.Unlock()
		return
	}
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	cancel()
	<-done
}

// Wait blocks until the current run ends and returns the failure that ended
// it, if any. It returns nil immediately if the listener was never started.
func (l *Listener) Wait() error {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()

	if done == nil {
		return nil
	}
	<-done

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Stats returns a snapshot of the listener counters.
func (l *Listener) Stats() Stats {
	return Stats{
		Notifications: l.notifications.Load(),
		Stored:        l.stored.Load(),
		Duplicates:    l.duplicates.Load(),
		Dropped:       l.dropped.Load(),
		Failed:        l.failed.Load(),
	}
}

func (l *Listener) run(ctx context.Context, done chan struct{}) {
	err := l.loop(ctx)

	l.mu.Lock()
	l.state = Inactive
	l.err = err
	l.cancel()
	l.mu.Unlock()
	close(done)

	if err != nil {
		slog.Error("capture stopped", "err", err)
		return
	}
	slog.Info("capture stopped")
}

func (l *Listener) loop(ctx context.Context) error {
	watch := l.src.Watch()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watch:
			l.notifications.Add(1)
			err := l.capture(ctx)
			if err == nil || ctx.Err() != nil {
				continue
			}
			l.failed.Add(1)
			if l.opts.OnError == nil {
				return err
			}
			l.opts.OnError(err)
		}
	}
}

// capture reads the primary clip and stores its trimmed text. Missing or
// blank text is dropped; so is a failed clipboard read.
func (l *Listener) capture(ctx context.Context) error {
	text, ok, err := l.src.PrimaryText()
	if err != nil {
		l.dropped.Add(1)
		slog.Debug("clipboard read failed", "source", l.src.Name(), "err", err)
		return nil
	}
	content := clip.Normalize(text)
	if !ok || content == "" {
		l.dropped.Add(1)
		return nil
	}

	created, err := l.store.InsertIfAbsent(ctx, content)
	if err != nil {
		return err
	}

	if created {
		l.stored.Add(1)
		slog.Debug("clip captured", "preview", clip.Preview(content, 40))
	} else {
		l.duplicates.Add(1)
	}
	if l.opts.OnCapture != nil {
		l.opts.OnCapture(content, created)
	}
	return nil
}
