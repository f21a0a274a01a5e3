// Package feed gives subscribers a live view of a store query. A subscriber
// registers a Query and a callback; the broker runs the query once right
// away and again after Publish, invoking the callback with each fresh
// result. Publish never blocks: pending signals for a subscription coalesce
// into one re-run that observes every commit made before it starts, so a
// burst of N commits may produce fewer than N deliveries. Delivery is at
// least once after the last commit, not once per commit.
package feed

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hpungsan/clipstash/internal/clip"
)

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = stderrors.New("feed: broker closed")

// Kind selects which store query a subscription runs.
type Kind int

const (
	KindSearch Kind = iota
	KindFolder
	KindFolders
)

// Query describes what a subscription watches.
type Query struct {
	Kind Kind
	Arg  string // substring for KindSearch, folder name for KindFolder
}

// Search watches clips whose content contains substring.
func Search(substring string) Query { return Query{Kind: KindSearch, Arg: substring} }

// Folder watches clips in the named folder.
func Folder(name string) Query { return Query{Kind: KindFolder, Arg: name} }

// Folders watches the set of distinct folder names.
func Folders() Query { return Query{Kind: KindFolders} }

func (q Query) String() string {
	switch q.Kind {
	case KindSearch:
		return fmt.Sprintf("search(%q)", q.Arg)
	case KindFolder:
		return fmt.Sprintf("folder(%q)", q.Arg)
	case KindFolders:
		return "folders()"
	default:
		return fmt.Sprintf("unknown(%d)", int(q.Kind))
	}
}

// Result is one delivery to a subscriber.
type Result struct {
	Query Query

	// Seq starts at 1 and increases by one per delivery on a subscription.
	Seq uint64

	// Clips is set for KindSearch and KindFolder queries.
	Clips []clip.Clip

	// Folders is set for KindFolders queries.
	Folders []string

	// Err is set when the query failed; Clips and Folders are then nil.
	Err error
}

// Runner executes queries against the store. Each call must be a single
// consistent read.
type Runner interface {
	Search(ctx context.Context, substring string) ([]clip.Clip, error)
	ByFolder(ctx context.Context, name string) ([]clip.Clip, error)
	DistinctFolders(ctx context.Context) ([]string, error)
}

// Broker tracks live subscriptions and fans out change signals.
type Broker struct {
	runner Runner

	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool
}

// NewBroker returns a Broker that runs queries with runner.
func NewBroker(runner Runner) *Broker {
	return &Broker{
		runner: runner,
		subs:   make(map[string]*Subscription),
	}
}

// Subscribe registers fn for query q. The current result is delivered from
// the subscription's own goroutine as soon as possible, then again after
// Publish (coalesced) until ctx is done or the subscription is cancelled.
// fn is never called concurrently with itself.
func (b *Broker) Subscribe(ctx context.Context, q Query, fn func(Result)) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		id:     newID(),
		query:  q,
		fn:     fn,
		broker: b,
		signal: make(chan struct{}, 1),
		ctx:    subCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	b.subs[s.id] = s
	total := len(b.subs)
	b.mu.Unlock()

	slog.Debug("feed subscribed", "sub", s.id, "query", q.String(), "total", total)

	go s.run()
	return s, nil
}

// Publish signals every subscription that the store changed.
func (b *Broker) Publish() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		s.notify()
	}
}

// Close cancels every subscription, waits for their goroutines to exit and
// rejects further Subscribe calls.
func (b *Broker) Close() {
	b.mu.Lock()
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
		<-s.done
	}
}

func (b *Broker) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s.id)
	total := len(b.subs)
	b.mu.Unlock()

	slog.Debug("feed unsubscribed", "sub", s.id, "query", s.query.String(), "total", total)
}

// run executes q once against runner.
func (b *Broker) run(ctx context.Context, q Query) Result {
	res := Result{Query: q}
	switch q.Kind {
	case KindSearch:
		res.Clips, res.Err = b.runner.Search(ctx, q.Arg)
	case KindFolder:
		res.Clips, res.Err = b.runner.ByFolder(ctx, q.Arg)
	case KindFolders:
		res.Folders, res.Err = b.runner.DistinctFolders(ctx)
	default:
		res.Err = fmt.Errorf("feed: unknown query kind %d", int(q.Kind))
	}
	return res
}
