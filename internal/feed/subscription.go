package feed

import (
	"context"
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// Subscription is one live query registered with a Broker.
type Subscription struct {
	id     string
	query  Query
	fn     func(Result)
	broker *Broker

	// signal holds at most one pending change notification.
	signal chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	seq uint64
}

// ID returns the subscription's ULID.
func (s *Subscription) ID() string { return s.id }

// Query returns the watched query.
func (s *Subscription) Query() Query { return s.query }

// Cancel stops further deliveries. It does not wait for a delivery that is
// already running; use Done for that.
func (s *Subscription) Cancel() { s.cancel() }

// Done is closed once the subscription goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// notify marks the subscription dirty. Signals merge in the one-slot
// channel until the next run picks them up.
func (s *Subscription) notify() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription) run() {
	defer close(s.done)
	defer s.broker.remove(s)

	for {
		s.deliver()
		select {
		case <-s.ctx.Done():
			return
		case <-s.signal:
		}
	}
}

func (s *Subscription) deliver() {
	if s.ctx.Err() != nil {
		return
	}
	res := s.broker.run(s.ctx, s.query)
	// A query interrupted by cancellation is not delivered.
	if s.ctx.Err() != nil {
		return
	}
	s.seq++
	res.Seq = s.seq
	if res.Err != nil {
		slog.Warn("feed query failed", "sub", s.id, "query", s.query.String(), "err", res.Err)
	}
	s.fn(res)
}

func newID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}
