// Package store is the clip history store used by every entry point.
//
// All mutations are funnelled through a single writer goroutine, so writes
// apply one at a time in submission order. Reads run concurrently on a
// bounded pool. After a write that changed a row commits, the store's feed
// broker is signalled and every live subscription re-runs its query.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/config"
	"github.com/hpungsan/clipstash/internal/db"
	"github.com/hpungsan/clipstash/internal/errors"
	"github.com/hpungsan/clipstash/internal/feed"
)

// DefaultReadWorkers is used when neither Options nor Config set a pool size.
const DefaultReadWorkers = 4

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.NewUnavailable("store is closed")

// Options configures Open.
type Options struct {
	// Config supplies pool sizes. Nil means config.DefaultConfig().
	Config *config.Config

	// ReadWorkers overrides Config.ReadWorkers when positive.
	ReadWorkers int

	// Now returns the capture time for new clips. Defaults to time.Now.
	Now func() time.Time
}

// Store owns the database handle, the writer goroutine and the feed broker.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	broker *feed.Broker

	reads  chan struct{}
	writes chan writeReq

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// writeFn runs on the writer goroutine and reports whether it changed a row.
type writeFn func(ctx context.Context, database *sql.DB) (bool, error)

type writeReq struct {
	ctx   context.Context
	fn    writeFn
	reply chan error
}

// Open opens (creating if needed) baseDir/clipstash.db and starts the writer.
func Open(baseDir string, opts Options) (*Store, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return nil, err
	}
	db.ConfigurePool(database, cfg)

	workers := opts.ReadWorkers
	if workers <= 0 {
		workers = cfg.ReadWorkers
	}
	if workers <= 0 {
		workers = DefaultReadWorkers
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		db:     database,
		now:    now,
		reads:  make(chan struct{}, workers),
		writes: make(chan writeReq),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.broker = feed.NewBroker(s)

	go s.writeLoop()

	slog.Debug("store opened", "dir", baseDir, "read_workers", workers)
	return s, nil
}

// Close stops all subscriptions and the writer, then closes the database.
// It is safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.broker.Close()
		close(s.stop)
		<-s.done
		err = s.db.Close()
		slog.Debug("store closed")
	})
	return err
}

// Subscribe registers a live query; see feed.Broker.Subscribe.
func (s *Store) Subscribe(ctx context.Context, q feed.Query, fn func(feed.Result)) (*feed.Subscription, error) {
	return s.broker.Subscribe(ctx, q, fn)
}

// InsertIfAbsent stores content as a new Inbox clip stamped with the current
// time, unless a clip with exactly that content exists. Reports whether a
// clip was created.
func (s *Store) InsertIfAbsent(ctx context.Context, content string) (bool, error) {
	if content == "" {
		return false, errors.NewInvalidRequest("content is required")
	}

	var created *clip.Clip
	err := s.submit(ctx, func(ctx context.Context, database *sql.DB) (bool, error) {
		c, err := db.InsertIfAbsent(ctx, database, content, s.now().UnixMilli())
		if err != nil {
			return false, err
		}
		created = c
		return c != nil, nil
	})
	if err != nil {
		return false, err
	}

	if created != nil {
		slog.Debug("clip stored", "id", created.ID, "bytes", len(content))
	}
	return created != nil, nil
}

// Update writes c's content, pin flag and folder to the clip with c.ID.
// A missing id is a no-op.
func (s *Store) Update(ctx context.Context, c clip.Clip) error {
	return s.submit(ctx, func(ctx context.Context, database *sql.DB) (bool, error) {
		return db.Update(ctx, database, c)
	})
}

// Delete removes the clip with the given id. A missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.submit(ctx, func(ctx context.Context, database *sql.DB) (bool, error) {
		return db.Delete(ctx, database, id)
	})
}

// Search returns clips containing substring, pinned first then newest first.
// An empty substring returns every clip.
func (s *Store) Search(ctx context.Context, substring string) ([]clip.Clip, error) {
	return read(ctx, s, func(ctx context.Context) ([]clip.Clip, error) {
		return db.Search(ctx, s.db, substring)
	})
}

// ByFolder returns the clips in folder name, in list order.
func (s *Store) ByFolder(ctx context.Context, name string) ([]clip.Clip, error) {
	return read(ctx, s, func(ctx context.Context) ([]clip.Clip, error) {
		return db.ListByFolder(ctx, s.db, name)
	})
}

// DistinctFolders returns each folder in use once.
func (s *Store) DistinctFolders(ctx context.Context) ([]string, error) {
	return read(ctx, s, func(ctx context.Context) ([]string, error) {
		return db.DistinctFolders(ctx, s.db)
	})
}

// CountExact returns the number of clips whose content equals content.
func (s *Store) CountExact(ctx context.Context, content string) (int, error) {
	return read(ctx, s, func(ctx context.Context) (int, error) {
		return db.CountExact(ctx, s.db, content)
	})
}

// Count returns the total number of clips.
func (s *Store) Count(ctx context.Context) (int, error) {
	return read(ctx, s, func(ctx context.Context) (int, error) {
		return db.Count(ctx, s.db)
	})
}

// Get returns the clip with the given id, or a NOT_FOUND error.
func (s *Store) Get(ctx context.Context, id int64) (*clip.Clip, error) {
	return read(ctx, s, func(ctx context.Context) (*clip.Clip, error) {
		return db.GetByID(ctx, s.db, id)
	})
}

// read runs fn holding one slot of the read pool.
func read[T any](ctx context.Context, s *Store, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	select {
	case <-s.stop:
		return zero, ErrClosed
	default:
	}

	select {
	case s.reads <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.stop:
		return zero, ErrClosed
	}
	defer func() { <-s.reads }()

	return fn(ctx)
}

// submit queues fn on the writer and waits for it to finish. If ctx ends
// first the write may still be applied.
func (s *Store) submit(ctx context.Context, fn writeFn) error {
	req := writeReq{ctx: ctx, fn: fn, reply: make(chan error, 1)}

	select {
	case s.writes <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stop:
		return ErrClosed
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) writeLoop() {
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case req := <-s.writes:
			changed, err := req.fn(req.ctx, s.db)
			if err != nil {
				slog.Warn("store write failed", "err", err)
			}
			// Subscribers are signalled before the caller resumes.
			if err == nil && changed {
				s.broker.Publish()
			}
			req.reply <- err
		}
	}
}
