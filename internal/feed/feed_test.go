package feed

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/clipstash/internal/clip"
)

const waitFor = 2 * time.Second

// memRunner is an in-memory Runner guarded by a mutex.
type memRunner struct {
	mu    sync.Mutex
	clips []clip.Clip
	fail  error
	calls int
}

func (m *memRunner) add(c clip.Clip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clips = append([]clip.Clip{c}, m.clips...)
}

func (m *memRunner) Search(_ context.Context, s string) ([]clip.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fail != nil {
		return nil, m.fail
	}
	out := []clip.Clip{}
	for _, c := range m.clips {
		if strings.Contains(c.Content, s) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRunner) ByFolder(_ context.Context, name string) ([]clip.Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	out := []clip.Clip{}
	for _, c := range m.clips {
		if c.Folder == name {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRunner) DistinctFolders(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	seen := map[string]bool{}
	out := []string{}
	for _, c := range m.clips {
		if !seen[c.Folder] {
			seen[c.Folder] = true
			out = append(out, c.Folder)
		}
	}
	return out, nil
}

func subscriberCount(b *Broker) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// recorder collects deliveries on a channel.
func recorder() (chan Result, func(Result)) {
	ch := make(chan Result, 64)
	return ch, func(r Result) { ch <- r }
}

func next(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for feed delivery")
		return Result{}
	}
}

// nextMatching drains deliveries until one satisfies ok.
func nextMatching(t *testing.T, ch <-chan Result, ok func(Result) bool) Result {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case r := <-ch:
			if ok(r) {
				return r
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching feed delivery")
			return Result{}
		}
	}
}

func TestSubscribe_DeliversCurrentResult(t *testing.T) {
	runner := &memRunner{}
	b := NewBroker(runner)
	defer b.Close()

	ch, fn := recorder()
	sub, err := b.Subscribe(context.Background(), Folder(clip.DefaultFolder), fn)
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, Folder(clip.DefaultFolder), sub.Query())

	r := next(t, ch)
	assert.Equal(t, uint64(1), r.Seq)
	assert.NoError(t, r.Err)
	assert.NotNil(t, r.Clips)
	assert.Empty(t, r.Clips)
}

func TestPublish_RedeliversWithoutResubscribing(t *testing.T) {
	runner := &memRunner{}
	b := NewBroker(runner)
	defer b.Close()

	ch, fn := recorder()
	_, err := b.Subscribe(context.Background(), Folder(clip.DefaultFolder), fn)
	require.NoError(t, err)
	require.Empty(t, next(t, ch).Clips)

	runner.add(clip.Clip{ID: 1, Content: "hello", Folder: clip.DefaultFolder})
	b.Publish()

	r := nextMatching(t, ch, func(r Result) bool { return len(r.Clips) == 1 })
	assert.Equal(t, "hello", r.Clips[0].Content)
}

func TestDeliveries_StrictlyOrdered(t *testing.T) {
	runner := &memRunner{}
	b := NewBroker(runner)
	defer b.Close()

	ch, fn := recorder()
	_, err := b.Subscribe(context.Background(), Search(""), fn)
	require.NoError(t, err)
	next(t, ch)

	for i := 1; i <= 20; i++ {
		runner.add(clip.Clip{ID: int64(i), Content: "c", Folder: clip.DefaultFolder})
		b.Publish()
	}

	// Coalescing may skip intermediate states, but sizes never go backwards
	// and the final state is always observed.
	var lastSeq uint64 = 1
	lastLen := 0
	for {
		r := next(t, ch)
		assert.Greater(t, r.Seq, lastSeq)
		assert.GreaterOrEqual(t, len(r.Clips), lastLen)
		lastSeq, lastLen = r.Seq, len(r.Clips)
		if lastLen == 20 {
			break
		}
	}
}

func TestFoldersQuery(t *testing.T) {
	runner := &memRunner{}
	runner.add(clip.Clip{ID: 1, Content: "a", Folder: "Work"})
	runner.add(clip.Clip{ID: 2, Content: "b", Folder: "Work"})
	b := NewBroker(runner)
	defer b.Close()

	ch, fn := recorder()
	_, err := b.Subscribe(context.Background(), Folders(), fn)
	require.NoError(t, err)

	r := next(t, ch)
	assert.Equal(t, []string{"Work"}, r.Folders)
	assert.Nil(t, r.Clips)
}

func TestCancel_StopsDeliveries(t *testing.T) {
	runner := &memRunner{}
	b := NewBroker(runner)
	defer b.Close()

	ch, fn := recorder()
	sub, err := b.Subscribe(context.Background(), Search(""), fn)
	require.NoError(t, err)
	next(t, ch)

	sub.Cancel()
	select {
	case <-sub.Done():
	case <-time.After(waitFor):
		t.Fatal("subscription did not exit after Cancel")
	}
	assert.Equal(t, 0, subscriberCount(b))

	b.Publish()
	select {
	case r := <-ch:
		t.Fatalf("unexpected delivery after cancel: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestContextCancel_StopsDeliveries(t *testing.T) {
	b := NewBroker(&memRunner{})
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, fn := recorder()
	sub, err := b.Subscribe(ctx, Search(""), fn)
	require.NoError(t, err)
	next(t, ch)

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(waitFor):
		t.Fatal("subscription did not exit after context cancel")
	}
}

func TestSubscriptions_Independent(t *testing.T) {
	runner := &memRunner{}
	b := NewBroker(runner)
	defer b.Close()

	chA, fnA := recorder()
	chB, fnB := recorder()
	subA, err := b.Subscribe(context.Background(), Search("x"), fnA)
	require.NoError(t, err)
	_, err = b.Subscribe(context.Background(), Search(""), fnB)
	require.NoError(t, err)
	next(t, chA)
	next(t, chB)

	subA.Cancel()
	<-subA.Done()

	runner.add(clip.Clip{ID: 1, Content: "y", Folder: clip.DefaultFolder})
	b.Publish()

	r := nextMatching(t, chB, func(r Result) bool { return len(r.Clips) == 1 })
	assert.Equal(t, "y", r.Clips[0].Content)
	assert.Equal(t, 1, subscriberCount(b))
}

func TestQueryError_Delivered(t *testing.T) {
	runner := &memRunner{fail: stderrors.New("disk gone")}
	b := NewBroker(runner)
	defer b.Close()

	ch, fn := recorder()
	_, err := b.Subscribe(context.Background(), Search("a"), fn)
	require.NoError(t, err)

	r := next(t, ch)
	assert.EqualError(t, r.Err, "disk gone")
	assert.Nil(t, r.Clips)
}

func TestClose_RejectsNewSubscriptions(t *testing.T) {
	b := NewBroker(&memRunner{})

	ch, fn := recorder()
	sub, err := b.Subscribe(context.Background(), Search(""), fn)
	require.NoError(t, err)
	next(t, ch)

	b.Close()
	select {
	case <-sub.Done():
	default:
		t.Fatal("Close returned before subscription exited")
	}

	_, err = b.Subscribe(context.Background(), Search(""), fn)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQuery_String(t *testing.T) {
	assert.Equal(t, `search("ab")`, Search("ab").String())
	assert.Equal(t, `folder("Inbox")`, Folder("Inbox").String())
	assert.Equal(t, "folders()", Folders().String())
	assert.Equal(t, "unknown(9)", Query{Kind: 9}.String())
}
