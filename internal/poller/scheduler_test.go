package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VanThanhHoang/server-game/internal/domain"
	"github.com/VanThanhHoang/server-game/internal/feed"
)

// scriptedFetcher serves one scripted response per call and signals each call
// on fetched.
type scriptedFetcher struct {
	mu      sync.Mutex
	calls   int
	fn      func(call int) (feed.Page, error)
	fetched chan int
}

func newScriptedFetcher(fn func(call int) (feed.Page, error)) *scriptedFetcher {
	return &scriptedFetcher{fn: fn, fetched: make(chan int, 16)}
}

func (f *scriptedFetcher) FetchPage(_ context.Context, _ domain.FeedConfig) (feed.Page, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	page, err := f.fn(call)
	f.fetched <- call
	return page, err
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// setDeduper drops comments whose IDs it has seen before.
type setDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newSetDeduper() *setDeduper {
	return &setDeduper{seen: make(map[string]struct{})}
}

func (d *setDeduper) FilterNew(comments []domain.Comment) []domain.Comment {
	d.mu.Lock()
	defer d.mu.Unlock()
	var fresh []domain.Comment
	for _, c := range comments {
		if _, dup := d.seen[c.ID]; dup {
			continue
		}
		d.seen[c.ID] = struct{}{}
		fresh = append(fresh, c)
	}
	return fresh
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func assertNoSignal[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	default:
	}
}

func pageWith(ids ...string) feed.Page {
	var comments []domain.Comment
	for _, id := range ids {
		comments = append(comments, domain.Comment{ID: id})
	}
	return feed.Page{Comments: comments}
}

func startTestLoop(t *testing.T, fetcher *scriptedFetcher, clock clockwork.Clock, cfg domain.FeedConfig) (stop func(), batches chan []domain.Comment, loopErrs chan error) {
	t.Helper()
	batches = make(chan []domain.Comment, 16)
	loopErrs = make(chan error, 16)

	sched := New(fetcher, clock)
	stop = sched.Start("room1", newSetDeduper(), cfg,
		func(b []domain.Comment) { batches <- b },
		func(err error) { loopErrs <- err },
	)
	t.Cleanup(stop)
	return stop, batches, loopErrs
}

func TestFirstFetchFiresImmediately(t *testing.T) {
	fetcher := newScriptedFetcher(func(int) (feed.Page, error) {
		return pageWith("c1"), nil
	})
	clock := clockwork.NewFakeClock()

	_, batches, _ := startTestLoop(t, fetcher, clock, domain.DefaultFeedConfig())

	batch := waitFor(t, batches, "first batch")
	require.Len(t, batch, 1)
	assert.Equal(t, "c1", batch[0].ID)
	assert.Equal(t, 1, fetcher.callCount(), "no tick needed for the first fetch")
}

func TestSubsequentFetchesFollowTheInterval(t *testing.T) {
	fetcher := newScriptedFetcher(func(call int) (feed.Page, error) {
		return pageWith("c" + string(rune('0'+call))), nil
	})
	clock := clockwork.NewFakeClock()
	cfg := domain.DefaultFeedConfig()
	cfg.IntervalMs = 2000

	_, batches, _ := startTestLoop(t, fetcher, clock, cfg)

	waitFor(t, batches, "first batch")
	waitFor(t, fetcher.fetched, "first fetch signal")

	// The loop is now waiting on the ticker.
	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)

	waitFor(t, batches, "second batch")
	assert.Equal(t, 2, fetcher.callCount())
}

func TestEmptyAndDuplicateBatchesAreSwallowed(t *testing.T) {
	// Every cycle returns the same comment; only the first is new.
	fetcher := newScriptedFetcher(func(int) (feed.Page, error) {
		return pageWith("same"), nil
	})
	clock := clockwork.NewFakeClock()

	_, batches, _ := startTestLoop(t, fetcher, clock, domain.DefaultFeedConfig())

	waitFor(t, batches, "first batch")
	waitFor(t, fetcher.fetched, "first fetch signal")

	clock.BlockUntil(1)
	clock.Advance(DefaultInterval)
	waitFor(t, fetcher.fetched, "second fetch signal")

	assertNoSignal(t, batches, "batch for an all-duplicate cycle")
}

func TestFetchFailureStopsTheLoop(t *testing.T) {
	wantErr := errors.New("token expired")
	fetcher := newScriptedFetcher(func(int) (feed.Page, error) {
		return feed.Page{}, wantErr
	})
	clock := clockwork.NewFakeClock()

	_, batches, loopErrs := startTestLoop(t, fetcher, clock, domain.DefaultFeedConfig())

	err := waitFor(t, loopErrs, "loop error")
	assert.ErrorIs(t, err, wantErr)
	assertNoSignal(t, batches, "batch after a failed fetch")
	assert.Equal(t, 1, fetcher.callCount(), "a failed loop must not retry")
}

func TestStopIsIdempotent(t *testing.T) {
	fetcher := newScriptedFetcher(func(int) (feed.Page, error) {
		return feed.Page{}, nil
	})
	clock := clockwork.NewFakeClock()

	stop, _, _ := startTestLoop(t, fetcher, clock, domain.DefaultFeedConfig())
	waitFor(t, fetcher.fetched, "first fetch signal")

	stop()
	stop()
}

func TestStoppedLoopReportsNoError(t *testing.T) {
	block := make(chan struct{})
	fetcher := newScriptedFetcher(func(int) (feed.Page, error) {
		<-block
		return feed.Page{}, context.Canceled
	})
	clock := clockwork.NewFakeClock()

	stop, batches, loopErrs := startTestLoop(t, fetcher, clock, domain.DefaultFeedConfig())

	stop()
	close(block)
	waitFor(t, fetcher.fetched, "in-flight fetch to finish")

	assertNoSignal(t, loopErrs, "error from a stopped loop")
	assertNoSignal(t, batches, "batch from a stopped loop")
}
