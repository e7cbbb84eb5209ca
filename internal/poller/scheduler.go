package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/VanThanhHoang/server-game/internal/domain"
	"github.com/VanThanhHoang/server-game/internal/feed"
	"github.com/VanThanhHoang/server-game/internal/metrics"
	"github.com/VanThanhHoang/server-game/internal/platform/correlation"
)

// DefaultInterval applies when the feed config carries no positive interval.
const DefaultInterval = 1000 * time.Millisecond

// Fetcher fetches one page of feed comments.
type Fetcher interface {
	FetchPage(ctx context.Context, cfg domain.FeedConfig) (feed.Page, error)
}

// Deduper filters a batch down to comments not delivered before. The room
// implements this against its seen-ID set.
type Deduper interface {
	FilterNew([]domain.Comment) []domain.Comment
}

// Scheduler runs bounded, cancellable repeating fetch loops, one per Start
// call. It owns cadence and dedup only; what happens with a batch is the
// caller's business via the callbacks.
type Scheduler struct {
	fetcher Fetcher
	clock   clockwork.Clock
}

func New(fetcher Fetcher, clock clockwork.Clock) *Scheduler {
	return &Scheduler{fetcher: fetcher, clock: clock}
}

// Start begins polling for one room: an immediate first fetch, then one fetch
// per interval. Each cycle fetches the first page only, drops already-seen
// comments, and calls onBatch with the survivors; an empty batch is skipped
// entirely. On a fetch failure onError fires once and the loop stops;
// stale credentials dominate feed failures, so silent retries would only spam
// the error channel. The returned stop function cancels the loop and is safe
// to call more than once.
//
// Cycles are serialized: a fetch outliving the interval delays the next cycle
// instead of overlapping it.
func (s *Scheduler) Start(roomID string, dedup Deduper, cfg domain.FeedConfig, onBatch func([]domain.Comment), onError func(error)) (stop func()) {
	interval := time.Duration(cfg.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	go s.run(ctx, roomID, dedup, cfg, interval, onBatch, onError)

	var once sync.Once
	return func() { once.Do(cancel) }
}

func (s *Scheduler) run(ctx context.Context, roomID string, dedup Deduper, cfg domain.FeedConfig, interval time.Duration, onBatch func([]domain.Comment), onError func(error)) {
	// First fetch fires immediately, not on the first tick.
	if !s.cycle(ctx, roomID, dedup, cfg, onBatch, onError) {
		return
	}

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if !s.cycle(ctx, roomID, dedup, cfg, onBatch, onError) {
				return
			}
		}
	}
}

// cycle performs one fetch-dedup-deliver pass. Returns false when the loop
// must stop.
func (s *Scheduler) cycle(ctx context.Context, roomID string, dedup Deduper, cfg domain.FeedConfig, onBatch func([]domain.Comment), onError func(error)) bool {
	cycleCtx := correlation.WithID(ctx, correlation.NewID())

	page, err := s.fetcher.FetchPage(cycleCtx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			// The loop was stopped while the fetch was in flight; the result
			// belongs to nobody anymore.
			return false
		}
		metrics.PollCyclesTotal.WithLabelValues("error").Inc()
		metrics.FeedErrorsTotal.WithLabelValues(feedErrorType(err)).Inc()
		slog.WarnContext(cycleCtx, "Poll cycle failed, stopping loop", "room", roomID, "error", err)
		onError(err)
		return false
	}

	fresh := dedup.FilterNew(page.Comments)
	metrics.PollCyclesTotal.WithLabelValues("ok").Inc()
	slog.DebugContext(cycleCtx, "Poll cycle complete", "room", roomID, "fetched", len(page.Comments), "new", len(fresh))

	if len(fresh) > 0 {
		onBatch(fresh)
	}
	return true
}

func feedErrorType(err error) string {
	var apiErr *feed.APIError
	if errors.As(err, &apiErr) {
		return "api"
	}
	return "transport"
}
