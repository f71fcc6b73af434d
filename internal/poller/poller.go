// Package poller runs the background snapshot loop and exposes the wait
// primitives every control loop is built on.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/overseer/internal/logging"
	"github.com/aretw0/overseer/internal/metrics"
	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/ports"
	"github.com/aretw0/overseer/pkg/schema"
)

// ErrStopped is returned by waits after the background loop has exited.
var ErrStopped = errors.New("poller stopped")

type event struct {
	snap *schema.Snapshot
	err  error
}

// Poller reads the snapshot on a fixed cadence and fans each result out to
// whoever is currently waiting. Waits are attempt-bounded, never
// deadline-bounded: the logical clock of the publisher is the only clock
// the loops trust.
type Poller struct {
	bridge   ports.Bridge
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu       sync.Mutex
	subs     map[int]chan event
	nextID   int
	last     *schema.Snapshot
	lastMode domain.Mode

	done chan struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the poll cadence.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the instrument set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) {
		if m != nil {
			p.metrics = m
		}
	}
}

// New creates a Poller over the given bridge. Run must be started before
// any wait primitive resolves.
func New(bridge ports.Bridge, opts ...Option) *Poller {
	p := &Poller{
		bridge:   bridge,
		interval: 400 * time.Millisecond,
		logger:   logging.NewNop(),
		metrics:  metrics.NewNop(),
		subs:     make(map[int]chan event),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until the context is cancelled. It always returns the context's
// error; waiters blocked at that point observe ErrStopped.
func (p *Poller) Run(ctx context.Context) error {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.pollOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	snap, err := p.bridge.Read(ctx)
	switch {
	case err == nil:
		p.metrics.Polls.WithLabelValues("ok").Inc()
	case errors.Is(err, domain.ErrPublisherDown):
		p.metrics.Polls.WithLabelValues("publisher_down").Inc()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	default:
		p.metrics.Polls.WithLabelValues("error").Inc()
		p.logger.Warn("snapshot read failed", "err", err)
	}

	p.mu.Lock()
	if snap != nil {
		p.last = snap
		if mode := snap.Mode(); mode != p.lastMode {
			p.metrics.ModeTransitions.WithLabelValues(string(mode)).Inc()
			p.logger.Debug("mode changed", "from", p.lastMode, "to", mode, "tick", snap.Tick)
			p.lastMode = mode
		}
	}
	ev := event{snap: snap, err: err}
	for id, ch := range p.subs {
		ch <- ev
		delete(p.subs, id)
	}
	p.mu.Unlock()
}

// Last returns the most recent successfully read snapshot, or nil before the
// first one.
func (p *Poller) Last() *schema.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Next blocks until the next poll completes and returns its result.
func (p *Poller) Next(ctx context.Context) (*schema.Snapshot, error) {
	ch := make(chan event, 1)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrStopped
	case ev := <-ch:
		return ev.snap, ev.err
	}
}

// Await resolves when a polled snapshot satisfies pred, giving up with
// domain.ErrAttemptsExhausted after maxAttempts polls. A publisher-down
// read aborts the wait immediately; nothing useful can arrive while the
// engine is not serving.
func (p *Poller) Await(ctx context.Context, maxAttempts int, pred func(*schema.Snapshot) bool) (*schema.Snapshot, error) {
	defer p.observe("await", time.Now())

	for i := 0; i < maxAttempts; i++ {
		snap, err := p.Next(ctx)
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			continue
		}
		if pred(snap) {
			return snap, nil
		}
	}
	return nil, domain.ErrAttemptsExhausted
}

// WaitIdle resolves once the player has no running animation, no movement
// waypoints queued, and no command batch awaiting consumption.
func (p *Poller) WaitIdle(ctx context.Context, maxAttempts int) (*schema.Snapshot, error) {
	defer p.observe("idle", time.Now())

	for i := 0; i < maxAttempts; i++ {
		snap, err := p.Next(ctx)
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			continue
		}
		pending, err := p.bridge.Pending()
		if err != nil {
			return nil, err
		}
		if pending {
			continue
		}
		if snapshotIdle(snap) {
			return snap, nil
		}
	}
	return nil, domain.ErrAttemptsExhausted
}

// WaitContext resolves once the snapshot classifies as exactly want.
func (p *Poller) WaitContext(ctx context.Context, want domain.Mode, maxAttempts int) (*schema.Snapshot, error) {
	defer p.observe("context", time.Now())

	return p.Await(ctx, maxAttempts, func(s *schema.Snapshot) bool {
		return s.Mode() == want
	})
}

// WaitContextPrefix resolves once the mode name starts with prefix. A
// cutscene seen along the way is skipped so the wait does not sit through
// the whole movie; a pending batch just delays the skip to a later poll.
func (p *Poller) WaitContextPrefix(ctx context.Context, prefix string, maxAttempts int) (*schema.Snapshot, error) {
	defer p.observe("context_prefix", time.Now())

	for attempt := 0; attempt < maxAttempts; {
		snap, err := p.Next(ctx)
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			attempt++
			continue
		}
		mode := snap.Mode()
		if mode.HasPrefix(prefix) {
			return snap, nil
		}
		if mode == domain.ModeCutscene {
			err := p.bridge.Submit(ctx, schema.NewBatch(schema.Skip()))
			if err == nil {
				p.metrics.CommandsSubmitted.WithLabelValues("skip").Inc()
				// An accepted skip is progress; a movie chain of any length
				// must not exhaust the budget.
				continue
			}
			if !errors.Is(err, domain.ErrBatchPending) {
				return nil, err
			}
		}
		attempt++
	}
	return nil, domain.ErrAttemptsExhausted
}

// WaitTickAdvance resolves once the publisher's tick moves past fromTick,
// which proves the previously submitted batch was consumed and applied.
func (p *Poller) WaitTickAdvance(ctx context.Context, fromTick uint64, maxAttempts int) (*schema.Snapshot, error) {
	defer p.observe("tick_advance", time.Now())

	return p.Await(ctx, maxAttempts, func(s *schema.Snapshot) bool {
		return s.Tick > fromTick
	})
}

func (p *Poller) observe(primitive string, start time.Time) {
	p.metrics.WaitDuration.WithLabelValues(primitive).Observe(time.Since(start).Seconds())
}

func snapshotIdle(s *schema.Snapshot) bool {
	if s.Player == nil {
		return true
	}
	return !s.Player.AnimationBusy && s.Player.MovementWaypointsRemaining == 0
}

func isFatal(err error) bool {
	return errors.Is(err, domain.ErrPublisherDown) ||
		errors.Is(err, ErrStopped) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
