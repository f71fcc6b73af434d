// Package session owns the wiring of one controller instance: bridge,
// poller, journal, metrics, and the control loops, all built from one
// Config. Every piece of cross-call state lives here; nothing is package
// global.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/overseer/internal/bridge"
	"github.com/aretw0/overseer/internal/config"
	"github.com/aretw0/overseer/internal/control"
	"github.com/aretw0/overseer/internal/journal"
	"github.com/aretw0/overseer/internal/logging"
	"github.com/aretw0/overseer/internal/metrics"
	"github.com/aretw0/overseer/internal/poller"
	"github.com/aretw0/overseer/pkg/ports"
	"github.com/aretw0/overseer/pkg/schema"
)

// Session is one live controller instance.
type Session struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Bridge  ports.Bridge
	Poller  *poller.Poller
	Journal ports.Journal

	Navigator *control.Navigator
	Autopilot *control.Autopilot

	cancel  context.CancelFunc
	done    chan struct{}
	closers []io.Closer
}

// Option configures a Session before wiring.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithBridge substitutes the transport, used by tests and embedders.
func WithBridge(b ports.Bridge) Option {
	return func(s *Session) { s.Bridge = b }
}

// WithJournal substitutes the journal backend.
func WithJournal(j ports.Journal) Option {
	return func(s *Session) { s.Journal = j }
}

// New wires a session from the configuration. Start must be called before
// any wait primitive or control loop can make progress.
func New(cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		Config: cfg,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Registry = prometheus.NewRegistry()
	s.Metrics = metrics.New(s.Registry)

	if s.Bridge == nil {
		s.Bridge = bridge.New(cfg.GameDir,
			bridge.WithStaleness(cfg.StalenessWindow.Std()),
			bridge.WithLogger(s.Logger),
		)
	}

	if s.Journal == nil {
		switch cfg.Journal.Backend {
		case "redis":
			j := journal.NewRedis(cfg.Journal.RedisAddr)
			s.Journal = j
			s.closers = append(s.closers, j)
		default:
			j, err := journal.NewFile(cfg.Journal.Dir)
			if err != nil {
				return nil, fmt.Errorf("failed to open journal: %w", err)
			}
			s.Journal = j
		}
	}

	s.Poller = poller.New(s.Bridge,
		poller.WithInterval(cfg.PollInterval.Std()),
		poller.WithLogger(s.Logger),
		poller.WithMetrics(s.Metrics),
	)

	deps := s.Deps()
	s.Navigator = control.NewNavigator(deps, cfg.Navigation)
	s.Autopilot = control.NewAutopilot(deps, cfg.Combat)

	return s, nil
}

// Deps exposes the control-loop collaborators for custom loops.
func (s *Session) Deps() control.Deps {
	return control.Deps{
		Bridge:  s.Bridge,
		Poller:  s.Poller,
		Journal: s.Journal,
		Logger:  s.Logger,
		Metrics: s.Metrics,
	}
}

// NewTracker creates a fresh dialogue tracker. One tracker follows one
// conversation.
func (s *Session) NewTracker() *control.Tracker {
	return control.NewTracker(s.Deps())
}

// Start launches the background poller. It returns immediately.
func (s *Session) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.Poller.Run(runCtx); err != nil && runCtx.Err() == nil {
			s.Logger.Error("poller exited", "err", err)
		}
	}()
}

// Snapshot returns the latest successfully polled snapshot, nil before the
// first one.
func (s *Session) Snapshot() *schema.Snapshot {
	return s.Poller.Last()
}

// Close stops the poller and releases backend connections.
func (s *Session) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	var firstErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
