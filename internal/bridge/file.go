// Package bridge implements the file exchange with the game-side publisher:
// reading the published snapshot and submitting command batches.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/overseer/internal/logging"
	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

const (
	// SnapshotFile is the document the publisher rewrites once per tick.
	SnapshotFile = "agent_state.json"

	// CommandFile is the batch the publisher consumes and deletes.
	CommandFile = "agent_cmd.json"
)

// FileBridge exchanges documents with the publisher through a shared
// directory. The publisher owns SnapshotFile; we own CommandFile until the
// publisher consumes it.
type FileBridge struct {
	dir       string
	staleness time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a FileBridge.
type Option func(*FileBridge)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *FileBridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithStaleness overrides how old the snapshot may be before the publisher
// is declared down.
func WithStaleness(window time.Duration) Option {
	return func(b *FileBridge) {
		if window > 0 {
			b.staleness = window
		}
	}
}

// withClock replaces the wall clock in tests.
func withClock(now func() time.Time) Option {
	return func(b *FileBridge) { b.now = now }
}

// New creates a FileBridge rooted at the game directory.
func New(dir string, opts ...Option) *FileBridge {
	b := &FileBridge{
		dir:       dir,
		staleness: 30 * time.Second,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SnapshotPath returns the full path of the published snapshot.
func (b *FileBridge) SnapshotPath() string {
	return filepath.Join(b.dir, SnapshotFile)
}

// CommandPath returns the full path of the command batch.
func (b *FileBridge) CommandPath() string {
	return filepath.Join(b.dir, CommandFile)
}

// Read returns the current snapshot. A missing, stale, or unparsable
// snapshot file means the publisher side is not serving, reported as
// domain.ErrPublisherDown so callers can distinguish it from their own
// faults.
func (b *FileBridge) Read(ctx context.Context) (*schema.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := b.SnapshotPath()
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no snapshot at %s", domain.ErrPublisherDown, path)
		}
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	if age := b.now().Sub(info.ModTime()); age > b.staleness {
		return nil, fmt.Errorf("%w: snapshot is %s old (window %s)",
			domain.ErrPublisherDown, age.Round(time.Second), b.staleness)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap schema.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// The publisher writes atomically, so a torn document means it is
		// misbehaving, not that we raced a write.
		return nil, fmt.Errorf("%w: snapshot unparsable: %v", domain.ErrPublisherDown, err)
	}
	return &snap, nil
}

// Submit writes one command batch atomically. While a previous batch is
// still on disk the publisher has not consumed it yet, and stacking a second
// batch would break the one-command-in-flight contract; that case is
// reported as domain.ErrBatchPending.
func (b *FileBridge) Submit(ctx context.Context, batch schema.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(batch.Commands) == 0 {
		return fmt.Errorf("refusing to submit an empty batch")
	}

	destPath := b.CommandPath()
	if _, err := os.Stat(destPath); err == nil {
		return domain.ErrBatchPending
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat command file: %w", err)
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	// Same directory as the destination so the rename stays on one
	// filesystem and is atomic.
	tmpFile, err := os.CreateTemp(b.dir, "tmp-cmd-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to publish batch: %w", err)
	}

	b.logger.Debug("batch submitted", "commands", len(batch.Commands), "first", batch.Commands[0].Type())
	return nil
}

// Pending reports whether a submitted batch is still awaiting consumption.
func (b *FileBridge) Pending() (bool, error) {
	_, err := os.Stat(b.CommandPath())
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat command file: %w", err)
}
