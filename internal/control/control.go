// Package control implements the high-level behaviors driven through the
// bridge: navigation, the combat autopilot, and dialogue tracking. Each loop
// follows the same shape: observe a snapshot, issue at most one batch, wait
// for the logical clock to prove it was applied, observe again.
package control

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/overseer/internal/logging"
	"github.com/aretw0/overseer/internal/metrics"
	"github.com/aretw0/overseer/internal/poller"
	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/ports"
	"github.com/aretw0/overseer/pkg/schema"
)

// syncAttempts bounds how many polls a loop waits for a submitted batch to
// be consumed and reflected in the tick.
const syncAttempts = 25

// Deps are the collaborators shared by every control loop.
type Deps struct {
	Bridge  ports.Bridge
	Poller  *poller.Poller
	Journal ports.Journal
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (d Deps) normalized() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewNop()
	}
	return d
}

// submitSynced submits one batch and waits until the tick moves past
// fromTick, returning the first snapshot that reflects the applied commands.
// A pending previous batch is waited out, one frame per retry.
func (d Deps) submitSynced(ctx context.Context, fromTick uint64, cmds ...schema.Command) (*schema.Snapshot, error) {
	batch := schema.NewBatch(cmds...)

	for attempt := 0; ; attempt++ {
		err := d.Bridge.Submit(ctx, batch)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrBatchPending) {
			return nil, err
		}
		if attempt >= syncAttempts {
			return nil, domain.ErrBatchPending
		}
		// The publisher consumes at most one batch per frame; give it one.
		if _, err := d.Poller.Next(ctx); err != nil {
			return nil, err
		}
	}

	d.Metrics.CommandsSubmitted.WithLabelValues(cmds[0].Type()).Inc()
	return d.Poller.WaitTickAdvance(ctx, fromTick, syncAttempts)
}

// note writes a journal entry, logging instead of failing when the journal
// is absent or broken. Losing a note must never abort a loop.
func (d Deps) note(ctx context.Context, note domain.Note) {
	if d.Journal == nil {
		return
	}
	if err := d.Journal.Note(ctx, note); err != nil {
		d.Logger.Warn("journal note failed", "category", note.Category, "err", err)
	}
}

func placeOf(snap *schema.Snapshot) (mapName string, tile domain.Tile) {
	if snap.Map != nil {
		mapName = snap.Map.Name
	}
	if snap.Player != nil {
		tile = snap.Player.Tile
	}
	return mapName, tile
}
