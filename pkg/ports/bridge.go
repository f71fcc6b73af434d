package ports

import (
	"context"

	"github.com/aretw0/overseer/pkg/schema"
)

// Bridge is the snapshot/command channel to the publisher process.
type Bridge interface {
	// Read returns the latest published snapshot. It fails with
	// domain.ErrPublisherDown when the snapshot is missing, stale, or
	// unparsable.
	Read(ctx context.Context) (*schema.Snapshot, error)

	// Submit writes one command batch atomically. It fails with
	// domain.ErrBatchPending while the previous batch is unconsumed: the
	// single-outstanding-command invariant is enforced here, before the wire.
	Submit(ctx context.Context, batch schema.Batch) error

	// Pending reports whether a submitted batch is still awaiting
	// consumption.
	Pending() (bool, error)
}
