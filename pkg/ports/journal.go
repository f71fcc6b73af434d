package ports

import (
	"context"

	"github.com/aretw0/overseer/pkg/domain"
)

// Journal is the knowledge sink the control loops write short structured
// notes to: conversation summaries, combat reports, obstacles worth
// remembering.
type Journal interface {
	// Note appends one note.
	Note(ctx context.Context, note domain.Note) error

	// Recall returns notes whose text or category contains the keyword,
	// newest first.
	Recall(ctx context.Context, keyword string) ([]domain.Note, error)
}
