// Package journal persists the notes the control loops leave behind:
// conversation summaries, combat reports, obstacles worth remembering.
// The file backend keeps them as markdown documents with frontmatter so a
// human can read the journal directly; the redis backend serves setups
// where the controller host is not where the notes are wanted.
package journal

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/loam"

	"github.com/aretw0/overseer/pkg/domain"
)

// FileJournal stores notes as markdown documents in a directory.
type FileJournal struct {
	repo *loam.TypedRepository[domain.Note]
	now  func() time.Time

	mu  sync.Mutex
	seq int
}

// NewFile opens (or creates) a file journal rooted at dir.
func NewFile(dir string) (*FileJournal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure journal directory: %w", err)
	}
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal directory: %w", err)
	}
	return &FileJournal{
		repo: loam.NewTypedRepository[domain.Note](repo),
		now:  time.Now,
	}, nil
}

// Note appends one note. The note text becomes the document body; the rest
// of the note travels in the frontmatter.
func (j *FileJournal) Note(ctx context.Context, note domain.Note) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = j.now().UTC()
	}

	j.mu.Lock()
	j.seq++
	id := fmt.Sprintf("%s-%03d-%s", note.CreatedAt.Format("20060102-150405"), j.seq, slug(note.Category))
	j.mu.Unlock()

	meta := note
	meta.Text = ""

	err := j.repo.Save(ctx, &loam.DocumentModel[domain.Note]{
		ID:      id,
		Content: note.Text,
		Data:    meta,
	})
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

// Recall returns notes whose text or category contains the keyword,
// newest first. An empty keyword returns everything.
func (j *FileJournal) Recall(ctx context.Context, keyword string) ([]domain.Note, error) {
	docs, err := j.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}

	var notes []domain.Note
	for _, doc := range docs {
		note := doc.Data
		note.Text = strings.TrimSpace(doc.Content)
		if matches(note, keyword) {
			notes = append(notes, note)
		}
	}

	sort.Slice(notes, func(a, b int) bool {
		return notes[a].CreatedAt.After(notes[b].CreatedAt)
	})
	return notes, nil
}

func matches(note domain.Note, keyword string) bool {
	if keyword == "" {
		return true
	}
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(note.Text), k) ||
		strings.Contains(strings.ToLower(note.Category), k) ||
		strings.Contains(strings.ToLower(note.Map), k)
}

func slug(s string) string {
	if s == "" {
		return "note"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "note"
	}
	return b.String()
}
