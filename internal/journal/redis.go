package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/overseer/pkg/domain"
)

// RedisJournal stores notes as a Redis list, newest first.
type RedisJournal struct {
	client *backend.Client
	key    string
	now    func() time.Time
}

// RedisOption configures a RedisJournal.
type RedisOption func(*RedisJournal)

// WithKey overrides the list key.
func WithKey(key string) RedisOption {
	return func(j *RedisJournal) {
		if key != "" {
			j.key = key
		}
	}
}

// NewRedis creates a journal against a Redis server.
func NewRedis(address string, opts ...RedisOption) *RedisJournal {
	client := backend.NewClient(&backend.Options{Addr: address})
	return NewRedisFromClient(client, opts...)
}

// NewRedisFromClient creates a journal from an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *RedisJournal {
	j := &RedisJournal{
		client: client,
		key:    "overseer:journal",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Note appends one note to the head of the list.
func (j *RedisJournal) Note(ctx context.Context, note domain.Note) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = j.now().UTC()
	}
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to marshal note: %w", err)
	}
	if err := j.client.LPush(ctx, j.key, data).Err(); err != nil {
		return fmt.Errorf("failed to push note: %w", err)
	}
	return nil
}

// Recall returns notes whose text or category contains the keyword,
// newest first.
func (j *RedisJournal) Recall(ctx context.Context, keyword string) ([]domain.Note, error) {
	items, err := j.client.LRange(ctx, j.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var notes []domain.Note
	for _, item := range items {
		var note domain.Note
		if err := json.Unmarshal([]byte(item), &note); err != nil {
			return nil, fmt.Errorf("journal entry unreadable: %w", err)
		}
		note.Text = strings.TrimSpace(note.Text)
		if matches(note, keyword) {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

// Close closes the underlying client.
func (j *RedisJournal) Close() error {
	return j.client.Close()
}
