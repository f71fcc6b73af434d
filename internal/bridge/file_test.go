package bridge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

func writeSnapshot(t *testing.T, dir string, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SnapshotFile), []byte(body), 0o644))
}

func TestReadHappyPath(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, `{"tick": 7, "context": "gameplay", "game_mode_flags": []}`)

	b := New(dir)
	snap, err := b.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), snap.Tick)
	assert.Equal(t, domain.ModeExploration, snap.Mode())
}

func TestReadMissingSnapshotIsPublisherDown(t *testing.T) {
	b := New(t.TempDir())
	_, err := b.Read(context.Background())
	assert.ErrorIs(t, err, domain.ErrPublisherDown)
}

func TestReadStaleSnapshotIsPublisherDown(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, `{"tick": 7, "context": "gameplay"}`)

	frozen := time.Now().Add(45 * time.Second)
	b := New(dir, withClock(func() time.Time { return frozen }))

	_, err := b.Read(context.Background())
	assert.ErrorIs(t, err, domain.ErrPublisherDown)

	// A wider window accepts the same file.
	b = New(dir, withClock(func() time.Time { return frozen }), WithStaleness(time.Minute))
	_, err = b.Read(context.Background())
	assert.NoError(t, err)
}

func TestReadTornSnapshotIsPublisherDown(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, `{"tick": 7, "cont`)

	b := New(dir)
	_, err := b.Read(context.Background())
	assert.ErrorIs(t, err, domain.ErrPublisherDown)
}

func TestSubmitWritesWireFormat(t *testing.T) {
	dir := t.TempDir()
	b := New(dir)

	require.NoError(t, b.Submit(context.Background(), schema.NewBatch(schema.MoveTo(12502))))

	data, err := os.ReadFile(b.CommandPath())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	cmds := decoded["commands"].([]any)
	require.Len(t, cmds, 1)
	assert.Equal(t, "move_to", cmds[0].(map[string]any)["type"])

	// No temp residue.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSubmitRefusesWhileBatchPending(t *testing.T) {
	dir := t.TempDir()
	b := New(dir)
	ctx := context.Background()

	require.NoError(t, b.Submit(ctx, schema.NewBatch(schema.EndTurn())))

	err := b.Submit(ctx, schema.NewBatch(schema.EndTurn()))
	assert.ErrorIs(t, err, domain.ErrBatchPending)

	pending, err := b.Pending()
	require.NoError(t, err)
	assert.True(t, pending)

	// Publisher consumes the batch; the next submit goes through.
	require.NoError(t, os.Remove(b.CommandPath()))
	assert.NoError(t, b.Submit(ctx, schema.NewBatch(schema.EndTurn())))
}

func TestSubmitRejectsEmptyBatch(t *testing.T) {
	b := New(t.TempDir())
	assert.Error(t, b.Submit(context.Background(), schema.Batch{}))
}

func TestSubmitHonorsCancelledContext(t *testing.T) {
	b := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Submit(ctx, schema.NewBatch(schema.EndTurn())), context.Canceled)
}
