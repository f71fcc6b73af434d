// Package testutils provides the in-memory publisher used across the test
// suites. It honors the same contract as the file bridge: one batch in
// flight, tick advances on every publish, commands applied before the state
// is served.
package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

// FakeGame is a scripted publisher implementing ports.Bridge. Each Read
// plays one engine frame: consume any pending batch, advance the tick, run
// the per-tick script, serve a copy of the state.
type FakeGame struct {
	mu sync.Mutex

	// Snap is the state served to the controller. Scripts mutate it.
	Snap schema.Snapshot

	// OnCommand applies one consumed command to Snap. Nil means commands
	// are recorded but have no effect.
	OnCommand func(fg *FakeGame, cmd schema.Command)

	// PerTick runs after the tick advances, before the state is served.
	PerTick func(fg *FakeGame)

	// Down simulates the publisher not serving.
	Down bool

	// Submitted records every consumed command in order.
	Submitted []schema.Command

	pending *schema.Batch
}

// NewFakeGame returns a publisher serving an exploration state at tick 1.
func NewFakeGame() *FakeGame {
	return &FakeGame{
		Snap: schema.Snapshot{
			Tick:    1,
			Context: "gameplay",
			Player:  &schema.Player{Tile: 10000},
			Map:     &schema.MapInfo{Name: "TESTMAP.MAP", Index: 1},
		},
	}
}

// Read plays one frame and serves the resulting state.
func (fg *FakeGame) Read(ctx context.Context) (*schema.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fg.mu.Lock()
	defer fg.mu.Unlock()

	if fg.Down {
		return nil, fmt.Errorf("%w: fake publisher offline", domain.ErrPublisherDown)
	}

	if fg.pending != nil {
		batch := fg.pending
		fg.pending = nil
		for _, cmd := range batch.Commands {
			fg.Submitted = append(fg.Submitted, cmd)
			if fg.OnCommand != nil {
				fg.OnCommand(fg, cmd)
			}
		}
	}

	fg.Snap.Tick++
	if fg.PerTick != nil {
		fg.PerTick(fg)
	}

	return fg.copySnap()
}

// Submit stores one batch for the next frame to consume.
func (fg *FakeGame) Submit(ctx context.Context, batch schema.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fg.mu.Lock()
	defer fg.mu.Unlock()

	if fg.pending != nil {
		return domain.ErrBatchPending
	}
	cp := batch
	cp.Commands = append([]schema.Command(nil), batch.Commands...)
	fg.pending = &cp
	return nil
}

// Pending reports whether a batch awaits consumption.
func (fg *FakeGame) Pending() (bool, error) {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return fg.pending != nil, nil
}

// Mutate runs fn under the publisher lock, for scripts driven from the test
// body rather than from PerTick.
func (fg *FakeGame) Mutate(fn func(fg *FakeGame)) {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	fn(fg)
}

// Commands returns a copy of every consumed command in order.
func (fg *FakeGame) Commands() []schema.Command {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return append([]schema.Command(nil), fg.Submitted...)
}

// CommandTypes returns the types of every consumed command in order.
func (fg *FakeGame) CommandTypes() []string {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	types := make([]string, len(fg.Submitted))
	for i, cmd := range fg.Submitted {
		types[i] = cmd.Type()
	}
	return types
}

// The served snapshot is deep-copied through JSON so scripts mutating Snap
// never race a reader holding a previous frame.
func (fg *FakeGame) copySnap() (*schema.Snapshot, error) {
	data, err := json.Marshal(fg.Snap)
	if err != nil {
		return nil, fmt.Errorf("fake publisher state unserializable: %w", err)
	}
	var cp schema.Snapshot
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("fake publisher state unreadable: %w", err)
	}
	return &cp, nil
}

// DecodeParams maps a command's wire fields onto a typed parameter struct.
func DecodeParams(cmd schema.Command, out any) error {
	if err := mapstructure.Decode(map[string]any(cmd), out); err != nil {
		return fmt.Errorf("failed to decode %q params: %w", cmd.Type(), err)
	}
	return nil
}

// MoveParams are the fields of move_to, run_to and combat_move.
type MoveParams struct {
	Tile int `mapstructure:"tile"`
}

// AttackParams are the fields of attack.
type AttackParams struct {
	TargetID int64 `mapstructure:"target_id"`
}

// SelectParams are the fields of select_dialogue.
type SelectParams struct {
	Index int `mapstructure:"index"`
}
