package control

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/overseer/internal/config"
	"github.com/aretw0/overseer/internal/policy"
	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

// ErrNoExitGrids is returned when a map transition is requested but no exit
// grid is visible on the current elevation.
var ErrNoExitGrids = errors.New("no exit grids visible")

// Navigator drives overland movement and map transitions.
type Navigator struct {
	deps Deps
	cfg  config.NavigationConfig
}

// NewNavigator creates a Navigator.
func NewNavigator(deps Deps, cfg config.NavigationConfig) *Navigator {
	return &Navigator{deps: deps.normalized(), cfg: cfg}
}

// MoveReport describes how one movement attempt ended.
type MoveReport struct {
	Outcome domain.Outcome
	Start   domain.Tile
	End     domain.Tile
	Target  domain.Tile
	Polls   int

	// MapChanged is set when the attempt ended on a different map or
	// elevation than it started on.
	MapChanged bool

	// Obstacles lists scenery near the player after a blocked move,
	// closest first.
	Obstacles []schema.SceneryObject

	// Diagnostic is the last engine diagnostic observed, if any.
	Diagnostic string
}

type moveOptions struct {
	run bool
}

// MoveOption configures one movement attempt.
type MoveOption func(*moveOptions)

// WithRun makes the subject run instead of walk.
func WithRun() MoveOption {
	return func(o *moveOptions) { o.run = true }
}

// MoveTo walks (or runs) the subject to the target tile and reports how the
// attempt ended. Progress is judged purely from published snapshots: tile
// changes mean progress, an idle engine short of the target means blocked,
// and a persistent lack of tile changes while the engine claims to be
// moving means stuck.
func (n *Navigator) MoveTo(ctx context.Context, target domain.Tile, opts ...MoveOption) (*MoveReport, error) {
	var options moveOptions
	for _, opt := range opts {
		opt(&options)
	}

	snap, err := n.deps.Poller.Next(ctx)
	if err != nil {
		return nil, err
	}

	report := &MoveReport{Target: target, Outcome: domain.OutcomeTimeout}
	if snap.Player != nil {
		report.Start = snap.Player.Tile
		report.End = snap.Player.Tile
		if snap.Player.Tile == target {
			report.Outcome = domain.OutcomeOK
			return n.finish(ctx, report, snap), nil
		}
	}
	startMap, startElev := mapIdentity(snap)

	cmd := schema.MoveTo(target)
	if options.run {
		cmd = schema.RunTo(target)
	}
	snap, err = n.deps.submitSynced(ctx, snap.Tick, cmd)
	if err != nil {
		return nil, err
	}

	stuck := policy.NewBreaker(n.cfg.StuckPolls)
	idle := policy.NewBreaker(2)
	lastTile := report.Start

	for poll := 0; poll < n.cfg.BudgetPolls; poll++ {
		report.Polls = poll + 1
		if diag := snap.Diagnostic(); diag != "" {
			report.Diagnostic = diag
		}

		if snap.PlayerDead {
			report.Outcome = domain.OutcomeDead
			return n.finish(ctx, report, snap), nil
		}

		if m, e := mapIdentity(snap); m != startMap || e != startElev {
			report.Outcome = domain.OutcomeTransitioned
			report.MapChanged = true
			return n.finish(ctx, report, snap), nil
		}

		switch mode := snap.Mode(); mode {
		case domain.ModeWorldMap:
			// Crossing an exit grid onto the world map is a transition even
			// though no new local map is loaded yet.
			report.Outcome = domain.OutcomeTransitioned
			report.MapChanged = true
			return n.finish(ctx, report, snap), nil
		case domain.ModeCombatMine, domain.ModeCombatTheirs, domain.ModeDialogue:
			report.Outcome = domain.OutcomeInterrupted
			return n.finish(ctx, report, snap), nil
		}

		if snap.Player != nil {
			tile := snap.Player.Tile
			report.End = tile

			if tile == target {
				report.Outcome = domain.OutcomeOK
				return n.finish(ctx, report, snap), nil
			}

			if tile != lastTile {
				lastTile = tile
				stuck.Success()
				idle.Success()
			} else {
				moving := snap.Player.AnimationBusy || snap.Player.MovementWaypointsRemaining > 0
				if ClassifyDiagnostic(snap.Diagnostic()) == ReasonNoPath {
					report.Outcome = domain.OutcomeBlocked
					report.Obstacles = n.scanObstacles(snap)
					return n.finish(ctx, report, snap), nil
				}
				if !moving && idle.Fail() {
					report.Outcome = domain.OutcomeBlocked
					report.Obstacles = n.scanObstacles(snap)
					return n.finish(ctx, report, snap), nil
				}
				if moving && stuck.Fail() {
					report.Outcome = domain.OutcomeStuck
					return n.finish(ctx, report, snap), nil
				}
			}
		}

		snap, err = n.deps.Poller.Next(ctx)
		if err != nil {
			return nil, err
		}
	}

	return n.finish(ctx, report, snap), nil
}

type exitOptions struct {
	destination string
}

// ExitOption configures an exit-grid search.
type ExitOption func(*exitOptions)

// WithDestination keeps only exit grids whose destination map name contains
// the given substring, case-insensitively.
func WithDestination(substr string) ExitOption {
	return func(o *exitOptions) { o.destination = substr }
}

// MoveToNearestExit tries the closest visible exit grids in order until one
// of them actually changes the map. Reaching a grid tile without a
// transition does not count; exit grids only fire when crossed.
func (n *Navigator) MoveToNearestExit(ctx context.Context, opts ...ExitOption) (*MoveReport, error) {
	var options exitOptions
	for _, opt := range opts {
		opt(&options)
	}

	snap, err := n.deps.Poller.Next(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Objects == nil || len(snap.Objects.ExitGrids) == 0 {
		return nil, ErrNoExitGrids
	}

	grids := make([]schema.ExitGrid, 0, len(snap.Objects.ExitGrids))
	for _, grid := range snap.Objects.ExitGrids {
		if options.destination != "" &&
			!strings.Contains(strings.ToLower(grid.DestinationMapName), strings.ToLower(options.destination)) {
			continue
		}
		grids = append(grids, grid)
	}
	if len(grids) == 0 {
		return nil, ErrNoExitGrids
	}
	sort.Slice(grids, func(a, b int) bool {
		return grids[a].Distance < grids[b].Distance
	})
	if len(grids) > n.cfg.ExitCandidates {
		grids = grids[:n.cfg.ExitCandidates]
	}

	var last *MoveReport
	for _, grid := range grids {
		report, err := n.MoveTo(ctx, grid.Tile, WithRun())
		if err != nil {
			return last, err
		}
		last = report

		switch report.Outcome {
		case domain.OutcomeTransitioned:
			return report, nil
		case domain.OutcomeInterrupted, domain.OutcomeDead:
			// Not ours to retry past.
			return report, nil
		}
		n.deps.Logger.Debug("exit grid did not transition",
			"tile", grid.Tile, "outcome", report.Outcome)
	}
	return last, nil
}

// scanObstacles returns the scenery within the obstacle radius of the
// player, closest first. Doors and other blockers show up here after a
// blocked move so the caller can decide what to open, unlock, or avoid.
func (n *Navigator) scanObstacles(snap *schema.Snapshot) []schema.SceneryObject {
	if snap.Objects == nil || snap.Player == nil {
		return nil
	}
	var found []schema.SceneryObject
	for _, obj := range snap.Objects.Scenery {
		if snap.Player.Tile.DistanceTo(obj.Tile) <= n.cfg.ObstacleRadius {
			found = append(found, obj)
		}
	}
	sort.Slice(found, func(a, b int) bool {
		return snap.Player.Tile.DistanceTo(found[a].Tile) < snap.Player.Tile.DistanceTo(found[b].Tile)
	})
	return found
}

func (n *Navigator) finish(ctx context.Context, report *MoveReport, snap *schema.Snapshot) *MoveReport {
	n.deps.Metrics.LoopOutcomes.WithLabelValues("navigate", string(report.Outcome)).Inc()
	n.deps.Logger.Info("move finished",
		"outcome", report.Outcome, "target", report.Target, "end", report.End, "polls", report.Polls)

	if report.Outcome == domain.OutcomeBlocked && len(report.Obstacles) > 0 {
		mapName, tile := placeOf(snap)
		n.deps.note(ctx, domain.Note{
			Category: "obstacle",
			Text: fmt.Sprintf("Move to %d blocked near %d; closest scenery: %s",
				report.Target, report.End, report.Obstacles[0].Name),
			Map:  mapName,
			Tile: tile,
			Tick: snap.Tick,
		})
	}
	return report
}

func mapIdentity(snap *schema.Snapshot) (int, int) {
	if snap.Map == nil {
		return -1, -1
	}
	return snap.Map.Index, snap.Map.Elevation
}
