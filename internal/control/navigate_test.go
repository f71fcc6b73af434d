package control

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/overseer/internal/config"
	"github.com/aretw0/overseer/internal/testutils"
	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

func navConfig() config.NavigationConfig {
	cfg := config.Defaults().Navigation
	cfg.StuckPolls = 5
	cfg.BudgetPolls = 60
	return cfg
}

// scriptWalking makes the fake engine step one tile per frame toward the
// last requested destination, exposing waypoints while under way.
func scriptWalking(fg *testutils.FakeGame) {
	dest := domain.Tile(-1)
	fg.OnCommand = func(fg *testutils.FakeGame, cmd schema.Command) {
		switch cmd.Type() {
		case "move_to", "run_to":
			var p testutils.MoveParams
			if err := testutils.DecodeParams(cmd, &p); err == nil {
				dest = domain.Tile(p.Tile)
			}
		}
	}
	fg.PerTick = func(fg *testutils.FakeGame) {
		cur := fg.Snap.Player.Tile
		if dest < 0 || cur == dest {
			fg.Snap.Player.MovementWaypointsRemaining = 0
			fg.Snap.Player.AnimationBusy = false
			return
		}
		if cur < dest {
			cur++
		} else {
			cur--
		}
		fg.Snap.Player.Tile = cur
		remaining := int(dest - cur)
		if remaining < 0 {
			remaining = -remaining
		}
		fg.Snap.Player.MovementWaypointsRemaining = remaining
		fg.Snap.Player.AnimationBusy = remaining > 0
	}
}

func TestMoveToArrives(t *testing.T) {
	fg := testutils.NewFakeGame()
	scriptWalking(fg)
	nav := NewNavigator(newDeps(t, fg), navConfig())

	target := fg.Snap.Player.Tile + 20
	report, err := nav.MoveTo(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeOK, report.Outcome)
	assert.Equal(t, target, report.End)
	assert.LessOrEqual(t, report.Polls, navConfig().BudgetPolls)
}

func TestMoveToAlreadyThere(t *testing.T) {
	fg := testutils.NewFakeGame()
	nav := NewNavigator(newDeps(t, fg), navConfig())

	report, err := nav.MoveTo(context.Background(), fg.Snap.Player.Tile)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeOK, report.Outcome)
	assert.Empty(t, fg.CommandTypes(), "no command needed when already on the target tile")
}

func TestMoveToBlockedReportsObstacles(t *testing.T) {
	fg := testutils.NewFakeGame()
	locked := true
	open := false
	fg.Snap.Objects = &schema.Objects{
		Scenery: []schema.SceneryObject{
			{ID: 501, Name: "Vault Door", Tile: fg.Snap.Player.Tile + 2, SceneryType: "door", Locked: &locked, Open: &open},
			{ID: 502, Name: "Bookshelf", Tile: fg.Snap.Player.Tile + 150*200, SceneryType: "generic"},
		},
	}
	fg.OnCommand = func(fg *testutils.FakeGame, cmd schema.Command) {
		if cmd.Type() == "move_to" {
			fg.Snap.LastCommandResult = "move_to: no path"
		}
	}
	nav := NewNavigator(newDeps(t, fg), navConfig())

	report, err := nav.MoveTo(context.Background(), fg.Snap.Player.Tile+20)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeBlocked, report.Outcome)
	require.NotEmpty(t, report.Obstacles)
	assert.Equal(t, int64(501), report.Obstacles[0].ID)
	require.NotNil(t, report.Obstacles[0].Locked)
	assert.True(t, *report.Obstacles[0].Locked)
	// The far-away bookshelf stays out of the obstacle report.
	assert.Len(t, report.Obstacles, 1)
}

func TestMoveToIdleShortOfTargetIsBlocked(t *testing.T) {
	fg := testutils.NewFakeGame()
	// Engine accepts the command but never moves and never claims to.
	nav := NewNavigator(newDeps(t, fg), navConfig())

	report, err := nav.MoveTo(context.Background(), fg.Snap.Player.Tile+20)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBlocked, report.Outcome)
}

func TestMoveToStuck(t *testing.T) {
	fg := testutils.NewFakeGame()
	// Engine claims to be walking forever without the tile ever changing.
	fg.PerTick = func(fg *testutils.FakeGame) {
		fg.Snap.Player.AnimationBusy = true
		fg.Snap.Player.MovementWaypointsRemaining = 7
	}
	cfg := navConfig()
	nav := NewNavigator(newDeps(t, fg), cfg)

	report, err := nav.MoveTo(context.Background(), fg.Snap.Player.Tile+20)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeStuck, report.Outcome)
	assert.GreaterOrEqual(t, report.Polls, cfg.StuckPolls)
}

func TestMoveToInterruptedByCombat(t *testing.T) {
	fg := testutils.NewFakeGame()
	scriptWalking(fg)
	frames := 0
	base := fg.PerTick
	fg.PerTick = func(fg *testutils.FakeGame) {
		base(fg)
		frames++
		if frames == 5 {
			fg.Snap.Context = "gameplay_combat"
			fg.Snap.GameModeFlags = []string{"combat"}
		}
	}
	nav := NewNavigator(newDeps(t, fg), navConfig())

	report, err := nav.MoveTo(context.Background(), fg.Snap.Player.Tile+40)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInterrupted, report.Outcome)
}

func TestMoveToDetectsTransition(t *testing.T) {
	fg := testutils.NewFakeGame()
	scriptWalking(fg)
	frames := 0
	base := fg.PerTick
	fg.PerTick = func(fg *testutils.FakeGame) {
		base(fg)
		frames++
		if frames == 4 {
			fg.Snap.Map.Index = 9
			fg.Snap.Map.Name = "NEXTMAP.MAP"
		}
	}
	nav := NewNavigator(newDeps(t, fg), navConfig())

	report, err := nav.MoveTo(context.Background(), fg.Snap.Player.Tile+40)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeTransitioned, report.Outcome)
	assert.True(t, report.MapChanged)
}

func TestMoveToNearestExitCrossesNearestGrid(t *testing.T) {
	fg := testutils.NewFakeGame()
	start := fg.Snap.Player.Tile
	near := start + 5
	far := start + 60
	fg.Snap.Objects = &schema.Objects{
		ExitGrids: []schema.ExitGrid{
			{ID: 2, Tile: far, Distance: 60, DestinationMap: 7},
			{ID: 1, Tile: near, Distance: 5, DestinationMap: 7},
		},
	}
	scriptWalking(fg)
	base := fg.PerTick
	fg.PerTick = func(fg *testutils.FakeGame) {
		base(fg)
		if fg.Snap.Player.Tile == near {
			fg.Snap.Map.Index = 7
		}
	}
	nav := NewNavigator(newDeps(t, fg), navConfig())

	report, err := nav.MoveToNearestExit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeTransitioned, report.Outcome)

	var p testutils.MoveParams
	require.NoError(t, testutils.DecodeParams(fg.Commands()[0], &p))
	assert.Equal(t, int(near), p.Tile, "nearest grid is tried first")
}

func TestMoveToNearestExitSkipsDudGrids(t *testing.T) {
	fg := testutils.NewFakeGame()
	start := fg.Snap.Player.Tile
	dud := start + 5
	real := start + 12
	fg.Snap.Objects = &schema.Objects{
		ExitGrids: []schema.ExitGrid{
			{ID: 1, Tile: dud, Distance: 5, DestinationMap: 7},
			{ID: 2, Tile: real, Distance: 12, DestinationMap: 7},
		},
	}
	scriptWalking(fg)
	base := fg.PerTick
	fg.PerTick = func(fg *testutils.FakeGame) {
		base(fg)
		if fg.Snap.Player.Tile == real {
			fg.Snap.Map.Index = 7
		}
	}
	nav := NewNavigator(newDeps(t, fg), navConfig())

	report, err := nav.MoveToNearestExit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeTransitioned, report.Outcome)
	types := fg.CommandTypes()
	assert.GreaterOrEqual(t, len(types), 2, "the dud grid is reached first, then the next candidate")
}

func TestMoveToNearestExitFiltersByDestination(t *testing.T) {
	fg := testutils.NewFakeGame()
	start := fg.Snap.Player.Tile
	caves := start + 4
	temple := start + 9
	fg.Snap.Objects = &schema.Objects{
		ExitGrids: []schema.ExitGrid{
			{ID: 1, Tile: caves, Distance: 4, DestinationMap: 6, DestinationMapName: "ARCAVES.MAP"},
			{ID: 2, Tile: temple, Distance: 9, DestinationMap: 8, DestinationMapName: "ARTEMPLE.MAP"},
		},
	}
	scriptWalking(fg)
	base := fg.PerTick
	fg.PerTick = func(fg *testutils.FakeGame) {
		base(fg)
		if fg.Snap.Player.Tile == temple {
			fg.Snap.Map.Index = 8
		}
	}
	nav := NewNavigator(newDeps(t, fg), navConfig())

	report, err := nav.MoveToNearestExit(context.Background(), WithDestination("temple"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeTransitioned, report.Outcome)

	// The closer caves grid is skipped entirely.
	var p testutils.MoveParams
	require.NoError(t, testutils.DecodeParams(fg.Commands()[0], &p))
	assert.Equal(t, int(temple), p.Tile)

	_, err = nav.MoveToNearestExit(context.Background(), WithDestination("vault city"))
	assert.ErrorIs(t, err, ErrNoExitGrids)
}

func TestMoveToNearestExitWithoutGrids(t *testing.T) {
	fg := testutils.NewFakeGame()
	nav := NewNavigator(newDeps(t, fg), navConfig())

	_, err := nav.MoveToNearestExit(context.Background())
	assert.ErrorIs(t, err, ErrNoExitGrids)
}
