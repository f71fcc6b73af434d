package control

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/overseer/internal/config"
	"github.com/aretw0/overseer/internal/policy"
	"github.com/aretw0/overseer/internal/testutils"
	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

func combatConfig() config.CombatConfig {
	return config.Defaults().Combat
}

// combatGame builds a fake publisher mid-encounter: our turn, one melee
// hostile adjacent, a knife in hand.
func combatGame(t *testing.T) *testutils.FakeGame {
	t.Helper()

	fg := testutils.NewFakeGame()
	fg.Snap.Context = "gameplay_combat"
	fg.Snap.GameModeFlags = []string{"combat", "player_turn"}
	fg.Snap.Character = &schema.Character{
		DerivedStats: schema.DerivedStats{CurrentHP: 40, MaxHP: 40},
	}
	fg.Snap.Inventory = &schema.Inventory{
		Equipped: schema.Equipped{
			RightHand: &schema.EquippedItem{PID: 4, Name: "Knife"},
		},
	}
	fg.Snap.Combat = &schema.Combat{
		CurrentAP:          8,
		ActiveHand:         "right",
		CurrentHitModeName: "swing",
		ActiveWeapon: schema.ActiveWeapon{
			Name:    "Knife",
			Primary: schema.AttackMode{APCost: 3, Range: 1, DamageMin: 1, DamageMax: 6},
		},
		Hostiles: []schema.Hostile{
			{ID: 9001, Name: "Radscorpion", Tile: fg.Snap.Player.Tile + 1, Distance: 1, HP: 10, MaxHP: 26},
		},
		CombatRound: 1,
	}
	return fg
}

// scriptBasicCombat gives the fake the minimal engine behaviors: attacks
// land for 6, end_turn on a cleared field ends the encounter.
func scriptBasicCombat(fg *testutils.FakeGame) {
	fg.OnCommand = func(fg *testutils.FakeGame, cmd schema.Command) {
		c := fg.Snap.Combat
		switch cmd.Type() {
		case "attack":
			if c.CurrentAP < 3 {
				fg.Snap.LastCommandResult = "attack: REJECTED — not enough AP"
				return
			}
			c.CurrentAP -= 3
			h := &c.Hostiles[0]
			h.HP -= 6
			if h.HP < 0 {
				h.HP = 0
			}
			fg.Snap.LastCommandResult = "attack: hit for 6"
		case "end_turn":
			fg.Snap.LastCommandResult = "end_turn: ap=0"
			if len(c.AliveHostiles()) == 0 {
				fg.Snap.Context = "gameplay"
				fg.Snap.GameModeFlags = nil
				fg.Snap.Combat = nil
			} else {
				c.CombatRound++
				c.CurrentAP = 8
			}
		case "flee_combat":
			fg.Snap.LastCommandResult = "flee_combat: attempted"
			fg.Snap.Context = "gameplay"
			fg.Snap.GameModeFlags = nil
			fg.Snap.Combat = nil
		}
	}
}

func TestAutopilotClearsEncounter(t *testing.T) {
	fg := combatGame(t)
	scriptBasicCombat(fg)
	ap := NewAutopilot(newDeps(t, fg), combatConfig())

	report, err := ap.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeOK, report.Outcome)
	assert.Equal(t, 1, report.Kills)
	assert.False(t, report.Fled)

	types := fg.CommandTypes()
	assert.Equal(t, "attack", types[0])
	assert.Equal(t, "end_turn", types[len(types)-1])
}

func TestAutopilotEndsTurnWithoutActionPoints(t *testing.T) {
	fg := combatGame(t)
	fg.Snap.Combat.CurrentAP = 0
	fg.Snap.Combat.FreeMove = 0
	scriptBasicCombat(fg)
	// With AP restored next round the fight proceeds normally.
	ap := NewAutopilot(newDeps(t, fg), combatConfig())

	report, err := ap.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeOK, report.Outcome)
	assert.Equal(t, "end_turn", fg.CommandTypes()[0],
		"no action points and no free move leaves end-turn as the only move")
}

func TestAutopilotEndsTurnWhenAttackUnaffordable(t *testing.T) {
	fg := combatGame(t)
	// Points remain, but not enough for one knife swing (cost 3), and the
	// hostile is already adjacent: repositioning buys nothing.
	fg.Snap.Combat.CurrentAP = 2
	fg.Snap.Combat.FreeMove = 0
	scriptBasicCombat(fg)
	ap := NewAutopilot(newDeps(t, fg), combatConfig())

	report, err := ap.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeOK, report.Outcome)
	types := fg.CommandTypes()
	assert.Equal(t, "end_turn", types[0],
		"too few points for an attack and no free move yields the turn")
	assert.NotContains(t, types, "combat_move")
}

func TestAutopilotFleesBeforeHealingWhenCritical(t *testing.T) {
	fg := combatGame(t)
	fg.Snap.Character.DerivedStats.CurrentHP = 6 // 15% of max
	scriptBasicCombat(fg)
	ap := NewAutopilot(newDeps(t, fg), combatConfig())

	report, err := ap.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeFled, report.Outcome)
	assert.True(t, report.Fled)

	types := fg.CommandTypes()
	require.NotEmpty(t, types)
	assert.Equal(t, "flee_combat", types[0],
		"critical health must flee before any heal or attack")
	assert.NotContains(t, types, "use_combat_item")
}

func TestAutopilotFleeFailureFallsBackToEndTurn(t *testing.T) {
	fg := combatGame(t)
	fg.Snap.Character.DerivedStats.CurrentHP = 6
	fleesSeen := 0
	fg.OnCommand = func(fg *testutils.FakeGame, cmd schema.Command) {
		switch cmd.Type() {
		case "flee_combat":
			fleesSeen++
			fg.Snap.LastCommandResult = "flee_combat: attempted"
			// First attempt fails: still surrounded.
		case "end_turn":
			fg.Snap.LastCommandResult = "end_turn: ap=0"
			// Opponent lets us go after the yielded turn.
			fg.Snap.Context = "gameplay"
			fg.Snap.GameModeFlags = nil
			fg.Snap.Combat = nil
		}
	}
	ap := NewAutopilot(newDeps(t, fg), combatConfig())

	report, err := ap.Run(context.Background())
	require.NoError(t, err)

	types := fg.CommandTypes()
	require.GreaterOrEqual(t, len(types), 2)
	assert.Equal(t, "flee_combat", types[0])
	assert.Equal(t, "end_turn", types[1], "a failed flee yields the turn instead of spamming flee")
	assert.Equal(t, 1, fleesSeen)
	assert.Equal(t, domain.OutcomeFled, report.Outcome)
}

func TestAutopilotHealsBelowThreshold(t *testing.T) {
	fg := combatGame(t)
	fg.Snap.Character.DerivedStats.CurrentHP = 14 // 35%: heal, not flee
	scriptBasicCombat(fg)
	attackScript := fg.OnCommand
	fg.OnCommand = func(fg *testutils.FakeGame, cmd schema.Command) {
		if cmd.Type() == "use_combat_item" {
			fg.Snap.Character.DerivedStats.CurrentHP += 20
			fg.Snap.LastCommandResult = "use_combat_item: used"
			return
		}
		attackScript(fg, cmd)
	}
	ap := NewAutopilot(newDeps(t, fg), combatConfig())

	report, err := ap.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeOK, report.Outcome)
	assert.Equal(t, 1, report.HealsUsed)

	types := fg.CommandTypes()
	assert.Equal(t, "use_combat_item", types[0], "healing precedes attacking below the threshold")
	assert.Contains(t, types, "attack")
}

func TestAutopilotReloadsThenSwitchesHand(t *testing.T) {
	fg := combatGame(t)
	fg.Snap.Inventory.Equipped.RightHand = &schema.EquippedItem{
		PID: 8, Name: "10mm Pistol", AmmoCount: 0, AmmoCapacity: 12,
	}
	fg.Snap.Inventory.Equipped.LeftHand = &schema.EquippedItem{PID: 4, Name: "Knife"}
	fg.Snap.Combat.ActiveWeapon = schema.ActiveWeapon{
		Name:    "10mm Pistol",
		Primary: schema.AttackMode{APCost: 5, Range: 25},
	}
	scriptBasicCombat(fg)
	attackScript := fg.OnCommand
	fg.OnCommand = func(fg *testutils.FakeGame, cmd schema.Command) {
		switch cmd.Type() {
		case "reload_weapon":
			fg.Snap.LastCommandResult = "reload_weapon: REJECTED — no ammo"
		case "switch_hand":
			fg.Snap.Combat.ActiveHand = "left"
			fg.Snap.Combat.ActiveWeapon = schema.ActiveWeapon{
				Name:    "Knife",
				Primary: schema.AttackMode{APCost: 3, Range: 1},
			}
			fg.Snap.LastCommandResult = "switch_hand: ok"
		default:
			attackScript(fg, cmd)
		}
	}
	ap := NewAutopilot(newDeps(t, fg), combatConfig())

	report, err := ap.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeOK, report.Outcome)
	types := fg.CommandTypes()
	require.GreaterOrEqual(t, len(types), 3)
	assert.Equal(t, "reload_weapon", types[0], "an empty weapon is reloaded first")
	assert.Equal(t, "switch_hand", types[1], "a failed reload falls back to the other hand")
}

func TestAutopilotAvoidsBurstMode(t *testing.T) {
	fg := combatGame(t)
	fg.Snap.Combat.CurrentHitModeName = "burst fire"
	scriptBasicCombat(fg)
	attackScript := fg.OnCommand
	fg.OnCommand = func(fg *testutils.FakeGame, cmd schema.Command) {
		if cmd.Type() == "cycle_attack_mode" {
			fg.Snap.Combat.CurrentHitModeName = "single shot"
			fg.Snap.LastCommandResult = "cycle_attack_mode: ok"
			return
		}
		attackScript(fg, cmd)
	}
	ap := NewAutopilot(newDeps(t, fg), combatConfig())

	report, err := ap.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeOK, report.Outcome)
	types := fg.CommandTypes()
	assert.Equal(t, "cycle_attack_mode", types[0], "burst mode is cycled away before attacking")
	assert.Contains(t, types, "attack")
}

func TestAutopilotRejectedAttacksEscalateToEndTurn(t *testing.T) {
	fg := combatGame(t)
	fg.OnCommand = func(fg *testutils.FakeGame, cmd schema.Command) {
		switch cmd.Type() {
		case "attack":
			fg.Snap.LastCommandResult = "attack: REJECTED — out of range"
		case "end_turn":
			fg.Snap.LastCommandResult = "end_turn: ap=8"
			fg.Snap.Context = "gameplay"
			fg.Snap.GameModeFlags = nil
			fg.Snap.Combat = nil
		}
	}
	cfg := combatConfig()
	ap := NewAutopilot(newDeps(t, fg), cfg)

	report, err := ap.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOK, report.Outcome)

	types := fg.CommandTypes()
	attacks := 0
	for _, typ := range types {
		if typ == "attack" {
			attacks++
		}
	}
	assert.Equal(t, cfg.RejectLimit, attacks, "attacks stop at the rejection limit")
	assert.Equal(t, "end_turn", types[len(types)-1])
}

func TestObserveRoundTracksStuckAndProgress(t *testing.T) {
	cfg := combatConfig()
	enc := &encounter{
		lastRound:   -1,
		lastTotalHP: -1,
		lastAlive:   -1,
		repositions: policy.NewBreaker(cfg.RepositionLimit),
		rejections:  policy.NewBreaker(cfg.RejectLimit),
	}
	report := &CombatReport{}

	c := &schema.Combat{
		CombatRound: 1,
		Hostiles:    []schema.Hostile{{ID: 1, HP: 20}, {ID: 2, HP: 20}},
	}
	enc.observeRound(c, report)
	assert.Equal(t, 0, enc.stuckRounds)

	// Two rounds pass with no damage dealt.
	c.CombatRound = 3
	enc.observeRound(c, report)
	assert.Equal(t, 2, enc.stuckRounds)

	// A kill resets the counter.
	c.CombatRound = 4
	c.Hostiles[0].HP = 0
	enc.observeRound(c, report)
	assert.Equal(t, 0, enc.stuckRounds)
	assert.Equal(t, 1, enc.kills)

	// Chip damage also counts as progress.
	c.CombatRound = 5
	c.Hostiles[1].HP = 12
	enc.observeRound(c, report)
	assert.Equal(t, 0, enc.stuckRounds)
	assert.Equal(t, 5, report.Rounds)
}

func TestChooseFleesWhenRoundsAreStuck(t *testing.T) {
	fg := combatGame(t)
	ap := NewAutopilot(Deps{Bridge: fg}, combatConfig())

	enc := &encounter{
		stuckRounds:    combatConfig().StuckRounds,
		exhaustedHeals: map[int]bool{},
	}
	snap := &fg.Snap

	cmd, kind := ap.choose(snap, enc)
	assert.Equal(t, "flee", kind)
	assert.Equal(t, "flee_combat", cmd.Type())
}
