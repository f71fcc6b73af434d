package control

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/overseer/internal/config"
	"github.com/aretw0/overseer/internal/policy"
	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

// Autopilot fights one encounter to its end. It issues exactly one command
// per own-turn frame, chosen from a fixed priority ladder, and judges every
// effect from the next published snapshot.
type Autopilot struct {
	deps Deps
	cfg  config.CombatConfig
}

// NewAutopilot creates an Autopilot.
func NewAutopilot(deps Deps, cfg config.CombatConfig) *Autopilot {
	return &Autopilot{deps: deps.normalized(), cfg: cfg}
}

// CombatReport describes how an encounter ended.
type CombatReport struct {
	Outcome   domain.Outcome
	Rounds    int
	Kills     int
	HealsUsed int
	Fled      bool
	Duration  time.Duration
}

// encounter is the per-fight state. It never survives past Run; a new fight
// starts from a clean slate.
type encounter struct {
	lastRound   int
	lastTotalHP int
	lastAlive   int
	stuckRounds int

	triedReload     bool
	cyclesThisRound int
	forceEndTurn    bool
	fleeing         bool

	exhaustedHeals map[int]bool
	repositions    *policy.Breaker
	rejections     *policy.Breaker

	kills int
	heals int
}

// Run drives the current encounter until it resolves. The subject must
// already be in combat; anything else returns immediately with OutcomeOK.
func (a *Autopilot) Run(ctx context.Context) (*CombatReport, error) {
	start := time.Now()
	enc := &encounter{
		lastRound:      -1,
		lastTotalHP:    -1,
		lastAlive:      -1,
		exhaustedHeals: make(map[int]bool),
		repositions:    policy.NewBreaker(a.cfg.RepositionLimit),
		rejections:     policy.NewBreaker(a.cfg.RejectLimit),
	}
	report := &CombatReport{Outcome: domain.OutcomeOK}

	snap, err := a.deps.Poller.Next(ctx)
	if err != nil {
		return nil, err
	}

	for {
		if a.cfg.Timeout.Std() > 0 && time.Since(start) > a.cfg.Timeout.Std() {
			report.Outcome = domain.OutcomeTimeout
			break
		}
		if snap.PlayerDead {
			report.Outcome = domain.OutcomeDead
			break
		}

		mode := snap.Mode()
		if !mode.IsCombat() && !mode.IsOverlay() {
			// Combat is over. If we were mid-flee, the disengage worked.
			if enc.fleeing {
				report.Outcome = domain.OutcomeFled
				report.Fled = true
			}
			break
		}

		if snap.Combat != nil {
			enc.observeRound(snap.Combat, report)
		}

		if mode == domain.ModeCombatMine && snap.Combat != nil {
			snap, err = a.act(ctx, snap, enc)
			if err != nil {
				return nil, err
			}
			continue
		}

		// Opponent's turn or an overlay: just watch.
		snap, err = a.deps.Poller.Next(ctx)
		if err != nil {
			return nil, err
		}
	}

	report.Kills = enc.kills
	report.HealsUsed = enc.heals
	report.Duration = time.Since(start)

	a.deps.Metrics.LoopOutcomes.WithLabelValues("combat", string(report.Outcome)).Inc()
	a.deps.Logger.Info("combat finished",
		"outcome", report.Outcome, "rounds", report.Rounds, "kills", report.Kills, "fled", report.Fled)

	mapName, tile := placeOf(snap)
	a.deps.note(ctx, domain.Note{
		Category: "combat",
		Text: fmt.Sprintf("Combat ended %s after %d rounds: %d kills, %d heals used%s.",
			report.Outcome, report.Rounds, report.Kills, report.HealsUsed, fledSuffix(report.Fled)),
		Map:  mapName,
		Tile: tile,
		Tick: snap.Tick,
	})
	return report, nil
}

// observeRound tracks round progress. A round that ends without hostile HP
// dropping or a hostile falling counts toward the stuck-round total.
func (enc *encounter) observeRound(c *schema.Combat, report *CombatReport) {
	alive := len(c.AliveHostiles())
	totalHP := c.TotalHostileHP()

	if enc.lastRound < 0 {
		enc.lastRound = c.CombatRound
		enc.lastAlive = alive
		enc.lastTotalHP = totalHP
		report.Rounds = 1
		return
	}

	if c.CombatRound == enc.lastRound {
		// Kills can land mid-round.
		if alive < enc.lastAlive {
			enc.kills += enc.lastAlive - alive
			enc.lastAlive = alive
			enc.stuckRounds = 0
		}
		if totalHP < enc.lastTotalHP {
			enc.lastTotalHP = totalHP
		}
		return
	}

	report.Rounds += c.CombatRound - enc.lastRound
	if alive < enc.lastAlive {
		enc.kills += enc.lastAlive - alive
	}
	if alive < enc.lastAlive || totalHP < enc.lastTotalHP {
		enc.stuckRounds = 0
	} else {
		enc.stuckRounds += c.CombatRound - enc.lastRound
	}

	enc.lastRound = c.CombatRound
	enc.lastAlive = alive
	enc.lastTotalHP = totalHP

	// Per-round escalation state resets with the round.
	enc.triedReload = false
	enc.cyclesThisRound = 0
	enc.forceEndTurn = false
	enc.repositions.Success()
	enc.rejections.Success()
}

// act chooses and submits exactly one command for the current own-turn
// frame, then applies the diagnostic of the following frame to the
// escalation state.
func (a *Autopilot) act(ctx context.Context, snap *schema.Snapshot, enc *encounter) (*schema.Snapshot, error) {
	cmd, kind := a.choose(snap, enc)
	a.deps.Logger.Debug("combat action", "kind", kind, "tick", snap.Tick, "ap", snap.Combat.CurrentAP)

	healPID := 0
	if kind == "heal" {
		healPID, _ = cmd["item_pid"].(int)
	}
	hpBefore := snap.HealthFraction()

	after, err := a.deps.submitSynced(ctx, snap.Tick, cmd)
	if err != nil {
		return nil, err
	}

	diag := after.Diagnostic()
	rejected := IsRejection(diag)

	switch kind {
	case "attack":
		if rejected {
			if enc.rejections.Fail() {
				enc.forceEndTurn = true
			}
			// A dead target or empty weapon resolves itself on the next
			// pass through the ladder; nothing extra to do here.
		} else {
			enc.rejections.Success()
		}
	case "reposition":
		reason := ClassifyDiagnostic(diag)
		if reason == ReasonNoPath || reason == ReasonNotEnoughAP {
			if enc.repositions.Fail() {
				enc.forceEndTurn = true
			}
		} else {
			enc.repositions.Success()
		}
	case "heal":
		if rejected || after.HealthFraction() <= hpBefore {
			// The item is gone or useless; stop reaching for it.
			enc.exhaustedHeals[healPID] = true
		} else {
			enc.heals++
		}
	case "flee":
		enc.fleeing = true
		// The engine reports flee as attempted; if we are still in combat
		// on our next turn, yield it and try again from the map edge.
		enc.forceEndTurn = true
	case "cycle":
		enc.cyclesThisRound++
	}

	return after, nil
}

// choose walks the priority ladder top to bottom and returns the first
// applicable command.
func (a *Autopilot) choose(snap *schema.Snapshot, enc *encounter) (schema.Command, string) {
	c := snap.Combat
	hostiles := c.AliveHostiles()

	if enc.forceEndTurn || len(hostiles) == 0 {
		return schema.EndTurn(), "end_turn"
	}

	if weapon := activeHandItem(snap); weapon.Empty() {
		if !enc.triedReload {
			enc.triedReload = true
			return schema.ReloadWeapon(), "reload"
		}
		return schema.SwitchHand(), "switch_hand"
	}

	nearest := c.NearestHostile()
	current, other := attackModes(c)

	if enc.cyclesThisRound < 2 {
		if strings.Contains(strings.ToLower(c.CurrentHitModeName), "burst") {
			return schema.CycleAttackMode(), "cycle"
		}
		// Prefer the mode that can actually land on the nearest hostile
		// within this turn's action points.
		badCurrent := current.APCost > c.CurrentAP || current.Range < nearest.Distance
		goodOther := other.APCost > 0 && other.APCost <= c.CurrentAP && other.Range >= nearest.Distance
		if badCurrent && goodOther {
			return schema.CycleAttackMode(), "cycle"
		}
	}

	if enc.stuckRounds >= a.cfg.StuckRounds {
		return schema.FleeCombat(), "flee"
	}
	if snap.HealthFraction() < a.cfg.CriticalFraction {
		return schema.FleeCombat(), "flee"
	}
	if snap.HealthFraction() < a.cfg.HealFraction {
		for _, pid := range a.cfg.HealItems {
			if !enc.exhaustedHeals[pid] {
				return schema.UseCombatItem(pid), "heal"
			}
		}
	}

	canAttack := current.APCost > 0 && current.APCost <= c.CurrentAP
	inRange := nearest.Distance <= current.Range

	if canAttack && inRange {
		return schema.Attack(nearest.ID), "attack"
	}
	// Too few points left for even one attack and no free movement: yield
	// the turn instead of repositioning for nothing.
	attackCost := current.APCost
	if attackCost <= 0 {
		attackCost = 1
	}
	if c.CurrentAP < attackCost && c.FreeMove <= 0 {
		return schema.EndTurn(), "end_turn"
	}
	if enc.repositions.Tripped() {
		return schema.EndTurn(), "end_turn"
	}
	return schema.CombatMove(nearest.Tile), "reposition"
}

// activeHandItem returns the equipped item of the active hand, nil when the
// slot is empty or the groups are absent.
func activeHandItem(snap *schema.Snapshot) *schema.EquippedItem {
	if snap.Inventory == nil || snap.Combat == nil {
		return nil
	}
	if snap.Combat.ActiveHand == "left" {
		return snap.Inventory.Equipped.LeftHand
	}
	return snap.Inventory.Equipped.RightHand
}

// attackModes returns the currently selected attack mode and the other one.
func attackModes(c *schema.Combat) (current, other schema.AttackMode) {
	if c.CurrentHitMode%2 == 1 {
		return c.ActiveWeapon.Secondary, c.ActiveWeapon.Primary
	}
	return c.ActiveWeapon.Primary, c.ActiveWeapon.Secondary
}

func fledSuffix(fled bool) string {
	if fled {
		return ", disengaged"
	}
	return ""
}
