// Package tui renders terminal views of the game state: the one-line
// status, the dialogue assessment, and markdown output via glamour.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/overseer/pkg/schema"
)

// StatusLine renders the compact one-line state summary:
// HP, map, tile, raw context, plus combat or dialogue details when active.
func StatusLine(snap *schema.Snapshot) string {
	hp, maxHP := "?", "?"
	if snap.Character != nil {
		hp = fmt.Sprint(snap.Character.DerivedStats.CurrentHP)
		maxHP = fmt.Sprint(snap.Character.DerivedStats.MaxHP)
	}
	mapName := "?"
	if snap.Map != nil {
		mapName = snap.Map.Name
	}
	tile := "?"
	busy := false
	if snap.Player != nil {
		tile = fmt.Sprint(snap.Player.Tile)
		busy = snap.Player.AnimationBusy
	}

	parts := []string{
		fmt.Sprintf("HP:%s/%s", hp, maxHP),
		mapName,
		fmt.Sprintf("tile:%s", tile),
		snap.Context,
	}

	if busy {
		parts = append(parts, "BUSY")
	}

	if strings.Contains(snap.Context, "gameplay_combat") && snap.Combat != nil {
		parts = append(parts,
			fmt.Sprintf("AP:%d", snap.Combat.CurrentAP),
			fmt.Sprintf("enemies:%d", len(snap.Combat.AliveHostiles())),
			fmt.Sprintf("round:%d", snap.Combat.CombatRound),
		)
	}

	if strings.Contains(snap.Context, "dialogue") && snap.Dialogue != nil {
		npc := snap.Dialogue.SpeakerName
		if npc == "" {
			npc = "?"
		}
		parts = append(parts,
			fmt.Sprintf("NPC:%s", npc),
			fmt.Sprintf("options:%d", len(snap.Dialogue.Options)),
		)
	}

	if snap.PlayerDead {
		parts = append(parts, "DEAD")
	}

	return "[GAME] " + strings.Join(parts, " | ")
}
