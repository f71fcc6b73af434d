package domain

import "strings"

// Mode is the closed-set classification of a state snapshot.
// The publisher drives every transition; the controller never mutates it.
type Mode string

const (
	ModeExploration   Mode = "exploration"
	ModeCombatMine    Mode = "combat_mine"     // the subject's turn; combat commands valid
	ModeCombatTheirs  Mode = "combat_not_mine" // waiting out an opponent's turn
	ModeDialogue      Mode = "dialogue"
	ModeLoot          Mode = "loot"
	ModeBarter        Mode = "barter"
	ModeWorldMap      Mode = "worldmap"
	ModeCharEditor    Mode = "character_editor"
	ModeCutscene      Mode = "cutscene"
	ModeMenu          Mode = "menu" // initial mode of a session
)

// Game mode flags published by the engine alongside the raw context string.
const (
	FlagPlayerTurn = "player_turn"
	FlagCombat     = "combat"
	FlagLoot       = "loot"
	FlagBarter     = "barter"
)

// Classify maps the publisher's raw context string plus its game-mode flags to
// a Mode. It is a pure function of snapshot data.
//
// Overlay UIs (loot, barter) can be active during combat; they win over the
// combat modes because overlay commands are only accepted while the overlay
// context is reported.
func Classify(rawContext string, flags []string) Mode {
	switch rawContext {
	case "movie":
		return ModeCutscene
	case "main_menu", "character_selector", "unknown", "":
		return ModeMenu
	case "character_editor":
		return ModeCharEditor
	case "gameplay_worldmap":
		return ModeWorldMap
	case "gameplay_loot":
		return ModeLoot
	case "gameplay_barter":
		return ModeBarter
	case "gameplay_dialogue":
		return ModeDialogue
	}

	if strings.HasPrefix(rawContext, "gameplay") {
		// Overlay flags take priority even if the raw context still says combat.
		if hasFlag(flags, FlagBarter) {
			return ModeBarter
		}
		if hasFlag(flags, FlagLoot) {
			return ModeLoot
		}
		if rawContext == "gameplay_combat" || hasFlag(flags, FlagCombat) {
			if hasFlag(flags, FlagPlayerTurn) {
				return ModeCombatMine
			}
			return ModeCombatTheirs
		}
		return ModeExploration
	}

	return ModeMenu
}

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if f == name {
			return true
		}
	}
	return false
}

// IsCombat reports whether m is one of the two combat modes.
func (m Mode) IsCombat() bool {
	return m == ModeCombatMine || m == ModeCombatTheirs
}

// IsOverlay reports whether m is a UI overlay that can sit on top of combat.
func (m Mode) IsOverlay() bool {
	return m == ModeLoot || m == ModeBarter
}

// HasPrefix reports whether the mode name starts with the given prefix.
// Wait primitives use it to match families of modes (e.g. "combat").
func (m Mode) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(m), prefix)
}
