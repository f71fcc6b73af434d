package schema

import "github.com/aretw0/overseer/pkg/domain"

// Command is one tagged record of a command batch. The "type" key selects the
// engine-side handler; the remaining keys are its parameters. Commands are
// rejected via diagnostic text (never an error return) when issued outside
// their valid context or when a precondition fails.
type Command map[string]any

// Type returns the command tag.
func (c Command) Type() string {
	t, _ := c["type"].(string)
	return t
}

// Batch is the document written to the command location. The publisher
// consumes it exactly once, dispatching every command in order, then removes
// the file.
type Batch struct {
	Commands []Command `json:"commands"`
}

// NewBatch wraps commands into a batch.
func NewBatch(cmds ...Command) Batch {
	return Batch{Commands: cmds}
}

// --- Movement ---

// MoveTo walks the subject to a tile.
func MoveTo(tile domain.Tile) Command {
	return Command{"type": "move_to", "tile": int(tile)}
}

// RunTo runs the subject to a tile.
func RunTo(tile domain.Tile) Command {
	return Command{"type": "run_to", "tile": int(tile)}
}

// CombatMove spends action points moving toward a tile during the subject's
// combat turn.
func CombatMove(tile domain.Tile) Command {
	return Command{"type": "combat_move", "tile": int(tile)}
}

// --- Combat ---

// Attack strikes a target with the active hand's current attack mode.
func Attack(targetID int64) Command {
	return Command{"type": "attack", "target_id": targetID}
}

// EndTurn yields the remainder of the subject's combat turn.
func EndTurn() Command {
	return Command{"type": "end_turn"}
}

// SwitchHand toggles the active weapon hand.
func SwitchHand() Command {
	return Command{"type": "switch_hand"}
}

// CycleAttackMode advances the active hand to its next attack mode.
func CycleAttackMode() Command {
	return Command{"type": "cycle_attack_mode"}
}

// ReloadWeapon reloads the active weapon from inventory ammunition.
func ReloadWeapon() Command {
	return Command{"type": "reload_weapon"}
}

// FleeCombat attempts to disengage from the current encounter.
func FleeCombat() Command {
	return Command{"type": "flee_combat"}
}

// UseCombatItem consumes an inventory item (by prototype id) during combat.
func UseCombatItem(itemPID int) Command {
	return Command{"type": "use_combat_item", "item_pid": itemPID}
}

// --- Interaction ---

// UseObject activates a scenery object or door.
func UseObject(objectID int64) Command {
	return Command{"type": "use_object", "object_id": objectID}
}

// UseItem consumes an inventory item outside combat.
func UseItem(itemPID int) Command {
	return Command{"type": "use_item", "item_pid": itemPID}
}

// PickUp grabs a ground item.
func PickUp(objectID int64) Command {
	return Command{"type": "pick_up", "object_id": objectID}
}

// TalkTo opens dialogue with a critter.
func TalkTo(objectID int64) Command {
	return Command{"type": "talk_to", "object_id": objectID}
}

// Skip dismisses a cutscene/movie.
func Skip() Command {
	return Command{"type": "skip"}
}

// Rest passes in-game time to recover.
func Rest(hours int) Command {
	return Command{"type": "rest", "hours": hours}
}

// --- Dialogue ---

// SelectDialogue picks a dialogue option by index.
func SelectDialogue(index int) Command {
	return Command{"type": "select_dialogue", "index": index}
}

// --- Containers & barter ---

// OpenContainer opens a container or corpse for looting.
func OpenContainer(objectID int64) Command {
	return Command{"type": "open_container", "object_id": objectID}
}

// LootTakeAll empties the open container.
func LootTakeAll() Command {
	return Command{"type": "loot_take_all"}
}

// LootClose dismisses the loot overlay.
func LootClose() Command {
	return Command{"type": "loot_close"}
}

// BarterOffer places an item stack on the subject's side of the trade table.
func BarterOffer(itemPID, quantity int) Command {
	return Command{"type": "barter_offer", "item_pid": itemPID, "quantity": quantity}
}

// BarterRequest asks for an item stack from the trader's side.
func BarterRequest(itemPID, quantity int) Command {
	return Command{"type": "barter_request", "item_pid": itemPID, "quantity": quantity}
}

// BarterConfirm attempts to close the trade.
func BarterConfirm() Command {
	return Command{"type": "barter_confirm"}
}

// BarterCancel abandons the trade.
func BarterCancel() Command {
	return Command{"type": "barter_cancel"}
}

// --- World map ---

// WorldmapTravel starts travel toward a known area.
func WorldmapTravel(areaID int) Command {
	return Command{"type": "worldmap_travel", "area_id": areaID}
}

// WorldmapEnterLocation enters the area under the party marker.
func WorldmapEnterLocation(areaID int) Command {
	return Command{"type": "worldmap_enter_location", "area_id": areaID}
}

// --- Session ---

// SaveSlotCmd saves the game into a numbered slot.
func SaveSlotCmd(slot int) Command {
	return Command{"type": "save_slot", "slot": slot}
}

// LoadSlotCmd loads the game from a numbered slot.
func LoadSlotCmd(slot int) Command {
	return Command{"type": "load_slot", "slot": slot}
}
