package schema

import (
	"github.com/aretw0/overseer/pkg/domain"
)

// Snapshot is the full state document published by the engine once per tick.
// It is read-only to the controller.
type Snapshot struct {
	// Tick is the publisher-side monotonic counter: the system's only
	// logical clock.
	Tick uint64 `json:"tick"`

	TimestampMS int64 `json:"timestamp_ms,omitempty"`

	// Context is the raw engine context string ("gameplay_combat", "movie",
	// ...). Use Mode to get the classified closed-set mode.
	Context       string   `json:"context"`
	GameModeFlags []string `json:"game_mode_flags,omitempty"`

	PlayerDead bool `json:"player_dead,omitempty"`

	// LastCommandResult is the one-line diagnostic from the most recently
	// consumed command. Not durable: present on the next snapshot only.
	LastCommandResult string `json:"last_command_debug,omitempty"`

	// LastCommandCode is the structured reason code protocol extension.
	// When the publisher emits it, it is preferred over substring matching
	// on LastCommandResult.
	LastCommandCode string `json:"last_command_code,omitempty"`

	LookAtResult string `json:"look_at_result,omitempty"`

	Map       *MapInfo   `json:"map,omitempty"`
	Player    *Player    `json:"player,omitempty"`
	Character *Character `json:"character,omitempty"`
	Inventory *Inventory `json:"inventory,omitempty"`
	Combat    *Combat    `json:"combat,omitempty"`
	Dialogue  *Dialogue  `json:"dialogue,omitempty"`
	Loot      *Loot      `json:"loot,omitempty"`
	Objects   *Objects   `json:"objects,omitempty"`

	// SaveGames is present in the menu context only.
	SaveGames []SaveSlot `json:"save_games,omitempty"`
}

// Mode classifies the snapshot into the closed mode set.
func (s *Snapshot) Mode() domain.Mode {
	return domain.Classify(s.Context, s.GameModeFlags)
}

// Diagnostic returns the structured reason code when present, otherwise the
// free-text diagnostic line.
func (s *Snapshot) Diagnostic() string {
	if s.LastCommandCode != "" {
		return s.LastCommandCode
	}
	return s.LastCommandResult
}

// HealthFraction returns current HP over max HP, or 1.0 when the character
// group is absent. A dead subject yields 0.
func (s *Snapshot) HealthFraction() float64 {
	if s.Character == nil || s.Character.DerivedStats.MaxHP <= 0 {
		return 1.0
	}
	hp := s.Character.DerivedStats.CurrentHP
	if hp < 0 {
		hp = 0
	}
	return float64(hp) / float64(s.Character.DerivedStats.MaxHP)
}

// MapInfo identifies the loaded map and elevation.
type MapInfo struct {
	Name      string `json:"name"`
	Index     int    `json:"index"`
	Elevation int    `json:"elevation"`
}

// Player describes the subject's position and activity.
type Player struct {
	Tile      domain.Tile `json:"tile"`
	Elevation int         `json:"elevation"`
	Rotation  int         `json:"rotation,omitempty"`

	// AnimationBusy is the busy/idle flag: true while an animation or queued
	// movement is in flight.
	AnimationBusy bool `json:"animation_busy"`

	IsSneaking bool `json:"is_sneaking,omitempty"`

	// MovementWaypointsRemaining counts queued movement steps; omitted when
	// zero.
	MovementWaypointsRemaining int `json:"movement_waypoints_remaining,omitempty"`

	Neighbors []Neighbor `json:"neighbors,omitempty"`
}

// Neighbor is one of the six adjacent hex tiles with its walkability.
type Neighbor struct {
	Tile      domain.Tile `json:"tile"`
	Direction int         `json:"direction"`
	Walkable  bool        `json:"walkable"`
}

// Character carries the subject's stats; only the fields the control loops
// consume are modeled.
type Character struct {
	Name         string       `json:"name,omitempty"`
	Level        int          `json:"level,omitempty"`
	DerivedStats DerivedStats `json:"derived_stats"`
}

// DerivedStats holds resource levels.
type DerivedStats struct {
	CurrentHP    int `json:"current_hp"`
	MaxHP        int `json:"max_hp"`
	ArmorClass   int `json:"armor_class,omitempty"`
	CurrentAP    int `json:"current_ap,omitempty"`
	MaxAP        int `json:"max_ap,omitempty"`
}

// Inventory lists carried and equipped items.
type Inventory struct {
	Items    []Item   `json:"items"`
	Equipped Equipped `json:"equipped"`
}

// Item is a carried item stack.
type Item struct {
	PID      int    `json:"pid"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Type     string `json:"type,omitempty"`
}

// Equipped holds the hand slots and armor. Nil means the slot is empty.
type Equipped struct {
	RightHand *EquippedItem `json:"right_hand"`
	LeftHand  *EquippedItem `json:"left_hand"`
	Armor     *EquippedItem `json:"armor"`
}

// EquippedItem describes an equipped weapon or armor piece.
type EquippedItem struct {
	PID          int    `json:"pid"`
	Name         string `json:"name"`
	AmmoCount    int    `json:"ammo_count,omitempty"`
	AmmoCapacity int    `json:"ammo_capacity,omitempty"`
}

// NeedsAmmo reports whether the item consumes ammunition at all.
func (e *EquippedItem) NeedsAmmo() bool { return e != nil && e.AmmoCapacity > 0 }

// Empty reports whether an ammunition-fed item has run dry.
func (e *EquippedItem) Empty() bool { return e.NeedsAmmo() && e.AmmoCount == 0 }

// Combat is present only in combat contexts.
type Combat struct {
	CurrentAP int `json:"current_ap"`
	MaxAP     int `json:"max_ap,omitempty"`

	// FreeMove is the remaining no-cost movement allowance for the round.
	FreeMove int `json:"free_move"`

	ActiveHand         string `json:"active_hand,omitempty"`
	CurrentHitMode     int    `json:"current_hit_mode,omitempty"`
	CurrentHitModeName string `json:"current_hit_mode_name,omitempty"`
	Aiming             bool   `json:"aiming,omitempty"`

	ActiveWeapon ActiveWeapon `json:"active_weapon"`

	Hostiles []Hostile `json:"hostiles"`

	CombatRound           int         `json:"combat_round"`
	TurnOrder             []Combatant `json:"turn_order,omitempty"`
	CurrentCombatantIndex int         `json:"current_combatant_index,omitempty"`
	PendingAttacks        int         `json:"pending_attacks,omitempty"`
}

// ActiveWeapon describes the weapon in the active hand with both attack modes.
type ActiveWeapon struct {
	Name      string     `json:"name"`
	Primary   AttackMode `json:"primary"`
	Secondary AttackMode `json:"secondary"`
}

// AttackMode is one selectable attack of the active weapon.
type AttackMode struct {
	APCost    int `json:"ap_cost"`
	DamageMin int `json:"damage_min,omitempty"`
	DamageMax int `json:"damage_max,omitempty"`
	Range     int `json:"range"`
}

// Hostile is an opposing combat entity.
type Hostile struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Tile     domain.Tile    `json:"tile"`
	Distance int            `json:"distance"`
	HP       int            `json:"hp"`
	MaxHP    int            `json:"max_hp"`
	HitChances map[string]int `json:"hit_chances,omitempty"`
}

// Alive reports whether the hostile still has hit points.
func (h *Hostile) Alive() bool { return h.HP > 0 }

// Combatant is one entry of the published turn order.
type Combatant struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsPlayer bool   `json:"is_player"`
	Dead     bool   `json:"dead"`
}

// AliveHostiles returns the hostiles that are still up.
func (c *Combat) AliveHostiles() []Hostile {
	alive := make([]Hostile, 0, len(c.Hostiles))
	for _, h := range c.Hostiles {
		if h.Alive() {
			alive = append(alive, h)
		}
	}
	return alive
}

// NearestHostile returns the closest live hostile, or nil when none remain.
func (c *Combat) NearestHostile() *Hostile {
	var nearest *Hostile
	for i := range c.Hostiles {
		h := &c.Hostiles[i]
		if !h.Alive() {
			continue
		}
		if nearest == nil || h.Distance < nearest.Distance {
			nearest = h
		}
	}
	return nearest
}

// TotalHostileHP sums remaining hit points across live hostiles. The combat
// loop uses it as its progress signal.
func (c *Combat) TotalHostileHP() int {
	total := 0
	for _, h := range c.Hostiles {
		if h.Alive() {
			total += h.HP
		}
	}
	return total
}

// Dialogue is present only in the dialogue context.
type Dialogue struct {
	SpeakerName string           `json:"speaker_name,omitempty"`
	SpeakerID   int64            `json:"speaker_id,omitempty"`
	ReplyText   string           `json:"reply_text"`
	Options     []DialogueOption `json:"options"`
}

// DialogueOption is one selectable reply.
type DialogueOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Loot is present only while a container or corpse is open.
type Loot struct {
	TargetName     string `json:"target_name"`
	TargetID       int64  `json:"target_id"`
	ContainerItems []Item `json:"container_items"`
}

// Objects holds the categorized object lists of the current elevation.
type Objects struct {
	Critters    []Critter       `json:"critters,omitempty"`
	GroundItems []GroundItem    `json:"ground_items,omitempty"`
	Scenery     []SceneryObject `json:"scenery,omitempty"`
	ExitGrids   []ExitGrid      `json:"exit_grids,omitempty"`
}

// Critter is a mobile entity near the subject.
type Critter struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Tile     domain.Tile `json:"tile"`
	Distance int         `json:"distance"`
	Dead     bool        `json:"dead,omitempty"`
	Hostile  bool        `json:"hostile,omitempty"`
}

// GroundItem is an item lying on the ground.
type GroundItem struct {
	ID        int64       `json:"id"`
	PID       int         `json:"pid"`
	Name      string      `json:"name"`
	Tile      domain.Tile `json:"tile"`
	Distance  int         `json:"distance"`
	ItemCount int         `json:"item_count,omitempty"`
}

// SceneryObject is a fixed interactable: door, stairs, container, or scripted
// scenery.
type SceneryObject struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Tile        domain.Tile `json:"tile"`
	Distance    int         `json:"distance"`
	SceneryType string      `json:"scenery_type"`

	// Locked/Open are present for doors and containers only.
	Locked *bool `json:"locked,omitempty"`
	Open   *bool `json:"open,omitempty"`

	ItemCount int  `json:"item_count,omitempty"`
	Usable    bool `json:"usable,omitempty"`
}

// ExitGrid is a map-transition marker; crossing it changes map or elevation.
type ExitGrid struct {
	ID                   int64       `json:"id"`
	Tile                 domain.Tile `json:"tile"`
	Distance             int         `json:"distance"`
	DestinationMap       int         `json:"destination_map"`
	DestinationTile      domain.Tile `json:"destination_tile"`
	DestinationElevation int         `json:"destination_elevation"`
	DestinationMapName   string      `json:"destination_map_name,omitempty"`
}

// SaveSlot describes one save-game slot, present in the menu context.
type SaveSlot struct {
	Slot          int    `json:"slot"`
	Exists        bool   `json:"exists"`
	CharacterName string `json:"character_name,omitempty"`
	Description   string `json:"description,omitempty"`
}
