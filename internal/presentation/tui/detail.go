package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/overseer/pkg/schema"
)

// DetailMarkdown renders the snapshot as a markdown document for the full
// status view. Feed the result through NewRenderer for terminal output.
func DetailMarkdown(snap *schema.Snapshot) string {
	var b strings.Builder

	mapName := "?"
	if snap.Map != nil {
		mapName = snap.Map.Name
	}
	fmt.Fprintf(&b, "# %s\n\n", mapName)
	fmt.Fprintf(&b, "- **Tick**: %d\n", snap.Tick)
	fmt.Fprintf(&b, "- **Context**: %s (%s)\n", snap.Context, snap.Mode())
	if snap.Player != nil {
		fmt.Fprintf(&b, "- **Tile**: %d (elevation %d)\n", snap.Player.Tile, snap.Player.Elevation)
		if snap.Player.AnimationBusy {
			b.WriteString("- **Busy**: animation in flight\n")
		}
	}
	if snap.Character != nil {
		fmt.Fprintf(&b, "- **HP**: %d/%d\n",
			snap.Character.DerivedStats.CurrentHP, snap.Character.DerivedStats.MaxHP)
	}
	if snap.PlayerDead {
		b.WriteString("- **DEAD**\n")
	}
	if diag := snap.Diagnostic(); diag != "" {
		fmt.Fprintf(&b, "- **Last command**: %s\n", diag)
	}

	if c := snap.Combat; c != nil {
		fmt.Fprintf(&b, "\n## Combat (round %d)\n\n", c.CombatRound)
		fmt.Fprintf(&b, "- **AP**: %d (free move %d)\n", c.CurrentAP, c.FreeMove)
		fmt.Fprintf(&b, "- **Weapon**: %s\n", c.ActiveWeapon.Name)
		for _, h := range c.AliveHostiles() {
			fmt.Fprintf(&b, "- %s: %d/%d HP at distance %d\n", h.Name, h.HP, h.MaxHP, h.Distance)
		}
	}

	if d := snap.Dialogue; d != nil {
		fmt.Fprintf(&b, "\n## Dialogue with %s\n\n", d.SpeakerName)
		fmt.Fprintf(&b, "> %s\n\n", d.ReplyText)
		for _, opt := range d.Options {
			fmt.Fprintf(&b, "%d. %s\n", opt.Index, opt.Text)
		}
	}

	if o := snap.Objects; o != nil && len(o.ExitGrids) > 0 {
		b.WriteString("\n## Exits\n\n")
		for _, grid := range o.ExitGrids {
			dest := grid.DestinationMapName
			if dest == "" {
				dest = fmt.Sprintf("map %d", grid.DestinationMap)
			}
			fmt.Fprintf(&b, "- tile %d, distance %d, to %s\n", grid.Tile, grid.Distance, dest)
		}
	}

	return b.String()
}
