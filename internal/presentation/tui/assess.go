package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/overseer/internal/control"
	"github.com/aretw0/overseer/pkg/schema"
)

const capsPID = 41

// AssessView renders the full dialogue assessment: current frame,
// conversation history, and a character summary. Returns an error string
// style message when no dialogue is active.
func AssessView(snap *schema.Snapshot, history []control.Exchange) string {
	var b strings.Builder

	if snap.Dialogue == nil {
		return "No dialogue active."
	}
	d := snap.Dialogue

	b.WriteString("=== DIALOGUE ===\n")
	speaker := d.SpeakerName
	if speaker == "" {
		speaker = "?"
	}
	mapName := "?"
	if snap.Map != nil {
		mapName = snap.Map.Name
	}
	fmt.Fprintf(&b, "NPC: %s | Map: %s\n\n", speaker, mapName)
	fmt.Fprintf(&b, "Reply: %q\n\n", d.ReplyText)

	b.WriteString("Options:\n")
	for _, opt := range d.Options {
		fmt.Fprintf(&b, "  [%d] %q\n", opt.Index, opt.Text)
	}

	if len(history) > 0 {
		b.WriteString("\n--- CONVERSATION SO FAR ---\n")
		for i, ex := range history {
			fmt.Fprintf(&b, "  (%d) %q -> You chose: %q\n",
				i+1, clip(ex.Reply, 80), clip(ex.Option, 60))
		}
	}

	b.WriteString("\n--- CHARACTER STATE ---\n")
	writeCharacterState(&b, snap)

	b.WriteString("\n--- REMINDERS ---\n")
	b.WriteString("  * Recall past notes before committing to a quest.\n")
	b.WriteString("  * Barter options usually appear near the bottom of the list.\n")
	b.WriteString("  * Note anything worth remembering once the conversation ends.\n")

	return b.String()
}

func writeCharacterState(b *strings.Builder, snap *schema.Snapshot) {
	if snap.Character != nil {
		fmt.Fprintf(b, "  HP: %d/%d | Level: %d\n",
			snap.Character.DerivedStats.CurrentHP,
			snap.Character.DerivedStats.MaxHP,
			snap.Character.Level)
	}

	caps := 0
	weapon := "unarmed"
	armor := "none"
	if inv := snap.Inventory; inv != nil {
		for _, item := range inv.Items {
			if item.PID == capsPID {
				caps += item.Quantity
			}
		}
		if inv.Equipped.RightHand != nil {
			weapon = inv.Equipped.RightHand.Name
		} else if inv.Equipped.LeftHand != nil {
			weapon = inv.Equipped.LeftHand.Name
		}
		if inv.Equipped.Armor != nil {
			armor = inv.Equipped.Armor.Name
		}
	}
	fmt.Fprintf(b, "  Caps: %d | Weapon: %s | Armor: %s\n", caps, weapon, armor)
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
