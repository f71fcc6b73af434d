package control

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

// Truncation limits for history entries. Long NPC monologues are cut so a
// whole conversation stays skimmable.
const (
	maxReplyLen  = 200
	maxOptionLen = 120
)

// Exchange is one recorded step of a conversation: what the speaker said
// and which option was picked in response.
type Exchange struct {
	Speaker string `json:"speaker"`
	Reply   string `json:"reply"`
	Option  string `json:"option"`
	Index   int    `json:"index"`
}

// DialogueReport summarizes a finished conversation.
type DialogueReport struct {
	Speaker   string     `json:"speaker"`
	Exchanges []Exchange `json:"exchanges"`

	// Completed is set when the conversation ended by leaving the dialogue
	// context, as opposed to running out of scripted picks.
	Completed bool `json:"completed"`
}

// Tracker follows one conversation: it records exactly one history entry
// per selection, made before the selection is submitted, and detects the
// end of the conversation by the context leaving dialogue.
type Tracker struct {
	deps    Deps
	speaker string
	history []Exchange
	ended   bool
}

// NewTracker creates a Tracker.
func NewTracker(deps Deps) *Tracker {
	return &Tracker{deps: deps.normalized()}
}

// Current returns the latest dialogue frame. It fails with
// domain.ErrNotInDialogue outside the dialogue context.
func (t *Tracker) Current(ctx context.Context) (*schema.Snapshot, error) {
	snap, err := t.deps.Poller.Next(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Mode() != domain.ModeDialogue || snap.Dialogue == nil {
		return nil, domain.ErrNotInDialogue
	}
	if t.speaker == "" {
		t.speaker = snap.Dialogue.SpeakerName
	}
	return snap, nil
}

// SelectOption picks the dialogue option with the given engine index. The
// history entry is recorded before the submit so a conversation that ends
// on this very selection is still fully accounted for.
func (t *Tracker) SelectOption(ctx context.Context, index int) (*schema.Snapshot, error) {
	snap, err := t.Current(ctx)
	if err != nil {
		return nil, err
	}

	option, ok := findOption(snap.Dialogue, index)
	if !ok {
		return nil, fmt.Errorf("%w: index %d", domain.ErrNoSuchOption, index)
	}

	t.history = append(t.history, Exchange{
		Speaker: snap.Dialogue.SpeakerName,
		Reply:   truncate(snap.Dialogue.ReplyText, maxReplyLen),
		Option:  truncate(option.Text, maxOptionLen),
		Index:   index,
	})

	after, err := t.deps.submitSynced(ctx, snap.Tick, schema.SelectDialogue(index))
	if err != nil {
		return nil, err
	}
	if after.Mode() != domain.ModeDialogue {
		t.ended = true
	}
	return after, nil
}

// Ended reports whether the tracked conversation has left the dialogue
// context.
func (t *Tracker) Ended() bool { return t.ended }

// History returns the recorded exchanges.
func (t *Tracker) History() []Exchange {
	return append([]Exchange(nil), t.history...)
}

// RunScripted plays a fixed list of option indices, stopping early when the
// conversation ends. Running out of picks with the conversation still open
// is not an error; the report says so via Completed.
func (t *Tracker) RunScripted(ctx context.Context, picks []int) (*DialogueReport, error) {
	for _, index := range picks {
		if t.ended {
			break
		}
		if _, err := t.SelectOption(ctx, index); err != nil {
			return nil, err
		}
	}
	return t.Finish(ctx), nil
}

// Finish closes the tracker, writes the conversation summary to the
// journal, and returns the report. Safe to call once per conversation.
func (t *Tracker) Finish(ctx context.Context) *DialogueReport {
	report := &DialogueReport{
		Speaker:   t.speaker,
		Exchanges: t.History(),
		Completed: t.ended,
	}

	outcome := domain.OutcomeOK
	if !t.ended {
		outcome = domain.OutcomeInterrupted
	}
	t.deps.Metrics.LoopOutcomes.WithLabelValues("dialogue", string(outcome)).Inc()

	if len(report.Exchanges) > 0 {
		snap := t.deps.Poller.Last()
		var mapName string
		var tile domain.Tile
		var tick uint64
		if snap != nil {
			mapName, tile = placeOf(snap)
			tick = snap.Tick
		}
		t.deps.note(ctx, domain.Note{
			Category: "dialogue",
			Text:     report.Summary(),
			Map:      mapName,
			Tile:     tile,
			Tick:     tick,
		})
	}
	return report
}

// Summary renders the conversation as one skimmable block.
func (r *DialogueReport) Summary() string {
	var b strings.Builder
	speaker := r.Speaker
	if speaker == "" {
		speaker = "unknown speaker"
	}
	fmt.Fprintf(&b, "Conversation with %s (%d exchanges):\n", speaker, len(r.Exchanges))
	for i, ex := range r.Exchanges {
		fmt.Fprintf(&b, "%d. %q -> picked %q\n", i+1, ex.Reply, ex.Option)
	}
	if !r.Completed {
		b.WriteString("(conversation left open)\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func findOption(d *schema.Dialogue, index int) (schema.DialogueOption, bool) {
	for _, opt := range d.Options {
		if opt.Index == index {
			return opt, true
		}
	}
	return schema.DialogueOption{}, false
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
