package control

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/overseer/internal/journal"
	"github.com/aretw0/overseer/internal/testutils"
	"github.com/aretw0/overseer/pkg/domain"
	"github.com/aretw0/overseer/pkg/schema"
)

// dialogueGame builds a fake publisher mid-conversation with a two-step
// script: option 1 advances, option 2 (or the second frame's option 1)
// ends the conversation.
func dialogueGame(t *testing.T) *testutils.FakeGame {
	t.Helper()

	fg := testutils.NewFakeGame()
	fg.Snap.Context = "gameplay_dialogue"
	fg.Snap.Dialogue = &schema.Dialogue{
		SpeakerName: "Hakunin",
		ReplyText:   "The village needs you, Chosen One.",
		Options: []schema.DialogueOption{
			{Index: 1, Text: "Tell me about the vault."},
			{Index: 2, Text: "Goodbye."},
		},
	}
	fg.OnCommand = func(fg *testutils.FakeGame, cmd schema.Command) {
		if cmd.Type() != "select_dialogue" {
			return
		}
		var p testutils.SelectParams
		if err := testutils.DecodeParams(cmd, &p); err != nil {
			return
		}
		switch p.Index {
		case 1:
			fg.Snap.Dialogue.ReplyText = "Seek the holy vault to the north."
			fg.Snap.Dialogue.Options = []schema.DialogueOption{
				{Index: 1, Text: "I will find it."},
				{Index: 2, Text: "Goodbye."},
			}
		default:
			fg.Snap.Context = "gameplay"
			fg.Snap.Dialogue = nil
		}
	}
	return fg
}

func TestSelectOptionRecordsHistoryBeforeSubmit(t *testing.T) {
	fg := dialogueGame(t)
	tracker := NewTracker(newDeps(t, fg))

	// Ending the conversation on the very first pick must still leave one
	// complete history entry.
	_, err := tracker.SelectOption(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, tracker.History(), 1)
	entry := tracker.History()[0]
	assert.Equal(t, "Hakunin", entry.Speaker)
	assert.Equal(t, "The village needs you, Chosen One.", entry.Reply)
	assert.Equal(t, "Goodbye.", entry.Option)
	assert.Equal(t, 2, entry.Index)
	assert.True(t, tracker.Ended())
}

func TestSelectOptionOutsideDialogue(t *testing.T) {
	fg := testutils.NewFakeGame()
	tracker := NewTracker(newDeps(t, fg))

	_, err := tracker.SelectOption(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotInDialogue)
}

func TestSelectOptionUnknownIndex(t *testing.T) {
	fg := dialogueGame(t)
	tracker := NewTracker(newDeps(t, fg))

	_, err := tracker.SelectOption(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNoSuchOption)
	assert.Empty(t, tracker.History(), "a refused selection records nothing")
}

func TestRunScriptedConversation(t *testing.T) {
	fg := dialogueGame(t)
	deps := newDeps(t, fg)

	j, err := journal.NewFile(t.TempDir())
	require.NoError(t, err)
	deps.Journal = j

	tracker := NewTracker(deps)
	report, err := tracker.RunScripted(context.Background(), []int{1, 2})
	require.NoError(t, err)

	assert.True(t, report.Completed)
	assert.Equal(t, "Hakunin", report.Speaker)
	require.Len(t, report.Exchanges, 2)
	assert.Equal(t, "Seek the holy vault to the north.", report.Exchanges[1].Reply)

	notes, err := j.Recall(context.Background(), "hakunin")
	require.NoError(t, err)
	require.Len(t, notes, 1, "the summary lands in the journal")
	assert.Equal(t, "dialogue", notes[0].Category)
}

func TestRunScriptedStopsEarlyWhenEnded(t *testing.T) {
	fg := dialogueGame(t)
	tracker := NewTracker(newDeps(t, fg))

	report, err := tracker.RunScripted(context.Background(), []int{2, 1, 1})
	require.NoError(t, err)

	assert.True(t, report.Completed)
	assert.Len(t, report.Exchanges, 1, "picks after the end are not attempted")
}

func TestHistoryTruncation(t *testing.T) {
	fg := dialogueGame(t)
	fg.Snap.Dialogue.ReplyText = strings.Repeat("a", 500)
	fg.Snap.Dialogue.Options[1].Text = strings.Repeat("b", 300)
	tracker := NewTracker(newDeps(t, fg))

	_, err := tracker.SelectOption(context.Background(), 2)
	require.NoError(t, err)

	entry := tracker.History()[0]
	assert.Len(t, []rune(entry.Reply), maxReplyLen)
	assert.Len(t, []rune(entry.Option), maxOptionLen)
	assert.True(t, strings.HasSuffix(entry.Reply, "..."))
}

func TestSummaryMentionsOpenConversations(t *testing.T) {
	report := &DialogueReport{
		Speaker: "Sulik",
		Exchanges: []Exchange{
			{Reply: "We go walkabout?", Option: "Not yet.", Index: 3},
		},
	}
	summary := report.Summary()
	assert.Contains(t, summary, "Sulik")
	assert.Contains(t, summary, "left open")
}
