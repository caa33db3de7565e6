package conversation

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"manual-assistant/internal/domain"
)

func newTestTracker() *Tracker {
	return NewTracker(slog.New(slog.DiscardHandler))
}

func priorCoffee() domain.ConversationContext {
	return domain.ConversationContext{
		LastQuestion: "how do I descale the metos coffee maker",
		LastAnswer:   "Run the descaling program.",
		LastBrand:    "Metos",
		LastType:     "Coffee_Maker",
		LastTitle:    "Metos Coffee Manual",
	}
}

func TestClassifyTurn(t *testing.T) {
	tracker := newTestTracker()

	t.Run("no prior turn is never a follow-up", func(t *testing.T) {
		got := tracker.ClassifyTurn("yes that worked", domain.ConversationContext{})
		assert.False(t, got)
	})

	t.Run("short affirmation continues the conversation", func(t *testing.T) {
		got := tracker.ClassifyTurn("yes that worked", priorCoffee())
		assert.True(t, got)
	})

	t.Run("conflicting brand starts a new topic", func(t *testing.T) {
		got := tracker.ClassifyTurn("how do I reset my Vulcan oven after cleaning", priorCoffee())
		assert.False(t, got)
	})

	t.Run("conflicting type starts a new topic", func(t *testing.T) {
		got := tracker.ClassifyTurn("the fryer basket will not lower into the oil", priorCoffee())
		assert.False(t, got)
	})

	t.Run("same equipment stays a follow-up", func(t *testing.T) {
		got := tracker.ClassifyTurn("it still shows the descale light", priorCoffee())
		assert.True(t, got)
	})

	t.Run("naming equipment after a generic turn is a new topic", func(t *testing.T) {
		prior := domain.ConversationContext{
			LastQuestion: "what should I do before opening",
			LastAnswer:   "Check the daily list.",
		}
		got := tracker.ClassifyTurn("how do I clean the pitco fryer before opening shift", prior)
		assert.False(t, got)
	})

	t.Run("continuation cue on a longer message", func(t *testing.T) {
		got := tracker.ClassifyTurn("I tried that already and the light is still blinking red", priorCoffee())
		assert.True(t, got)
	})

	t.Run("error report reads as a follow-up", func(t *testing.T) {
		got := tracker.ClassifyTurn("now there is an error message about water hardness showing", priorCoffee())
		assert.True(t, got)
	})

	t.Run("long unrelated question defaults to new topic", func(t *testing.T) {
		got := tracker.ClassifyTurn("what is the recommended staffing level for a busy weekend dinner service", priorCoffee())
		assert.False(t, got)
	})
}

func TestComposeRetrievalQuery(t *testing.T) {
	tracker := newTestTracker()

	t.Run("follow-up carries the prior question", func(t *testing.T) {
		got := tracker.ComposeRetrievalQuery("it is still beeping", priorCoffee(), true)
		assert.Equal(t, "how do I descale the metos coffee maker\nFollow-up: it is still beeping", got)
	})

	t.Run("fresh question passes through", func(t *testing.T) {
		got := tracker.ComposeRetrievalQuery("how do I clean the fryer", priorCoffee(), false)
		assert.Equal(t, "how do I clean the fryer", got)
	})
}

func TestLockHints(t *testing.T) {
	tracker := newTestTracker()

	t.Run("fresh question gets no lock", func(t *testing.T) {
		lock := tracker.LockHints(priorCoffee(), false)
		assert.True(t, lock.IsZero())
	})

	t.Run("follow-up inherits the prior lock", func(t *testing.T) {
		lock := tracker.LockHints(priorCoffee(), true)
		assert.Equal(t, "Metos", lock.Brand)
		assert.Equal(t, "Coffee_Maker", lock.Type)
		assert.Equal(t, "Metos Coffee Manual", lock.Title)
	})

	t.Run("missing brand recovered from prior question", func(t *testing.T) {
		prior := domain.ConversationContext{
			LastQuestion: "why is my square terminal not printing",
			LastAnswer:   "Check the paper roll.",
		}
		lock := tracker.LockHints(prior, true)
		assert.Equal(t, "Square", lock.Brand)
		assert.Equal(t, "POS", lock.Type)
	})
}

func TestNumberedOptions(t *testing.T) {
	answer := "You have a few choices:\n1. Run the rinse program\n2. Replace the water filter\n3. Call service"

	t.Run("options extracted by number", func(t *testing.T) {
		options := ExtractOptions(answer)
		assert.Len(t, options, 3)
		assert.Equal(t, "Replace the water filter", options[2])
	})

	t.Run("bare number expands to the option text", func(t *testing.T) {
		prior := priorCoffee()
		prior.LastAnswer = answer
		got := ExpandNumberedReply("2", prior)
		assert.Equal(t, "Replace the water filter", got)
	})

	t.Run("out of range number passes through", func(t *testing.T) {
		prior := priorCoffee()
		prior.LastAnswer = answer
		assert.Equal(t, "7", ExpandNumberedReply("7", prior))
	})

	t.Run("ordinary message passes through", func(t *testing.T) {
		assert.Equal(t, "2 of them failed", ExpandNumberedReply("2 of them failed", priorCoffee()))
	})
}
