package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manual-assistant/internal/domain"
)

func TestOperatorPromptBuilder(t *testing.T) {
	builder := NewOperatorPromptBuilder()

	t.Run("empty question is rejected", func(t *testing.T) {
		_, err := builder.Build(PromptInput{Question: "   "})
		require.Error(t, err)
	})

	t.Run("passages render as numbered sources", func(t *testing.T) {
		messages, err := builder.Build(PromptInput{
			Question: "how do I drain the fryer",
			Passages: []domain.RetrievedPassage{
				{
					Content:  "Open the drain valve slowly.",
					Metadata: domain.PassageMetadata{Title: "Pitco Fryer Manual", PageNumber: 14},
				},
				{
					Content:  "Wear heat resistant gloves.",
					Metadata: domain.PassageMetadata{Title: "Pitco Fryer Manual", PageNumber: 3},
				},
			},
		})

		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].Role)
		assert.Equal(t, "user", messages[1].Role)
		assert.Contains(t, messages[1].Content, "[Source 1] Pitco Fryer Manual, page 14")
		assert.Contains(t, messages[1].Content, "[Source 2] Pitco Fryer Manual, page 3")
		assert.Contains(t, messages[1].Content, "QUESTION: how do I drain the fryer")
	})

	t.Run("passage list is capped", func(t *testing.T) {
		passages := make([]domain.RetrievedPassage, maxPromptPassages+5)
		for i := range passages {
			passages[i] = domain.RetrievedPassage{Content: "text"}
		}

		messages, err := builder.Build(PromptInput{Question: "q?", Passages: passages})

		require.NoError(t, err)
		assert.NotContains(t, messages[1].Content, "[Source 13]")
		assert.Contains(t, messages[1].Content, "[Source 12]")
	})

	t.Run("follow-up carries the prior exchange", func(t *testing.T) {
		messages, err := builder.Build(PromptInput{
			Question: "it is still blinking",
			Passages: []domain.RetrievedPassage{{Content: "text"}},
			Followup: true,
			Prior: domain.ConversationContext{
				LastQuestion: "how do I descale the metos",
				LastAnswer:   "Run the descale program.",
			},
		})

		require.NoError(t, err)
		assert.Contains(t, messages[1].Content, "PREVIOUS QUESTION: how do I descale the metos")
		assert.Contains(t, messages[1].Content, "PREVIOUS ANSWER:\nRun the descale program.")
	})

	t.Run("multi part questions get the extra instruction", func(t *testing.T) {
		messages, err := builder.Build(PromptInput{
			Question:  "how do I power on? and print a receipt?",
			Passages:  []domain.RetrievedPassage{{Content: "text"}},
			MultiPart: true,
		})

		require.NoError(t, err)
		assert.Contains(t, messages[0].Content, "several parts")
	})
}
