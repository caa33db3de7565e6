package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"manual-assistant/internal/domain"
)

func labeled(equipType, brand string, score float64) domain.RetrievedPassage {
	return domain.RetrievedPassage{
		Content: "passage",
		Score:   score,
		Metadata: domain.PassageMetadata{
			EquipmentType:  equipType,
			EquipmentBrand: brand,
		},
	}
}

func TestVote(t *testing.T) {
	t.Run("no type labels yields zero result", func(t *testing.T) {
		passages := []domain.RetrievedPassage{
			labeled("", "", 0.9),
			labeled("", "Metos", 0.8),
		}

		result := Vote(passages)

		assert.False(t, result.Detected())
		assert.Empty(t, result.EquipmentType)
		assert.Empty(t, result.Brand)
		assert.Zero(t, result.Dominance)
	})

	t.Run("uniform type has dominance one", func(t *testing.T) {
		var passages []domain.RetrievedPassage
		for i := 0; i < 12; i++ {
			passages = append(passages, labeled("Fryer", "Pitco", 0.9))
		}

		result := Vote(passages)

		assert.Equal(t, "Fryer", result.EquipmentType)
		assert.Equal(t, "Pitco", result.Brand)
		assert.InDelta(t, 1.0, result.Dominance, 1e-9)
	})

	t.Run("rank weighting can outvote raw counts", func(t *testing.T) {
		// Two Coffee_Maker hits at the top outweigh three Fryer hits
		// at the bottom of the window.
		passages := []domain.RetrievedPassage{
			labeled("Coffee_Maker", "Metos", 0.95),
			labeled("Coffee_Maker", "Metos", 0.94),
			labeled("", "", 0.5),
			labeled("", "", 0.5),
			labeled("", "", 0.5),
			labeled("", "", 0.5),
			labeled("", "", 0.5),
			labeled("", "", 0.5),
			labeled("", "", 0.5),
			labeled("Fryer", "Pitco", 0.4),
			labeled("Fryer", "Pitco", 0.39),
			labeled("Fryer", "Pitco", 0.38),
		}

		result := Vote(passages)

		// Coffee_Maker weight: 12 + 11 = 23. Fryer weight: 3 + 2 + 1 = 6.
		assert.Equal(t, "Coffee_Maker", result.EquipmentType)
		assert.InDelta(t, 23.0/29.0, result.Dominance, 1e-9)
	})

	t.Run("dominance counts only labeled passages", func(t *testing.T) {
		passages := []domain.RetrievedPassage{
			labeled("Oven", "Vulcan", 0.9),
			labeled("", "", 0.8),
			labeled("", "", 0.7),
			labeled("Oven", "Vulcan", 0.6),
		}

		result := Vote(passages)

		assert.Equal(t, "Oven", result.EquipmentType)
		assert.InDelta(t, 1.0, result.Dominance, 1e-9)
	})

	t.Run("only the top window votes", func(t *testing.T) {
		var passages []domain.RetrievedPassage
		for i := 0; i < VoteWindow; i++ {
			passages = append(passages, labeled("POS", "Square", 0.9))
		}
		for i := 0; i < 30; i++ {
			passages = append(passages, labeled("Fryer", "Pitco", 0.3))
		}

		result := Vote(passages)

		assert.Equal(t, "POS", result.EquipmentType)
		assert.InDelta(t, 1.0, result.Dominance, 1e-9)
	})

	t.Run("ties break to lexically smaller label", func(t *testing.T) {
		passages := []domain.RetrievedPassage{
			labeled("Oven", "", 0.9),
			labeled("Fryer", "", 0.8),
			labeled("Fryer", "", 0.7),
			labeled("Oven", "", 0.6),
		}
		// Oven weight: 12 + 9 = 21. Fryer weight: 11 + 10 = 21.

		result := Vote(passages)

		assert.Equal(t, "Fryer", result.EquipmentType)
	})
}
