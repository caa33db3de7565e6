package retrieval

import "manual-assistant/internal/domain"

// VoteWindow is the number of top-ranked passages examined when letting
// a retrieval pool vote on the equipment a question concerns.
const VoteWindow = 12

// VoteResult is the outcome of the equipment vote over an unfiltered
// ranked retrieval pool.
type VoteResult struct {
	EquipmentType string
	Brand         string
	// Dominance is the winner's share of the rank-weighted type votes.
	Dominance float64
}

// Detected reports whether any passage carried an equipment-type label.
func (v VoteResult) Detected() bool {
	return v.EquipmentType != ""
}

// Vote examines the top VoteWindow passages of an unfiltered ranked
// retrieval. The passage at rank r contributes weight VoteWindow-r to
// its equipment-type label and to its brand label; passages without a
// label contribute nothing. When no passage carries an equipment-type
// label the zero VoteResult is returned. Equal vote weights break
// toward the lexically smaller label, so the winner is deterministic
// regardless of map iteration order.
func Vote(passages []domain.RetrievedPassage) VoteResult {
	window := passages
	if len(window) > VoteWindow {
		window = window[:VoteWindow]
	}

	typeVotes := make(map[string]int)
	brandVotes := make(map[string]int)
	for rank, p := range window {
		weight := VoteWindow - rank
		if t := p.Metadata.EquipmentType; t != "" {
			typeVotes[t] += weight
		}
		if b := p.Metadata.EquipmentBrand; b != "" {
			brandVotes[b] += weight
		}
	}

	winnerType, winnerWeight := maxLabel(typeVotes)
	if winnerType == "" {
		return VoteResult{}
	}

	total := 0
	for _, w := range typeVotes {
		total += w
	}

	winnerBrand, _ := maxLabel(brandVotes)
	return VoteResult{
		EquipmentType: winnerType,
		Brand:         winnerBrand,
		Dominance:     float64(winnerWeight) / float64(total),
	}
}

func maxLabel(votes map[string]int) (string, int) {
	best := ""
	bestWeight := 0
	for label, weight := range votes {
		if weight > bestWeight || (weight == bestWeight && best != "" && label < best) {
			best = label
			bestWeight = weight
		}
	}
	return best, bestWeight
}
