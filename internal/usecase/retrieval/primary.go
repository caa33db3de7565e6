package retrieval

import "manual-assistant/internal/domain"

// PrimaryEquipment identifies the manual that dominates a result set.
type PrimaryEquipment struct {
	Title string
	Type  string
	Brand string
}

type titleStats struct {
	count    int
	maxScore float64
	eqType   string
	brand    string
}

// PickPrimary chooses the primary manual from a result set by title
// majority. Ties break by highest max score, then lexically smaller
// title. When no passage carries a title, the type and brand are
// resolved by plain majority over all passages instead and Title stays
// empty.
func PickPrimary(passages []domain.RetrievedPassage) PrimaryEquipment {
	if len(passages) == 0 {
		return PrimaryEquipment{}
	}

	byTitle := make(map[string]*titleStats)
	for _, p := range passages {
		title := p.Metadata.Title
		if title == "" {
			continue
		}
		s, ok := byTitle[title]
		if !ok {
			s = &titleStats{}
			byTitle[title] = s
		}
		s.count++
		if p.Score > s.maxScore {
			s.maxScore = p.Score
		}
		if s.eqType == "" {
			s.eqType = p.Metadata.EquipmentType
		}
		if s.brand == "" {
			s.brand = p.Metadata.EquipmentBrand
		}
	}

	if len(byTitle) == 0 {
		return PrimaryEquipment{
			Type:  majorityLabel(passages, func(m domain.PassageMetadata) string { return m.EquipmentType }),
			Brand: majorityLabel(passages, func(m domain.PassageMetadata) string { return m.EquipmentBrand }),
		}
	}

	best := ""
	for title, s := range byTitle {
		if best == "" {
			best = title
			continue
		}
		b := byTitle[best]
		switch {
		case s.count != b.count:
			if s.count > b.count {
				best = title
			}
		case s.maxScore != b.maxScore:
			if s.maxScore > b.maxScore {
				best = title
			}
		case title < best:
			best = title
		}
	}

	winner := byTitle[best]
	return PrimaryEquipment{
		Title: best,
		Type:  winner.eqType,
		Brand: winner.brand,
	}
}

func majorityLabel(passages []domain.RetrievedPassage, pick func(domain.PassageMetadata) string) string {
	counts := make(map[string]int)
	for _, p := range passages {
		if label := pick(p.Metadata); label != "" {
			counts[label]++
		}
	}
	best, _ := maxLabel(counts)
	return best
}
