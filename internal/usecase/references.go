package usecase

import (
	"fmt"
	"sort"
	"strings"

	"manual-assistant/internal/domain"
)

const (
	// referenceListMax is the page count above which a reference line
	// switches from a full comma list to a compressed form.
	referenceListMax = 5
	// citedPassageMax caps how many of the top-ranked passages are
	// eligible for citation.
	citedPassageMax = 5
)

// BuildReferences renders the citation block appended to an answer.
// Only the top-ranked passages are considered, and only those
// carrying both a manual title and a page number are citable; when
// none qualify the result is empty. A single cited manual gets an
// inline line, several get a bulleted list.
func BuildReferences(passages []domain.RetrievedPassage) string {
	if len(passages) > citedPassageMax {
		passages = passages[:citedPassageMax]
	}
	pagesByTitle := make(map[string][]int)
	var titles []string
	for _, p := range passages {
		title := p.Metadata.Title
		page := p.Metadata.PageNumber
		if title == "" || page <= 0 {
			continue
		}
		if _, seen := pagesByTitle[title]; !seen {
			titles = append(titles, title)
		}
		pagesByTitle[title] = append(pagesByTitle[title], page)
	}
	if len(titles) == 0 {
		return ""
	}

	if len(titles) == 1 {
		title := titles[0]
		return fmt.Sprintf("📖 **Reference:** %s, %s", title, formatPages(pagesByTitle[title]))
	}

	sort.Strings(titles)
	var b strings.Builder
	b.WriteString("📖 **References:**")
	for _, title := range titles {
		b.WriteString(fmt.Sprintf("\n- %s, %s", title, formatPages(pagesByTitle[title])))
	}
	return b.String()
}

// formatPages renders a deduplicated sorted page list:
//
//	one page            "Page 12"
//	up to five pages    "Pages 3, 4, 7"
//	a consecutive run   "Pages 3-9"
//	a long scatter      "Pages 3, 7, 12, and 4 more"
func formatPages(pages []int) string {
	unique := dedupeSorted(pages)

	if len(unique) == 1 {
		return fmt.Sprintf("Page %d", unique[0])
	}
	if len(unique) <= referenceListMax {
		return "Pages " + joinInts(unique)
	}
	if consecutive(unique) {
		return fmt.Sprintf("Pages %d-%d", unique[0], unique[len(unique)-1])
	}
	extra := len(unique) - 3
	return fmt.Sprintf("Pages %s, and %d more", joinInts(unique[:3]), extra)
}

func dedupeSorted(pages []int) []int {
	seen := make(map[int]struct{}, len(pages))
	var unique []int
	for _, p := range pages {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	sort.Ints(unique)
	return unique
}

func consecutive(pages []int) bool {
	for i := 1; i < len(pages); i++ {
		if pages[i] != pages[i-1]+1 {
			return false
		}
	}
	return true
}

func joinInts(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}
