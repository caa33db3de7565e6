package domain

import "context"

// PassageMetadata carries the manual attribution stored alongside each
// indexed chunk. Absent labels are represented by the zero value: an
// empty string for the text fields and 0 for PageNumber (page numbers
// are 1-based). Consumers must treat zero values as "unknown" rather
// than as real labels.
type PassageMetadata struct {
	EquipmentType  string
	EquipmentBrand string
	EquipmentModel string
	Title          string
	Source         string
	PageNumber     int
	ChunkID        string
}

// RetrievedPassage is a single ranked hit from the similarity search.
// Score is derived as 1 - cosine distance, so higher means more
// relevant. A passage is immutable once produced by the provider.
type RetrievedPassage struct {
	Content  string
	Score    float64
	Metadata PassageMetadata
}

// SearchFilter restricts a similarity search to passages whose metadata
// matches the given equality constraints. Zero-value fields are
// unconstrained.
type SearchFilter struct {
	Brand string
	Type  string
}

// IsZero reports whether the filter constrains nothing.
func (f SearchFilter) IsZero() bool {
	return f.Brand == "" && f.Type == ""
}

// SearchProvider is the similarity-search collaborator. Results are
// best-effort ordered by descending score. An empty result set is a
// valid answer, not an error; only infrastructure failures return a
// non-nil error.
type SearchProvider interface {
	Search(ctx context.Context, query string, topK int, filter SearchFilter) ([]RetrievedPassage, error)
}
