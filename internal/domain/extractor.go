package domain

import "context"

// PageText is the extracted plain text of a single manual page.
type PageText struct {
	Number int // 1-based page number
	Text   string
}

// ManualExtractor turns a manual file into per-page plain text.
// Extraction quality is the collaborator's concern; the pipeline only
// requires stable page numbering.
type ManualExtractor interface {
	Extract(ctx context.Context, path string) ([]PageText, error)
}
