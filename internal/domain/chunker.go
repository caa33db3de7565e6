package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ChunkerVersion identifies the chunking algorithm used for an index
// run, so a manual can be re-ingested when the algorithm changes.
type ChunkerVersion string

// ChunkerVersionV1 is the sliding-window chunker with page attribution.
const ChunkerVersionV1 ChunkerVersion = "v1"

const (
	// DefaultChunkSize is the target chunk length in bytes.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how much of the previous chunk is repeated
	// at the start of the next one.
	DefaultChunkOverlap = 200
)

// ManualChunk is one indexable piece of a manual. Page is the 1-based
// page the chunk starts on.
type ManualChunk struct {
	Ordinal int
	Content string
	Page    int
}

// ManualChunker splits extracted manual pages into overlapping chunks.
type ManualChunker interface {
	Chunk(pages []PageText) ([]ManualChunk, error)
	Version() ChunkerVersion
}

type pageWindowChunker struct {
	size    int
	overlap int
}

// NewManualChunker creates the default chunker.
func NewManualChunker() ManualChunker {
	return &pageWindowChunker{size: DefaultChunkSize, overlap: DefaultChunkOverlap}
}

// NewManualChunkerWithLimits creates a chunker with explicit size and
// overlap. Overlap must be smaller than size.
func NewManualChunkerWithLimits(size, overlap int) (ManualChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
	}
	return &pageWindowChunker{size: size, overlap: overlap}, nil
}

func (c *pageWindowChunker) Version() ChunkerVersion {
	return ChunkerVersionV1
}

type pageSpan struct {
	number int
	start  int
	end    int
}

// Chunk joins the page texts, walks a sliding window of at most size
// bytes over the result, and cuts each chunk at the latest paragraph,
// line, sentence, or word boundary in the back half of the window.
// Each chunk records the page its start offset falls on.
func (c *pageWindowChunker) Chunk(pages []PageText) ([]ManualChunk, error) {
	var full strings.Builder
	spans := make([]pageSpan, 0, len(pages))
	for _, p := range pages {
		if full.Len() > 0 {
			full.WriteString("\n\n")
		}
		start := full.Len()
		full.WriteString(strings.TrimSpace(p.Text))
		spans = append(spans, pageSpan{number: p.Number, start: start, end: full.Len()})
	}

	text := full.String()
	var chunks []ManualChunk

	pos := 0
	for pos < len(text) {
		end := pos + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.cutPoint(text, pos, end)
		}

		content := strings.TrimSpace(text[pos:end])
		if content != "" {
			chunks = append(chunks, ManualChunk{
				Ordinal: len(chunks),
				Content: content,
				Page:    pageForOffset(spans, pos),
			})
		}

		if end == len(text) {
			break
		}
		next := end - c.overlap
		if next <= pos {
			next = end
		}
		pos = next
	}

	return chunks, nil
}

var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// cutPoint finds where to end the chunk starting at start. Boundaries
// in the front half of the window are ignored so chunks never collapse
// below half the target size.
func (c *pageWindowChunker) cutPoint(text string, start, limit int) int {
	window := text[start:limit]
	minCut := c.size / 2
	for _, sep := range chunkSeparators {
		if idx := strings.LastIndex(window, sep); idx >= minCut {
			return start + idx + len(sep)
		}
	}
	// No usable boundary; cut at the limit, backing up to a rune start.
	for limit > start && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return limit
}

func pageForOffset(spans []pageSpan, offset int) int {
	for _, s := range spans {
		if offset >= s.start && offset < s.end {
			return s.number
		}
	}
	if len(spans) > 0 {
		return spans[len(spans)-1].number
	}
	return 0
}
