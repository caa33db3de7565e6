package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManualChunkerWithLimits_Validation(t *testing.T) {
	_, err := NewManualChunkerWithLimits(0, 0)
	assert.Error(t, err)

	_, err = NewManualChunkerWithLimits(100, -1)
	assert.Error(t, err)

	_, err = NewManualChunkerWithLimits(100, 100)
	assert.Error(t, err)

	c, err := NewManualChunkerWithLimits(100, 20)
	require.NoError(t, err)
	assert.Equal(t, ChunkerVersionV1, c.Version())
}

func TestChunk_ShortManualSingleChunk(t *testing.T) {
	c := NewManualChunker()

	chunks, err := c.Chunk([]PageText{{Number: 1, Text: "  Press the power button to start the fryer.  "}})
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, "Press the power button to start the fryer.", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].Page)
}

func TestChunk_BlankPagesProduceNothing(t *testing.T) {
	c := NewManualChunker()

	chunks, err := c.Chunk([]PageText{{Number: 1, Text: "   "}, {Number: 2, Text: "\n\n"}})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_OverlapRepeatsTail(t *testing.T) {
	c, err := NewManualChunkerWithLimits(100, 20)
	require.NoError(t, err)

	// No separators, so every cut lands exactly at the size limit.
	text := strings.Repeat("a", 250)
	chunks, err := c.Chunk([]PageText{{Number: 1, Text: text}})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Len(t, chunks[0].Content, 100)
	assert.Len(t, chunks[1].Content, 100)
	assert.Len(t, chunks[2].Content, 90)
	assert.Equal(t, chunks[0].Content[80:], chunks[1].Content[:20])
	assert.Equal(t, []int{0, 1, 2}, []int{chunks[0].Ordinal, chunks[1].Ordinal, chunks[2].Ordinal})
}

func TestChunk_CutsAtSentenceBoundary(t *testing.T) {
	c, err := NewManualChunkerWithLimits(100, 0)
	require.NoError(t, err)

	text := strings.Repeat("A", 70) + ". " + strings.Repeat("B", 100)
	chunks, err := c.Chunk([]PageText{{Number: 1, Text: text}})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, strings.Repeat("A", 70)+".", chunks[0].Content)
	assert.Equal(t, strings.Repeat("B", 100), chunks[1].Content)
}

func TestChunk_PageAttributionFollowsStartOffset(t *testing.T) {
	c, err := NewManualChunkerWithLimits(40, 0)
	require.NoError(t, err)

	pages := []PageText{
		{Number: 1, Text: strings.Repeat("a", 30)},
		{Number: 2, Text: strings.Repeat("b", 30)},
	}
	chunks, err := c.Chunk(pages)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, strings.Repeat("a", 30), chunks[0].Content)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, strings.Repeat("b", 30), chunks[1].Content)
}
