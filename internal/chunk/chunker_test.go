package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyStream(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
	}{
		{"nil segments", nil},
		{"no segments", []string{}},
		{"only whitespace segments", []string{"", "   ", "\n\t", " "}},
	}

	c := NewChunker(1500)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, c.Chunk(tc.segments))
		})
	}
}

func TestChunkLosslessAndOrderPreserving(t *testing.T) {
	segments := []string{
		"first paragraph of the report",
		"second paragraph with more detail",
		"a short third",
		"and a closing remark",
	}

	c := NewChunker(40)
	chunks := c.Chunk(segments)
	require.NotEmpty(t, chunks)

	// Joining chunks with a space and removing all spaces must reproduce
	// the concatenated segment text in order.
	var want strings.Builder
	for _, s := range segments {
		want.WriteString(strings.ReplaceAll(s, " ", ""))
	}
	got := strings.ReplaceAll(strings.Join(chunks, " "), " ", "")
	assert.Equal(t, want.String(), got)
}

func TestChunkEmitsOnThreshold(t *testing.T) {
	// 20 segments of 100 characters with a 1500 minimum: the threshold is
	// crossed after the 15th segment, leaving 5 segments for the final flush.
	segments := make([]string, 20)
	for i := range segments {
		segments[i] = strings.Repeat(fmt.Sprintf("%d", i%10), 100)
	}

	c := NewChunker(1500)
	chunks := c.Chunk(segments)
	require.Len(t, chunks, 2)

	assert.Len(t, strings.Split(chunks[0], " "), 15)
	assert.Len(t, strings.Split(chunks[1], " "), 5)
}

func TestChunkCountsCharactersNotBytes(t *testing.T) {
	// 10 segments of 100 two-byte runes each. Counted in runes the
	// threshold is crossed after the 5th segment; counted in bytes it
	// would already be crossed after the 3rd.
	segments := make([]string, 10)
	for i := range segments {
		segments[i] = strings.Repeat("ü", 100)
	}

	c := NewChunker(500)
	chunks := c.Chunk(segments)
	require.Len(t, chunks, 2)

	assert.Len(t, strings.Split(chunks[0], " "), 5)
	assert.Len(t, strings.Split(chunks[1], " "), 5)
}

func TestChunkSingleShortSegment(t *testing.T) {
	c := NewChunker(1500)
	assert.Equal(t, []string{"tiny"}, c.Chunk([]string{"  tiny  "}))
}

func TestNewChunkerDefaultsOnInvalidThreshold(t *testing.T) {
	c := NewChunker(0)
	assert.Equal(t, DefaultMinContextLength, c.minContextLength)
}
