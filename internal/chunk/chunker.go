package chunk

import (
	"strings"
	"unicode/utf8"
)

// Chunker groups raw text segments into chunks whose cumulative character
// length meets a minimum threshold. Segmentation is greedy, single-pass and
// order-preserving: segments are never reordered or re-balanced between
// chunks.
type Chunker struct {
	minContextLength int
}

// NewChunker returns a Chunker with the given minimum context length.
// Non-positive values fall back to DefaultMinContextLength.
func NewChunker(minContextLength int) *Chunker {
	if minContextLength <= 0 {
		minContextLength = DefaultMinContextLength
	}
	return &Chunker{minContextLength: minContextLength}
}

// Chunk accumulates the stripped text of each segment and emits a chunk
// (segments joined by a single space) every time the cumulative segment
// length reaches the minimum threshold. Any non-empty remainder is flushed
// as a final, possibly short, chunk. Empty and whitespace-only segments are
// skipped. A stream with no non-empty segments yields no chunks.
func (c *Chunker) Chunk(segments []string) []string {
	var (
		chunks []string
		buf    []string
		total  int
	)

	for _, segment := range segments {
		stripped := strings.TrimSpace(segment)
		if stripped == "" {
			continue
		}

		buf = append(buf, stripped)
		total += utf8.RuneCountInString(stripped)

		if total >= c.minContextLength {
			chunks = append(chunks, strings.Join(buf, " "))
			buf = nil
			total = 0
		}
	}

	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}

	return chunks
}
