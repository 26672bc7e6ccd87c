package chunk

import "strings"

// defaultSeparators are tried in order: paragraph break, line break,
// sentence terminator, space, and finally character-level splitting.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter performs fixed-size character-window splitting of arbitrary plain
// text, used at retrieval time where no segment structure is available. It
// prefers to break at the coarsest separator present in the text and carries
// an overlap window between consecutive chunks to preserve cross-chunk
// context for similarity search.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter returns a Splitter with the given target chunk size and
// overlap. Non-positive values fall back to the defaults.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split breaks text into chunks of at most chunkSize characters, descending
// through the separator hierarchy for any piece still too large.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var (
		final []string
		good  []string
	)
	for _, piece := range splitWithSeparator(text, sep) {
		if piece == "" {
			continue
		}
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		// piece is itself oversized: flush what we have, then recurse
		// with the finer separators.
		if len(good) > 0 {
			final = append(final, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, sep)...)
	}
	return final
}

// merge greedily packs consecutive pieces into chunks of at most chunkSize
// characters. When a chunk is emitted, leading pieces are dropped until the
// retained tail fits the overlap window; the tail seeds the next chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	var (
		docs    []string
		current []string
		total   int
	)
	sepLen := len(sep)

	for _, piece := range pieces {
		l := len(piece)
		if len(current) > 0 && total+sepLen+l > s.chunkSize {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				docs = append(docs, doc)
			}
			for len(current) > 0 && (total > s.overlap || total+sepLen+l > s.chunkSize) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, piece)
		total += l
	}

	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitWithSeparator splits text by sep; an empty separator splits into
// individual runes.
func splitWithSeparator(text, sep string) []string {
	if sep == "" {
		return strings.Split(text, "")
	}
	return strings.Split(text, sep)
}
