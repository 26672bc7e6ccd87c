package extract

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// plaintextSegments splits UTF-8 text into one segment per paragraph
// (blank-line separated). Used for txt and md files.
func plaintextSegments(_ context.Context, data []byte) ([]string, error) {
	if !utf8.Valid(data) {
		return nil, apperr.New(apperr.KindInvalid, "file content is not valid UTF-8")
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	paragraphs := strings.Split(text, "\n\n")

	segments := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		segments = append(segments, strings.TrimSpace(p))
	}
	return segments, nil
}
