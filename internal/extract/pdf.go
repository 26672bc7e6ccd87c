package extract

import (
	"context"
	"os"
	"strings"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// pdfSegments extracts text through pdftotext (poppler-utils), one segment
// per page. pdftotext separates pages with a form feed on stdout.
func (r *Registry) pdfSegments(ctx context.Context, data []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "docsearch-*.pdf")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "creating temp file for pdf extraction", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, apperr.Wrap(apperr.KindInternal, "writing temp file for pdf extraction", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "closing temp file for pdf extraction", err)
	}

	out, err := r.runner.Run(ctx, "pdftotext", "-layout", tmp.Name(), "-")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "pdftotext failed", err)
	}

	pages := strings.Split(string(out), "\f")
	segments := make([]string, 0, len(pages))
	for _, page := range pages {
		segments = append(segments, strings.TrimSpace(page))
	}
	return segments, nil
}
