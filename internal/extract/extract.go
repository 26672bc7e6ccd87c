package extract

import (
	"context"
	"strings"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// Supported file formats, matched case-insensitively against the declared
// format or file extension.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatODT  = "odt"
	FormatTXT  = "txt"
	FormatMD   = "md"
)

// SegmentFunc converts raw file bytes into ordered, non-empty text segments.
type SegmentFunc func(ctx context.Context, data []byte) ([]string, error)

// Registry holds the capability table mapping formats to their extraction
// routines. Construct once and share; it is read-only after construction.
type Registry struct {
	runner CommandRunner
	table  map[string]SegmentFunc
}

// NewRegistry builds the capability table. The runner backs routines that
// shell out to external tools.
func NewRegistry(runner CommandRunner) *Registry {
	r := &Registry{runner: runner}
	r.table = map[string]SegmentFunc{
		FormatPDF:  r.pdfSegments,
		FormatDOCX: docxSegments,
		FormatODT:  odtSegments,
		FormatTXT:  plaintextSegments,
		FormatMD:   plaintextSegments,
	}
	return r
}

// Supported reports whether the capability table has a routine for format.
func (r *Registry) Supported(format string) bool {
	_, ok := r.table[NormalizeFormat(format)]
	return ok
}

// Formats lists every format the capability table covers.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.table))
	for f := range r.table {
		formats = append(formats, f)
	}
	return formats
}

// Extract runs the routine for format over data and returns the ordered
// non-empty segments. An unsupported format returns a KindUnsupported error;
// corrupt content returns a KindInvalid error. Both are scoped to this one
// file and the caller records them without aborting sibling files.
func (r *Registry) Extract(ctx context.Context, format string, data []byte) ([]string, error) {
	fn, ok := r.table[NormalizeFormat(format)]
	if !ok {
		return nil, apperr.Newf(apperr.KindUnsupported, "no extraction routine for format %q", format)
	}

	segments, err := fn(ctx, data)
	if err != nil {
		return nil, err
	}
	return filterEmpty(segments), nil
}

// NormalizeFormat lowercases a declared format or extension and strips a
// leading dot, so ".PDF", "pdf" and "PDF" all address the same routine.
func NormalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

func filterEmpty(segments []string) []string {
	out := segments[:0]
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
