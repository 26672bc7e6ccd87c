package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"strings"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// odtSegments opens the file as a ZIP archive and extracts one segment per
// paragraph or heading from content.xml. Paragraph text may be nested inside
// span elements, so the decoder walks tokens instead of unmarshalling into a
// fixed structure.
func odtSegments(_ context.Context, data []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "opening odt archive", err)
	}

	content, err := readArchiveFile(reader, "content.xml")
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	return odtParagraphs(content)
}

func odtParagraphs(content []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		segments []string
		current  strings.Builder
		depth    int
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if isOdtParagraph(t.Name.Local) {
				depth++
			}
		case xml.EndElement:
			if isOdtParagraph(t.Name.Local) && depth > 0 {
				depth--
				if depth == 0 {
					segments = append(segments, strings.TrimSpace(current.String()))
					current.Reset()
				}
			}
		case xml.CharData:
			if depth > 0 {
				current.Write(t)
			}
		}
	}

	if depth != 0 {
		return nil, apperr.New(apperr.KindInvalid, "unbalanced paragraph elements in content.xml")
	}
	return segments, nil
}

func isOdtParagraph(local string) bool {
	return local == "p" || local == "h"
}
