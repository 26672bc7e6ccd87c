package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// docxSegments opens the file as a ZIP archive and extracts one segment per
// paragraph from word/document.xml.
func docxSegments(_ context.Context, data []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "opening docx archive", err)
	}

	content, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, nil
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalid, "parsing word/document.xml", err)
	}

	segments := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, run := range para.Runs {
			for _, text := range run.Text {
				b.WriteString(text.Content)
			}
		}
		segments = append(segments, strings.TrimSpace(b.String()))
	}
	return segments, nil
}

// readArchiveFile returns the named archive entry's content, or nil if the
// entry does not exist.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInvalid, "opening archive entry "+name, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInvalid, "reading archive entry "+name, err)
		}
		return content, nil
	}
	return nil, nil
}
