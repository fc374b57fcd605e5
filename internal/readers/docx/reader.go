// Package docx reads the paragraph text out of DOCX containers.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/lenslink/internal/core/domain"
	"github.com/custodia-labs/lenslink/internal/core/ports/driven"
	"github.com/custodia-labs/lenslink/internal/textutil"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

// Reader extracts text lines from DOCX files. Each paragraph in
// word/document.xml becomes one line; empty paragraphs are dropped.
type Reader struct{}

// New creates a DOCX reader.
func New() *Reader {
	return &Reader{}
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{".docx"}
}

// ReadLines returns the document's normalized, non-empty paragraph texts
// in order.
func (r *Reader) ReadLines(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return LinesFromBytes(content)
}

// LinesFromBytes extracts paragraph lines from in-memory DOCX content.
func LinesFromBytes(content []byte) ([]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("not a docx container: %w", domain.ErrInvalidInput)
	}

	raw, err := documentXMLBytes(archive)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("missing word/document.xml: %w", domain.ErrInvalidInput)
	}
	return parseParagraphs(raw)
}

// documentXMLBytes finds and reads word/document.xml.
func documentXMLBytes(archive *zip.Reader) ([]byte, error) {
	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading document.xml: %w", err)
		}
		return content, nil
	}
	return nil, nil
}

// documentXML mirrors the subset of word/document.xml we care about.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseParagraphs flattens each paragraph's runs into one line.
func parseParagraphs(content []byte) ([]string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parsing document.xml: %w", err)
	}

	var lines []string
	for _, para := range doc.Body.Paragraphs {
		var b bytes.Buffer
		for _, r := range para.Runs {
			for _, t := range r.Text {
				b.WriteString(t.Content)
			}
		}
		if line := textutil.Normalize(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
