package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DocumentText is the plain text of an uploaded document.
type DocumentText struct {
	Text      string
	PageCount int
}

// TextExtractor turns document bytes into text. Any error is fatal to a résumé run.
type TextExtractor interface {
	ExtractFromBytes(filename string, data []byte) (*DocumentText, error)
	ExtractFile(path string) (*DocumentText, error)
}

type pdfParserService struct{}

func NewPDFParserService() TextExtractor {
	return &pdfParserService{}
}

// SupportedExtension reports whether filename can be extracted.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

func (p *pdfParserService) ExtractFile(path string) (*DocumentText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.ExtractFromBytes(filepath.Base(path), data)
}

func (p *pdfParserService) ExtractFromBytes(filename string, data []byte) (*DocumentText, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("text document is not valid UTF-8")
		}
		text := string(data)
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("no text content found in document")
		}
		return &DocumentText{Text: text, PageCount: 1}, nil
	default:
		return nil, fmt.Errorf("invalid file extension: %s", filepath.Ext(filename))
	}
}

func extractPDF(data []byte) (doc *DocumentText, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(fmt.Sprintf("--- Page %d ---\n", pageIndex))
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content found in PDF")
	}

	return &DocumentText{
		Text:      text,
		PageCount: totalPage,
	}, nil
}
