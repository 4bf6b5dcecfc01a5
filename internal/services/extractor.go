package services

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"hrtools/resume-shortlister/internal/models"
)

type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
)

func (f DocumentFormat) ContentType() string {
	if f == FormatDOCX {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}

// DetectFormat sniffs the document format from magic bytes. DOCX files are
// zip archives, so the zip signature is accepted as DOCX.
func DetectFormat(data []byte) (DocumentFormat, error) {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return FormatPDF, nil
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("content is neither PDF nor DOCX: %w", models.ErrUnsupportedFormat)
}

type TextExtractor interface {
	Extract(data []byte, format DocumentFormat) (string, error)
	ExtractCandidateName(text, fileName string) string
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// Extract implements TextExtractor. Corrupt or password-protected input
// yields ErrUnreadableDocument, never a panic.
func (e *textExtractor) Extract(data []byte, format DocumentFormat) (text string, err error) {
	defer func() {
		// The PDF parser can panic on malformed cross-reference tables.
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parser panic: %v: %w", r, models.ErrUnreadableDocument)
		}
	}()

	switch format {
	case FormatPDF:
		text, err = extractPDFText(data)
	case FormatDOCX:
		text, err = extractDocxText(data)
	default:
		return "", fmt.Errorf("format %q: %w", format, models.ErrUnsupportedFormat)
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", fmt.Errorf("no text content found: %w", models.ErrUnreadableDocument)
	}
	return text, nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %v: %w", err, models.ErrUnreadableDocument)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %v: %w", err, models.ErrUnreadableDocument)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}

var nameLinePattern = regexp.MustCompile(`^[A-Za-z\s]{2,50}$`)

// ExtractCandidateName guesses the candidate's name from the first plausible
// line of the resume text, falling back to the cleaned file name.
func (e *textExtractor) ExtractCandidateName(text, fileName string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if nameLinePattern.MatchString(line) && len(strings.Fields(line)) <= 4 {
			return line
		}
		break
	}

	name := fileName
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// CleanText normalizes extracted text: trims lines and drops empty ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
