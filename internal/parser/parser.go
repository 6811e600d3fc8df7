// Package parser converts raw document bytes of the supported formats
// into normalized plain text.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDocx     Format = "docx"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrEmptyContent      = errors.New("document contains no extractable text")
)

// FormatFromFilename maps a file extension onto the allow-list.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDocx, nil
	case ".txt":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Parse extracts text from data according to format and normalizes it.
// A document that yields nothing after normalization is rejected with
// ErrEmptyContent rather than silently accepted.
func Parse(data []byte, format Format) (string, error) {
	var raw string
	var err error
	switch format {
	case FormatPDF:
		raw, err = extractPDF(data)
	case FormatDocx:
		raw, err = extractDocx(data)
	case FormatText, FormatMarkdown:
		raw = string(data)
	default:
		return "", ErrUnsupportedFormat
	}
	if err != nil {
		return "", fmt.Errorf("extract %s text failed: %w", format, err)
	}

	text := Normalize(raw)
	if text == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}

// Normalize collapses runs of whitespace inside each line to single
// spaces and caps consecutive blank lines at one.
func Normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
