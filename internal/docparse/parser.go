// Package docparse extracts plain text from uploaded files and fetched web
// pages so they can be registered as documents.
package docparse

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// ErrUnsupportedFormat is returned for file extensions with no parser.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parse extracts text from raw file bytes based on the filename extension.
// Supported: .txt, .md, .markdown, .json (UTF-8 text) and .pdf. Anything
// else is rejected with ErrUnsupportedFormat.
func Parse(filename string, raw []byte) (string, error) {
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = strings.ToLower(filename[i+1:])
	}

	switch ext {
	case "txt", "md", "markdown", "json":
		return parseText(raw)
	case "pdf":
		return parsePDF(raw)
	default:
		return "", fmt.Errorf("%w: .%s", ErrUnsupportedFormat, ext)
	}
}

func parseText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	content := strings.TrimSpace(string(raw))
	if content == "" {
		return "", fmt.Errorf("file contains no text")
	}
	return content, nil
}

func parsePDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading PDF text: %w", err)
	}

	content := strings.TrimSpace(buf.String())
	if content == "" {
		return "", fmt.Errorf("PDF contains no extractable text (image-only PDF?)")
	}
	return content, nil
}

// HTMLToText extracts the visible text of an HTML page, skipping script and
// style elements. Used when registering a document from a URL.
func HTMLToText(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", fmt.Errorf("page contains no visible text")
	}
	return content, nil
}
