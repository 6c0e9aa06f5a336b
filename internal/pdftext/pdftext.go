// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext pulls per-page text out of PDF files. Two backends
// implement Extractor: Native reads the PDF in-process and Poppler shells out
// to pdftotext. Both return pages in document order with empty pages
// dropped and text normalized to NFC.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/article-summarizer/pkg/types"
)

// Extractor returns the text of each page of the PDF at path. Pages with no
// extractable text are omitted.
type Extractor interface {
	Pages(ctx context.Context, path string) ([]string, error)
}

// New returns the extractor for backend. An empty backend selects Native.
func New(backend types.PDFBackend) (Extractor, error) {
	switch backend {
	case "", types.PDFNative:
		return Native{}, nil
	case types.PDFPoppler:
		p := NewPoppler("")
		if !p.Available() {
			return nil, fmt.Errorf("%s not found on PATH; install poppler-utils or use --pdf-backend %s", p.Bin, types.PDFNative)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown pdf backend %q (want %s or %s)", backend, types.PDFNative, types.PDFPoppler)
	}
}

// Text joins pages into one document string, one line break between pages.
func Text(pages []string) string {
	return strings.Join(pages, "\n")
}

// cleanPage normalizes line endings and Unicode composition. It returns ""
// for a page holding only whitespace.
func cleanPage(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return norm.NFC.String(s)
}

// keepPages cleans raw page texts and drops the empty ones.
func keepPages(raw []string) []string {
	pages := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = cleanPage(p); p != "" {
			pages = append(pages, p)
		}
	}
	return pages
}
