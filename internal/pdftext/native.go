// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// Native extracts text in-process with github.com/ledongthuc/pdf.
type Native struct{}

// Pages reads every page's plain text. A page the library cannot decode is
// skipped with a debug log; a file that cannot be opened is an error.
func (Native) Pages(ctx context.Context, path string) (pages []string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("reading PDF %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	raw := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Debug().Err(err).Str("file", path).Int("page", i).Msg("skipping unreadable page")
			continue
		}
		raw = append(raw, text)
	}
	return keepPages(raw), nil
}
