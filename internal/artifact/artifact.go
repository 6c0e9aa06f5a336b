// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact lists input files and reads and writes the per-document
// JSON records that the summarize and enrich stages persist next to their
// sources.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/article-summarizer/pkg/types"
)

const (
	// SummarySuffix names the record written for a PDF.
	SummarySuffix = ".json"
	// EnrichedSuffix names the record written by the enrich stage.
	EnrichedSuffix = "_enriched.json"
)

// ListFiles returns the regular files directly inside dir whose names end
// with ext, compared case-insensitively, sorted by name. A missing directory
// yields an empty list and a warning; other read errors are returned.
func ListFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("dir", dir).Msg("directory does not exist; nothing to do")
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	ext = strings.ToLower(ext)
	files := []string{}
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath replaces src's extension with suffix: OutputPath("a/b.pdf",
// ".json") is "a/b.json".
func OutputPath(src, suffix string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + suffix
}

// Changed reports whether out is missing or older than src.
func Changed(src, out string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat source %s: %w", src, err)
	}

	outInfo, err := os.Stat(out)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", out, err)
	}

	return srcInfo.ModTime().After(outInfo.ModTime()), nil
}

// Encode renders s as UTF-8 JSON with 2-space indentation, HTML characters
// unescaped, and a trailing newline.
func Encode(s types.Summary) ([]byte, error) {
	if s == nil {
		s = types.Summary{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSummary writes s to path in the Encode format.
func WriteSummary(path string, s types.Summary) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadSummary loads a record written by WriteSummary. The file must hold a
// JSON object.
func ReadSummary(path string) (types.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var s types.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if s == nil {
		return nil, fmt.Errorf("parsing %s: not a JSON object", path)
	}
	return s, nil
}
