// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const defaultPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return out, err
}

// Poppler extracts text by running poppler's pdftotext in layout mode.
// pdftotext separates pages with form feeds.
type Poppler struct {
	// Bin is the pdftotext binary name or path.
	Bin  string
	exec executor
}

// NewPoppler returns a Poppler for bin, or for "pdftotext" on PATH when bin
// is empty.
func NewPoppler(bin string) *Poppler {
	if bin == "" {
		bin = defaultPdftotext
	}
	return &Poppler{Bin: bin, exec: osExecutor{}}
}

// Available reports whether the binary can be found.
func (p *Poppler) Available() bool {
	_, err := p.exec.LookPath(p.Bin)
	return err == nil
}

// Pages runs pdftotext on path and splits its output into pages.
func (p *Poppler) Pages(ctx context.Context, path string) ([]string, error) {
	out, err := p.exec.Output(ctx, p.Bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("running %s on %s: %w", p.Bin, path, err)
	}
	return keepPages(strings.Split(string(out), "\f")), nil
}
