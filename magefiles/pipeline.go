// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// papersDir returns the directory the pipeline targets run against,
// overridable with PAPERS_DIR.
func papersDir() string {
	if dir := os.Getenv("PAPERS_DIR"); dir != "" {
		return dir
	}
	return "papers"
}

// Summarize builds the CLI and summarizes every PDF in PAPERS_DIR.
func Summarize() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "summarize", papersDir())
}

// Enrich builds the CLI and enriches every summary in PAPERS_DIR.
func Enrich() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "enrich", papersDir())
}

// Pipeline runs Summarize then Enrich.
func Pipeline() {
	mg.SerialDeps(Summarize, Enrich)
}
