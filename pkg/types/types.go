// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the article-summarizer
// pipeline: the structured summary record written for each PDF and the
// configuration for the summarize and enrich stages.
package types
