// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedGenerator(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	inner := &scriptedGenerator{text: "reply"}
	c := &CachedGenerator{Inner: inner, Dir: dir}
	req := Request{Prompt: "prompt", Model: "m"}

	first, err := c.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := c.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "reply", first)
	assert.Equal(t, "reply", second)
	assert.Equal(t, int32(1), inner.calls.Load(), "second call should hit the cache")
	assert.FileExists(t, filepath.Join(dir, CacheKey(req)+".json"))

	_, err = c.Generate(context.Background(), Request{Prompt: "prompt", Model: "other"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load(), "model is part of the key")

	_, err = c.Generate(context.Background(), Request{Prompt: "prompt", Model: "m", MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, int32(3), inner.calls.Load(), "token budget is part of the key")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary files left behind")
}

func TestCachedGenerator_FailuresNotCached(t *testing.T) {
	dir := t.TempDir()
	inner := &alwaysFailGenerator{}
	c := &CachedGenerator{Inner: inner, Dir: dir}

	_, err := c.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCachedGenerator_CorruptEntryIgnored(t *testing.T) {
	dir := t.TempDir()
	req := Request{Prompt: "p", Model: "m"}
	require.NoError(t, os.WriteFile(filepath.Join(dir, CacheKey(req)+".json"), []byte("{broken"), 0o644))

	inner := &scriptedGenerator{text: "fresh"}
	c := &CachedGenerator{Inner: inner, Dir: dir}
	text, err := c.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "fresh", text)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCacheKey(t *testing.T) {
	base := Request{Model: "m", Prompt: "p", MaxTokens: 100}
	assert.Equal(t, CacheKey(base), CacheKey(base))
	assert.Len(t, CacheKey(base), 64)

	for name, other := range map[string]Request{
		"prompt":     {Model: "m", Prompt: "q", MaxTokens: 100},
		"model":      {Model: "n", Prompt: "p", MaxTokens: 100},
		"max tokens": {Model: "m", Prompt: "p", MaxTokens: 200},
	} {
		assert.NotEqual(t, CacheKey(base), CacheKey(other), name)
	}
}
