// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cardio-medqa/internal/jsonl"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	n := 0
	require.NoError(t, jsonl.ScanFile(path, func(jsonl.Line) error {
		n++
		return nil
	}))
	return n
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "corpus.jsonl")
	lines := []string{
		`{"question":"Patient with chest pain...","options":{"A":"MI","B":"Flu"},"answer":"A"}`,
		`{"question":"Chest pain without an answer","options":{"A":"MI","B":"Flu"}}`,
		`{"question":"Sprained ankle","options":{"A":"Ice","B":"Heat"},"answer":"A"}`,
	}
	require.NoError(t, os.WriteFile(input, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	out := filepath.Join(dir, "derived")

	err := execute(t, "run",
		"--input", input,
		"--output-dir", out,
		"--eval-output-dir", out,
		"--keywords", "chest pain",
		"--related-keywords", "ankle",
		"--log-level", "error",
	)
	require.NoError(t, err)

	assert.Equal(t, 1, countLines(t, filepath.Join(out, types.StrictFile)))
	assert.Equal(t, 2, countLines(t, filepath.Join(out, types.BroadFile)))
	assert.Equal(t, 1, countLines(t, filepath.Join(out, types.MCQFile)))
	assert.Equal(t, 1, countLines(t, filepath.Join(out, types.EvalFile)))
}

func TestExtractCommand_MissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "derived")

	err := execute(t, "extract", "--input", filepath.Join(dir, "missing"), "--output-dir", out, "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, jsonl.ErrNoInput)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	require.NoError(t, execute(t, "version"))
	assert.True(t, strings.HasPrefix(buf.String(), "cardio-medqa dev"), buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "心脏...", truncate("心脏病心力衰竭", 5))
}
