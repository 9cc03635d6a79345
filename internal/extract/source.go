// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/cardio-medqa/internal/jsonl"
)

// discoverFiles returns the files to scan under root in lexical order. A
// file root is returned as-is regardless of its extension.
func discoverFiles(root string, extensions []string) ([]string, error) {
	info, err := jsonl.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// errBadDocument marks a .json file that does not parse. The file is
// skipped; the run continues.
var errBadDocument = errors.New("invalid JSON document")

// isJSONDocument reports whether path holds a single JSON document rather
// than JSON-lines.
func isJSONDocument(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// readJSONDocument loads a .json file and calls fn for each record: every
// element of a top-level array, or the document itself. Element N is
// reported as line N.
func readJSONDocument(path string, fn func(jsonl.Line) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", errBadDocument, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return fn(jsonl.Line{Number: 1, Data: trimmed})
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return fmt.Errorf("%w: %v", errBadDocument, err)
	}
	for i, e := range elems {
		if err := fn(jsonl.Line{Number: i + 1, Data: bytes.TrimSpace(e)}); err != nil {
			return err
		}
	}
	return nil
}
