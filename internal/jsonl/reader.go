// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonl reads and writes JSON-lines files, one JSON value per line.
package jsonl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single record. MEDQA questions with long vignettes
// stay well under this.
const maxLineSize = 16 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrNoInput reports a missing or unreadable input path.
var ErrNoInput = errors.New("input not found")

// Stat checks that path exists and returns its FileInfo. Failures wrap
// ErrNoInput so callers can tell a missing input from a processing error.
func Stat(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNoInput)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoInput, path, err)
	}
	return info, nil
}

// Line is one non-blank line of a JSON-lines file.
type Line struct {
	// Number is the 1-based line number in the source file.
	Number int

	// Data is the line with surrounding whitespace removed. It is only valid
	// until the callback returns.
	Data []byte
}

// Scan calls fn for every non-blank line in r. Blank lines are skipped but
// still advance the line number. A UTF-8 byte order mark on the first line
// is dropped. Scan stops at the first error returned by fn and returns it.
func Scan(r io.Reader, fn func(Line) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for sc.Scan() {
		n++
		data := sc.Bytes()
		if n == 1 {
			data = bytes.TrimPrefix(data, utf8BOM)
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		if err := fn(Line{Number: n, Data: data}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("line %d: %w", n+1, err)
	}
	return nil
}

// ScanFile opens path and scans it with Scan.
func ScanFile(path string, fn func(Line) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Scan(f, fn); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}
