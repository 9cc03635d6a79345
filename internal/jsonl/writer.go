// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrClosed is returned when writing to a Writer after Commit or Abort.
var ErrClosed = errors.New("jsonl: writer closed")

// Writer writes JSON values to a temporary file next to the destination and
// moves it into place on Commit. Until Commit succeeds the destination is
// never touched, so a failed run leaves any previous output intact.
type Writer struct {
	path   string
	tmp    *os.File
	buf    *bufio.Writer
	enc    *json.Encoder
	count  int
	closed bool
}

// Create opens a Writer for path, creating the parent directory if needed.
func Create(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("setting mode on temp file: %w", err)
	}

	buf := bufio.NewWriter(tmp)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	return &Writer{path: path, tmp: tmp, buf: buf, enc: enc}, nil
}

// Path returns the destination path.
func (w *Writer) Path() string { return w.path }

// Count returns the number of values written so far.
func (w *Writer) Count() int { return w.count }

// Write encodes v as one line.
func (w *Writer) Write(v any) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.enc.Encode(v); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(w.path), err)
	}
	w.count++
	return nil
}

// Commit flushes the temporary file and renames it over the destination.
func (w *Writer) Commit() error {
	return CommitAll(w)
}

// finish flushes and closes the temporary file, removing it on failure.
func (w *Writer) finish() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true

	flushErr := w.buf.Flush()
	closeErr := w.tmp.Close()
	if flushErr != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("flushing %s: %w", filepath.Base(w.path), flushErr)
	}
	if closeErr != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	return nil
}

// CommitAll moves every writer's output into place as one unit. Targets
// are checked before anything is renamed, and if a rename still fails the
// destinations already replaced are restored to their previous content.
// On error no destination is left changed.
func CommitAll(ws ...*Writer) error {
	var err error
	for _, w := range ws {
		if ferr := w.finish(); ferr != nil && err == nil {
			err = ferr
		}
	}
	if err == nil {
		err = checkTargets(ws)
	}
	if err != nil {
		for _, w := range ws {
			os.Remove(w.tmp.Name())
		}
		return err
	}

	backups := make([]string, 0, len(ws))
	for i, w := range ws {
		backup, err := swapIn(w)
		if err != nil {
			for j := i - 1; j >= 0; j-- {
				restore(ws[j].path, backups[j])
			}
			for _, rest := range ws[i:] {
				os.Remove(rest.tmp.Name())
			}
			return err
		}
		backups = append(backups, backup)
	}
	for _, b := range backups {
		if b != "" {
			os.Remove(b)
		}
	}
	return nil
}

// checkTargets rejects destinations that a rename cannot replace.
func checkTargets(ws []*Writer) error {
	for _, w := range ws {
		info, err := os.Lstat(w.Path())
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("checking %s: %w", w.Path(), err)
		}
		if info.IsDir() {
			return fmt.Errorf("cannot replace %s: is a directory", w.Path())
		}
	}
	return nil
}

// swapIn moves the current destination aside and renames the temp file into
// place. It returns the backup path, empty when there was no destination.
func swapIn(w *Writer) (string, error) {
	tmpPath := w.tmp.Name()
	backup := ""
	if _, err := os.Lstat(w.path); err == nil {
		backup = tmpPath + ".prev"
		if err := os.Rename(w.path, backup); err != nil {
			return "", fmt.Errorf("moving aside %s: %w", w.path, err)
		}
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		if backup != "" {
			restore(w.path, backup)
		}
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return backup, nil
}

// restore puts a backup back over path, or removes path if it had none.
func restore(path, backup string) {
	if backup == "" {
		os.Remove(path)
		return
	}
	if err := os.Rename(backup, path); err != nil {
		zap.S().Errorw("restoring previous output", "path", path, "backup", backup, "error", err)
	}
}

// Abort discards everything written. It is safe to call after Commit, in
// which case it does nothing, so callers can defer it.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	w.tmp.Close()
	os.Remove(w.tmp.Name())
}
