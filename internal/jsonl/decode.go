// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonl

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/pdiddy/cardio-medqa/pkg/types"
)

// Decode errors. Callers map them to skip reasons with SkipReasonFor.
var (
	ErrInvalidJSON = errors.New("invalid JSON")
	ErrNotObject   = errors.New("not a JSON object")
)

// DecodeObject parses one JSON object, keeping numbers as json.Number so
// they are written back unchanged. Trailing data after the object is an
// error.
func DecodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, ErrInvalidJSON
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrInvalidJSON
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// SkipReasonFor maps a DecodeObject error to the tally key used in reports.
func SkipReasonFor(err error) types.SkipReason {
	if errors.Is(err, ErrNotObject) {
		return types.SkipNotObject
	}
	return types.SkipInvalidJSON
}
