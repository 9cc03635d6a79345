// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pdiddy/cardio-medqa/internal/jsonl"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

// metaInfoField is excluded from matching and output unless configured.
const metaInfoField = "meta_info"

// decodeRecord parses one record line into an object or a skip reason.
func decodeRecord(data []byte) (map[string]any, types.SkipReason) {
	rec, err := jsonl.DecodeObject(data)
	if err != nil {
		return nil, jsonl.SkipReasonFor(err)
	}
	return rec, ""
}

// checkRequired returns a skip reason for the first required field that is
// absent, null, or a blank string.
func checkRequired(rec map[string]any, required []string) types.SkipReason {
	for _, field := range required {
		v, ok := rec[field]
		if !ok || v == nil {
			return types.SkipMissingField(field)
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return types.SkipMissingField(field)
		}
	}
	return ""
}

// selectFields applies the fields allow-list, or drops excluded fields when
// no allow-list is set. The input map is not modified.
func selectFields(rec map[string]any, fields []string, exclude map[string]bool) map[string]any {
	out := make(map[string]any, len(rec))
	if len(fields) > 0 {
		for _, f := range fields {
			if v, ok := rec[f]; ok {
				out[f] = v
			}
		}
		return out
	}
	for k, v := range rec {
		if !exclude[k] {
			out[k] = v
		}
	}
	return out
}

// flatten collects up to max trimmed string fragments from v: object keys
// and scalar values, with object keys visited in sorted order so the
// matching text is deterministic.
func flatten(v any, max int) []string {
	var out []string
	var visit func(any)
	visit = func(v any) {
		if len(out) >= max || v == nil {
			return
		}
		switch x := v.(type) {
		case string:
			if s := strings.TrimSpace(x); s != "" {
				out = append(out, s)
			}
		case json.Number:
			out = append(out, x.String())
		case bool:
			if x {
				out = append(out, "true")
			} else {
				out = append(out, "false")
			}
		case map[string]any:
			keys := make([]string, 0, len(x))
			for k := range x {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if len(out) >= max {
					return
				}
				if s := strings.TrimSpace(k); s != "" {
					out = append(out, s)
				}
				visit(x[k])
			}
		case []any:
			for _, e := range x {
				if len(out) >= max {
					return
				}
				visit(e)
			}
		}
	}
	visit(v)
	return out
}

// matchText joins the flattened fragments of rec into one string.
func matchText(rec map[string]any, max int) string {
	return strings.Join(flatten(rec, max), " ")
}
