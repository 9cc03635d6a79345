// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/cardio-medqa/pkg/types"
)

// choice is one option as found in the source record.
type choice struct {
	key   string // source label, trimmed and upper-cased
	text  string
	index int // position in a source array, -1 for object options
}

// optionSet holds a record's options in normalized order.
type optionSet struct {
	choices []choice
	array   bool
}

// parseOptions reads options given as an object (label -> text) or as an
// array of strings or {label|key, text|value|option} objects. Options with
// empty text are dropped. Object options are ordered naturally by label;
// array options keep their order.
func parseOptions(v any) optionSet {
	var set optionSet
	seen := make(map[string]bool)
	add := func(c choice) {
		if c.key == "" || c.text == "" || seen[c.key] {
			return
		}
		seen[c.key] = true
		set.choices = append(set.choices, c)
	}

	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return labelLess(cleanLabel(keys[i]), cleanLabel(keys[j]))
		})
		for _, k := range keys {
			add(choice{key: cleanLabel(k), text: scalarText(x[k]), index: -1})
		}

	case []any:
		set.array = true
		for i, e := range x {
			c := choice{key: letter(i), index: i}
			if obj, ok := e.(map[string]any); ok {
				if l := firstScalar(obj, "label", "key"); l != "" {
					c.key = cleanLabel(l)
				}
				c.text = firstScalar(obj, "text", "value", "option")
			} else {
				c.text = scalarText(e)
			}
			add(c)
		}
	}
	return set
}

// Options returns the normalized options, relabeled A, B, C, ...
func (s optionSet) Options() []types.Option {
	out := make([]types.Option, len(s.choices))
	for i, c := range s.choices {
		out[i] = types.Option{Label: letter(i), Text: c.text}
	}
	return out
}

// resolveAnswer returns the position of the correct option. A non-empty
// answer_idx decides alone: it must name an option label, or index array
// options. Without it, answer is tried as a label, as option text, and as a
// zero-based index into array options.
func (s optionSet) resolveAnswer(rec map[string]any) (int, bool) {
	if l := cleanLabel(scalarText(rec["answer_idx"])); l != "" {
		if i, ok := s.byKey(l); ok {
			return i, true
		}
		return s.byIndex(rec["answer_idx"])
	}

	answer := scalarText(rec["answer"])
	if answer == "" {
		return 0, false
	}
	if i, ok := s.byKey(cleanLabel(answer)); ok {
		return i, true
	}
	for i, c := range s.choices {
		if strings.EqualFold(c.text, answer) {
			return i, true
		}
	}
	return s.byIndex(rec["answer"])
}

// byIndex resolves a JSON number against the source positions of array
// options.
func (s optionSet) byIndex(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok || !s.array {
		return 0, false
	}
	idx, err := n.Int64()
	if err != nil {
		return 0, false
	}
	for i, c := range s.choices {
		if int64(c.index) == idx {
			return i, true
		}
	}
	return 0, false
}

func (s optionSet) byKey(key string) (int, bool) {
	for i, c := range s.choices {
		if c.key == key {
			return i, true
		}
	}
	return 0, false
}

func cleanLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimSuffix(s, ")")
	return strings.ToUpper(strings.TrimSpace(s))
}

// labelLess orders numeric labels by value ahead of other labels, which are
// ordered lexically.
func labelLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// letter returns the spreadsheet-style label for position i: A..Z, AA, AB, ...
func letter(i int) string {
	var b []byte
	for i >= 0 {
		b = append([]byte{byte('A' + i%26)}, b...)
		i = i/26 - 1
	}
	return string(b)
}

func scalarText(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func firstScalar(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := scalarText(obj[k]); s != "" {
			return s
		}
	}
	return ""
}
