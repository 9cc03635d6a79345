// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/cardio-medqa/pkg/types"
)

// idNamespace scopes record identifiers to this dataset.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pdiddy/cardio-medqa"))

// DefaultFieldNames are the evaluation keys used when none are configured.
var DefaultFieldNames = types.EvalFieldNames{
	ID:          "ID",
	Knowledge:   "Knowledge",
	Question:    "Question",
	Options:     "Options",
	Answer:      "Answer",
	AnswerIndex: "AnswerIndex",
	Prediction:  "Prediction",
	Tag:         "Tag",
}

// readMeta decodes the _extract_meta block of an extracted record. It
// returns nil when the block is absent or malformed.
func readMeta(v any) *types.ExtractMeta {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	var meta types.ExtractMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil
	}
	return &meta
}

// recordID derives a stable identifier from the record's provenance. Records
// without provenance fall back to question and option texts.
func recordID(meta *types.ExtractMeta, question string, opts []types.Option) string {
	var b strings.Builder
	if meta != nil && meta.SourcePath != "" {
		b.WriteString(meta.SourcePath)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(meta.SourceLine))
		b.WriteByte(':')
		b.WriteString(question)
	} else {
		b.WriteString(question)
		for _, o := range opts {
			b.WriteByte('\x1f')
			b.WriteString(o.Text)
		}
	}
	return uuid.NewSHA1(idNamespace, []byte(b.String())).String()
}

// buildRecords turns a decoded record into its MCQ and evaluation forms, or
// returns the reason it cannot be used.
func (c *Converter) buildRecords(rec map[string]any) (types.MCQRecord, types.EvalRecord, types.SkipReason) {
	question, _ := rec["question"].(string)
	question = strings.TrimSpace(question)
	if question == "" {
		return types.MCQRecord{}, types.EvalRecord{}, types.SkipMissingField("question")
	}

	set := parseOptions(rec["options"])
	if len(set.choices) < c.cfg.MinOptions {
		return types.MCQRecord{}, types.EvalRecord{}, types.SkipNotMCQ
	}
	answer, ok := set.resolveAnswer(rec)
	if !ok {
		return types.MCQRecord{}, types.EvalRecord{}, types.SkipAnswerNotInOptions
	}

	opts := set.Options()
	meta := readMeta(rec[types.ExtractMetaKey])
	id := recordID(meta, question, opts)

	mcq := types.MCQRecord{
		ID:          id,
		Question:    question,
		Options:     make(map[string]string, len(opts)),
		Answer:      opts[answer].Text,
		AnswerIdx:   opts[answer].Label,
		MetaInfo:    rec["meta_info"],
		ExtractMeta: meta,
	}
	texts := make([]string, len(opts))
	for i, o := range opts {
		mcq.Options[o.Label] = o.Text
		texts[i] = o.Text
	}

	knowledge := unknownKnowledge
	if meta != nil {
		knowledge = DeriveKnowledge(meta.SourcePath)
	}

	eval := types.EvalRecord{
		ID:          id,
		Knowledge:   knowledge,
		Question:    question,
		Options:     texts,
		Answer:      opts[answer].Label,
		AnswerIndex: answer,
		Prediction:  "",
		Tag:         c.cfg.Tag,
	}
	return mcq, eval, ""
}

// evalRow is an evaluation record keyed by the configured field names. It
// marshals its keys in schema order.
type evalRow struct {
	keys   []string
	values []any
}

func newEvalRow(r types.EvalRecord, names types.EvalFieldNames) evalRow {
	return evalRow{
		keys:   names.Keys(),
		values: []any{r.ID, r.Knowledge, r.Question, r.Options, r.Answer, r.AnswerIndex, r.Prediction, r.Tag},
	}
}

// MarshalJSON implements json.Marshaler.
func (r evalRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		val, err := marshalNoEscape(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
