// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractMetaKey is the field appended to every extracted record.
const ExtractMetaKey = "_extract_meta"

// MatchTier records which keyword set matched a record.
type MatchTier string

const (
	// TierStrict marks a hit on the cardiology keyword set.
	TierStrict MatchTier = "strict"
	// TierBroad marks a hit only on the cardiovascular-adjacent terms.
	TierBroad MatchTier = "broad"
)

// ExtractMeta is the provenance block the extractor attaches to a record.
type ExtractMeta struct {
	// SourcePath is the corpus file the record was read from.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// SourceLine is the 1-based line (or array element) within SourcePath.
	SourceLine int `json:"source_line" yaml:"source_line"`

	// MatchedKeywords lists the keyword hits in text order, capped per record.
	MatchedKeywords []string `json:"matched_keywords" yaml:"matched_keywords"`

	// MatchTier is strict for cardiology hits and broad otherwise.
	MatchTier MatchTier `json:"match_tier" yaml:"match_tier"`
}

// Option is one answer choice after label normalization.
type Option struct {
	// Label is the normalized letter ("A", "B", ...).
	Label string `json:"label" yaml:"label"`

	// Text is the option text.
	Text string `json:"text" yaml:"text"`
}

// MCQRecord is a validated multiple-choice question as written to
// heart_disease_mcq.jsonl. AnswerIdx is always one of the Options keys.
type MCQRecord struct {
	ID          string            `json:"id" yaml:"id"`
	Question    string            `json:"question" yaml:"question"`
	Options     map[string]string `json:"options" yaml:"options"`
	Answer      string            `json:"answer" yaml:"answer"`
	AnswerIdx   string            `json:"answer_idx" yaml:"answer_idx"`
	MetaInfo    any               `json:"meta_info,omitempty" yaml:"meta_info,omitempty"`
	ExtractMeta *ExtractMeta      `json:"_extract_meta,omitempty" yaml:"_extract_meta,omitempty"`
}

// EvalRecord is the standardized evaluation projection of an MCQRecord.
// Its JSON keys are configurable, see EvalFieldNames.
type EvalRecord struct {
	ID          string
	Knowledge   string
	Question    string
	Options     []string
	Answer      string
	AnswerIndex int
	Prediction  string
	Tag         string
}

// SkipReason names why a record was left out of a stage's output.
type SkipReason string

const (
	SkipInvalidJSON        SkipReason = "invalid_json"
	SkipNotObject          SkipReason = "not_object"
	SkipNotMCQ             SkipReason = "not_mcq"
	SkipAnswerNotInOptions SkipReason = "answer_not_in_options"
)

// SkipMissingField returns the reason for a record lacking a required field.
func SkipMissingField(name string) SkipReason {
	return SkipReason("missing_field:" + name)
}
