// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Output file names written under the derived data directory.
const (
	StrictFile = "heart_disease.jsonl"
	BroadFile  = "heart_disease_all.jsonl"
	MCQFile    = "heart_disease_mcq.jsonl"
	EvalFile   = "cardio_eval.jsonl"
)

// Language selects which default keyword lists the extractor uses.
type Language string

const (
	LanguageEN   Language = "en"
	LanguageZH   Language = "zh"
	LanguageBoth Language = "both"
)

// ExtractionConfig holds settings for the extract stage.
type ExtractionConfig struct {
	// Input is a corpus file or a directory to walk.
	Input string `json:"input" yaml:"input"`

	// OutputDir receives heart_disease.jsonl and heart_disease_all.jsonl.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Extensions lists the file extensions scanned when Input is a directory.
	Extensions []string `json:"extensions" yaml:"extensions"`

	// Language picks the default keyword lists when Keywords is empty.
	Language Language `json:"language" yaml:"language"`

	// Keywords overrides the default cardiology (strict) keyword set.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// RelatedKeywords overrides the cardiovascular-adjacent terms that are
	// added to the strict set to form the broad set.
	RelatedKeywords []string `json:"related_keywords" yaml:"related_keywords"`

	// Fields restricts matching and output to these top-level fields.
	Fields []string `json:"fields" yaml:"fields"`

	// IncludeMetaInfo keeps meta_info in matching and output.
	IncludeMetaInfo bool `json:"include_meta_info" yaml:"include_meta_info"`

	// RequiredFields must be present and non-empty or the record is skipped.
	RequiredFields []string `json:"required_fields" yaml:"required_fields"`

	// MaxFlattenItems caps the string fragments taken from one record.
	MaxFlattenItems int `json:"max_flatten_items" yaml:"max_flatten_items"`

	// MaxHitsPerRecord caps the keyword hits stored in _extract_meta.
	MaxHitsPerRecord int `json:"max_hits_per_record" yaml:"max_hits_per_record"`

	// MaxRecords stops the scan after N records (0 = no limit).
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// DryRun counts matches without writing output.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// EvalFieldNames maps each logical evaluation field to its JSON key.
type EvalFieldNames struct {
	ID          string `json:"id" yaml:"id"`
	Knowledge   string `json:"knowledge" yaml:"knowledge"`
	Question    string `json:"question" yaml:"question"`
	Options     string `json:"options" yaml:"options"`
	Answer      string `json:"answer" yaml:"answer"`
	AnswerIndex string `json:"answer_index" yaml:"answer_index"`
	Prediction  string `json:"prediction" yaml:"prediction"`
	Tag         string `json:"tag" yaml:"tag"`
}

// Keys returns the configured keys in field declaration order.
func (n EvalFieldNames) Keys() []string {
	return []string{n.ID, n.Knowledge, n.Question, n.Options, n.Answer, n.AnswerIndex, n.Prediction, n.Tag}
}

// ConversionConfig holds settings for the convert stage.
type ConversionConfig struct {
	// Input is the extracted subset to convert.
	Input string `json:"input" yaml:"input"`

	// OutputDir receives heart_disease_mcq.jsonl and cardio_eval.jsonl.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Tag is copied into every evaluation record.
	Tag string `json:"tag" yaml:"tag"`

	// MinOptions is the fewest non-empty options a record needs to count as
	// a multiple-choice question.
	MinOptions int `json:"min_options" yaml:"min_options"`

	// Fields names the keys of the evaluation schema.
	Fields EvalFieldNames `json:"fields" yaml:"fields"`
}

// CatalogConfig holds settings for the SQLite catalog.
type CatalogConfig struct {
	// IndexDir holds cardio.db and export files.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// Input is the MCQ file ingested by catalog store.
	Input string `json:"input" yaml:"input"`

	// MaxResults is the default query limit.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LoggingConfig controls the structured diagnostic logger.
type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}
