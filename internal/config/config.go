// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the pipeline configuration from defaults, the
// cardio-medqa.yaml file, CARDIO_MEDQA_* environment variables, and bound
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cardio-medqa/pkg/types"
)

// Name is the config file base name and the environment variable prefix
// source.
const Name = "cardio-medqa"

// EnvPrefix is prepended to every environment override, e.g.
// CARDIO_MEDQA_EXTRACTION_INPUT.
const EnvPrefix = "CARDIO_MEDQA"

// Configuration keys, as used in the YAML file and with viper.BindPFlag.
const (
	KeyExtractionInput            = "extraction.input"
	KeyExtractionOutputDir        = "extraction.output_dir"
	KeyExtractionExtensions       = "extraction.extensions"
	KeyExtractionLanguage         = "extraction.language"
	KeyExtractionKeywords         = "extraction.keywords"
	KeyExtractionRelatedKeywords  = "extraction.related_keywords"
	KeyExtractionFields           = "extraction.fields"
	KeyExtractionIncludeMetaInfo  = "extraction.include_meta_info"
	KeyExtractionRequiredFields   = "extraction.required_fields"
	KeyExtractionMaxFlattenItems  = "extraction.max_flatten_items"
	KeyExtractionMaxHitsPerRecord = "extraction.max_hits_per_record"
	KeyExtractionMaxRecords       = "extraction.max_records"
	KeyExtractionDryRun           = "extraction.dry_run"

	KeyConversionInput      = "conversion.input"
	KeyConversionOutputDir  = "conversion.output_dir"
	KeyConversionTag        = "conversion.tag"
	KeyConversionMinOptions = "conversion.min_options"
	KeyConversionFields     = "conversion.fields"

	KeyCatalogIndexDir   = "catalog.index_dir"
	KeyCatalogInput      = "catalog.input"
	KeyCatalogMaxResults = "catalog.max_results"

	KeyLoggingLevel  = "logging.level"
	KeyLoggingFormat = "logging.format"
)

// Defaults returns the configuration used when nothing is overridden.
func Defaults() types.PipelineConfig {
	return types.PipelineConfig{
		Extraction: types.ExtractionConfig{
			Input:            "data/raw",
			OutputDir:        "data/derived",
			Extensions:       []string{".jsonl", ".json"},
			Language:         types.LanguageBoth,
			RequiredFields:   []string{"question", "answer"},
			MaxFlattenItems:  200,
			MaxHitsPerRecord: 20,
		},
		Conversion: types.ConversionConfig{
			Input:      "data/derived/" + types.StrictFile,
			OutputDir:  "data/derived",
			Tag:        "Cardio-MedQA",
			MinOptions: 2,
			Fields: types.EvalFieldNames{
				ID:          "ID",
				Knowledge:   "Knowledge",
				Question:    "Question",
				Options:     "Options",
				Answer:      "Answer",
				AnswerIndex: "AnswerIndex",
				Prediction:  "Prediction",
				Tag:         "Tag",
			},
		},
		Catalog: types.CatalogConfig{
			IndexDir:   "data/derived/index",
			Input:      "data/derived/" + types.MCQFile,
			MaxResults: 20,
		},
		Logging: types.LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SetDefaults registers every key with its default on v. Registering all
// keys also lets AutomaticEnv resolve environment overrides during Load.
func SetDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault(KeyExtractionInput, d.Extraction.Input)
	v.SetDefault(KeyExtractionOutputDir, d.Extraction.OutputDir)
	v.SetDefault(KeyExtractionExtensions, d.Extraction.Extensions)
	v.SetDefault(KeyExtractionLanguage, string(d.Extraction.Language))
	v.SetDefault(KeyExtractionKeywords, []string{})
	v.SetDefault(KeyExtractionRelatedKeywords, []string{})
	v.SetDefault(KeyExtractionFields, []string{})
	v.SetDefault(KeyExtractionIncludeMetaInfo, d.Extraction.IncludeMetaInfo)
	v.SetDefault(KeyExtractionRequiredFields, d.Extraction.RequiredFields)
	v.SetDefault(KeyExtractionMaxFlattenItems, d.Extraction.MaxFlattenItems)
	v.SetDefault(KeyExtractionMaxHitsPerRecord, d.Extraction.MaxHitsPerRecord)
	v.SetDefault(KeyExtractionMaxRecords, d.Extraction.MaxRecords)
	v.SetDefault(KeyExtractionDryRun, d.Extraction.DryRun)

	v.SetDefault(KeyConversionInput, d.Conversion.Input)
	v.SetDefault(KeyConversionOutputDir, d.Conversion.OutputDir)
	v.SetDefault(KeyConversionTag, d.Conversion.Tag)
	v.SetDefault(KeyConversionMinOptions, d.Conversion.MinOptions)
	f := d.Conversion.Fields
	v.SetDefault(KeyConversionFields+".id", f.ID)
	v.SetDefault(KeyConversionFields+".knowledge", f.Knowledge)
	v.SetDefault(KeyConversionFields+".question", f.Question)
	v.SetDefault(KeyConversionFields+".options", f.Options)
	v.SetDefault(KeyConversionFields+".answer", f.Answer)
	v.SetDefault(KeyConversionFields+".answer_index", f.AnswerIndex)
	v.SetDefault(KeyConversionFields+".prediction", f.Prediction)
	v.SetDefault(KeyConversionFields+".tag", f.Tag)

	v.SetDefault(KeyCatalogIndexDir, d.Catalog.IndexDir)
	v.SetDefault(KeyCatalogInput, d.Catalog.Input)
	v.SetDefault(KeyCatalogMaxResults, d.Catalog.MaxResults)

	v.SetDefault(KeyLoggingLevel, d.Logging.Level)
	v.SetDefault(KeyLoggingFormat, d.Logging.Format)
}

// SetupEnv enables CARDIO_MEDQA_* overrides, mapping nested keys with "_".
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the effective configuration from v and validates it. All
// validation problems are returned together.
func Load(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if errs := Validate(cfg); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// Validate checks cfg and returns every problem found.
func Validate(cfg types.PipelineConfig) []error {
	errs := make([]error, 0)

	e := cfg.Extraction
	if strings.TrimSpace(e.Input) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyExtractionInput))
	}
	if strings.TrimSpace(e.OutputDir) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyExtractionOutputDir))
	}
	switch e.Language {
	case types.LanguageEN, types.LanguageZH, types.LanguageBoth:
	default:
		errs = append(errs, fmt.Errorf("%s must be en, zh, or both, got %q", KeyExtractionLanguage, e.Language))
	}
	if e.MaxFlattenItems <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyExtractionMaxFlattenItems, e.MaxFlattenItems))
	}
	if e.MaxHitsPerRecord <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyExtractionMaxHitsPerRecord, e.MaxHitsPerRecord))
	}
	if e.MaxRecords < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", KeyExtractionMaxRecords, e.MaxRecords))
	}

	c := cfg.Conversion
	if strings.TrimSpace(c.Input) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyConversionInput))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyConversionOutputDir))
	}
	if c.MinOptions < 2 {
		errs = append(errs, fmt.Errorf("%s must be at least 2, got %d", KeyConversionMinOptions, c.MinOptions))
	}
	seen := make(map[string]bool)
	for _, k := range c.Fields.Keys() {
		switch {
		case k == "":
			errs = append(errs, fmt.Errorf("%s must not contain empty names", KeyConversionFields))
		case seen[k]:
			errs = append(errs, fmt.Errorf("%s contains duplicate name %q", KeyConversionFields, k))
		}
		seen[k] = true
	}

	if strings.TrimSpace(cfg.Catalog.IndexDir) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyCatalogIndexDir))
	}
	if cfg.Catalog.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", KeyCatalogMaxResults, cfg.Catalog.MaxResults))
	}

	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLoggingLevel, err))
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%s must be console or json, got %q", KeyLoggingFormat, cfg.Logging.Format))
	}

	return errs
}

// WriteYAML writes cfg to w in the same layout the config file uses.
func WriteYAML(w io.Writer, cfg types.PipelineConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return enc.Close()
}
