// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cardio-medqa/internal/config"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

// flagKeys maps flag names to configuration keys.
type flagKeys map[string]string

// extractFlagKeys are shared by extract and run.
var extractFlagKeys = flagKeys{
	"input":               config.KeyExtractionInput,
	"output-dir":          config.KeyExtractionOutputDir,
	"extensions":          config.KeyExtractionExtensions,
	"language":            config.KeyExtractionLanguage,
	"keywords":            config.KeyExtractionKeywords,
	"related-keywords":    config.KeyExtractionRelatedKeywords,
	"fields":              config.KeyExtractionFields,
	"include-meta-info":   config.KeyExtractionIncludeMetaInfo,
	"max-flatten-items":   config.KeyExtractionMaxFlattenItems,
	"max-hits-per-record": config.KeyExtractionMaxHitsPerRecord,
	"max-records":         config.KeyExtractionMaxRecords,
	"dry-run":             config.KeyExtractionDryRun,
}

func addExtractFlags(cmd *cobra.Command) {
	d := config.Defaults().Extraction
	f := cmd.Flags()
	f.String("input", d.Input, "corpus file or directory to scan")
	f.String("output-dir", d.OutputDir, "directory for heart_disease.jsonl and heart_disease_all.jsonl")
	f.StringSlice("extensions", d.Extensions, "file extensions scanned when --input is a directory")
	f.String("language", string(d.Language), "default keyword lists: en, zh, or both")
	f.StringSlice("keywords", nil, "cardiology keywords (replaces the defaults)")
	f.StringSlice("related-keywords", nil, "cardiovascular-adjacent keywords for the broad subset (replaces the defaults)")
	f.StringSlice("fields", nil, "only match and keep these top-level fields")
	f.Bool("include-meta-info", d.IncludeMetaInfo, "keep meta_info in matching and output")
	f.Int("max-flatten-items", d.MaxFlattenItems, "maximum text fragments taken from one record")
	f.Int("max-hits-per-record", d.MaxHitsPerRecord, "maximum keyword hits stored per record")
	f.Int("max-records", d.MaxRecords, "stop after scanning N records (0 = no limit)")
	f.Bool("dry-run", d.DryRun, "count matches without writing output")
}

// bindFlags binds cmd's flags to configuration keys. Binding happens when a
// command runs so commands that share a key do not override each other.
func bindFlags(cmd *cobra.Command, keys ...flagKeys) error {
	for _, m := range keys {
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := viper.BindPFlag(m[name], cmd.Flag(name)); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}
	return nil
}

// loadConfig binds the given flags and returns the validated configuration.
func loadConfig(cmd *cobra.Command, keys ...flagKeys) (types.PipelineConfig, error) {
	if err := bindFlags(cmd, keys...); err != nil {
		return types.PipelineConfig{}, err
	}
	return config.Load(viper.GetViper())
}
