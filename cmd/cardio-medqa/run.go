// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cardio-medqa/internal/config"
	"github.com/pdiddy/cardio-medqa/internal/convert"
	"github.com/pdiddy/cardio-medqa/internal/extract"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run extract then convert",
	Long: `Run extracts the cardiology subset and converts its strict output in one
step. The converter reads heart_disease.jsonl from the extract output
directory. A failed extract stops the run before conversion.`,
	RunE: runPipeline,
}

var runFlagKeys = flagKeys{
	"eval-output-dir": config.KeyConversionOutputDir,
	"tag":             config.KeyConversionTag,
	"min-options":     config.KeyConversionMinOptions,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, extractFlagKeys, runFlagKeys)
	if err != nil {
		return err
	}
	if cfg.Extraction.DryRun {
		return fmt.Errorf("--dry-run writes no subset to convert; use extract --dry-run instead")
	}

	e, err := extract.New(cfg.Extraction)
	if err != nil {
		return err
	}
	cfg.Conversion.Input = filepath.Join(cfg.Extraction.OutputDir, types.StrictFile)
	c, err := convert.New(cfg.Conversion)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "== extract ==")
	if _, err := e.Run(cmd.Context(), os.Stdout); err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	fmt.Fprintln(os.Stdout, "\n== convert ==")
	if _, err := c.Run(cmd.Context(), os.Stdout); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	return nil
}

func init() {
	addExtractFlags(runCmd)

	d := config.Defaults().Conversion
	runCmd.Flags().String("eval-output-dir", d.OutputDir, "directory for heart_disease_mcq.jsonl and cardio_eval.jsonl")
	runCmd.Flags().String("tag", d.Tag, "tag written into every evaluation row")
	runCmd.Flags().Int("min-options", d.MinOptions, "fewest non-empty options for a multiple-choice question")

	rootCmd.AddCommand(runCmd)
}
