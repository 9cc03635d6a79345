// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cardio-medqa/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract cardiology questions from the MEDQA corpus",
	Long: `Extract scans MEDQA JSON-lines (and .json) files and keeps records that
mention cardiology terms. Strict matches on the cardiology keyword set go to
heart_disease.jsonl; strict matches plus records that only hit
cardiovascular-adjacent terms go to heart_disease_all.jsonl. Each kept record
carries an _extract_meta block with its source file, line, and keyword hits.

Malformed records are skipped and counted. Output files are replaced only
when the whole scan succeeds.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, extractFlagKeys)
	if err != nil {
		return err
	}

	e, err := extract.New(cfg.Extraction)
	if err != nil {
		return err
	}
	_, err = e.Run(cmd.Context(), os.Stdout)
	return err
}

func init() {
	addExtractFlags(extractCmd)
	rootCmd.AddCommand(extractCmd)
}
