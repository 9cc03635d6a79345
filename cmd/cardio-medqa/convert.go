// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cardio-medqa/internal/config"
	"github.com/pdiddy/cardio-medqa/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert extracted questions into MCQ and evaluation files",
	Long: `Convert reads heart_disease.jsonl and keeps genuine multiple-choice
questions whose answer names one of their options. Options are relabeled
A, B, C, ... and each accepted record is written twice: as an MCQ record to
heart_disease_mcq.jsonl and as an evaluation row to cardio_eval.jsonl.`,
	RunE: runConvert,
}

var convertFlagKeys = flagKeys{
	"input":       config.KeyConversionInput,
	"output-dir":  config.KeyConversionOutputDir,
	"tag":         config.KeyConversionTag,
	"min-options": config.KeyConversionMinOptions,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, convertFlagKeys)
	if err != nil {
		return err
	}

	c, err := convert.New(cfg.Conversion)
	if err != nil {
		return err
	}
	_, err = c.Run(cmd.Context(), os.Stdout)
	return err
}

func init() {
	d := config.Defaults().Conversion
	convertCmd.Flags().String("input", d.Input, "extracted subset to convert")
	convertCmd.Flags().String("output-dir", d.OutputDir, "directory for heart_disease_mcq.jsonl and cardio_eval.jsonl")
	convertCmd.Flags().String("tag", d.Tag, "tag written into every evaluation row")
	convertCmd.Flags().Int("min-options", d.MinOptions, "fewest non-empty options for a multiple-choice question")

	rootCmd.AddCommand(convertCmd)
}
