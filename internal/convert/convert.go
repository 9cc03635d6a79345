// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns the extracted cardiology subset into validated
// multiple-choice records and a standardized evaluation file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/cardio-medqa/internal/jsonl"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

const (
	defaultMinOptions = 2
	defaultTag        = "Cardio-MedQA"
)

// Summary holds counts from a conversion run.
type Summary struct {
	Read     int
	Accepted int
	Skipped  map[types.SkipReason]int
}

// SkippedRecords returns the number of records left out of both outputs.
func (s Summary) SkippedRecords() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

func (s *Summary) skip(reason types.SkipReason) {
	if s.Skipped == nil {
		s.Skipped = make(map[types.SkipReason]int)
	}
	s.Skipped[reason]++
}

// Converter reads heart-disease records and writes the MCQ and evaluation
// files.
type Converter struct {
	cfg types.ConversionConfig
}

// New validates cfg and fills in defaults for unset values.
func New(cfg types.ConversionConfig) (*Converter, error) {
	if cfg.MinOptions <= 0 {
		cfg.MinOptions = defaultMinOptions
	}
	if cfg.MinOptions < 2 {
		return nil, fmt.Errorf("min_options must be at least 2, got %d", cfg.MinOptions)
	}
	if cfg.Tag == "" {
		cfg.Tag = defaultTag
	}
	if cfg.Fields == (types.EvalFieldNames{}) {
		cfg.Fields = DefaultFieldNames
	}
	if err := validateFieldNames(cfg.Fields); err != nil {
		return nil, err
	}
	return &Converter{cfg: cfg}, nil
}

func validateFieldNames(names types.EvalFieldNames) error {
	seen := make(map[string]bool)
	for _, k := range names.Keys() {
		if k == "" {
			return errors.New("evaluation field names must not be empty")
		}
		if seen[k] {
			return fmt.Errorf("duplicate evaluation field name %q", k)
		}
		seen[k] = true
	}
	return nil
}

// Run converts the configured input and writes heart_disease_mcq.jsonl and
// cardio_eval.jsonl into the output directory, in input order. A missing
// input is fatal and nothing is written.
func (c *Converter) Run(ctx context.Context, w io.Writer) (Summary, error) {
	info, err := jsonl.Stat(c.cfg.Input)
	if err != nil {
		return Summary{}, err
	}
	if info.IsDir() {
		return Summary{}, fmt.Errorf("%w: %s is a directory", jsonl.ErrNoInput, c.cfg.Input)
	}

	mcqOut, err := jsonl.Create(filepath.Join(c.cfg.OutputDir, types.MCQFile))
	if err != nil {
		return Summary{}, err
	}
	defer mcqOut.Abort()
	evalOut, err := jsonl.Create(filepath.Join(c.cfg.OutputDir, types.EvalFile))
	if err != nil {
		return Summary{}, err
	}
	defer evalOut.Abort()

	var summary Summary
	err = jsonl.ScanFile(c.cfg.Input, func(line jsonl.Line) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Read++

		rec, err := jsonl.DecodeObject(line.Data)
		if err != nil {
			reason := jsonl.SkipReasonFor(err)
			summary.skip(reason)
			zap.S().Debugw("skipping record", "path", c.cfg.Input, "line", line.Number, "reason", reason)
			return nil
		}

		mcq, eval, reason := c.buildRecords(rec)
		if reason != "" {
			summary.skip(reason)
			if reason == types.SkipAnswerNotInOptions {
				zap.S().Warnw("answer does not name an option", "path", c.cfg.Input, "line", line.Number)
			} else {
				zap.S().Debugw("skipping record", "path", c.cfg.Input, "line", line.Number, "reason", reason)
			}
			return nil
		}

		if err := mcqOut.Write(mcq); err != nil {
			return err
		}
		if err := evalOut.Write(newEvalRow(eval, c.cfg.Fields)); err != nil {
			return err
		}
		summary.Accepted++
		return nil
	})
	if err != nil {
		return summary, err
	}

	if err := jsonl.CommitAll(mcqOut, evalOut); err != nil {
		return summary, err
	}

	c.printSummary(w, summary)
	return summary, nil
}

func (c *Converter) printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Records read: %d\n", s.Read)
	fmt.Fprintf(w, "Accepted: %d\n", s.Accepted)
	fmt.Fprintf(w, "Skipped: %d\n", s.SkippedRecords())

	reasons := make([]string, 0, len(s.Skipped))
	for r := range s.Skipped {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "  %s: %d\n", r, s.Skipped[types.SkipReason(r)])
	}

	fmt.Fprintf(w, "Output written to: %s, %s\n",
		filepath.Join(c.cfg.OutputDir, types.MCQFile),
		filepath.Join(c.cfg.OutputDir, types.EvalFile))
}
