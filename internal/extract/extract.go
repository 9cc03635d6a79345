// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract filters the MEDQA corpus down to cardiology questions.
// It writes a strict subset (cardiology keywords) and a broad superset
// (cardiology plus cardiovascular-adjacent terms) as JSON-lines.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/cardio-medqa/internal/jsonl"
	"github.com/pdiddy/cardio-medqa/internal/keywords"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

const (
	defaultMaxFlattenItems  = 200
	defaultMaxHitsPerRecord = 20
)

// DefaultRequiredFields are the fields a corpus record must carry.
var DefaultRequiredFields = []string{"question", "answer"}

// errLimitReached stops scanning once MaxRecords records have been seen.
var errLimitReached = errors.New("record limit reached")

// Summary holds counts from an extraction run.
type Summary struct {
	Files        int
	SkippedFiles int
	Scanned      int
	Matched      int
	MatchedAll   int
	Skipped      map[types.SkipReason]int
}

// SkippedRecords returns the number of records dropped as malformed.
func (s Summary) SkippedRecords() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// Valid returns the number of scanned records that passed validation.
func (s Summary) Valid() int {
	return s.Scanned - s.SkippedRecords()
}

func (s *Summary) skip(reason types.SkipReason) {
	if s.Skipped == nil {
		s.Skipped = make(map[types.SkipReason]int)
	}
	s.Skipped[reason]++
}

// Extractor scans corpus files and writes the heart-disease subsets.
type Extractor struct {
	cfg     types.ExtractionConfig
	strict  *keywords.Matcher
	broad   *keywords.Matcher
	exclude map[string]bool
}

// New compiles the strict and broad matchers for cfg. The broad set is the
// strict set plus the related terms, so every strict match is also a broad
// match.
func New(cfg types.ExtractionConfig) (*Extractor, error) {
	strictWords := cfg.Keywords
	if len(keywords.Union(strictWords)) == 0 {
		strictWords = keywords.Strict(cfg.Language)
	}
	related := cfg.RelatedKeywords
	if len(keywords.Union(related)) == 0 {
		related = keywords.Related(cfg.Language)
	}

	strict, err := keywords.Compile(strictWords)
	if err != nil {
		return nil, fmt.Errorf("compiling strict keywords: %w", err)
	}
	broad, err := keywords.Compile(keywords.Union(strictWords, related))
	if err != nil {
		return nil, fmt.Errorf("compiling broad keywords: %w", err)
	}
	zap.S().Debugw("compiled keyword matchers",
		"strict", len(strict.Keywords()), "broad", len(broad.Keywords()))

	if cfg.MaxFlattenItems <= 0 {
		cfg.MaxFlattenItems = defaultMaxFlattenItems
	}
	if cfg.MaxHitsPerRecord <= 0 {
		cfg.MaxHitsPerRecord = defaultMaxHitsPerRecord
	}
	if cfg.RequiredFields == nil {
		cfg.RequiredFields = DefaultRequiredFields
	}

	exclude := map[string]bool{types.ExtractMetaKey: true}
	if !cfg.IncludeMetaInfo {
		exclude[metaInfoField] = true
	}

	return &Extractor{cfg: cfg, strict: strict, broad: broad, exclude: exclude}, nil
}

// outputs groups the two destination writers. Both are nil on a dry run.
type outputs struct {
	strict *jsonl.Writer
	broad  *jsonl.Writer
}

func (o outputs) abort() {
	if o.strict != nil {
		o.strict.Abort()
	}
	if o.broad != nil {
		o.broad.Abort()
	}
}

// Run scans the configured input and writes heart_disease.jsonl and
// heart_disease_all.jsonl into the output directory, printing per-file
// status and a summary to w. A missing input is fatal and nothing is
// written. Output files are replaced only if the whole scan succeeds.
func (e *Extractor) Run(ctx context.Context, w io.Writer) (Summary, error) {
	files, err := discoverFiles(e.cfg.Input, e.cfg.Extensions)
	if err != nil {
		return Summary{}, err
	}

	var out outputs
	if !e.cfg.DryRun {
		if out.strict, err = jsonl.Create(filepath.Join(e.cfg.OutputDir, types.StrictFile)); err != nil {
			return Summary{}, err
		}
		if out.broad, err = jsonl.Create(filepath.Join(e.cfg.OutputDir, types.BroadFile)); err != nil {
			out.abort()
			return Summary{}, err
		}
	}
	defer out.abort()

	var summary Summary
	for _, path := range files {
		before := summary
		err := e.scanFile(ctx, path, out, &summary)
		if errors.Is(err, errLimitReached) {
			if summary.Scanned > before.Scanned {
				summary.Files++
			}
			break
		}
		if err != nil {
			if errors.Is(err, errBadDocument) {
				fmt.Fprintf(w, "skipped %s: %v\n", path, err)
				zap.S().Warnw("skipping unparseable JSON file", "path", path, "error", err)
				summary.SkippedFiles++
				continue
			}
			return summary, err
		}
		summary.Files++
		fmt.Fprintf(w, "scanned %s (%d records, %d matched)\n",
			path, summary.Scanned-before.Scanned, summary.MatchedAll-before.MatchedAll)
	}

	if !e.cfg.DryRun {
		if err := jsonl.CommitAll(out.strict, out.broad); err != nil {
			return summary, err
		}
	}

	e.printSummary(w, summary)
	return summary, nil
}

func (e *Extractor) scanFile(ctx context.Context, path string, out outputs, summary *Summary) error {
	fn := func(line jsonl.Line) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.cfg.MaxRecords > 0 && summary.Scanned >= e.cfg.MaxRecords {
			return errLimitReached
		}
		summary.Scanned++
		return e.processRecord(path, line, out, summary)
	}

	if isJSONDocument(path) {
		return readJSONDocument(path, fn)
	}
	return jsonl.ScanFile(path, fn)
}

func (e *Extractor) processRecord(path string, line jsonl.Line, out outputs, summary *Summary) error {
	rec, reason := decodeRecord(line.Data)
	if reason == "" {
		reason = checkRequired(rec, e.cfg.RequiredFields)
	}
	if reason != "" {
		summary.skip(reason)
		zap.S().Debugw("skipping record", "path", path, "line", line.Number, "reason", reason)
		return nil
	}

	selected := selectFields(rec, e.cfg.Fields, e.exclude)
	text := matchText(selected, e.cfg.MaxFlattenItems)

	tier := types.TierStrict
	hits := e.strict.Find(text, e.cfg.MaxHitsPerRecord)
	if len(hits) == 0 {
		tier = types.TierBroad
		hits = e.broad.Find(text, e.cfg.MaxHitsPerRecord)
	}
	if len(hits) == 0 {
		return nil
	}

	selected[types.ExtractMetaKey] = types.ExtractMeta{
		SourcePath:      filepath.ToSlash(path),
		SourceLine:      line.Number,
		MatchedKeywords: hits,
		MatchTier:       tier,
	}

	summary.MatchedAll++
	if tier == types.TierStrict {
		summary.Matched++
	}

	if out.broad == nil {
		return nil
	}
	if err := out.broad.Write(selected); err != nil {
		return err
	}
	if tier == types.TierStrict {
		return out.strict.Write(selected)
	}
	return nil
}

func (e *Extractor) printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\nScanned files: %d (skipped %d)\n", s.Files, s.SkippedFiles)
	fmt.Fprintf(w, "Total records scanned: %d\n", s.Scanned)
	fmt.Fprintf(w, "Matched records (strict): %d\n", s.Matched)
	fmt.Fprintf(w, "Matched records (all): %d\n", s.MatchedAll)
	fmt.Fprintf(w, "Skipped records: %d\n", s.SkippedRecords())

	reasons := make([]string, 0, len(s.Skipped))
	for r := range s.Skipped {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "  %s: %d\n", r, s.Skipped[types.SkipReason(r)])
	}

	if e.cfg.DryRun {
		fmt.Fprintln(w, "Dry-run: no output written")
		return
	}
	fmt.Fprintf(w, "Output written to: %s, %s\n",
		filepath.Join(e.cfg.OutputDir, types.StrictFile),
		filepath.Join(e.cfg.OutputDir, types.BroadFile))
}
