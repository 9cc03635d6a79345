// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cardio-medqa/internal/jsonl"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

// --- test helpers ---

const chestPainLine = `{"question":"Patient with chest pain...","options":{"A":"MI","B":"Flu"},"answer":"A"}`

func testConfig(input, outDir string) types.ExtractionConfig {
	return types.ExtractionConfig{
		Input:          input,
		OutputDir:      outDir,
		Extensions:     []string{".jsonl", ".json"},
		Language:       types.LanguageBoth,
		RequiredFields: []string{"question", "answer"},
	}
}

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	var out []map[string]any
	err := jsonl.ScanFile(path, func(l jsonl.Line) error {
		var m map[string]any
		if err := json.Unmarshal(l.Data, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	require.NoError(t, err)
	return out
}

func questions(recs []map[string]any) []string {
	var qs []string
	for _, r := range recs {
		qs = append(qs, r["question"].(string))
	}
	return qs
}

func meta(t *testing.T, rec map[string]any) map[string]any {
	t.Helper()
	m, ok := rec[types.ExtractMetaKey].(map[string]any)
	require.True(t, ok, "record has no %s", types.ExtractMetaKey)
	return m
}

func runExtractor(t *testing.T, cfg types.ExtractionConfig) (Summary, string) {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	var log bytes.Buffer
	summary, err := e.Run(context.Background(), &log)
	require.NoError(t, err)
	return summary, log.String()
}

// --- Run ---

func TestRun_ChestPainScenario(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "corpus.jsonl", chestPainLine)
	outDir := filepath.Join(dir, "derived")

	cfg := testConfig(input, outDir)
	cfg.Keywords = []string{"chest pain"}
	summary, _ := runExtractor(t, cfg)

	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 1, summary.MatchedAll)

	for _, name := range []string{types.StrictFile, types.BroadFile} {
		recs := readRecords(t, filepath.Join(outDir, name))
		require.Len(t, recs, 1, name)
		assert.Equal(t, "Patient with chest pain...", recs[0]["question"])
		assert.Equal(t, "A", recs[0]["answer"])

		m := meta(t, recs[0])
		assert.Equal(t, "strict", m["match_tier"])
		assert.Equal(t, float64(1), m["source_line"])
		assert.Equal(t, []any{"chest pain"}, m["matched_keywords"])
	}
}

func TestRun_MissingAnswerSkipped(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "corpus.jsonl",
		`{"question":"Chest pain radiating to the jaw, suspect angina","options":{"A":"x","B":"y"}}`,
		`{"question":"Stable angina management","options":{"A":"x","B":"y"},"answer":""}`,
		`not json at all`,
		`["angina"]`,
		chestPainLine,
	)
	outDir := filepath.Join(dir, "derived")

	summary, log := runExtractor(t, testConfig(input, outDir))

	assert.Equal(t, 5, summary.Scanned)
	assert.Equal(t, 4, summary.SkippedRecords())
	assert.Equal(t, 1, summary.Valid())
	assert.Equal(t, 2, summary.Skipped[types.SkipMissingField("answer")])
	assert.Equal(t, 1, summary.Skipped[types.SkipInvalidJSON])
	assert.Equal(t, 1, summary.Skipped[types.SkipNotObject])
	assert.Contains(t, log, "missing_field:answer: 2")

	for _, name := range []string{types.StrictFile, types.BroadFile} {
		recs := readRecords(t, filepath.Join(outDir, name))
		assert.Equal(t, []string{"Patient with chest pain..."}, questions(recs), name)
	}
}

func TestRun_BroadIsSupersetOfStrict(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "corpus.jsonl",
		`{"question":"A man with congestive heart failure","answer":"furosemide"}`,
		`{"question":"A woman with poorly controlled hypertension","answer":"lisinopril"}`,
		`{"question":"A child with a broken arm","answer":"cast"}`,
		`{"question":"心肌梗死后的治疗","answer":"阿司匹林"}`,
		`{"question":"高血压患者的首选药物","answer":"ACEI"}`,
		`{"question":"Palpitations after coffee, ECG shows AFib","answer":"rate control"}`,
	)
	outDir := filepath.Join(dir, "derived")

	summary, _ := runExtractor(t, testConfig(input, outDir))

	strict := questions(readRecords(t, filepath.Join(outDir, types.StrictFile)))
	all := questions(readRecords(t, filepath.Join(outDir, types.BroadFile)))

	assert.Equal(t, []string{
		"A man with congestive heart failure",
		"心肌梗死后的治疗",
		"Palpitations after coffee, ECG shows AFib",
	}, strict)
	assert.Equal(t, []string{
		"A man with congestive heart failure",
		"A woman with poorly controlled hypertension",
		"心肌梗死后的治疗",
		"高血压患者的首选药物",
		"Palpitations after coffee, ECG shows AFib",
	}, all)

	set := map[string]bool{}
	for _, q := range all {
		set[q] = true
	}
	for _, q := range strict {
		assert.True(t, set[q], "strict record %q missing from the broad output", q)
	}
	assert.Equal(t, len(strict), summary.Matched)
	assert.Equal(t, len(all), summary.MatchedAll)
}

func TestRun_BroadOnlyTier(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "corpus.jsonl",
		`{"question":"Elevated blood pressure on two visits","answer":"repeat"}`,
	)
	outDir := filepath.Join(dir, "derived")

	runExtractor(t, testConfig(input, outDir))

	assert.Empty(t, readRecords(t, filepath.Join(outDir, types.StrictFile)))
	all := readRecords(t, filepath.Join(outDir, types.BroadFile))
	require.Len(t, all, 1)
	assert.Equal(t, "broad", meta(t, all[0])["match_tier"])
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "derived")

	e, err := New(testConfig(filepath.Join(dir, "nope.jsonl"), outDir))
	require.NoError(t, err)

	_, err = e.Run(context.Background(), &bytes.Buffer{})
	assert.ErrorIs(t, err, jsonl.ErrNoInput)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "corpus.jsonl", chestPainLine)
	outDir := filepath.Join(dir, "derived")

	cfg := testConfig(input, outDir)
	cfg.DryRun = true
	summary, log := runExtractor(t, cfg)

	assert.Equal(t, 1, summary.Matched)
	assert.Contains(t, log, "Dry-run")
	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_DirectoryWalk(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "raw")
	writeFile(t, root, "questions/US/dev.jsonl", `{"question":"Unstable angina","answer":"heparin"}`)
	writeFile(t, root, "questions/US/test.json",
		`[{"question":"Aortic stenosis murmur","answer":"valve"},{"question":"Gout flare","answer":"colchicine"}]`)
	writeFile(t, root, "questions/US/broken.json", `{"question":`)
	writeFile(t, root, "notes.txt", `cardiac notes that should never be read`)
	outDir := filepath.Join(dir, "derived")

	summary, log := runExtractor(t, testConfig(root, outDir))

	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 1, summary.SkippedFiles)
	assert.Equal(t, 3, summary.Scanned)
	assert.Contains(t, log, "skipped "+filepath.Join(root, "questions/US/broken.json"))

	recs := readRecords(t, filepath.Join(outDir, types.StrictFile))
	// Lexical walk order: dev.jsonl before test.json.
	assert.Equal(t, []string{"Unstable angina", "Aortic stenosis murmur"}, questions(recs))
	assert.Equal(t, filepath.ToSlash(filepath.Join(root, "questions/US/test.json")), meta(t, recs[1])["source_path"])
	assert.Equal(t, float64(1), meta(t, recs[1])["source_line"])
}

func TestRun_MetaInfoExclusion(t *testing.T) {
	line := `{"question":"Which drug?","answer":"aspirin","meta_info":"cardiac step2"}`

	t.Run("excluded by default", func(t *testing.T) {
		dir := t.TempDir()
		input := writeFile(t, dir, "corpus.jsonl", line)
		summary, _ := runExtractor(t, testConfig(input, filepath.Join(dir, "out")))
		assert.Equal(t, 0, summary.MatchedAll)
	})

	t.Run("included on request", func(t *testing.T) {
		dir := t.TempDir()
		input := writeFile(t, dir, "corpus.jsonl", line)
		cfg := testConfig(input, filepath.Join(dir, "out"))
		cfg.IncludeMetaInfo = true
		summary, _ := runExtractor(t, cfg)
		require.Equal(t, 1, summary.Matched)

		recs := readRecords(t, filepath.Join(dir, "out", types.StrictFile))
		require.Len(t, recs, 1)
		assert.Equal(t, "cardiac step2", recs[0]["meta_info"])
	})
}

func TestRun_FieldsRestrictMatchingAndOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "corpus.jsonl",
		`{"question":"Which drug for gout?","answer":"colchicine","options":{"A":"digoxin for CHF"}}`,
		`{"question":"Cardiac tamponade sign?","answer":"pulsus","extra":"dropped"}`,
	)
	outDir := filepath.Join(dir, "out")

	cfg := testConfig(input, outDir)
	cfg.Fields = []string{"question", "answer"}
	runExtractor(t, cfg)

	recs := readRecords(t, filepath.Join(outDir, types.StrictFile))
	require.Len(t, recs, 1)
	assert.Equal(t, "Cardiac tamponade sign?", recs[0]["question"])
	assert.NotContains(t, recs[0], "extra")
}

func TestRun_MaxRecords(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "corpus.jsonl",
		`{"question":"angina one","answer":"a"}`,
		`{"question":"angina two","answer":"a"}`,
		`{"question":"angina three","answer":"a"}`,
	)
	cfg := testConfig(input, filepath.Join(dir, "out"))
	cfg.MaxRecords = 2
	summary, _ := runExtractor(t, cfg)

	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 2, summary.Matched)
}

func TestRun_MaxRecordsCountsOnlyScannedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl", `{"question":"angina one","answer":"a"}`)
	writeFile(t, dir, "b.jsonl", `{"question":"angina two","answer":"a"}`)
	cfg := testConfig(dir, filepath.Join(dir, "out"))
	cfg.MaxRecords = 1
	summary, _ := runExtractor(t, cfg)

	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Files)
}

func TestRun_MaxHitsPerRecord(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "corpus.jsonl",
		`{"question":"angina angina angina angina","answer":"nitrates"}`,
	)
	outDir := filepath.Join(dir, "out")
	cfg := testConfig(input, outDir)
	cfg.MaxHitsPerRecord = 2
	runExtractor(t, cfg)

	recs := readRecords(t, filepath.Join(outDir, types.StrictFile))
	require.Len(t, recs, 1)
	assert.Len(t, meta(t, recs[0])["matched_keywords"], 2)
}

func TestRun_BlockedBroadFileLeavesStrictFile(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "derived")
	strictPath := filepath.Join(outDir, types.StrictFile)
	require.NoError(t, os.MkdirAll(filepath.Join(outDir, types.BroadFile, "child"), 0o755))
	require.NoError(t, os.WriteFile(strictPath, []byte("OLD\n"), 0o644))

	input := writeFile(t, dir, "corpus.jsonl", chestPainLine)
	e, err := New(testConfig(input, outDir))
	require.NoError(t, err)
	_, err = e.Run(context.Background(), &bytes.Buffer{})
	require.Error(t, err)

	data, err := os.ReadFile(strictPath)
	require.NoError(t, err)
	assert.Equal(t, "OLD\n", string(data))
}

func TestRun_CancelledWritesNothing(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	previous := filepath.Join(outDir, types.StrictFile)
	require.NoError(t, os.WriteFile(previous, []byte("previous\n"), 0o644))

	input := writeFile(t, dir, "corpus.jsonl", chestPainLine)
	e, err := New(testConfig(input, outDir))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)

	data, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data))

	_, err = os.Stat(filepath.Join(outDir, types.BroadFile))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be removed")
}

func TestNew_EmptyKeywordsFallBackToDefaults(t *testing.T) {
	cfg := testConfig("in", "out")
	cfg.Keywords = []string{" ", ""}
	e, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, e.strict.Match("history of angina"))
}

// --- record helpers ---

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason types.SkipReason
	}{
		{"object", `{"question":"q","n":12345678901234567890}`, ""},
		{"invalid", `{"question":`, types.SkipInvalidJSON},
		{"trailing garbage", `{"a":1} {"b":2}`, types.SkipInvalidJSON},
		{"array", `[1,2]`, types.SkipNotObject},
		{"string", `"text"`, types.SkipNotObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := decodeRecord([]byte(tt.input))
			assert.Equal(t, tt.reason, reason)
			if tt.reason == "" {
				assert.Equal(t, json.Number("12345678901234567890"), rec["n"])
			}
		})
	}
}

func TestCheckRequired(t *testing.T) {
	req := []string{"question", "answer"}
	assert.Equal(t, types.SkipReason(""), checkRequired(map[string]any{"question": "q", "answer": json.Number("1")}, req))
	assert.Equal(t, types.SkipMissingField("question"), checkRequired(map[string]any{"answer": "a"}, req))
	assert.Equal(t, types.SkipMissingField("answer"), checkRequired(map[string]any{"question": "q", "answer": nil}, req))
	assert.Equal(t, types.SkipMissingField("answer"), checkRequired(map[string]any{"question": "q", "answer": "  "}, req))
}

func TestFlatten(t *testing.T) {
	rec := map[string]any{
		"question": " Q ",
		"options":  map[string]any{"B": "two", "A": "one"},
		"tags":     []any{"x", true, json.Number("3"), nil},
	}
	assert.Equal(t,
		[]string{"options", "A", "one", "B", "two", "question", "Q", "tags", "x", "true", "3"},
		flatten(rec, 100))
	assert.Len(t, flatten(rec, 4), 4)
}

func TestSelectFields(t *testing.T) {
	rec := map[string]any{"question": "q", "meta_info": "m", "answer": "a"}

	got := selectFields(rec, nil, map[string]bool{"meta_info": true})
	assert.Equal(t, map[string]any{"question": "q", "answer": "a"}, got)

	got = selectFields(rec, []string{"question", "missing"}, nil)
	assert.Equal(t, map[string]any{"question": "q"}, got)

	assert.Len(t, rec, 3, "input must not be modified")
}
