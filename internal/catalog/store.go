// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes accepted MCQ records in a local SQLite database so
// the cardiology subset can be browsed and filtered without ad-hoc scripts.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/cardio-medqa/internal/convert"
	"github.com/pdiddy/cardio-medqa/internal/jsonl"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

const (
	dbFile            = "cardio.db"
	defaultMaxResults = 20
)

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	indexDir   string
	input      string
	maxResults int
}

// NewStore opens or creates indexDir/cardio.db and its schema.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		indexDir:   cfg.IndexDir,
		input:      cfg.Input,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			question TEXT NOT NULL,
			options TEXT NOT NULL,
			answer TEXT NOT NULL,
			answer_idx TEXT NOT NULL,
			knowledge TEXT NOT NULL,
			source_path TEXT,
			source_line INTEGER,
			match_tier TEXT,
			keywords TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_knowledge ON records(knowledge)`,
		`CREATE TABLE IF NOT EXISTS record_keywords (
			record_id TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
			keyword TEXT NOT NULL COLLATE NOCASE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_record_keywords_keyword ON record_keywords(keyword)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			source TEXT PRIMARY KEY,
			file_mod_time TEXT,
			records INTEGER
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from a catalog ingest.
type IngestSummary struct {
	// Unchanged is set when the input matched the recorded modification
	// time and nothing was re-indexed.
	Unchanged bool
	Indexed   int
	Invalid   int
}

// Ingest reads the MCQ file and replaces the catalog contents with its
// records in one transaction. An input whose modification time matches the
// last ingest is skipped. On success it writes export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	info, err := jsonl.Stat(s.input)
	if err != nil {
		return IngestSummary{}, err
	}
	source := filepath.ToSlash(s.input)
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var storedModTime string
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM ingest_status WHERE source = ?`, source,
	).Scan(&storedModTime)
	if err == nil && storedModTime == modTime {
		fmt.Fprintf(w, "unchanged %s\n", s.input)
		return IngestSummary{Unchanged: true}, nil
	}

	var (
		summary IngestSummary
		records []types.MCQRecord
	)
	err = jsonl.ScanFile(s.input, func(line jsonl.Line) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var rec types.MCQRecord
		if err := json.Unmarshal(line.Data, &rec); err != nil || rec.ID == "" {
			summary.Invalid++
			zap.S().Warnw("skipping catalog line", "path", s.input, "line", line.Number, "error", err)
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return summary, err
	}

	if err := s.replaceAll(ctx, source, modTime, records); err != nil {
		return summary, err
	}
	summary.Indexed = len(records)

	fmt.Fprintf(w, "indexed %s (%d records, %d invalid)\n", s.input, summary.Indexed, summary.Invalid)

	if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
		fmt.Fprintf(w, "warning: %s write failed: %v\n", ExportYAMLFile, err)
	}
	return summary, nil
}

func (s *Store) replaceAll(ctx context.Context, source, modTime string, records []types.MCQRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM record_keywords`, `DELETE FROM records`, `DELETE FROM ingest_status`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing catalog: %w", err)
		}
	}

	recStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO records
			(id, question, options, answer, answer_idx, knowledge, source_path, source_line, match_tier, keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer recStmt.Close()

	kwStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO record_keywords (record_id, keyword) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing keyword insert: %w", err)
	}
	defer kwStmt.Close()

	for _, rec := range records {
		optionsJSON, err := json.Marshal(rec.Options)
		if err != nil {
			return fmt.Errorf("encoding options for %s: %w", rec.ID, err)
		}

		var (
			sourcePath string
			sourceLine int
			tier       string
			hits       []string
		)
		if m := rec.ExtractMeta; m != nil {
			sourcePath, sourceLine, tier, hits = m.SourcePath, m.SourceLine, string(m.MatchTier), m.MatchedKeywords
		}
		keywordsJSON, err := json.Marshal(hits)
		if err != nil {
			return fmt.Errorf("encoding keywords for %s: %w", rec.ID, err)
		}

		_, err = recStmt.ExecContext(ctx,
			rec.ID, rec.Question, string(optionsJSON), rec.Answer, rec.AnswerIdx,
			convert.DeriveKnowledge(sourcePath), sourcePath, sourceLine, tier, string(keywordsJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.ID, err)
		}

		seen := make(map[string]bool, len(hits))
		for _, kw := range hits {
			if seen[kw] {
				continue
			}
			seen[kw] = true
			if _, err := kwStmt.ExecContext(ctx, rec.ID, kw); err != nil {
				return fmt.Errorf("inserting keyword for %s: %w", rec.ID, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (source, file_mod_time, records) VALUES (?, ?, ?)`,
		source, modTime, len(records),
	)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}
