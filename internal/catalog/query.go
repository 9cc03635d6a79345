// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions holds catalog filters. Empty filters match every record.
type QueryOptions struct {
	// Text matches a substring of the question, case-insensitively for
	// ASCII letters.
	Text string

	// Keyword matches records whose matched keywords include it.
	Keyword string

	// Knowledge matches the derived knowledge label exactly.
	Knowledge string

	// Tier matches strict or broad.
	Tier string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether no filter is set.
func (q QueryOptions) IsEmpty() bool {
	return q.Text == "" && q.Keyword == "" && q.Knowledge == "" && q.Tier == ""
}

// Entry is one catalog row.
type Entry struct {
	ID         string            `json:"id" yaml:"id"`
	Question   string            `json:"question" yaml:"question"`
	Options    map[string]string `json:"options" yaml:"options"`
	Answer     string            `json:"answer" yaml:"answer"`
	AnswerIdx  string            `json:"answer_idx" yaml:"answer_idx"`
	Knowledge  string            `json:"knowledge" yaml:"knowledge"`
	SourcePath string            `json:"source_path,omitempty" yaml:"source_path,omitempty"`
	SourceLine int               `json:"source_line,omitempty" yaml:"source_line,omitempty"`
	MatchTier  string            `json:"match_tier,omitempty" yaml:"match_tier,omitempty"`
	Keywords   []string          `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Query returns catalog entries matching opts, ordered by source path and
// line.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT r.id, r.question, r.options, r.answer, r.answer_idx, r.knowledge,
			r.source_path, r.source_line, r.match_tier, r.keywords
		FROM records r
		WHERE 1=1`)

	if opts.Text != "" {
		qb.WriteString(` AND r.question LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(opts.Text)+"%")
	}
	if opts.Keyword != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM record_keywords k WHERE k.record_id = r.id AND k.keyword = ?)`)
		args = append(args, opts.Keyword)
	}
	if opts.Knowledge != "" {
		qb.WriteString(` AND r.knowledge = ?`)
		args = append(args, opts.Knowledge)
	}
	if opts.Tier != "" {
		qb.WriteString(` AND r.match_tier = ?`)
		args = append(args, opts.Tier)
	}

	qb.WriteString(` ORDER BY r.source_path, r.source_line, r.rowid LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e            Entry
			optionsJSON  string
			sourcePath   sql.NullString
			sourceLine   sql.NullInt64
			tier         sql.NullString
			keywordsJSON sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.Question, &optionsJSON, &e.Answer, &e.AnswerIdx, &e.Knowledge,
			&sourcePath, &sourceLine, &tier, &keywordsJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if err := json.Unmarshal([]byte(optionsJSON), &e.Options); err != nil {
			return nil, fmt.Errorf("decoding options for %s: %w", e.ID, err)
		}
		if keywordsJSON.Valid {
			if err := json.Unmarshal([]byte(keywordsJSON.String), &e.Keywords); err != nil {
				return nil, fmt.Errorf("decoding keywords for %s: %w", e.ID, err)
			}
		}
		e.SourcePath = sourcePath.String
		e.SourceLine = int(sourceLine.Int64)
		e.MatchTier = tier.String

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of indexed records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}
