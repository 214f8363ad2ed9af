// Package issuestore keeps the issues found in each file between runs, so
// unchanged files can be reported without analyzing them again.
package issuestore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"
	_ "modernc.org/sqlite"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS issues (
		path     TEXT NOT NULL,
		code     TEXT NOT NULL,
		line     INTEGER NOT NULL,
		col      INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		end_col  INTEGER NOT NULL,
		message  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS issues_by_path ON issues(path)`,
}

// Store is an issue database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening issue store %s: %w", path, err)
	}
	// One connection: writers are serialized and an in-memory database is
	// not split across connections.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating issue store schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Hash returns the key the issues of a file are stored under. It covers
// both the source and the settings the issues were computed with, so a
// configuration change invalidates every stored file.
func Hash(source, settings []byte) string {
	h := xxh3.New()
	h.Write(binary.LittleEndian.AppendUint64(nil, xxh3.Hash(settings)))
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

// Fresh reports whether the stored issues of path were computed under
// hash.
func (s *Store) Fresh(ctx context.Context, path, hash string) (bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM files WHERE path = ?`, path).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", path, err)
	}
	return stored == hash, nil
}

// Replace records issues as the complete result for path under hash,
// dropping whatever was stored for it before.
func (s *Store) Replace(ctx context.Context, path, hash string, issues []*diagnostics.DiagnosticError) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storing %s: %w", path, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO files(path, hash) VALUES(?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash`,
		path, hash); err != nil {
		return fmt.Errorf("storing %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE path = ?`, path); err != nil {
		return fmt.Errorf("storing %s: %w", path, err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO issues(path, code, line, col, end_line, end_col, message) VALUES(?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storing %s: %w", path, err)
	}
	defer insert.Close()
	for _, issue := range issues {
		if _, err := insert.ExecContext(ctx, path, string(issue.Code),
			issue.Pos.Line, issue.Pos.Column, issue.End.Line, issue.End.Column, issue.Message); err != nil {
			return fmt.Errorf("storing %s: %w", path, err)
		}
	}
	return tx.Commit()
}

// Issues returns the stored issues of path sorted by position.
func (s *Store) Issues(ctx context.Context, path string) ([]*diagnostics.DiagnosticError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, line, col, end_line, end_col, message FROM issues
		 WHERE path = ? ORDER BY line, col, rowid`, path)
	if err != nil {
		return nil, fmt.Errorf("reading issues of %s: %w", path, err)
	}
	defer rows.Close()

	var out []*diagnostics.DiagnosticError
	for rows.Next() {
		var (
			code     string
			pos, end ast.Position
			e        = &diagnostics.DiagnosticError{File: path}
		)
		if err := rows.Scan(&code, &pos.Line, &pos.Column, &end.Line, &end.Column, &e.Message); err != nil {
			return nil, fmt.Errorf("reading issues of %s: %w", path, err)
		}
		e.Code = diagnostics.ErrorCode(code)
		e.Pos, e.End = pos, end
		out = append(out, e)
	}
	return out, rows.Err()
}
