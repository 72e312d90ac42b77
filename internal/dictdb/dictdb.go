// Package dictdb keeps a compiled copy of the Array30 tables in SQLite so that
// start-up does not have to re-parse the text tables.
package dictdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"array30/internal/dict"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    tbl      TEXT NOT NULL,
    code     TEXT NOT NULL,
    ordinal  INTEGER NOT NULL,
    value    TEXT NOT NULL,
    PRIMARY KEY (tbl, code, ordinal)
);

CREATE TABLE IF NOT EXISTS meta (
    key    TEXT PRIMARY KEY,
    value  TEXT NOT NULL
);
`

const (
	tableChars   = "chars"
	tablePhrases = "phrases"

	metaSource = "source"
)

// Store is a SQLite-backed dictionary. It satisfies the engine's lookup
// interface; lookup errors read as misses.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Import replaces the stored tables with the contents of d and records
// source as the fingerprint of what was imported.
func (s *Store) Import(d *dict.Dictionary, source string) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO entries (tbl, code, ordinal, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var insertErr error
	insert := func(tbl string) func(string, []string) {
		return func(code string, values []string) {
			if insertErr != nil {
				return
			}
			for i, value := range values {
				if _, err := stmt.Exec(tbl, code, i, value); err != nil {
					insertErr = fmt.Errorf("insert %s %q: %w", tbl, code, err)
					return
				}
			}
		}
	}
	d.EachChar(insert(tableChars))
	d.EachPhrase(insert(tablePhrases))
	if insertErr != nil {
		err = insertErr
		return err
	}

	if _, err = tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, metaSource, source); err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Source returns the fingerprint recorded by the last Import, or "" when the
// cache is empty.
func (s *Store) Source() (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaSource).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return value, nil
}

func (s *Store) LookupChars(code string) []string {
	values, _ := s.lookup(tableChars, code)
	return values
}

func (s *Store) LookupPhrases(code string) []string {
	values, _ := s.lookup(tablePhrases, code)
	return values
}

func (s *Store) lookup(tbl, code string) ([]string, error) {
	rows, err := s.db.Query(`SELECT value FROM entries WHERE tbl = ? AND code = ? ORDER BY ordinal`, tbl, code)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tbl, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tbl, err)
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

// Stats returns the number of distinct codes in each table.
func (s *Store) Stats() (chars, phrases int, err error) {
	rows, err := s.db.Query(`SELECT tbl, COUNT(DISTINCT code) FROM entries GROUP BY tbl`)
	if err != nil {
		return 0, 0, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tbl string
		var n int
		if err := rows.Scan(&tbl, &n); err != nil {
			return 0, 0, fmt.Errorf("scan counts: %w", err)
		}
		switch tbl {
		case tableChars:
			chars = n
		case tablePhrases:
			phrases = n
		}
	}
	return chars, phrases, rows.Err()
}

// Fingerprint identifies a set of table files by path, size and modification
// time. A cache whose Source differs must be re-imported.
func Fingerprint(paths ...string) (string, error) {
	parts := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano()))
	}
	return strings.Join(parts, "|"), nil
}
