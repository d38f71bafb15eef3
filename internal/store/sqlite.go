package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/asn-cli/internal/asn"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS as_filter_list (
	asn         INTEGER PRIMARY KEY,
	country     TEXT NOT NULL,
	description TEXT NOT NULL,
	num_ipv6s   INTEGER NOT NULL,
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS as_imports (
	id          TEXT PRIMARY KEY,
	country     TEXT NOT NULL,
	row_count   INTEGER NOT NULL,
	imported_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_as_filter_list_country ON as_filter_list(country);
CREATE INDEX IF NOT EXISTS idx_as_imports_country ON as_imports(country);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveEntries(ctx context.Context, country string, records []asn.Record) (*ImportResult, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM as_filter_list WHERE country = ?`, country); err != nil {
		return nil, eris.Wrapf(err, "sqlite: clear entries for %s", country)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO as_filter_list (asn, country, description, num_ipv6s, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (asn) DO UPDATE SET country = excluded.country, description = excluded.description,
		 num_ipv6s = excluded.num_ipv6s, updated_at = excluded.updated_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	records = uniqueByASN(records)
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ASN, r.Country, r.Description, r.NumIPv6s, now); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert AS%d", r.ASN)
		}
	}

	res := &ImportResult{
		ID:         uuid.New().String(),
		Country:    country,
		Rows:       len(records),
		ImportedAt: now,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO as_imports (id, country, row_count, imported_at) VALUES (?, ?, ?, ?)`,
		res.ID, res.Country, res.Rows, res.ImportedAt,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert import")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	return res, nil
}

func (s *SQLiteStore) FilterList(ctx context.Context, mode ListMode) (*FilterList, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT asn FROM as_filter_list`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: filter list")
	}
	defer rows.Close() //nolint:errcheck

	var asns []int64
	for rows.Next() {
		var a int64
		if err := rows.Scan(&a); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan asn")
		}
		asns = append(asns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: filter list iterate")
	}
	return NewFilterList(mode, asns), nil
}

func (s *SQLiteStore) CountEntries(ctx context.Context, country string) (int, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM as_filter_list WHERE country = ?`, country).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: count entries for %s", country)
	}
	return int(n), nil
}
