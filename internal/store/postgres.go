package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/asn-cli/internal/asn"
	"github.com/sells-group/asn-cli/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `mapstructure:"max_conns"`
	MinConns int32 `mapstructure:"min_conns"`
}

var filterListUpsert = db.UpsertConfig{
	Table:        "as_filter_list",
	Columns:      []string{"asn", "country", "description", "num_ipv6s", "updated_at"},
	ConflictKeys: []string{"asn"},
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS as_filter_list (
	asn         BIGINT PRIMARY KEY,
	country     TEXT NOT NULL,
	description TEXT NOT NULL,
	num_ipv6s   BIGINT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS as_imports (
	id          TEXT PRIMARY KEY,
	country     TEXT NOT NULL,
	row_count   INTEGER NOT NULL,
	imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_as_filter_list_country ON as_filter_list(country);
CREATE INDEX IF NOT EXISTS idx_as_imports_country ON as_imports(country);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveEntries(ctx context.Context, country string, records []asn.Record) (*ImportResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM as_filter_list WHERE country = $1`, country); err != nil {
		return nil, eris.Wrapf(err, "postgres: clear entries for %s", country)
	}

	now := time.Now().UTC()
	records = uniqueByASN(records)
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{int64(r.ASN), r.Country, r.Description, int64(r.NumIPv6s), now}
	}
	if _, err := db.BulkUpsert(ctx, tx, filterListUpsert, rows); err != nil {
		return nil, eris.Wrapf(err, "postgres: save entries for %s", country)
	}

	res := &ImportResult{
		ID:         uuid.New().String(),
		Country:    country,
		Rows:       len(records),
		ImportedAt: now,
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO as_imports (id, country, row_count, imported_at) VALUES ($1, $2, $3, $4)`,
		res.ID, res.Country, res.Rows, res.ImportedAt,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: insert import")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit")
	}
	return res, nil
}

func (s *PostgresStore) FilterList(ctx context.Context, mode ListMode) (*FilterList, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT asn FROM as_filter_list`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: filter list")
	}
	defer rows.Close()

	var asns []int64
	for rows.Next() {
		var a int64
		if err := rows.Scan(&a); err != nil {
			return nil, eris.Wrap(err, "postgres: scan asn")
		}
		asns = append(asns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: filter list iterate")
	}
	return NewFilterList(mode, asns), nil
}

func (s *PostgresStore) CountEntries(ctx context.Context, country string) (int, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM as_filter_list WHERE country = $1`, country).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: count entries for %s", country)
	}
	return int(n), nil
}
