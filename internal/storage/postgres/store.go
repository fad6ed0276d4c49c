// Package postgres provides the Postgres-backed persistence layer.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rankcrawl/internal/crawler"
	"rankcrawl/internal/parse"
)

var validIdentifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store implements crawler.Store on top of a pgx connection pool.
type Store struct {
	pool       dbPool
	detailCols []string
}

// NewStore connects to Postgres and verifies the connection. An unreachable
// database is a setup failure and aborts the run before any crawling.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newStore(pool)
}

// NewStoreWithPool constructs a Store from an existing pool (primarily for testing).
func NewStoreWithPool(pool dbPool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return newStore(pool)
}

func newStore(pool dbPool) (*Store, error) {
	cols := parse.DetailFieldNames()
	for _, col := range cols {
		if !validIdentifier.MatchString(col) {
			return nil, fmt.Errorf("invalid detail column name %q", col)
		}
	}
	return &Store{pool: pool, detailCols: cols}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the tables and indexes if they do not exist. The
// detail columns are generated from the detail rule table, so adding a
// section rule adds its column here too.
func (s *Store) EnsureSchema(ctx context.Context) error {
	detailDDL := make([]string, len(s.detailCols))
	for i, col := range s.detailCols {
		detailDDL[i] = fmt.Sprintf("\t%s TEXT NOT NULL DEFAULT ''", col)
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS companies (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE TABLE IF NOT EXISTS job_categories (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS jobs (
	id BIGSERIAL PRIMARY KEY,
	company_id BIGINT NOT NULL REFERENCES companies (id),
	category_id BIGINT NOT NULL REFERENCES job_categories (id),
	rank INTEGER,
	title TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	employment_type TEXT NOT NULL DEFAULT '',
	salary_summary TEXT NOT NULL DEFAULT '',
	location_summary TEXT NOT NULL DEFAULT '',
%s,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, strings.Join(detailDDL, ",\n")),
		`CREATE UNIQUE INDEX IF NOT EXISTS jobs_url_key ON jobs (url) WHERE url <> ''`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ResolveCompany maps a company name to its id, creating the row on first
// sight. The ON CONFLICT upsert makes it idempotent per name within and
// across runs, and safe under concurrent first-sight callers.
func (s *Store) ResolveCompany(ctx context.Context, name string) (int64, error) {
	return s.resolve(ctx, "companies", name)
}

// ResolveCategory maps a category name to its id, creating it on first sight.
func (s *Store) ResolveCategory(ctx context.Context, name string) (int64, error) {
	return s.resolve(ctx, "job_categories", name)
}

func (s *Store) resolve(ctx context.Context, table, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("entity name is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET updated_at = now()
RETURNING id`, table)
	var id int64
	if err := s.pool.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve %s %q: %w", table, name, err)
	}
	return id, nil
}

// UpsertListing inserts the listing, or updates the existing row in place
// when its non-empty URL was stored by an earlier pass. Every mutable field
// is overwritten unconditionally and updated_at is touched; this is the
// chosen recrawl policy. The write runs inside its own transaction so a
// mid-listing failure never leaves a half-written row.
func (s *Store) UpsertListing(ctx context.Context, listing crawler.Listing) (int64, error) {
	if listing.CompanyID == 0 || listing.CategoryID == 0 {
		return 0, fmt.Errorf("listing must reference resolved company and category")
	}

	cols := append([]string{
		"company_id", "category_id", "rank", "title", "url",
		"employment_type", "salary_summary", "location_summary",
	}, s.detailCols...)

	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols)+1)
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	updates = append(updates, "updated_at = now()")

	query := fmt.Sprintf(`
INSERT INTO jobs (%s)
VALUES (%s)
ON CONFLICT (url) WHERE url <> '' DO UPDATE SET %s
RETURNING id`,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	args := []any{
		listing.CompanyID,
		listing.CategoryID,
		listing.Rank,
		listing.Title,
		listing.URL,
		listing.EmploymentType,
		listing.SalarySummary,
		listing.LocationSummary,
	}
	for _, col := range s.detailCols {
		args = append(args, listing.Detail(col))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin listing tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert listing %q: %w", listing.URL, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit listing tx: %w", err)
	}
	return id, nil
}
