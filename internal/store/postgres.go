package store

import (
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"context"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/logger"
)

//go:embed migrations.sql
var migrationsSQL string

// conn is the subset of *pgxpool.Pool and pgx.Tx the Querier implementation
// needs; it lets pgQuerier run unmodified against either a pooled
// connection or a transaction.
type conn interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PostgresStore is the production Ledger Store, backed by a pgx connection
// pool. Reads outside a mutation use the pool directly; writes that
// participate in the charge/credit protocols run inside WithTx.
type PostgresStore struct {
	pool *pgxpool.Pool
	pgQuerier
}

// NewPostgresStore opens a bounded connection pool against dsn; it does not
// check the schema (Migrate applies it separately). Pool sizing matches the
// teacher's server.go configures (bounded MaxConns, a short idle timeout to
// avoid stale cached plans).
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperr.ServiceUnavailable("parsing database dsn", err)
	}
	poolConfig.MaxConns = 20
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperr.ServiceUnavailable("creating database pool", err)
	}

	return &PostgresStore{pool: pool, pgQuerier: pgQuerier{db: pool}}, nil
}

// Migrate applies the embedded schema. It is idempotent — every statement
// uses CREATE TABLE IF NOT EXISTS — so it is safe to call on every startup.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrationsSQL); err != nil {
		return apperr.ServiceUnavailable("applying schema migrations", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return apperr.ServiceUnavailable("database unreachable", err)
	}
	return nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

// WithTx opens a READ COMMITTED transaction and runs fn against a Querier
// scoped to it. Row locks acquired via LockAccountForUpdate /
// LockProductInventory inside fn are held until this function returns.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperr.ServiceUnavailable("beginning transaction", err)
	}

	if err := fn(ctx, pgQuerier{db: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			logger.Error("rollback after transaction error also failed", zap.Error(rbErr), zap.Error(err))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.ServiceUnavailable("committing transaction", err)
	}
	return nil
}
