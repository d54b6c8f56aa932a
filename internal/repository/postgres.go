package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// PostgresKV stores entries in a jsonb column.
type PostgresKV struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool and verifies it can connect.
func OpenPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*PostgresKV, error) {
	logger.Info("connecting to database", "driver", DriverPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", "error", err)
		return nil, storeErr("parse dsn", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "covera"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, storeErr("connect", err)
	}

	logger.Info("successfully connected to database")
	return &PostgresKV{pool: pool, logger: logger}, nil
}

func (s *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL
		)`)
	if err != nil {
		return storeErr("ensure schema", err)
	}
	return nil
}

func (s *PostgresKV) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var v []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("kv get failed", "key", key, "error", err)
		return nil, storeErr("get", err)
	}
	return v, nil
}

func (s *PostgresKV) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, []byte(value))
	if err != nil {
		s.logger.Error("kv set failed", "key", key, "error", err)
		return storeErr("set", err)
	}
	return nil
}

func (s *PostgresKV) GetByPrefix(ctx context.Context, prefix string) ([]KV, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM kv_store WHERE starts_with(key, $1) ORDER BY key COLLATE "C"`, prefix)
	if err != nil {
		s.logger.Error("kv prefix scan failed", "prefix", prefix, "error", err)
		return nil, storeErr("get by prefix", err)
	}
	defer rows.Close()

	var out []KV
	for rows.Next() {
		var (
			k string
			v []byte
		)
		if err := rows.Scan(&k, &v); err != nil {
			return nil, storeErr("scan", err)
		}
		out = append(out, KV{Key: k, Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get by prefix", err)
	}
	return out, nil
}

func (s *PostgresKV) MDel(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = ANY($1)`, keys); err != nil {
		s.logger.Error("kv delete failed", "keys", len(keys), "error", err)
		return storeErr("mdel", err)
	}
	return nil
}

// Ping checks connectivity through the pool.
func (s *PostgresKV) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresKV) Close() {
	s.logger.Info("closing database connections")
	s.pool.Close()
}
