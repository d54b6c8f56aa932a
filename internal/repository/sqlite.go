package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	_ "modernc.org/sqlite"
)

// SQLiteKV is the embedded backend for local runs and tests.
type SQLiteKV struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens dsn with the pure-Go sqlite driver. The pool is pinned to a
// single connection: writes serialize anyway and ":memory:" databases are
// per-connection.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteKV, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", DriverSQLite, "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storeErr("open", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, storeErr("connect", err)
	}
	return &SQLiteKV{db: db, logger: logger}, nil
}

func (s *SQLiteKV) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`)
	if err != nil {
		return storeErr("ensure schema", err)
	}
	return nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("kv get failed", "key", key, "error", err)
		return nil, storeErr("get", err)
	}
	return json.RawMessage(v), nil
}

func (s *SQLiteKV) Set(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return storeErr("set", errors.New("value is not valid json"))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, string(value))
	if err != nil {
		s.logger.Error("kv set failed", "key", key, "error", err)
		return storeErr("set", err)
	}
	return nil
}

func (s *SQLiteKV) GetByPrefix(ctx context.Context, prefix string) ([]KV, error) {
	// substr instead of LIKE: sqlite's LIKE is case-insensitive and has no
	// default escape character.
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM kv_store WHERE substr(key, 1, length(?)) = ? ORDER BY key`, prefix, prefix)
	if err != nil {
		s.logger.Error("kv prefix scan failed", "prefix", prefix, "error", err)
		return nil, storeErr("get by prefix", err)
	}
	defer rows.Close()

	var out []KV
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, storeErr("scan", err)
		}
		out = append(out, KV{Key: k, Value: json.RawMessage(v)})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get by prefix", err)
	}
	return out, nil
}

func (s *SQLiteKV) MDel(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("mdel", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, k); err != nil {
			s.logger.Error("kv delete failed", "key", k, "error", err)
			return storeErr("mdel", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("mdel", err)
	}
	return nil
}

func (s *SQLiteKV) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteKV) Close() {
	s.logger.Info("closing database connections")
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
	}
}
