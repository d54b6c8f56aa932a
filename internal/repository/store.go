package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/covera-app/covera/internal/common"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = common.ErrNotFound

// KV is one stored entry.
type KV struct {
	Key   string
	Value json.RawMessage
}

// KVStore is the only persistence contract the application relies on:
// JSON values under string keys, scanned by prefix in key order.
type KVStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	GetByPrefix(ctx context.Context, prefix string) ([]KV, error)
	MDel(ctx context.Context, keys []string) error
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the backend selected by cfg.Driver and makes sure the
// kv_store table exists.
func Open(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (KVStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		store KVStore
		err   error
	)
	switch cfg.Driver {
	case DriverPostgres:
		store, err = OpenPostgres(ctx, Config{
			DSN:              cfg.DSN,
			MaxConns:         cfg.MaxConns,
			MinConns:         cfg.MinConns,
			MaxConnLifetime:  cfg.MaxConnLifetime,
			MaxConnIdleTime:  cfg.MaxConnIdleTime,
			DialTimeout:      cfg.DialTimeout,
			StatementTimeout: cfg.StatementTimeout,
		}, logger)
	case DriverSQLite:
		store, err = OpenSQLite(ctx, cfg.DSN, logger)
	default:
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown store driver %q", cfg.Driver), common.ErrConfig)
	}
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// Key segments may not contain the separator, otherwise one org's prefix
// scan could reach into another's keyspace.
func checkSegments(segments ...string) error {
	for _, s := range segments {
		if s == "" || strings.Contains(s, ":") {
			return common.InvalidInput("invalid key segment %q", s)
		}
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStore, err)
}

// HealthCheck pings the store with an optional timeout.
func HealthCheck(ctx context.Context, store KVStore, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := store.Ping(ctx); err != nil {
		return storeErr("ping", err)
	}
	logger.Debug("database ping successful")
	return nil
}
