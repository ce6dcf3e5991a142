// Package database centralises sqlx connection helpers.  Two drivers are
// supported:
//
//	mysql   – go-sql-driver/mysql, the production store.  Also works with
//	          MariaDB.
//	sqlite  – modernc.org/sqlite, a pure-Go embedded store for local
//	          development, demos, and tests.
//
// Open tunes the pool and Pings the database, retrying with a fixed backoff,
// so callers can fail fast during bootstrap.  Callers should Close() the
// returned *sqlx.DB when no longer needed.
package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config describes one connection pool.
type Config struct {
	Driver          string
	DSN             string // mysql DSN, or a file path for sqlite
	Password        string // injected into a mysql DSN when set
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingRetries     int
	RetryBackoff    time.Duration
}

// withDefaults fills zero values: 15 max open, 5 idle, and a 30-minute
// connection lifetime.  SQLite is pinned to one connection because the
// file allows a single writer.
func (c Config) withDefaults() Config {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 15
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	if c.Driver == DriverSQLite {
		c.MaxOpenConns, c.MaxIdleConns = 1, 1
	}
	return c
}

// Open returns a pinged *sqlx.DB for c.
func Open(ctx context.Context, c Config) (*sqlx.DB, error) {
	c = c.withDefaults()

	var dsn string
	switch c.Driver {
	case DriverMySQL:
		d, err := MySQLDSN(c.DSN, c.Password)
		if err != nil {
			return nil, err
		}
		dsn = d
	case DriverSQLite:
		if c.DSN != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(c.DSN), 0o755); err != nil {
				return nil, fmt.Errorf("sqlite dir: %w", err)
			}
		}
		dsn = SQLiteDSN(c.DSN)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", c.Driver)
	}

	db, err := sqlx.Open(c.Driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	db.SetConnMaxLifetime(c.ConnMaxLifetime)

	if err := pingWithRetry(ctx, db, c.PingRetries, c.RetryBackoff); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// MySQLDSN normalises dsn for the store: times are parsed into time.Time in
// UTC, and UPDATE reports matched rather than changed rows.  A non-empty
// password replaces the one in dsn.
func MySQLDSN(dsn, password string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	if password != "" {
		cfg.Passwd = password
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// SQLiteDSN turns a file path into a modernc DSN with foreign keys on, a
// busy timeout, and a sortable time format.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(ON)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_time_format", "sqlite")
	// url.Values escapes the pragma parentheses, which the driver accepts.
	return "file:" + path + "?" + q.Encode()
}

func pingWithRetry(ctx context.Context, db *sqlx.DB, retries int, backoff time.Duration) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		zap.L().Warn("database ping failed",
			zap.Int("attempt", attempt+1), zap.Int("retries", retries), zap.Error(err))
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("database ping: %w", err)
}
