// internal/database/database_test.go
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func TestMySQLDSN(t *testing.T) {
	got, err := MySQLDSN("agenda:placeholder@tcp(db:3306)/agenda", "s3cret")
	if err != nil {
		t.Fatalf("MySQLDSN: %v", err)
	}
	cfg, err := mysql.ParseDSN(got)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if cfg.Passwd != "s3cret" || !cfg.ParseTime || cfg.Loc != time.UTC || !cfg.ClientFoundRows {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Addr != "db:3306" || cfg.DBName != "agenda" {
		t.Fatalf("address lost: %s %s", cfg.Addr, cfg.DBName)
	}

	if _, err := MySQLDSN("not a dsn", ""); err == nil {
		t.Fatal("malformed DSN accepted")
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := SQLiteDSN("/var/lib/agenda/agenda.db")
	if !strings.HasPrefix(got, "file:/var/lib/agenda/agenda.db?") {
		t.Fatalf("prefix: %s", got)
	}
	for _, want := range []string{"_time_format=sqlite", "foreign_keys", "busy_timeout"} {
		if !strings.Contains(got, want) {
			t.Errorf("%s missing from %s", want, got)
		}
	}
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "agenda.db")
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if db.DriverName() != DriverSQLite {
		t.Fatalf("driver = %s", db.DriverName())
	}
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("sqlite pool should be pinned to 1, got %d", got)
	}
	var one int
	if err := db.Get(&one, "SELECT 1"); err != nil || one != 1 {
		t.Fatalf("SELECT 1 = %d, %v", one, err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "oracle"}); err == nil {
		t.Fatal("unknown driver accepted")
	}
}

func TestPingRetries(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	down := errors.New("connection refused")
	mock.ExpectPing().WillReturnError(down)
	mock.ExpectPing().WillReturnError(down)
	mock.ExpectPing()

	if err := pingWithRetry(context.Background(), db, 2, time.Millisecond); err != nil {
		t.Fatalf("third ping should succeed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPingGivesUp(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	down := errors.New("connection refused")
	mock.ExpectPing().WillReturnError(down)
	mock.ExpectPing().WillReturnError(down)

	if err := pingWithRetry(context.Background(), db, 1, time.Millisecond); !errors.Is(err, down) {
		t.Fatalf("want wrapped ping error, got %v", err)
	}
}
