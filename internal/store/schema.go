// internal/store/schema.go
//
// DDL for the three directory tables.
//
// Schema reference (2026-10-01)
//
//	CREATE TABLE locations (
//	    id          CHAR(36)      PRIMARY KEY,
//	    title       VARCHAR(255)  NOT NULL,
//	    address     VARCHAR(512)  NOT NULL,
//	    latitude    DOUBLE        NULL,
//	    longitude   DOUBLE        NULL,
//	    created_at  DATETIME(6)   NOT NULL,
//	    updated_at  DATETIME(6)   NOT NULL
//	);
//
// Notes
// -----
//   - events.location_id carries no foreign key.  Deleting a location
//     leaves dangling references, which joined reads resolve to NULL.
//   - Timestamps are written in UTC at microsecond precision so SQLite's
//     text representation sorts chronologically.
//   - Both dialects use `?` placeholders; only the DDL differs.
package store

import (
	"context"
	"fmt"
)

var mysqlDDL = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		address     VARCHAR(512) NOT NULL,
		latitude    DOUBLE       NULL,
		longitude   DOUBLE       NULL,
		created_at  DATETIME(6)  NOT NULL,
		updated_at  DATETIME(6)  NOT NULL,
		KEY idx_locations_title (title)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id                    CHAR(36)      NOT NULL PRIMARY KEY,
		salutation            VARCHAR(16)   NOT NULL DEFAULT '',
		full_name             VARCHAR(255)  NOT NULL,
		identification_number VARCHAR(32)   NULL,
		email                 VARCHAR(255)  NOT NULL,
		phone                 VARCHAR(64)   NOT NULL DEFAULT '',
		photo_url             VARCHAR(1024) NOT NULL DEFAULT '',
		created_at            DATETIME(6)   NOT NULL,
		updated_at            DATETIME(6)   NOT NULL,
		KEY idx_contacts_full_name (full_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS events (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		title          VARCHAR(255) NOT NULL,
		guests         TEXT         NOT NULL,
		event_date     DATETIME(6)  NOT NULL,
		timezone       VARCHAR(64)  NOT NULL,
		description    TEXT         NOT NULL,
		recurrence     VARCHAR(16)  NOT NULL DEFAULT 'none',
		reminder       VARCHAR(16)  NOT NULL DEFAULT 'none',
		classification VARCHAR(16)  NOT NULL,
		location_id    CHAR(36)     NULL,
		created_at     DATETIME(6)  NOT NULL,
		updated_at     DATETIME(6)  NOT NULL,
		KEY idx_events_event_date (event_date),
		KEY idx_events_location (location_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id          TEXT     NOT NULL PRIMARY KEY,
		title       TEXT     NOT NULL,
		address     TEXT     NOT NULL,
		latitude    REAL,
		longitude   REAL,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_locations_title ON locations(title)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id                    TEXT     NOT NULL PRIMARY KEY,
		salutation            TEXT     NOT NULL DEFAULT '',
		full_name             TEXT     NOT NULL,
		identification_number TEXT,
		email                 TEXT     NOT NULL,
		phone                 TEXT     NOT NULL DEFAULT '',
		photo_url             TEXT     NOT NULL DEFAULT '',
		created_at            DATETIME NOT NULL,
		updated_at            DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_full_name ON contacts(full_name)`,
	`CREATE TABLE IF NOT EXISTS events (
		id             TEXT     NOT NULL PRIMARY KEY,
		title          TEXT     NOT NULL,
		guests         TEXT     NOT NULL DEFAULT '',
		event_date     DATETIME NOT NULL,
		timezone       TEXT     NOT NULL,
		description    TEXT     NOT NULL DEFAULT '',
		recurrence     TEXT     NOT NULL DEFAULT 'none',
		reminder       TEXT     NOT NULL DEFAULT 'none',
		classification TEXT     NOT NULL,
		location_id    TEXT,
		created_at     DATETIME NOT NULL,
		updated_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_event_date ON events(event_date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_location ON events(location_id)`,
}

// InitSchema creates the tables for the handle's driver.  It is idempotent.
func (s *Store) InitSchema(ctx context.Context) error {
	stmts := sqliteDDL
	if s.db.DriverName() == "mysql" {
		stmts = mysqlDDL
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", classify(err))
		}
	}
	return nil
}
