package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to a SQLite database and makes sure the results table exists
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}
	// SQLite serializes writers anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create result schema: %w", err)
	}
	return db, nil
}

const schema = `CREATE TABLE IF NOT EXISTS results (
	id                    TEXT PRIMARY KEY,
	run_id                TEXT NOT NULL,
	mode                  TEXT NOT NULL,
	instance              TEXT NOT NULL,
	rooms                 INTEGER NOT NULL,
	days                  INTEGER NOT NULL,
	periods_per_day       INTEGER NOT NULL,
	teachers              INTEGER NOT NULL,
	seed                  INTEGER NOT NULL,
	generations           INTEGER NOT NULL,
	population_size       INTEGER NOT NULL,
	tournament_percentage REAL NOT NULL,
	elite_percentage      REAL NOT NULL,
	mutation_probability  REAL NOT NULL,
	local_search          BOOLEAN NOT NULL,
	ban_type              TEXT NOT NULL DEFAULT '',
	banned_value          INTEGER NOT NULL DEFAULT 0,
	fix_method            TEXT NOT NULL DEFAULT '',
	deallocated_by_ban    INTEGER NOT NULL DEFAULT 0,
	events_in_banned      INTEGER NOT NULL DEFAULT 0,
	displaced_events      INTEGER NOT NULL DEFAULT 0,
	weighted_violations   INTEGER NOT NULL,
	hard_violations       INTEGER NOT NULL,
	soft_violations       INTEGER NOT NULL,
	duration_ms           INTEGER NOT NULL,
	created_at            TIMESTAMP NOT NULL
)`
