package repositories

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// ConnectSQL opens a Postgres (pgx) or SQLite (modernc) connection pool.
func ConnectSQL(opts Options) (*sqlx.DB, error) {
	var db *sqlx.DB
	switch opts.Driver {
	case DriverPostgres:
		cfg, err := pgx.ParseConfig(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
		}
		// Fail fast on startup if PG is unreachable
		cfg.ConnectTimeout = 5 * time.Second
		db = sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")

		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(time.Duration(opts.ConnMaxLifetime) * time.Second)
		}
	case DriverSQLite:
		var err error
		db, err = sqlx.Open("sqlite", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("db: failed to open sqlite: %w", err)
		}
		// A single connection keeps ":memory:" databases alive and
		// serialises writers.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("db: enable foreign keys: %w", err)
		}
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", opts.Driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: failed to connect: %w", err)
	}
	return db, nil
}

var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS tags (
			id   BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id      BIGSERIAL PRIMARY KEY,
			title   VARCHAR(250) NOT NULL,
			slug    VARCHAR(250) NOT NULL,
			body    TEXT NOT NULL,
			publish TIMESTAMPTZ NOT NULL,
			created TIMESTAMPTZ NOT NULL,
			updated TIMESTAMPTZ NOT NULL,
			status  VARCHAR(2) NOT NULL DEFAULT 'DF'
		)`,
		`CREATE INDEX IF NOT EXISTS posts_publish_idx ON posts (publish DESC)`,
		`CREATE TABLE IF NOT EXISTS post_tags (
			post_id BIGINT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
			tag_id  BIGINT NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
			PRIMARY KEY (post_id, tag_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id      BIGSERIAL PRIMARY KEY,
			post_id BIGINT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
			name    VARCHAR(80) NOT NULL,
			email   TEXT NOT NULL,
			body    TEXT NOT NULL,
			active  BOOLEAN NOT NULL DEFAULT TRUE,
			created TIMESTAMPTZ NOT NULL,
			updated TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS comments_created_idx ON comments (created)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS tags (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			title   VARCHAR(250) NOT NULL,
			slug    VARCHAR(250) NOT NULL,
			body    TEXT NOT NULL,
			publish DATETIME NOT NULL,
			created DATETIME NOT NULL,
			updated DATETIME NOT NULL,
			status  VARCHAR(2) NOT NULL DEFAULT 'DF'
		)`,
		`CREATE INDEX IF NOT EXISTS posts_publish_idx ON posts (publish DESC)`,
		`CREATE TABLE IF NOT EXISTS post_tags (
			post_id INTEGER NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
			tag_id  INTEGER NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
			PRIMARY KEY (post_id, tag_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id INTEGER NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
			name    VARCHAR(80) NOT NULL,
			email   TEXT NOT NULL,
			body    TEXT NOT NULL,
			active  BOOLEAN NOT NULL DEFAULT TRUE,
			created DATETIME NOT NULL,
			updated DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS comments_created_idx ON comments (created)`,
	},
}

// Migrate creates the tables used by the SQL repositories.
func Migrate(db *sqlx.DB, driver string) error {
	stmts, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("db: no schema for driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("db: migrate: %w", err)
		}
	}
	return nil
}

func truncate(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"comments", "post_tags", "posts", "tags"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("db: clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
