package repositories

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrUnsupported is returned for operations a backend cannot perform.
	ErrUnsupported = errors.New("operation not supported by this store")
)

// Store drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects and configures a storage backend.
type Options struct {
	Driver string
	// Path is the badger directory. Empty means an in-memory database.
	Path string
	// DSN is the connection string for the SQL drivers.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// Store bundles the repositories of one backend.
type Store struct {
	Driver   string
	Posts    PostRepository
	Comments CommentRepository
	Tags     TagRepository

	badger *badger.DB
	sql    *sqlx.DB
}

// Open opens the backend described by opts.
func Open(opts Options) (*Store, error) {
	switch opts.Driver {
	case DriverBadger, "":
		return OpenBadger(opts.Path)
	case DriverPostgres, DriverSQLite:
		db, err := ConnectSQL(opts)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, opts.Driver)
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}

// OpenBadger opens a badger database at path, or in memory when path is empty.
func OpenBadger(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerStore(db), nil
}

// NewBadgerStore wraps an already open badger database.
func NewBadgerStore(db *badger.DB) *Store {
	return &Store{
		Driver:   DriverBadger,
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
		Tags:     NewBadgerTagRepository(db),
		badger:   db,
	}
}

// NewSQLStore wraps db and makes sure the schema exists.
func NewSQLStore(db *sqlx.DB, driver string) (*Store, error) {
	if err := Migrate(db, driver); err != nil {
		return nil, err
	}
	return &Store{
		Driver:   driver,
		Posts:    NewSQLPostRepository(db),
		Comments: NewSQLCommentRepository(db),
		Tags:     NewSQLTagRepository(db),
		sql:      db,
	}, nil
}

// Ping checks the backend is reachable.
func (s *Store) Ping() error {
	if s.sql != nil {
		return s.sql.Ping()
	}
	if s.badger != nil && s.badger.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// Backup writes a full badger backup to w.
func (s *Store) Backup(w io.Writer) error {
	if s.badger == nil {
		return ErrUnsupported
	}
	_, err := s.badger.Backup(w, 0)
	return err
}

// Restore loads a badger backup produced by Backup.
func (s *Store) Restore(r io.Reader) error {
	if s.badger == nil {
		return ErrUnsupported
	}
	return s.badger.Load(r, 4)
}

// Clear removes every record.
func (s *Store) Clear() error {
	if s.badger != nil {
		return s.badger.DropAll()
	}
	if s.sql != nil {
		return truncate(s.sql)
	}
	return ErrUnsupported
}

func (s *Store) Close() error {
	if s.badger != nil {
		return s.badger.Close()
	}
	if s.sql != nil {
		return s.sql.Close()
	}
	return nil
}

// RemoveBadger deletes a badger directory from disk.
func RemoveBadger(path string) error {
	if path == "" {
		return nil
	}
	return os.RemoveAll(path)
}
