package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store owns the single database connection, the operation queue and the
// dispatcher goroutine. Construct with Open, release with Close.
//
// Thread-safety model:
//   - Insert/Update/Select/SelectPage/AsCSV: safe from any goroutine
//   - the connection and the open batch transaction are owned exclusively
//     by the dispatcher goroutine after Open returns
type Store struct {
	db     *sql.DB
	queue  *opQueue
	logger *slog.Logger

	seedPath  string
	exportDir string

	// Dispatcher-owned state. tx is the open commit-coalescing transaction,
	// nil when everything executed so far has been committed. commits counts
	// issued commits; read by tests after Close.
	tx      *sql.Tx
	commits int64

	stopped   chan struct{}
	closeOnce sync.Once
}

// Option configures a Store before bootstrap runs.
type Option func(*Store)

// WithLogger sets the logger used for worker and facade diagnostics.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSeedFile sets the service-class seed document loaded at bootstrap.
// Seed failures are logged and skipped; they never fail Open.
func WithSeedFile(path string) Option {
	return func(s *Store) { s.seedPath = path }
}

// WithExportDir sets the directory for derived-path CSV exports.
// Defaults to "data".
func WithExportDir(dir string) Option {
	return func(s *Store) { s.exportDir = dir }
}

// Open establishes the process-wide connection, runs the table definitions,
// seeds service classes when a seed file is configured, and starts the
// dispatcher. Connection or DDL failure is fatal; the returned Store is the
// only handle callers should share.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		queue:     newOpQueue(),
		logger:    slog.Default(),
		exportDir: "data",
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// One connection for the lifetime of the process. The dispatcher is the
	// only executor, and an in-memory database would otherwise be a distinct
	// database per pooled connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply table definitions: %w", err)
	}
	s.db = db

	if s.seedPath != "" {
		if err := s.loadSeed(s.seedPath); err != nil {
			s.logger.Warn("could not load service-class seed",
				"path", s.seedPath, "err", err)
		}
	}

	go s.run()
	return s, nil
}

// Close stops accepting operations, waits for the dispatcher to drain and
// commit whatever is queued, then releases the connection. Safe to call more
// than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.queue.Close()
		<-s.stopped
		err = s.db.Close()
	})
	return err
}
