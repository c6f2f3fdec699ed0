// Package relational implements the SQL storage backend on SQLite (the
// default) or PostgreSQL. The schema declares every foreign key, so the
// engine rejects dangling references on write and cascades deletes on its
// own; the tracker package still performs the same checks and cascades in
// application code so that every backend behaves alike.
package relational

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// DBFile is the database file created in the data directory by the sqlite
// backend when no DSN is configured.
const DBFile = "tracker.db"

// Backend implements types.Backend over database/sql.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	dialect  dialect
	log      *zap.Logger

	users          *table[types.User]
	projects       *table[types.Project]
	sprints        *table[types.Sprint]
	tasks          *table[types.Task]
	retrospectives *table[types.Retrospective]
	links          *linkTable
}

var _ types.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for migrations, skipped rows and
// lifecycle events.
func WithLogger(log *zap.Logger) Option {
	return func(b *Backend) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBackend creates a relational backend. The backend is not attached;
// call Attach with a sqlite or postgres Config to connect.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.users = newTable(b, record.Users)
	b.projects = newTable(b, record.Projects)
	b.sprints = newTable(b, record.Sprints)
	b.tasks = newTable(b, record.Tasks)
	b.retrospectives = newTable(b, record.Retrospectives)
	b.links = &linkTable{b: b}
	return b
}

// Attach opens the database and applies pending migrations. For sqlite
// without a DSN the database lives in DataDir, which is created if needed.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	var (
		d   dialect
		dsn string
	)
	switch config.Backend {
	case types.BackendSQLite:
		d = sqliteDialect
		path, err := sqlitePath(config)
		if err != nil {
			return err
		}
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	case types.BackendPostgres:
		d = postgresDialect
		dsn = config.DSN
	default:
		return fmt.Errorf("relational: %w: %s", types.ErrBackendUnknown, config.Backend)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", types.ErrStorageIO, d.name, err)
	}
	if d == sqliteDialect {
		// One connection keeps the foreign_keys pragma in effect and
		// serializes writers.
		db.SetMaxOpenConns(1)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("%w: connecting to %s: %w", types.ErrStorageIO, d.name, err)
	}
	if err := migrate(ctx, db, d, b.log); err != nil {
		db.Close()
		return fmt.Errorf("%w: %w", types.ErrStorageIO, err)
	}

	b.db = db
	b.dialect = d
	b.config = config
	b.attached = true
	b.log.Info("attached relational backend", zap.String("backend", config.Backend))
	return nil
}

// sqlitePath returns the database file for a sqlite config. A sqlite DSN
// is a file path; otherwise the file lives in DataDir, which is created if
// needed.
func sqlitePath(config types.Config) (string, error) {
	if config.DSN != "" {
		return config.DSN, nil
	}
	dir := config.DataDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating data dir: %w", types.ErrStorageIO, err)
	}
	return filepath.Join(dir, DBFile), nil
}

// Detach closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	err := b.db.Close()
	b.db = nil
	b.log.Info("detached relational backend", zap.String("backend", b.config.Backend))
	if err != nil {
		return fmt.Errorf("%w: closing database: %w", types.ErrStorageIO, err)
	}
	return nil
}

// conn returns the open database, or ErrDetached.
func (b *Backend) conn() (*sql.DB, dialect, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, dialect{}, types.ErrDetached
	}
	return b.db, b.dialect, nil
}

func (b *Backend) Users() types.Table[types.User]                   { return b.users }
func (b *Backend) Projects() types.Table[types.Project]             { return b.projects }
func (b *Backend) Sprints() types.Table[types.Sprint]               { return b.sprints }
func (b *Backend) Tasks() types.Table[types.Task]                   { return b.tasks }
func (b *Backend) Retrospectives() types.Table[types.Retrospective] { return b.retrospectives }
func (b *Backend) Memberships() types.LinkTable                     { return b.links }
