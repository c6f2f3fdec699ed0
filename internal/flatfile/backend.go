// Package flatfile implements the CSV and XML storage backends. Both keep
// one file per table in the data directory and share every line of table
// logic; they differ only in the medium that encodes a collection.
//
// Flat files have no engine-level constraints. The tracker package checks
// references before writing and walks cascades itself.
package flatfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/internal/record"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Backend implements types.Backend over flat files. It holds no locks on
// the files themselves; two processes sharing a data directory can lose
// each other's updates.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dir      string
	medium   medium
	log      *zap.Logger

	seq            *sequences
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

// WithLogger sets the logger used for skipped rows and lifecycle events.
func WithLogger(log *zap.Logger) Option {
	return func(b *Backend) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBackend creates a flat-file backend. The backend is not attached;
// call Attach with a csv or xml Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.seq = &sequences{b: b}
	b.users = newTable(b, record.Users)
	b.projects = newTable(b, record.Projects)
	b.sprints = newTable(b, record.Sprints)
	b.tasks = newTable(b, record.Tasks)
	b.retrospectives = newTable(b, record.Retrospectives)
	b.links = &linkTable{b: b}
	return b
}

// Attach selects the medium, creates DataDir if needed and writes an
// empty collection for every table that has no file yet.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	switch config.Backend {
	case types.BackendCSV:
		b.medium = csvMedium{}
	case types.BackendXML:
		b.medium = xmlMedium{}
	default:
		return fmt.Errorf("flatfile: %w: %s", types.ErrBackendUnknown, config.Backend)
	}

	dir := config.DataDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating data dir: %w", types.ErrStorageIO, err)
	}
	b.dir = dir
	b.config = config

	if err := b.initFiles(); err != nil {
		return err
	}

	b.attached = true
	b.log.Info("attached flat-file backend",
		zap.String("backend", config.Backend), zap.String("data_dir", dir))
	return nil
}

// initFiles writes an empty collection for each table file that does not
// exist. Existing files are left untouched.
func (b *Backend) initFiles() error {
	schemas := []record.Schema{
		record.Users,
		record.Projects,
		record.Sprints,
		record.Tasks,
		record.Retrospectives,
		record.Memberships,
	}
	for _, s := range schemas {
		path := filepath.Join(b.dir, s.Table()+b.medium.ext())
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: stat %s: %w", types.ErrStorageIO, path, err)
		}
		if err := writeFile(b.medium, path, s, nil); err != nil {
			return err
		}
	}
	return nil
}

// Detach marks the backend detached. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	b.log.Info("detached flat-file backend", zap.String("data_dir", b.dir))
	return nil
}

// Path returns the file backing the named table, or "" if detached.
func (b *Backend) Path(table string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	return filepath.Join(b.dir, table+b.medium.ext())
}

// HighWater returns the largest id ever assigned in the named table.
func (b *Backend) HighWater(table string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return 0, types.ErrDetached
	}
	return b.seq.highWater(table)
}

func (b *Backend) Users() types.Table[types.User]                   { return b.users }
func (b *Backend) Projects() types.Table[types.Project]             { return b.projects }
func (b *Backend) Sprints() types.Table[types.Sprint]               { return b.sprints }
func (b *Backend) Tasks() types.Table[types.Task]                   { return b.tasks }
func (b *Backend) Retrospectives() types.Table[types.Retrospective] { return b.retrospectives }
func (b *Backend) Memberships() types.LinkTable                     { return b.links }
