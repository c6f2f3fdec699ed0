// Package tracker is the backend-agnostic tracker service. It checks
// references before every write, resolves foreign ids into views at read
// time, walks cascades children-first on delete, and answers membership
// queries. Every backend gets the same behavior: the flat-file media have
// no constraints of their own, and the relational engine's constraints
// never see a write this package would reject.
package tracker

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/pkg/store"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Tracker operates on one attached backend.
type Tracker struct {
	backend types.Backend
	log     *zap.Logger
	now     func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger for the tracker and, through Open, for the
// backend it creates.
func WithLogger(log *zap.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// WithClock replaces time.Now for join and login timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// New wraps an attached backend.
func New(backend types.Backend, opts ...Option) *Tracker {
	t := &Tracker{backend: backend, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open creates and attaches the backend named by config and wraps it.
func Open(config types.Config, opts ...Option) (*Tracker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	t := New(nil, opts...)
	backend, err := store.NewBackend(config, t.log)
	if err != nil {
		return nil, err
	}
	if err := backend.Attach(config); err != nil {
		return nil, fmt.Errorf("attaching %s backend: %w", config.Backend, err)
	}
	t.backend = backend
	return t, nil
}

// Close detaches the backend.
func (t *Tracker) Close() error {
	return t.backend.Detach()
}

// Backend returns the underlying storage.
func (t *Tracker) Backend() types.Backend {
	return t.backend
}

// integrity logs and returns an integrity violation.
func (t *Tracker) integrity(format string, args ...any) error {
	err := fmt.Errorf("%w: "+format, append([]any{types.ErrIntegrityViolation}, args...)...)
	t.log.Debug("rejected write", zap.Error(err))
	return err
}

// exists reports whether tbl holds a decodable record with the given id.
func exists[T any](tbl types.Table[T], id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	_, ok, err := tbl.FindByID(id)
	return ok, err
}
