// Package store provides the public factory for tracker storage backends
// while keeping their implementations internal.
package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/internal/flatfile"
	"github.com/mesh-intelligence/tracker/internal/relational"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// NewBackend creates the backend named by config.Backend. The backend is
// not attached; call Attach with the same Config to initialize.
//
// Example:
//
//	backend, err := store.NewBackend(cfg, logger)
//	if err != nil { ... }
//	err = backend.Attach(cfg)
//	defer backend.Detach()
func NewBackend(config types.Config, log *zap.Logger) (types.Backend, error) {
	switch config.Backend {
	case types.BackendSQLite, types.BackendPostgres:
		return relational.NewBackend(relational.WithLogger(log)), nil
	case types.BackendCSV, types.BackendXML:
		return flatfile.NewBackend(flatfile.WithLogger(log)), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, config.Backend)
	}
}
