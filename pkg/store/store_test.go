package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func TestNewBackend(t *testing.T) {
	for _, kind := range []string{types.BackendSQLite, types.BackendCSV, types.BackendXML} {
		t.Run(kind, func(t *testing.T) {
			cfg := types.Config{Backend: kind, DataDir: t.TempDir()}
			b, err := NewBackend(cfg, zap.NewNop())
			require.NoError(t, err)
			require.NoError(t, b.Attach(cfg))
			defer b.Detach()

			id, err := b.Projects().Create(types.Project{Name: "Alpha"})
			require.NoError(t, err)
			assert.Equal(t, int64(1), id)
		})
	}
}

func TestNewBackendRejectsUnknown(t *testing.T) {
	_, err := NewBackend(types.Config{Backend: "mongo"}, nil)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = NewBackend(types.Config{}, nil)
	assert.ErrorIs(t, err, types.ErrBackendEmpty)
}
