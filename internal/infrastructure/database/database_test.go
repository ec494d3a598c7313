package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/sqlite"
)

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, &StoreSettings{Backend: BackendMemory}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mem.Set(ctx, "catalogues", []byte(`[]`)))
	require.NoError(t, mem.Close(ctx))
	assert.Error(t, mem.Ping(ctx))

	file, err := Open(ctx, &StoreSettings{
		Backend: BackendSQLite,
		SQLite:  &sqlite.Config{Path: filepath.Join(t.TempDir(), "catalog.db")},
	}, zap.NewNop())
	require.NoError(t, err)
	defer file.Close(ctx)
	assert.NoError(t, file.Ping(ctx))

	_, err = Open(ctx, &StoreSettings{Backend: "cassandra"}, zap.NewNop())
	assert.ErrorContains(t, err, "cassandra")
}
