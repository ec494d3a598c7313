package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&Config{Path: filepath.Join(t.TempDir(), "data", "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	_, found, err := s.Get(ctx, "catalogues")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "catalogues", []byte(`[{"id":"k1"}]`)))
	require.NoError(t, s.Set(ctx, "catalogues", []byte(`[{"id":"k2"}]`)))

	v, found, err := s.Get(ctx, "catalogues")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"k2"}]`, string(v))
}

func TestStoreApplyIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	require.NoError(t, s.Set(ctx, "groupes:k1", []byte(`[]`)))

	err := s.Apply(ctx, []kvstore.Write{
		kvstore.Put("catalogues", []byte(`[]`)),
		kvstore.Remove("groupes:k1"),
		kvstore.Put("groupe_actes:k1", []byte(`[]`)),
	})
	require.NoError(t, err)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"catalogues", "groupe_actes:k1"}, keys)

	err = s.Apply(ctx, []kvstore.Write{kvstore.Remove("catalogues"), {Key: ""}})
	assert.ErrorIs(t, err, kvstore.ErrEmptyKey)
	_, found, _ := s.Get(ctx, "catalogues")
	assert.True(t, found, "rejected batch leaves the store untouched")
}

func TestStoreInMemory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(&Config{})
	require.NoError(t, err)
	defer s.Close(ctx)

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Set(ctx, "ref_acts", []byte(`[]`)))
	_, found, err := s.Get(ctx, "ref_acts")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, ":memory:", s.Path())
}
