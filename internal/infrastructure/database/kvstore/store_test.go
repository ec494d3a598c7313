package kvstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, found, err := s.Get(ctx, "catalogues")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "catalogues", []byte(`[]`)))
	v, found, err := s.Get(ctx, "catalogues")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(v))

	v[0] = 'x'
	again, _, _ := s.Get(ctx, "catalogues")
	assert.Equal(t, `[]`, string(again), "returned bytes are a copy")

	require.NoError(t, s.Delete(ctx, "catalogues"))
	_, found, _ = s.Get(ctx, "catalogues")
	assert.False(t, found)
}

func TestMemoryStoreApplyBatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "groupes:k1", []byte(`[1]`)))

	err := s.Apply(ctx, []Write{
		Put("catalogues", []byte(`[{"id":"k1"}]`)),
		Remove("groupes:k1"),
		Put("groupe_actes:k1", []byte(`[]`)),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"catalogues", "groupe_actes:k1"}, s.Keys())
}

func TestMemoryStoreRejectsEmptyKeyWithoutPartialWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.Apply(ctx, []Write{Put("a", []byte(`1`)), Put("", []byte(`2`))})

	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.Empty(t, s.Keys())
}

func TestMemoryStoreClosed(t *testing.T) {
	s := NewMemoryStore()
	s.Close()

	assert.ErrorIs(t, s.Ping(context.Background()), ErrClosed)
	assert.ErrorIs(t, s.Set(context.Background(), "a", []byte(`1`)), ErrClosed)
}

func TestMemoryStoreConcurrentApply(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Apply(ctx, []Write{Put("k", []byte(`1`))})
			_, _, _ = s.Get(ctx, "k")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"k"}, s.Keys())
}

func TestCompactKeepsLastWritePerKey(t *testing.T) {
	got := Compact([]Write{Put("a", []byte(`1`)), Put("b", []byte(`2`)), Remove("a")})

	assert.Equal(t, []Write{Remove("a"), Put("b", []byte(`2`))}, got)
}
