package seeds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
)

var keys = []string{"ref_offres", "ref_modules", "ref_value_types"}

func TestEmbeddedDatasetIsValid(t *testing.T) {
	all := []string{"ref_offres", "ref_cat_personnel", "ref_modules", "ref_categories", "ref_acts", "ref_niveau_sets", "ref_niveaux", "ref_value_types"}

	ds, err := ParseDataset(EmbeddedName, embeddedReferentiels, all)

	require.NoError(t, err)
	assert.Len(t, ds, len(all))
}

func TestSeedOnlyMissingCollections(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "ref_offres", []byte(`[{"id":"mine","code":"X"}]`)))
	svc := NewSeedingService(store, &Config{Keys: keys}, zap.NewNop())

	report, err := svc.SeedReferentiels(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"ref_modules", "ref_value_types"}, report.Seeded)
	assert.Equal(t, []string{"ref_offres"}, report.Skipped)
	offers, _, _ := store.Get(ctx, "ref_offres")
	assert.JSONEq(t, `[{"id":"mine","code":"X"}]`, string(offers))
	modules, found, _ := store.Get(ctx, "ref_modules")
	assert.True(t, found)
	assert.Contains(t, string(modules), "mod-hospi")

	status, err := svc.CheckSeedDataExists(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsComplete())
}

func TestSeedFromYAMLFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ref_offres:
  - id: o1
    code: ESS
    libelle: Essentiel
ref_modules:
  - id: m1
    code: SOINS
    risk: sante
`), 0o600))
	store := kvstore.NewMemoryStore()
	svc := NewSeedingService(store, &Config{Path: path, Keys: keys}, zap.NewNop())

	_, err := svc.SeedReferentiels(ctx)
	require.NoError(t, err)

	offers, _, _ := store.Get(ctx, "ref_offres")
	assert.JSONEq(t, `[{"id":"o1","code":"ESS","libelle":"Essentiel"}]`, string(offers))
	vts, _, _ := store.Get(ctx, "ref_value_types")
	assert.JSONEq(t, `[]`, string(vts))
}

func TestParseDatasetErrors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
	}{
		{name: "json illisible", raw: `{`, wantType: "file_load_error"},
		{name: "collection inconnue", raw: `{"patients":[]}`, wantType: "unknown_collection"},
		{name: "pas un tableau", raw: `{"ref_offres":{"id":"o1"}}`, wantType: "invalid_collection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDataset("seed.json", []byte(tt.raw), keys)

			var seedErr *SeedingError
			require.True(t, errors.As(err, &seedErr))
			assert.Equal(t, tt.wantType, seedErr.Type)
		})
	}
}

func TestMissingSeedFile(t *testing.T) {
	svc := NewSeedingService(kvstore.NewMemoryStore(), &Config{Path: "/nonexistent/seed.json", Keys: keys}, zap.NewNop())

	_, err := svc.SeedReferentiels(context.Background())

	var seedErr *SeedingError
	require.True(t, errors.As(err, &seedErr))
	assert.Equal(t, "file_load_error", seedErr.Type)
}
