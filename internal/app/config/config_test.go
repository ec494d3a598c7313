package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	for _, key := range []string{"STORE_BACKEND", "EVAL_MAX_DEPTH", "LOG_FORMAT", "SEEDS_ENABLED", "REDIS_NAMESPACE", "SQLITE_PATH", "AUTHZ_ROLES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 16, cfg.Eval.MaxDepth)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Seeds.Enabled)

	settings := NewStoreSettings(cfg)
	assert.Equal(t, "development", settings.Redis.Namespace)
	assert.Equal(t, "data/catalogue.db", settings.SQLite.Path)
	assert.Equal(t, 16, NewServiceSettings(cfg).MaxDepth)
	assert.NotEmpty(t, NewSeedsConfig(cfg).Keys)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"environnement", map[string]string{"APP_ENV": "staging"}},
		{"backend", map[string]string{"STORE_BACKEND": "cassandra"}},
		{"profondeur", map[string]string{"EVAL_MAX_DEPTH": "0"}},
		{"rôles", map[string]string{"AUTHZ_ROLES": "admin:tout"}},
		{"docker sans mot de passe", map[string]string{"APP_ENV": "docker", "STORE_BACKEND": "postgres"}},
		{"docker en mémoire", map[string]string{"APP_ENV": "docker", "STORE_BACKEND": "memory"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			for _, key := range []string{"STORE_BACKEND", "EVAL_MAX_DEPTH", "AUTHZ_ROLES", "DB_PASSWORD"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNewAuthzGateUsesConfiguredRoles(t *testing.T) {
	gate, err := NewAuthzGate(&Config{Authz: AuthzConfig{Roles: "editeur:update"}})
	require.NoError(t, err)
	assert.True(t, gate.Can(authz.User{Role: "editeur"}, authz.CanUpdate))
	assert.False(t, gate.Can(authz.User{Role: "admin"}, authz.CanDelete))

	gate, err = NewAuthzGate(&Config{})
	require.NoError(t, err)
	assert.True(t, gate.Can(authz.User{Role: "admin"}, authz.CanDelete))
}
