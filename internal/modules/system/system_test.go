package system

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/app/config"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/seeds"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/queries"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	catalogue "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/system/controllers"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/system/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/system/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/idgen"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func newRouter(store kvstore.Store) *gin.Engine {
	logger := zap.NewNop()
	stamper := audit.NewStamper()
	ids := idgen.NewSequence("id")
	repo := catalogue.NewRepository(store, sanitize.NewPipeline(stamper, ids), logger)
	core := catalogue.NewCore(repo, authz.NewRoleGate(authz.DefaultRoles), stamper, ids, &catalogue.Settings{MaxDepth: 16}, logger)
	cfg := &config.Config{
		Environment: "test",
		Store:       config.StoreConfig{Backend: database.BackendMemory},
		Eval:        config.EvalConfig{MaxDepth: 16},
	}
	svc := services.NewSystemService(store, &seeds.Config{Keys: queries.ReferentielKeys}, cfg,
		catalogue.NewCatalogueService(core), catalogue.NewReferentielService(core), logger)

	r := gin.New()
	RegisterSystemRoutes(r, controllers.NewSystemController(svc))
	return r
}

func getInfo(t *testing.T, r *gin.Engine) (dto.SystemInfoResponse, []dto.AlerteDTO) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool                   `json:"success"`
		Data    dto.SystemInfoResponse `json:"data"`
		Alertes []dto.AlerteDTO        `json:"alertes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data, resp.Alertes
}

func alertCodes(alertes []dto.AlerteDTO) []string {
	codes := make([]string, 0, len(alertes))
	for _, a := range alertes {
		codes = append(codes, a.Code)
	}
	return codes
}

func TestSystemInfoReportsMissingReferentiel(t *testing.T) {
	info, alertes := getInfo(t, newRouter(kvstore.NewMemoryStore()))

	assert.Equal(t, "memory", info.Backend)
	assert.Equal(t, 16, info.MaxDepth)
	assert.Empty(t, info.Referentiel.Present)
	assert.ElementsMatch(t, queries.ReferentielKeys, info.Referentiel.Missing)
	assert.Zero(t, info.Catalogues.Actifs)
	assert.ElementsMatch(t, []string{"REFERENTIEL_INCOMPLETE", "STORE_NOT_PERSISTENT"}, alertCodes(alertes))
}

func TestSystemInfoAfterSeeding(t *testing.T) {
	store := kvstore.NewMemoryStore()
	_, err := seeds.NewSeedingService(store, &seeds.Config{Keys: queries.ReferentielKeys}, zap.NewNop()).
		SeedReferentiels(context.Background())
	require.NoError(t, err)

	info, alertes := getInfo(t, newRouter(store))

	assert.Empty(t, info.Referentiel.Missing)
	assert.ElementsMatch(t, queries.ReferentielKeys, info.Referentiel.Present)
	assert.Equal(t, []string{"STORE_NOT_PERSISTENT"}, alertCodes(alertes))
}
