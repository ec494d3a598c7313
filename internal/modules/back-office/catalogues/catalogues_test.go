package catalogues

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/back-office/catalogues/controllers"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/queries"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/idgen"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

var seed = map[string]string{
	queries.KeyOffers:       `[{"id":"off-1","code":"ESS","libelle":"Essentiel"}]`,
	queries.KeyCatPersonnel: `[]`,
	queries.KeyModules:      `[{"id":"mod-hospi","code":"HOSPI","libelle":"Hospitalisation","risk":"sante"}]`,
	queries.KeyCategories:   `[{"id":"cat-sejour","moduleId":"mod-hospi","code":"SEJOUR","libelle":"Séjour","ordre":1}]`,
	queries.KeyActs: `[
		{"id":"act-a1","categoryId":"cat-sejour","code":"FS","libelle":"Frais de séjour","ordre":1},
		{"id":"act-a2","categoryId":"cat-sejour","code":"FJ","libelle":"Forfait journalier","ordre":2}]`,
	queries.KeyLevelSets:  `[{"id":"set-base","code":"STD","libelle":"Standard","ordre":1}]`,
	queries.KeyLevels:     `[{"id":"niv-1","setId":"set-base","code":"N1","libelle":"Niveau 1","ordre":1}]`,
	queries.KeyValueTypes: `[]`,
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details struct {
		Code   string                 `json:"code"`
		Champs map[string]interface{} `json:"champs"`
	} `json:"details"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	for key, raw := range seed {
		require.NoError(t, store.Set(ctx, key, []byte(raw)))
	}
	stamper := &audit.Stamper{Clock: func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }}
	ids := idgen.NewSequence("id")
	logger := zap.NewNop()
	repo := services.NewRepository(store, sanitize.NewPipeline(stamper, ids), logger)
	core := services.NewCore(repo, authz.NewRoleGate(authz.DefaultRoles), stamper, ids, &services.Settings{}, logger)
	cells := services.NewCellService(core)

	r := gin.New()
	RegisterCataloguesRoutes(r,
		controllers.NewReferentielsController(services.NewReferentielService(core)),
		controllers.NewCataloguesController(services.NewCatalogueService(core)),
		controllers.NewGroupesController(services.NewGroupService(core, cells)),
		controllers.NewGrilleController(services.NewGrilleService(core), cells),
	)
	return &api{t: t, router: r}
}

func (a *api) do(role, method, path string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authz.HeaderUserID, "u-"+role)
	req.Header.Set(authz.HeaderUserRole, role)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (a *api) id(env envelope) string {
	a.t.Helper()
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(a.t, out.ID)
	return out.ID
}

// setup crée un catalogue avec mod-hospi et un groupe contenant act-a1 et act-a2
func (a *api) setup() (catalogueID, groupID string) {
	a.t.Helper()
	code, env := a.do("admin", http.MethodPost, "/api/v1/catalogues", gin.H{
		"offerId": "off-1", "risk": "sante", "year": 2026, "defaultNiveauSetId": "set-base",
	})
	require.Equal(a.t, http.StatusCreated, code, env.Error)
	catalogueID = a.id(env)

	code, env = a.do("admin", http.MethodPost, "/api/v1/catalogues/"+catalogueID+"/modules", gin.H{"moduleId": "mod-hospi"})
	require.Equal(a.t, http.StatusCreated, code, env.Error)

	code, env = a.do("admin", http.MethodPost, "/api/v1/catalogues/"+catalogueID+"/groupes", gin.H{
		"moduleId": "mod-hospi", "nom": "Hospitalisation", "niveauSetBaseId": "set-base",
	})
	require.Equal(a.t, http.StatusCreated, code, env.Error)
	groupID = a.id(env)

	code, env = a.do("admin", http.MethodPut, "/api/v1/catalogues/"+catalogueID+"/groupes/"+groupID+"/membres", gin.H{
		"actIds": []string{"act-a1", "act-a2"},
	})
	require.Equal(a.t, http.StatusOK, code, env.Error)
	return catalogueID, groupID
}

func TestCreateCatalogueValidation(t *testing.T) {
	a := newAPI(t)

	code, env := a.do("admin", http.MethodPost, "/api/v1/catalogues", gin.H{"risk": "sante", "year": 1800})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Erreur de validation", env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Details.Code)
	assert.Contains(t, env.Details.Champs, "offerId")
	assert.Contains(t, env.Details.Champs, "year")

	code, env = a.do("admin", http.MethodPost, "/api/v1/catalogues", `{"offerId":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Données invalides", env.Error)
}

func TestCatalogueErrorsMapToStatus(t *testing.T) {
	a := newAPI(t)

	code, env := a.do("lecteur", http.MethodPost, "/api/v1/catalogues", gin.H{
		"offerId": "off-1", "risk": "sante", "year": 2026,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Details.Code)

	code, env = a.do("lecteur", http.MethodGet, "/api/v1/catalogues/inconnu", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Details.Code)

	catalogueID, _ := a.setup()
	code, env = a.do("admin", http.MethodPost, "/api/v1/catalogues", gin.H{
		"offerId": "off-1", "risk": "sante", "year": 2026,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, catalogueID, env.Details.Champs["conflictId"])
}

func TestCellEditThroughHTTP(t *testing.T) {
	a := newAPI(t)
	catalogueID, groupID := a.setup()
	base := "/api/v1/catalogues/" + catalogueID + "/groupes/" + groupID + "/cellules/"

	code, env := a.do("lecteur", http.MethodGet, base+"act-a1/niv-1/base", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var draft struct {
		Exists bool `json:"exists"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.False(t, draft.Exists)

	code, env = a.do("gestionnaire", http.MethodPut, base+"act-a1/niv-1/base", gin.H{"value": "200 €"})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = a.do("gestionnaire", http.MethodPut, base+"act-a2/niv-1/base", gin.H{
		"dependsOn": gin.H{"mode": "percent", "actId": "act-a1", "kind": "base", "percent": 50},
	})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = a.do("admin", http.MethodPut, base+"act-a2/niv-1/base", gin.H{
		"dependsOn": gin.H{"mode": "magic"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "dépendance invalide", env.Error)

	code, env = a.do("lecteur", http.MethodGet, "/api/v1/catalogues/"+catalogueID+"/groupes/"+groupID+"/grille", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var grille struct {
		Cells []struct {
			Key struct {
				ActID string `json:"actId"`
			} `json:"key"`
			Value   string `json:"value"`
			Derived bool   `json:"derived"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &grille))
	values := map[string]string{}
	for _, c := range grille.Cells {
		values[c.Key.ActID] = c.Value
	}
	assert.Equal(t, map[string]string{"act-a1": "200 €", "act-a2": "100€"}, values)

	code, _ = a.do("lecteur", http.MethodDelete, base+"act-a2/niv-1/base", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = a.do("admin", http.MethodDelete, base+"act-a2/niv-1/base", nil)
	assert.Equal(t, http.StatusOK, code, env.Error)
	code, _ = a.do("admin", http.MethodDelete, base+"act-a2/niv-1/base", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLockedGroupRejectsEdits(t *testing.T) {
	a := newAPI(t)
	catalogueID, groupID := a.setup()
	group := "/api/v1/catalogues/" + catalogueID + "/groupes/" + groupID

	code, env := a.do("admin", http.MethodPost, group+"/verrouiller", gin.H{
		"memberOrder": []string{"act-a2", "act-a1"},
		"cells": []gin.H{
			{"actId": "act-a1", "levelId": "niv-1", "kind": "base", "value": "150 %"},
		},
	})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = a.do("admin", http.MethodPut, group+"/cellules/act-a1/niv-1/base", gin.H{"value": "90 %"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "groupe verrouillé", env.Error)

	code, env = a.do("admin", http.MethodPost, group+"/deverrouiller", nil)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = a.do("admin", http.MethodGet, group+"/membres", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var members []struct {
		ActID string `json:"actId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &members))
	require.Len(t, members, 2)
	assert.Equal(t, "act-a2", members[0].ActID)
}

func TestMoveRequiresDirection(t *testing.T) {
	a := newAPI(t)

	code, env := a.do("admin", http.MethodPost, "/api/v1/referentiels/acts/act-a2/move", gin.H{"direction": "gauche"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Details.Champs, "direction")

	code, env = a.do("admin", http.MethodPost, "/api/v1/referentiels/acts/act-a2/move", gin.H{"direction": "haut"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.JSONEq(t, `{"moved":true}`, string(env.Data))
}

func TestReplaceReferentielKeepsTombstones(t *testing.T) {
	a := newAPI(t)

	code, env := a.do("admin", http.MethodPut, "/api/v1/referentiels/"+queries.KeyOffers,
		`[{"id":"off-2","code":"CONF","libelle":"Confort"}]`)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = a.do("lecteur", http.MethodGet, "/api/v1/referentiels/"+queries.KeyOffers, nil)
	require.Equal(t, http.StatusOK, code)
	var active []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &active))
	require.Len(t, active, 1)
	assert.Equal(t, "off-2", active[0].ID)

	code, env = a.do("lecteur", http.MethodGet, "/api/v1/referentiels/"+queries.KeyOffers+"?includeDeleted=true", nil)
	require.Equal(t, http.StatusOK, code)
	var all []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 2)

	code, _ = a.do("lecteur", http.MethodGet, "/api/v1/referentiels/inconnu", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
