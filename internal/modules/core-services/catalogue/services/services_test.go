package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/ordering"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/queries"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/idgen"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	admin   = authz.User{ID: "u-admin", Role: "admin"}
	manager = authz.User{ID: "u-gestion", Role: "gestionnaire"}
	reader  = authz.User{ID: "u-lecture", Role: "lecteur"}
)

var referentiels = map[string]string{
	queries.KeyOffers: `[
		{"id":"off-1","code":"ESS","libelle":"Essentiel"},
		{"id":"off-2","code":"CONF","libelle":"Confort"}]`,
	queries.KeyCatPersonnel: `[{"id":"cp-1","code":"CAD","libelle":"Cadres"}]`,
	queries.KeyModules: `[
		{"id":"mod-hospi","code":"HOSPI","libelle":"Hospitalisation","risk":"sante"},
		{"id":"mod-deces","code":"DECES","libelle":"Décès","risk":"prevoyance"}]`,
	queries.KeyCategories: `[
		{"id":"cat-sejour","moduleId":"mod-hospi","code":"SEJOUR","libelle":"Séjour","ordre":1},
		{"id":"cat-frais","moduleId":"mod-hospi","code":"FRAIS","libelle":"Frais annexes","ordre":2}]`,
	queries.KeyActs: `[
		{"id":"act-a1","categoryId":"cat-sejour","code":"FS","libelle":"Frais de séjour","allowSurco":true,"ordre":1},
		{"id":"act-a2","categoryId":"cat-sejour","code":"FJ","libelle":"Forfait journalier","ordre":2},
		{"id":"act-a3","categoryId":"cat-frais","code":"CH","libelle":"Chambre particulière","ordre":1},
		{"id":"act-a4","categoryId":"cat-frais","code":"LIT","libelle":"Lit d'accompagnant","ordre":2},
		{"id":"act-a5","moduleId":"mod-hospi","code":"TRANSP","libelle":"Transport","ordre":1}]`,
	queries.KeyLevelSets: `[
		{"id":"set-base","code":"STD","libelle":"Standard","ordre":1},
		{"id":"set-surco","code":"SURCO","libelle":"Surcomplémentaire","ordre":2}]`,
	queries.KeyLevels: `[
		{"id":"niv-1","setId":"set-base","code":"N1","libelle":"Niveau 1","ordre":1},
		{"id":"niv-2","setId":"set-base","code":"N2","libelle":"Niveau 2","ordre":2},
		{"id":"niv-s1","setId":"set-surco","code":"S1","libelle":"Surco 1","ordre":1}]`,
	queries.KeyValueTypes: `[]`,
}

type fixture struct {
	ctx        context.Context
	store      *kvstore.MemoryStore
	repo       *Repository
	catalogues *CatalogueService
	groups     *GroupService
	cells      *CellService
	grille     *GrilleService
	refs       *ReferentielService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	for key, raw := range referentiels {
		require.NoError(t, store.Set(ctx, key, []byte(raw)))
	}
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	stamper := &audit.Stamper{Clock: func() time.Time { return t0 }}
	ids := idgen.NewSequence("id")
	logger := zap.NewNop()

	repo := NewRepository(store, sanitize.NewPipeline(stamper, ids), logger)
	core := NewCore(repo, authz.NewRoleGate(authz.DefaultRoles), stamper, ids, &Settings{}, logger)
	cells := NewCellService(core)
	return &fixture{
		ctx:        ctx,
		store:      store,
		repo:       repo,
		catalogues: NewCatalogueService(core),
		groups:     NewGroupService(core, cells),
		cells:      cells,
		grille:     NewGrilleService(core),
		refs:       NewReferentielService(core),
	}
}

func (f *fixture) catalogue(t *testing.T) *dto.Catalogue {
	t.Helper()
	c, err := f.catalogues.Create(f.ctx, admin, CatalogueInput{
		OfferID:            "off-1",
		Risk:               "sante",
		Year:               2026,
		DefaultNiveauSetID: "set-base",
		CatPersonnelIDs:    []string{"cp-1"},
	})
	require.NoError(t, err)
	return c
}

// group crée un catalogue avec mod-hospi et un groupe contenant actIDs
func (f *fixture) group(t *testing.T, actIDs ...string) (*dto.Catalogue, *dto.Group) {
	t.Helper()
	c := f.catalogue(t)
	_, err := f.catalogues.AddModule(f.ctx, admin, c.ID, "mod-hospi", nil)
	require.NoError(t, err)
	g, err := f.groups.Create(f.ctx, admin, c.ID, GroupInput{
		ModuleID:        "mod-hospi",
		Nom:             "Hospitalisation",
		NiveauSetBaseID: "set-base",
	})
	require.NoError(t, err)
	if len(actIDs) > 0 {
		_, err = f.groups.SetMembers(f.ctx, admin, c.ID, g.ID, actIDs)
		require.NoError(t, err)
	}
	return c, g
}

func (f *fixture) edit(t *testing.T, catalogueID string, key dto.CellKey, content CellInput) *dto.CellValue {
	t.Helper()
	d, err := f.cells.BeginEdit(f.ctx, catalogueID, key)
	require.NoError(t, err)
	d.Content = content
	c, err := f.cells.CommitEdit(f.ctx, admin, d)
	require.NoError(t, err)
	return c
}

func memberIDs(members []*dto.GroupMember) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.ActID)
	}
	return out
}

func TestCreateCatalogueRejectsDuplicateKey(t *testing.T) {
	f := newFixture(t)
	first := f.catalogue(t)
	assert.Equal(t, sanitize.DefaultVersion, first.Version)
	assert.Equal(t, dto.RiskSante, first.Risk)

	_, err := f.catalogues.Create(f.ctx, admin, CatalogueInput{OfferID: "off-1", Risk: "SANTE", Year: 2026})

	require.Error(t, err)
	assert.True(t, dto.IsValidation(err))
	var se *dto.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, first.ID, se.Details["conflictId"])

	other, err := f.catalogues.Create(f.ctx, admin, CatalogueInput{OfferID: "off-1", Risk: "sante", Year: 2026, Version: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "v2", other.Version)
}

func TestCreateCatalogueValidatesReferences(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalogues.Create(f.ctx, admin, CatalogueInput{OfferID: "inconnue", Risk: "auto", Year: 0})

	require.Error(t, err)
	var se *dto.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, dto.ErrorTypeValidation, se.Type)
	assert.Contains(t, se.Details, "offerId")
	assert.Contains(t, se.Details, "risk")
	assert.Contains(t, se.Details, "year")
}

func TestRefusedMutationLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	c := f.catalogue(t)

	_, err := f.catalogues.Create(f.ctx, reader, CatalogueInput{OfferID: "off-2", Risk: "sante", Year: 2026})
	assert.True(t, dto.IsAuthorization(err))
	_, err = f.catalogues.AddModule(f.ctx, reader, c.ID, "mod-hospi", nil)
	assert.True(t, dto.IsAuthorization(err))
	err = f.catalogues.Delete(f.ctx, manager, c.ID)
	assert.True(t, dto.IsAuthorization(err))

	list, err := f.catalogues.List(f.ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
	modules, err := f.catalogues.Modules(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, modules)
}

func TestAddModuleChecksRiskAndDuplicates(t *testing.T) {
	f := newFixture(t)
	c := f.catalogue(t)

	_, err := f.catalogues.AddModule(f.ctx, manager, c.ID, "mod-deces", nil)
	assert.True(t, dto.IsValidation(err))

	cm, err := f.catalogues.AddModule(f.ctx, manager, c.ID, "mod-hospi", []string{"cat-sejour"})
	require.NoError(t, err)
	assert.Equal(t, dto.FlexInt(1), cm.Ordre)
	assert.Equal(t, []string{"cat-sejour"}, cm.CategoryIDs)

	_, err = f.catalogues.AddModule(f.ctx, manager, c.ID, "mod-hospi", nil)
	assert.True(t, dto.IsValidation(err))

	require.NoError(t, f.catalogues.RemoveModule(f.ctx, admin, c.ID, "mod-hospi"))
	again, err := f.catalogues.AddModule(f.ctx, manager, c.ID, "mod-hospi", nil)
	require.NoError(t, err)
	assert.Empty(t, again.CategoryIDs)
	assert.Nil(t, again.DeletedAt)
}

func TestUpdateCatalogueRiskLockedByModules(t *testing.T) {
	f := newFixture(t)
	c, _ := f.group(t)

	_, err := f.catalogues.Update(f.ctx, admin, c.ID, CatalogueInput{OfferID: "off-1", Risk: "prevoyance", Year: 2026})
	assert.True(t, dto.IsValidation(err))

	updated, err := f.catalogues.Update(f.ctx, admin, c.ID, CatalogueInput{OfferID: "off-1", Risk: "sante", Year: 2026, Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
}

func TestDeleteCatalogueCascades(t *testing.T) {
	f := newFixture(t)
	c, g1 := f.group(t, "act-a1", "act-a2", "act-a3")
	g2, err := f.groups.Create(f.ctx, admin, c.ID, GroupInput{ModuleID: "mod-hospi", Nom: "Confort"})
	require.NoError(t, err)
	_, err = f.groups.SetMembers(f.ctx, admin, c.ID, g2.ID, []string{"act-a4", "act-a5"})
	require.NoError(t, err)
	f.edit(t, c.ID, dto.CellKey{GroupID: g1.ID, ActID: "act-a1", LevelID: "niv-1", Kind: dto.KindBase}, CellInput{Value: "100 %"})
	f.edit(t, c.ID, dto.CellKey{GroupID: g1.ID, ActID: "act-a3", LevelID: "niv-2", Kind: dto.KindBase}, CellInput{Value: "50 €"})
	f.edit(t, c.ID, dto.CellKey{GroupID: g2.ID, ActID: "act-a4", LevelID: "niv-1", Kind: dto.KindBase}, CellInput{Value: "Frais réels"})

	require.NoError(t, f.catalogues.Delete(f.ctx, admin, c.ID))

	for _, key := range queries.ScopeKeys(c.ID) {
		_, found, err := f.store.Get(f.ctx, key)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
	_, err = f.catalogues.Get(f.ctx, c.ID)
	assert.True(t, dto.IsNotFound(err))
	all, err := f.catalogues.List(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].DeletedAt)
	require.NotNil(t, all[0].DeletedBy)
	assert.Equal(t, admin.ID, *all[0].DeletedBy)

	export, err := f.catalogues.Export(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, export.Groups)
	assert.Empty(t, export.Members)
	assert.Empty(t, export.Cells)
}

func TestRestoreRefusesTakenKey(t *testing.T) {
	f := newFixture(t)
	first := f.catalogue(t)
	require.NoError(t, f.catalogues.Delete(f.ctx, admin, first.ID))
	second := f.catalogue(t)
	assert.Equal(t, sanitize.DefaultVersion, second.Version)

	_, err := f.catalogues.Restore(f.ctx, admin, first.ID)

	require.Error(t, err)
	var se *dto.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, dto.ErrorTypeValidation, se.Type)
	assert.Equal(t, second.ID, se.Details["conflictId"])

	require.NoError(t, f.catalogues.Delete(f.ctx, admin, second.ID))
	restored, err := f.catalogues.Restore(f.ctx, admin, first.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)

	_, err = f.catalogues.Restore(f.ctx, admin, first.ID)
	assert.True(t, dto.IsValidation(err))
}

func TestLockedGroupRejectsEdits(t *testing.T) {
	f := newFixture(t)
	c, g := f.group(t, "act-a1", "act-a2")

	locked, err := f.groups.SaveGrid(f.ctx, manager, c.ID, g.ID, GridInput{
		MemberOrder: []string{"act-a2", "act-a1"},
		Cells: []CellInput{
			{ActID: "act-a1", LevelID: "niv-1", Kind: "base", Value: "150 %"},
		},
	})
	require.NoError(t, err)
	assert.True(t, locked.Locked())

	members, err := f.groups.Members(f.ctx, c.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"act-a2", "act-a1"}, memberIDs(members))

	_, err = f.groups.SetMembers(f.ctx, admin, c.ID, g.ID, []string{"act-a1"})
	assert.EqualError(t, err, "groupe verrouillé")
	_, err = f.groups.CreateLabel(f.ctx, admin, c.ID, g.ID, "cat-sejour", "Hébergement", []string{"act-a1"})
	assert.EqualError(t, err, "groupe verrouillé")
	_, err = f.cells.BeginEdit(f.ctx, c.ID, dto.CellKey{GroupID: g.ID, ActID: "act-a1", LevelID: "niv-1", Kind: dto.KindBase})
	assert.EqualError(t, err, "groupe verrouillé")

	unlocked, err := f.groups.Unlock(f.ctx, manager, c.ID, g.ID)
	require.NoError(t, err)
	assert.False(t, unlocked.Locked())

	d, err := f.cells.BeginEdit(f.ctx, c.ID, dto.CellKey{GroupID: g.ID, ActID: "act-a1", LevelID: "niv-1", Kind: dto.KindBase})
	require.NoError(t, err)
	assert.True(t, d.Exists)
	assert.Equal(t, "150 %", d.Content.Value)
	_, err = f.groups.SetMembers(f.ctx, admin, c.ID, g.ID, []string{"act-a1"})
	require.NoError(t, err)
}

func TestCellEditTransaction(t *testing.T) {
	f := newFixture(t)
	c, g := f.group(t, "act-a1", "act-a2")
	key := dto.CellKey{GroupID: g.ID, ActID: "act-a1", LevelID: "niv-1", Kind: dto.KindBase}

	d, err := f.cells.BeginEdit(f.ctx, c.ID, key)
	require.NoError(t, err)
	assert.False(t, d.Exists)
	d.Content = CellInput{Type: "montant", Data: map[string]interface{}{"amount": "120"}}
	f.cells.CancelEdit(d)
	_, err = f.cells.CommitEdit(f.ctx, admin, d)
	assert.True(t, dto.IsValidation(err))
	cells, err := f.cells.Cells(f.ctx, c.ID, g.ID)
	require.NoError(t, err)
	assert.Empty(t, cells)

	d, err = f.cells.BeginEdit(f.ctx, c.ID, key)
	require.NoError(t, err)
	d.Content = CellInput{Value: "120 €"}
	saved, err := f.cells.CommitEdit(f.ctx, reader, d)
	assert.True(t, dto.IsAuthorization(err))
	assert.Nil(t, saved)

	saved, err = f.cells.CommitEdit(f.ctx, manager, d)
	require.NoError(t, err)
	assert.Equal(t, "120 €", saved.Value)

	_, err = f.cells.BeginEdit(f.ctx, c.ID, dto.CellKey{GroupID: g.ID, ActID: "act-a2", LevelID: "niv-s1", Kind: dto.KindSurco})
	assert.True(t, dto.IsValidation(err), "surco interdite sur act-a2")
	_, err = f.cells.BeginEdit(f.ctx, c.ID, dto.CellKey{GroupID: g.ID, ActID: "act-a3", LevelID: "niv-1", Kind: dto.KindBase})
	assert.True(t, dto.IsValidation(err), "act-a3 n'est pas membre")

	d, err = f.cells.BeginEdit(f.ctx, c.ID, key)
	require.NoError(t, err)
	d.Content = CellInput{DependsOn: dto.CopyDependency{Source: dto.CellRef{ActID: "act-a1", Kind: dto.KindBase}}}
	_, err = f.cells.CommitEdit(f.ctx, admin, d)
	assert.True(t, dto.IsValidation(err))

	require.NoError(t, f.cells.Clear(f.ctx, admin, c.ID, key))
	cells, err = f.cells.Cells(f.ctx, c.ID, g.ID)
	require.NoError(t, err)
	assert.Empty(t, cells)
	assert.True(t, dto.IsNotFound(f.cells.Clear(f.ctx, admin, c.ID, key)))

	d, err = f.cells.BeginEdit(f.ctx, c.ID, key)
	require.NoError(t, err)
	saved, err = f.cells.CommitEdit(f.ctx, admin, d)
	assert.True(t, dto.IsNotFound(err), "un brouillon vide sur une cellule absente n'écrit rien")
	assert.Nil(t, saved)
}

func TestGrilleEvaluatesDependencies(t *testing.T) {
	f := newFixture(t)
	c, g := f.group(t, "act-a1", "act-a2", "act-a3")
	f.edit(t, c.ID, dto.CellKey{GroupID: g.ID, ActID: "act-a1", LevelID: "niv-1", Kind: dto.KindBase}, CellInput{Value: "200 €"})
	f.edit(t, c.ID, dto.CellKey{GroupID: g.ID, ActID: "act-a2", LevelID: "niv-1", Kind: dto.KindBase}, CellInput{
		DependsOn: dto.PercentDependency{Source: dto.CellRef{ActID: "act-a1", Kind: dto.KindBase}, Percent: 50},
	})
	hundred, twentyFive := 100.0, 25.0
	f.edit(t, c.ID, dto.CellKey{GroupID: g.ID, ActID: "act-a3", LevelID: "niv-1", Kind: dto.KindBase}, CellInput{
		DependsOn: dto.FormulaDependency{Operator: dto.OpSub, Operands: []dto.Operand{
			{Value: &hundred, Suffix: "%"},
			{Value: &twentyFive},
		}},
	})

	grille, err := f.grille.Grille(f.ctx, c.ID, g.ID)
	require.NoError(t, err)

	require.Len(t, grille.Categories, 2)
	assert.Equal(t, "cat-sejour", grille.Categories[0].ID)
	assert.Equal(t, "Séjour", grille.Categories[0].Libelle)
	assert.Equal(t, "cat-frais", grille.Categories[1].ID)
	require.Len(t, grille.Columns, 2)
	assert.Equal(t, "niv-1", grille.Columns[0].LevelID)
	assert.Equal(t, dto.KindBase, grille.Columns[0].Kind)

	byAct := map[string]GrilleCell{}
	for _, cell := range grille.Cells {
		byAct[cell.Key.ActID] = cell
	}
	require.Len(t, byAct, 3)
	assert.Equal(t, "200 €", byAct["act-a1"].Value)
	assert.Equal(t, "100€", byAct["act-a2"].Value)
	assert.Equal(t, "↪ dépend de Frais de séjour", byAct["act-a2"].Note)
	assert.True(t, byAct["act-a2"].Derived)
	assert.Equal(t, "75%", byAct["act-a3"].Value)
	assert.Equal(t, "100% − 25", byAct["act-a3"].Expression)
	assert.Equal(t, "act-a1", grille.Cells[0].Key.ActID)
}

func TestValuesSurviveLevelSetSwitch(t *testing.T) {
	f := newFixture(t)
	c, g := f.group(t, "act-a1")
	f.edit(t, c.ID, dto.CellKey{GroupID: g.ID, ActID: "act-a1", LevelID: "niv-1", Kind: dto.KindBase}, CellInput{Value: "100 €"})

	switchTo := func(setID string) {
		t.Helper()
		_, err := f.groups.Update(f.ctx, admin, c.ID, g.ID, GroupInput{Nom: "Hospitalisation", NiveauSetBaseID: setID})
		require.NoError(t, err)
	}

	switchTo("set-surco")
	grille, err := f.grille.Grille(f.ctx, c.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "set-surco", grille.Group.NiveauSetBaseID)
	assert.Empty(t, grille.Cells)

	switchTo("set-base")
	grille, err = f.grille.Grille(f.ctx, c.ID, g.ID)
	require.NoError(t, err)
	require.Len(t, grille.Cells, 1)
	assert.Equal(t, "act-a1", grille.Cells[0].Key.ActID)
	assert.Equal(t, "niv-1", grille.Cells[0].Key.LevelID)
	assert.Equal(t, "100 €", grille.Cells[0].Value)
}

func TestGroupMoveCategorySkipsEmptyCategories(t *testing.T) {
	f := newFixture(t)
	c, g := f.group(t, "act-a1", "act-a5")
	ungrouped := dto.UngroupedCategoryID("mod-hospi")

	moved, err := f.groups.MoveCategory(f.ctx, admin, c.ID, g.ID, ungrouped, ordering.Up)
	require.NoError(t, err)
	assert.True(t, moved)

	got, err := f.groups.Get(f.ctx, c.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ungrouped, "cat-frais", "cat-sejour"}, got.CatOrder)

	moved, err = f.groups.MoveCategory(f.ctx, admin, c.ID, g.ID, ungrouped, ordering.Up)
	require.NoError(t, err)
	assert.False(t, moved)
	moved, err = f.groups.MoveCategory(f.ctx, admin, c.ID, g.ID, "cat-frais", ordering.Down)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestMoveMemberStaysWithinCategory(t *testing.T) {
	f := newFixture(t)
	c, g := f.group(t, "act-a1", "act-a2", "act-a3")

	moved, err := f.groups.MoveMember(f.ctx, admin, c.ID, g.ID, "act-a2", ordering.Up)
	require.NoError(t, err)
	assert.True(t, moved)
	moved, err = f.groups.MoveMember(f.ctx, admin, c.ID, g.ID, "act-a3", ordering.Up)
	require.NoError(t, err)
	assert.False(t, moved)

	members, err := f.groups.Members(f.ctx, c.ID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"act-a2", "act-a1", "act-a3"}, memberIDs(members))
}

func TestSetMembersRejectsForeignActs(t *testing.T) {
	f := newFixture(t)
	c, g := f.group(t, "act-a1")

	_, err := f.groups.SetMembers(f.ctx, admin, c.ID, g.ID, []string{"act-a1", "inconnu"})
	assert.True(t, dto.IsValidation(err))

	_, err = f.catalogues.UpdateModuleCategories(f.ctx, admin, c.ID, "mod-hospi", []string{"cat-sejour"})
	require.NoError(t, err)
	_, err = f.groups.SetMembers(f.ctx, admin, c.ID, g.ID, []string{"act-a3"})
	assert.True(t, dto.IsValidation(err))
}

func TestLabelsPartitionCategoryMembers(t *testing.T) {
	f := newFixture(t)
	c, g := f.group(t, "act-a1", "act-a2")

	label, err := f.groups.CreateLabel(f.ctx, admin, c.ID, g.ID, "cat-sejour", "Hébergement", []string{"act-a1"})
	require.NoError(t, err)
	require.NotNil(t, label)
	assert.Equal(t, []string{"act-a1"}, label.ActIDs)

	_, err = f.groups.CreateLabel(f.ctx, admin, c.ID, g.ID, "cat-sejour", "Doublon", []string{"act-a1"})
	assert.True(t, dto.IsValidation(err))

	buckets, err := f.groups.Labels(f.ctx, c.ID, g.ID, "cat-sejour")
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, label.ID, buckets[0].LabelID)
	assert.True(t, buckets[1].Free)
	assert.Equal(t, []string{"act-a2"}, buckets[1].ActIDs)

	updated, err := f.groups.UpdateLabel(f.ctx, manager, c.ID, g.ID, "cat-sejour", label.ID, "Séjour complet", []string{"act-a1", "act-a2"})
	require.NoError(t, err)
	assert.Equal(t, "Séjour complet", updated.Libelle)

	require.NoError(t, f.groups.DeleteLabel(f.ctx, admin, c.ID, g.ID, "cat-sejour", label.ID))
	buckets, err = f.groups.Labels(f.ctx, c.ID, g.ID, "cat-sejour")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, []string{"act-a1", "act-a2"}, buckets[0].ActIDs)
}

func TestReplaceReferentielTombstonesMissingRecords(t *testing.T) {
	f := newFixture(t)

	refs, err := f.refs.Replace(f.ctx, admin, queries.KeyOffers, []byte(`[
		{"id":"off-1","code":"ESS","libelle":"Essentiel 2026"},
		{"id":"off-3","code":"PREM","libelle":"Premium"}]`))
	require.NoError(t, err)

	byID := map[string]*dto.Offer{}
	for _, o := range refs.Offers {
		byID[o.ID] = o
	}
	require.Len(t, byID, 3)
	assert.NotNil(t, byID["off-2"].DeletedAt)
	assert.Nil(t, byID["off-3"].DeletedAt)
	assert.Equal(t, admin.ID, byID["off-3"].CreatedBy)
	assert.Equal(t, "Essentiel 2026", byID["off-1"].Libelle)
	assert.Equal(t, admin.ID, byID["off-1"].UpdatedBy)

	active, ok := Collection(refs, queries.KeyOffers, true)
	require.True(t, ok)
	assert.Len(t, active, 2)
	_, ok = Collection(refs, "inconnue", true)
	assert.False(t, ok)
}

func TestReplaceReferentielGuards(t *testing.T) {
	f := newFixture(t)

	_, err := f.refs.Replace(f.ctx, admin, queries.KeyModules, []byte(`[
		{"id":"mod-hospi","code":"HOSPI","libelle":"Hospitalisation","risk":"prevoyance"},
		{"id":"mod-deces","code":"DECES","libelle":"Décès","risk":"prevoyance"}]`))
	assert.True(t, dto.IsValidation(err))

	_, err = f.refs.Replace(f.ctx, admin, queries.KeyModules, []byte(`{"id":`))
	assert.True(t, dto.IsValidation(err))

	_, err = f.refs.Replace(f.ctx, reader, queries.KeyModules, []byte(`[]`))
	assert.True(t, dto.IsAuthorization(err))

	_, err = f.refs.Replace(f.ctx, admin, "catalogues", []byte(`[]`))
	assert.True(t, dto.IsNotFound(err))
}

func TestReferentielMoveCategory(t *testing.T) {
	f := newFixture(t)

	moved, err := f.refs.MoveCategory(f.ctx, admin, "cat-sejour", ordering.Up)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = f.refs.MoveCategory(f.ctx, admin, "cat-frais", ordering.Up)
	require.NoError(t, err)
	assert.True(t, moved)

	refs, err := f.refs.Referentiels(f.ctx)
	require.NoError(t, err)
	order := map[string]dto.FlexInt{}
	for _, c := range refs.Categories {
		order[c.ID] = c.Ordre
	}
	assert.Less(t, int(order["cat-frais"]), int(order["cat-sejour"]))

	_, err = f.refs.MoveCategory(f.ctx, admin, "inconnue", ordering.Down)
	assert.True(t, dto.IsNotFound(err))
}

func TestMigrateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	c, g := f.group(t, "act-a1", "act-a2")
	f.edit(t, c.ID, dto.CellKey{GroupID: g.ID, ActID: "act-a1", LevelID: "niv-1", Kind: dto.KindBase}, CellInput{Value: "80 %"})
	deleted, err := f.catalogues.Create(f.ctx, admin, CatalogueInput{OfferID: "off-1", Risk: "sante", Year: 2027})
	require.NoError(t, err)
	require.NoError(t, f.catalogues.Delete(f.ctx, admin, deleted.ID))
	require.NoError(t, f.store.Set(f.ctx, queries.GroupsKey(deleted.ID), []byte(`[{"id":"orphelin"}]`)))

	first, err := f.repo.Migrate(f.ctx)
	require.NoError(t, err)
	assert.Contains(t, first.Removed, queries.GroupsKey(deleted.ID))

	second, err := f.repo.Migrate(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, second.Rewritten)
	assert.Empty(t, second.Removed)
	assert.Positive(t, second.Unchanged)
}
