package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/evaluation"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/idgen"
)

// Settings réglages des services du catalogue
type Settings struct {
	// MaxDepth profondeur maximale d'évaluation des dépendances
	MaxDepth int
}

// Core dépendances partagées par les services du catalogue.
// Les mutations sont sérialisées: un seul mutateur à la fois, lectures sans verrou.
type Core struct {
	repo     *Repository
	gate     authz.Gate
	stamper  *audit.Stamper
	ids      idgen.Generator
	logger   *zap.Logger
	settings Settings

	mu sync.Mutex
}

// NewCore provider Fx
func NewCore(repo *Repository, gate authz.Gate, stamper *audit.Stamper, ids idgen.Generator, settings *Settings, logger *zap.Logger) *Core {
	s := Settings{MaxDepth: evaluation.DefaultMaxDepth}
	if settings != nil && settings.MaxDepth > 0 {
		s.MaxDepth = settings.MaxDepth
	}
	return &Core{
		repo:     repo,
		gate:     gate,
		stamper:  stamper,
		ids:      ids,
		logger:   logger.Named("catalogue"),
		settings: s,
	}
}

// mutate vérifie la capacité puis exécute fn sous le verrou des mutations
func (c *Core) mutate(user authz.User, capability authz.Capability, fn func() error) error {
	if err := authz.Require(c.gate, user, capability); err != nil {
		c.logger.Warn("mutation refusée",
			zap.String("user", user.ID),
			zap.String("role", user.Role),
			zap.String("capability", string(capability)))
		return dto.NewAuthorizationError(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn()
}

// scopeEdit état de travail d'une mutation sur les collections d'un catalogue
type scopeEdit struct {
	snap      *Snapshot
	catalogue *dto.Catalogue
	scope     sanitize.Scope
}

// editScope charge un catalogue actif, applique fn puis réassainit et réécrit
// ses quatre collections en un seul lot
func (c *Core) editScope(ctx context.Context, user authz.User, capability authz.Capability, catalogueID string, fn func(e *scopeEdit) error) (sanitize.Scope, error) {
	var result sanitize.Scope
	err := c.mutate(user, capability, func() error {
		snap, err := c.repo.Load(ctx)
		if err != nil {
			return err
		}
		cat, err := snap.ActiveCatalogue(catalogueID)
		if err != nil {
			return err
		}
		scope, err := c.repo.LoadScope(ctx, snap, catalogueID)
		if err != nil {
			return err
		}
		edit := &scopeEdit{snap: snap, catalogue: cat, scope: scope}
		if err := fn(edit); err != nil {
			return err
		}
		result = c.repo.Pipeline().Scope(snap.Index, cat, edit.scope)
		writes, err := ScopeWrites(catalogueID, result)
		if err != nil {
			return err
		}
		return c.repo.Apply(ctx, writes)
	})
	return result, err
}

// readScope lecture sans verrou d'un catalogue actif et de ses collections
func (c *Core) readScope(ctx context.Context, catalogueID string) (*scopeEdit, error) {
	snap, err := c.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := snap.ActiveCatalogue(catalogueID)
	if err != nil {
		return nil, err
	}
	scope, err := c.repo.LoadScope(ctx, snap, catalogueID)
	if err != nil {
		return nil, err
	}
	return &scopeEdit{snap: snap, catalogue: cat, scope: scope}, nil
}

func (e *scopeEdit) group(id string) (*dto.Group, error) {
	for _, g := range e.scope.Groups {
		if g.ID == id && dto.IsActive(g) {
			return g, nil
		}
	}
	return nil, dto.NewNotFoundError("groupe", id)
}

// editableGroup groupe actif et non verrouillé
func (e *scopeEdit) editableGroup(id string) (*dto.Group, error) {
	g, err := e.group(id)
	if err != nil {
		return nil, err
	}
	if g.Locked() {
		return nil, dto.NewValidationError("groupe verrouillé", map[string]interface{}{"groupId": id})
	}
	return g, nil
}

func (e *scopeEdit) catalogueModule(moduleID string) *dto.CatalogueModule {
	for _, m := range e.scope.Modules {
		if m.ModuleID == moduleID {
			return m
		}
	}
	return nil
}

// members membres actifs d'un groupe dans l'ordre
func (e *scopeEdit) members(groupID string) []*dto.GroupMember {
	return orderedMembers(e.scope.Members, groupID)
}

// categoryMembers actes membres d'une catégorie du groupe, dans l'ordre des membres
func (e *scopeEdit) categoryMembers(groupID, categoryID string) []string {
	var out []string
	for _, m := range e.members(groupID) {
		if a, ok := e.snap.Index.Acts[m.ActID]; ok && a.EffectiveCategoryID() == categoryID {
			out = append(out, m.ActID)
		}
	}
	return out
}

func findGroup(scope sanitize.Scope, id string) *dto.Group {
	for _, g := range scope.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func findModule(scope sanitize.Scope, moduleID string) *dto.CatalogueModule {
	for _, m := range scope.Modules {
		if m.ModuleID == moduleID {
			return m
		}
	}
	return nil
}

func findLabel(g *dto.Group, categoryID, labelID string) *dto.Label {
	if g == nil {
		return nil
	}
	for i, l := range g.CategoryGroups[categoryID] {
		if l.ID == labelID {
			return &g.CategoryGroups[categoryID][i]
		}
	}
	return nil
}
