package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/ordering"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

// CatalogueInput champs saisissables d'un catalogue
type CatalogueInput struct {
	OfferID              string
	Risk                 string
	Year                 int
	Version              string
	Status               string
	ValidFrom            string
	ValidTo              string
	AllowMultipleNiveaux bool
	DefaultNiveauSetID   string
	CatPersonnelIDs      []string
}

// Export état complet d'un catalogue, tombstones compris
type Export struct {
	Catalogue  *dto.Catalogue         `json:"catalogue"`
	Modules    []*dto.CatalogueModule `json:"modules"`
	Groups     []*dto.Group           `json:"groups"`
	Members    []*dto.GroupMember     `json:"members"`
	Cells      []*dto.CellValue       `json:"cells"`
	ExportedAt time.Time              `json:"exportedAt"`
}

// CatalogueService cycle de vie des catalogues et des modules inclus
type CatalogueService struct {
	core *Core
}

func NewCatalogueService(core *Core) *CatalogueService {
	return &CatalogueService{core: core}
}

// List catalogues actifs, ou tous avec includeDeleted
func (s *CatalogueService) List(ctx context.Context, includeDeleted bool) ([]*dto.Catalogue, error) {
	snap, err := s.core.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if includeDeleted {
		return snap.Catalogues, nil
	}
	return dto.ActiveOnly(snap.Catalogues), nil
}

// Get catalogue actif
func (s *CatalogueService) Get(ctx context.Context, id string) (*dto.Catalogue, error) {
	snap, err := s.core.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.ActiveCatalogue(id)
}

// Create crée un catalogue; une clé (offre, risque, année, version) déjà prise est refusée
func (s *CatalogueService) Create(ctx context.Context, user authz.User, in CatalogueInput) (*dto.Catalogue, error) {
	var created *dto.Catalogue
	err := s.core.mutate(user, authz.CanCreate, func() error {
		snap, err := s.core.repo.Load(ctx)
		if err != nil {
			return err
		}
		c := &dto.Catalogue{ID: s.core.ids.NewID()}
		if err := applyInput(snap, c, in); err != nil {
			return err
		}
		if err := checkUnique(snap.Catalogues, c); err != nil {
			return err
		}
		s.core.stamper.ApplyCreate(c, user.ID)

		catalogues := s.core.repo.Pipeline().Catalogues(snap.Index, append(snap.Catalogues, c))
		w, err := CataloguesWrite(catalogues)
		if err != nil {
			return err
		}
		if err := s.core.repo.Apply(ctx, []kvstore.Write{w}); err != nil {
			return err
		}
		for _, sc := range catalogues {
			if sc.ID == c.ID {
				created = sc
			}
		}
		s.core.logger.Info("catalogue créé",
			zap.String("catalogue_id", c.ID),
			zap.String("offer_id", c.OfferID),
			zap.Int("year", int(c.Year)),
			zap.String("user", user.ID))
		return nil
	})
	return created, err
}

// Update modifie un catalogue actif; ses collections sont réassainies dans le même lot
func (s *CatalogueService) Update(ctx context.Context, user authz.User, id string, in CatalogueInput) (*dto.Catalogue, error) {
	var updated *dto.Catalogue
	err := s.core.mutate(user, authz.CanUpdate, func() error {
		snap, err := s.core.repo.Load(ctx)
		if err != nil {
			return err
		}
		c, err := snap.ActiveCatalogue(id)
		if err != nil {
			return err
		}
		candidate := *c
		if err := applyInput(snap, &candidate, in); err != nil {
			return err
		}
		if err := checkUnique(snap.Catalogues, &candidate); err != nil {
			return err
		}
		scope, err := s.core.repo.LoadScope(ctx, snap, id)
		if err != nil {
			return err
		}
		if candidate.Risk != c.Risk && len(dto.ActiveOnly(scope.Modules)) > 0 {
			return dto.NewValidationError("le risque d'un catalogue contenant des modules ne peut pas changer", map[string]interface{}{
				"risk": c.Risk,
			})
		}
		*c = candidate
		s.core.stamper.ApplyUpdate(c, user.ID)
		scope = s.core.repo.Pipeline().Scope(snap.Index, c, scope)

		w, err := CataloguesWrite(snap.Catalogues)
		if err != nil {
			return err
		}
		sw, err := ScopeWrites(id, scope)
		if err != nil {
			return err
		}
		if err := s.core.repo.Apply(ctx, append([]kvstore.Write{w}, sw...)); err != nil {
			return err
		}
		updated = c
		return nil
	})
	return updated, err
}

// Delete tombstone le catalogue et retire ses modules, groupes, membres et valeurs en un lot
func (s *CatalogueService) Delete(ctx context.Context, user authz.User, id string) error {
	return s.core.mutate(user, authz.CanDelete, func() error {
		snap, err := s.core.repo.Load(ctx)
		if err != nil {
			return err
		}
		c, err := snap.ActiveCatalogue(id)
		if err != nil {
			return err
		}
		s.core.stamper.ApplyDelete(c, user.ID)

		w, err := CataloguesWrite(snap.Catalogues)
		if err != nil {
			return err
		}
		writes := append([]kvstore.Write{w}, RemoveScopeWrites(id)...)
		if err := s.core.repo.Apply(ctx, writes); err != nil {
			return err
		}
		s.core.logger.Info("catalogue supprimé", zap.String("catalogue_id", id), zap.String("user", user.ID))
		return nil
	})
}

// Restore efface le tombstone d'un catalogue; ses collections supprimées ne reviennent pas
func (s *CatalogueService) Restore(ctx context.Context, user authz.User, id string) (*dto.Catalogue, error) {
	var restored *dto.Catalogue
	err := s.core.mutate(user, authz.CanUpdate, func() error {
		snap, err := s.core.repo.Load(ctx)
		if err != nil {
			return err
		}
		c := snap.Catalogue(id)
		if c == nil {
			return dto.NewNotFoundError("catalogue", id)
		}
		if dto.IsActive(c) {
			return dto.NewValidationError("le catalogue n'est pas supprimé", map[string]interface{}{"id": id})
		}
		if err := checkUnique(snap.Catalogues, c); err != nil {
			return err
		}
		s.core.stamper.Restore(c, user.ID)

		w, err := CataloguesWrite(snap.Catalogues)
		if err != nil {
			return err
		}
		if err := s.core.repo.Apply(ctx, []kvstore.Write{w}); err != nil {
			return err
		}
		restored = c
		return nil
	})
	return restored, err
}

// Modules modules inclus actifs dans l'ordre du catalogue
func (s *CatalogueService) Modules(ctx context.Context, catalogueID string) ([]*dto.CatalogueModule, error) {
	e, err := s.core.readScope(ctx, catalogueID)
	if err != nil {
		return nil, err
	}
	return ordering.Sorted(e.scope.Modules, sanitize.CatalogueModuleOrder(), catalogueID), nil
}

// AddModule inclut un module du même risque, en dernière position
func (s *CatalogueService) AddModule(ctx context.Context, user authz.User, catalogueID, moduleID string, categoryIDs []string) (*dto.CatalogueModule, error) {
	scope, err := s.core.editScope(ctx, user, authz.CanCreate, catalogueID, func(e *scopeEdit) error {
		mod, ok := e.snap.Index.Modules[moduleID]
		if !ok {
			return dto.NewValidationError("module inconnu", map[string]interface{}{"moduleId": moduleID})
		}
		if mod.Risk != e.catalogue.Risk {
			return dto.NewValidationError("le module ne couvre pas le risque du catalogue", map[string]interface{}{
				"moduleId": moduleID,
				"risk":     mod.Risk,
			})
		}
		if err := checkCategories(e.snap.Index, moduleID, categoryIDs); err != nil {
			return err
		}
		if cm := e.catalogueModule(moduleID); cm != nil {
			if dto.IsActive(cm) {
				return dto.NewValidationError("module déjà inclus", map[string]interface{}{"moduleId": moduleID})
			}
			s.core.stamper.ApplyCreate(cm, user.ID)
			cm.Ordre = 0
			cm.CategoryIDs = categoryIDs
			return nil
		}
		cm := &dto.CatalogueModule{
			CatalogueID: catalogueID,
			ModuleID:    moduleID,
			CategoryIDs: categoryIDs,
		}
		s.core.stamper.ApplyCreate(cm, user.ID)
		e.scope.Modules = append(e.scope.Modules, cm)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findModule(scope, moduleID), nil
}

// UpdateModuleCategories change les catégories exposées; les membres hors exposition disparaissent
func (s *CatalogueService) UpdateModuleCategories(ctx context.Context, user authz.User, catalogueID, moduleID string, categoryIDs []string) (*dto.CatalogueModule, error) {
	scope, err := s.core.editScope(ctx, user, authz.CanUpdate, catalogueID, func(e *scopeEdit) error {
		cm := e.catalogueModule(moduleID)
		if cm == nil || !dto.IsActive(cm) {
			return dto.NewNotFoundError("module du catalogue", moduleID)
		}
		if err := checkCategories(e.snap.Index, moduleID, categoryIDs); err != nil {
			return err
		}
		cm.CategoryIDs = categoryIDs
		s.core.stamper.ApplyUpdate(cm, user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findModule(scope, moduleID), nil
}

// RemoveModule tombstone l'inclusion; les groupes du module sortent du catalogue
func (s *CatalogueService) RemoveModule(ctx context.Context, user authz.User, catalogueID, moduleID string) error {
	_, err := s.core.editScope(ctx, user, authz.CanDelete, catalogueID, func(e *scopeEdit) error {
		cm := e.catalogueModule(moduleID)
		if cm == nil || !dto.IsActive(cm) {
			return dto.NewNotFoundError("module du catalogue", moduleID)
		}
		s.core.stamper.ApplyDelete(cm, user.ID)
		return nil
	})
	return err
}

// MoveModule échange le module avec son voisin dans le catalogue
func (s *CatalogueService) MoveModule(ctx context.Context, user authz.User, catalogueID, moduleID string, dir ordering.Direction) (bool, error) {
	var moved bool
	_, err := s.core.editScope(ctx, user, authz.CanUpdate, catalogueID, func(e *scopeEdit) error {
		cm := e.catalogueModule(moduleID)
		if cm == nil || !dto.IsActive(cm) {
			return dto.NewNotFoundError("module du catalogue", moduleID)
		}
		moved = ordering.Move(e.scope.Modules, sanitize.CatalogueModuleOrder(), moduleID, dir, nil)
		return nil
	})
	return moved, err
}

// Export état complet d'un catalogue, supprimé compris
func (s *CatalogueService) Export(ctx context.Context, id string) (*Export, error) {
	snap, err := s.core.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	c := snap.Catalogue(id)
	if c == nil {
		return nil, dto.NewNotFoundError("catalogue", id)
	}
	scope, err := s.core.repo.LoadScope(ctx, snap, id)
	if err != nil {
		return nil, err
	}
	return &Export{
		Catalogue:  c,
		Modules:    scope.Modules,
		Groups:     scope.Groups,
		Members:    scope.Members,
		Cells:      scope.Cells,
		ExportedAt: s.core.stamper.Now(),
	}, nil
}

// applyInput valide et recopie la saisie sur le catalogue
func applyInput(snap *Snapshot, c *dto.Catalogue, in CatalogueInput) error {
	details := map[string]interface{}{}
	offerID := strings.TrimSpace(in.OfferID)
	if _, ok := snap.Index.Offers[offerID]; !ok {
		details["offerId"] = "offre inconnue"
	}
	risk, ok := dto.ParseRisk(in.Risk)
	if !ok {
		details["risk"] = "risque inconnu"
	}
	if in.Year <= 0 {
		details["year"] = "année obligatoire"
	}
	setID := strings.TrimSpace(in.DefaultNiveauSetID)
	if setID != "" {
		if _, ok := snap.Index.LevelSets[setID]; !ok {
			details["defaultNiveauSetId"] = "jeu de niveaux inconnu"
		}
	}
	for _, id := range in.CatPersonnelIDs {
		if _, ok := snap.Index.CatPersonnel[id]; !ok {
			details["catPersonnelIds"] = "catégorie de personnel inconnue: " + id
			break
		}
	}
	if len(details) > 0 {
		return dto.NewValidationError("catalogue invalide", details)
	}

	version := strings.TrimSpace(in.Version)
	if version == "" {
		version = sanitize.DefaultVersion
	}
	c.OfferID = offerID
	c.Risk = risk
	c.Year = dto.FlexInt(in.Year)
	c.Version = version
	c.Status = dto.ParseStatus(in.Status)
	c.ValidFrom = strings.TrimSpace(in.ValidFrom)
	c.ValidTo = strings.TrimSpace(in.ValidTo)
	c.AllowMultipleNiveaux = dto.Flag(in.AllowMultipleNiveaux)
	c.DefaultNiveauSetID = setID
	c.CatPersonnelIDs = in.CatPersonnelIDs
	return nil
}

// checkUnique refuse une clé d'unicité déjà portée par un autre catalogue actif
func checkUnique(catalogues []*dto.Catalogue, c *dto.Catalogue) error {
	key := c.UniqueKey()
	for _, other := range dto.ActiveOnly(catalogues) {
		if other.ID != c.ID && other.UniqueKey() == key {
			return dto.NewValidationError("un catalogue existe déjà pour cette offre, ce risque, cette année et cette version", map[string]interface{}{
				"conflictId": other.ID,
				"version":    c.Version,
			})
		}
	}
	return nil
}

func checkCategories(idx *sanitize.Index, moduleID string, categoryIDs []string) error {
	for _, id := range categoryIDs {
		if !idx.ValidCategory(moduleID, id) {
			return dto.NewValidationError("catégorie hors du module", map[string]interface{}{
				"moduleId":   moduleID,
				"categoryId": id,
			})
		}
	}
	return nil
}
