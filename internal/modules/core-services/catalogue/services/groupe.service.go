package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/labels"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/ordering"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

// GroupInput champs saisissables d'un groupe
type GroupInput struct {
	ModuleID               string
	Nom                    string
	Priorite               int
	SelectionType          string
	CategorySelectionTypes map[string]string
	NiveauSetBaseID        string
	NiveauSetSurcoID       string
	SubItems               []dto.SubItem
}

// GridInput état de la grille enregistré au verrouillage
type GridInput struct {
	MemberOrder []string
	CatOrder    []string
	Cells       []CellInput
}

// GroupService groupes d'actes d'un catalogue, membres, libellés et verrouillage
type GroupService struct {
	core  *Core
	cells *CellService
}

func NewGroupService(core *Core, cells *CellService) *GroupService {
	return &GroupService{core: core, cells: cells}
}

func orderedMembers(members []*dto.GroupMember, groupID string) []*dto.GroupMember {
	return ordering.Sorted(members, sanitize.MemberOrder(), groupID)
}

// groupMembers membres d'un groupe, tombstones compris, pointeurs partagés avec la collection
func groupMembers(members []*dto.GroupMember, groupID string) []*dto.GroupMember {
	var out []*dto.GroupMember
	for _, m := range members {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out
}

// List groupes actifs; moduleID vide = tous les modules, dans l'ordre des modules du catalogue
func (s *GroupService) List(ctx context.Context, catalogueID, moduleID string) ([]*dto.Group, error) {
	e, err := s.core.readScope(ctx, catalogueID)
	if err != nil {
		return nil, err
	}
	if moduleID != "" {
		return ordering.Sorted(e.scope.Groups, sanitize.GroupOrder(), moduleID), nil
	}
	var out []*dto.Group
	for _, cm := range ordering.Sorted(e.scope.Modules, sanitize.CatalogueModuleOrder(), catalogueID) {
		out = append(out, ordering.Sorted(e.scope.Groups, sanitize.GroupOrder(), cm.ModuleID)...)
	}
	return out, nil
}

// Get groupe actif
func (s *GroupService) Get(ctx context.Context, catalogueID, groupID string) (*dto.Group, error) {
	e, err := s.core.readScope(ctx, catalogueID)
	if err != nil {
		return nil, err
	}
	return e.group(groupID)
}

// Members membres actifs du groupe dans l'ordre
func (s *GroupService) Members(ctx context.Context, catalogueID, groupID string) ([]*dto.GroupMember, error) {
	e, err := s.core.readScope(ctx, catalogueID)
	if err != nil {
		return nil, err
	}
	if _, err := e.group(groupID); err != nil {
		return nil, err
	}
	return e.members(groupID), nil
}

// Create crée un groupe en édition, en dernière position de son module
func (s *GroupService) Create(ctx context.Context, user authz.User, catalogueID string, in GroupInput) (*dto.Group, error) {
	id := s.core.ids.NewID()
	scope, err := s.core.editScope(ctx, user, authz.CanCreate, catalogueID, func(e *scopeEdit) error {
		moduleID := strings.TrimSpace(in.ModuleID)
		if cm := e.catalogueModule(moduleID); cm == nil || !dto.IsActive(cm) {
			return dto.NewValidationError("module non inclus dans le catalogue", map[string]interface{}{"moduleId": moduleID})
		}
		g := &dto.Group{
			ID:          id,
			CatalogueID: catalogueID,
			ModuleID:    moduleID,
			State:       dto.GroupEditing,
		}
		if err := applyGroupInput(e, g, in); err != nil {
			return err
		}
		s.core.stamper.ApplyCreate(g, user.ID)
		e.scope.Groups = append(e.scope.Groups, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.core.logger.Info("groupe créé", zap.String("catalogue_id", catalogueID), zap.String("group_id", id))
	return findGroup(scope, id), nil
}

// Update modifie nom, sélection et jeux de niveaux; les valeurs saisies survivent au changement de jeu
func (s *GroupService) Update(ctx context.Context, user authz.User, catalogueID, groupID string, in GroupInput) (*dto.Group, error) {
	scope, err := s.core.editScope(ctx, user, authz.CanUpdate, catalogueID, func(e *scopeEdit) error {
		g, err := e.group(groupID)
		if err != nil {
			return err
		}
		if err := applyGroupInput(e, g, in); err != nil {
			return err
		}
		s.core.stamper.ApplyUpdate(g, user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findGroup(scope, groupID), nil
}

func applyGroupInput(e *scopeEdit, g *dto.Group, in GroupInput) error {
	for _, setID := range []string{in.NiveauSetBaseID, in.NiveauSetSurcoID} {
		if setID == "" {
			continue
		}
		if _, ok := e.snap.Index.LevelSets[setID]; !ok {
			return dto.NewValidationError("jeu de niveaux inconnu", map[string]interface{}{"niveauSetId": setID})
		}
	}
	types := map[string]dto.SelectionType{}
	for catID, t := range in.CategorySelectionTypes {
		if !e.snap.Index.ValidCategory(g.ModuleID, catID) {
			return dto.NewValidationError("catégorie hors du module", map[string]interface{}{"categoryId": catID})
		}
		types[catID] = dto.ParseSelectionType(t)
	}
	g.Nom = strings.TrimSpace(in.Nom)
	g.Priorite = dto.FlexInt(in.Priorite)
	g.SelectionType = dto.ParseSelectionType(in.SelectionType)
	g.CategorySelectionTypes = types
	g.NiveauSetBaseID = in.NiveauSetBaseID
	g.NiveauSetSurcoID = in.NiveauSetSurcoID
	g.SubItems = in.SubItems
	return nil
}

// Delete tombstone le groupe et retire ses membres, valeurs et libellés dans le même lot
func (s *GroupService) Delete(ctx context.Context, user authz.User, catalogueID, groupID string) error {
	_, err := s.core.editScope(ctx, user, authz.CanDelete, catalogueID, func(e *scopeEdit) error {
		g, err := e.group(groupID)
		if err != nil {
			return err
		}
		s.core.stamper.ApplyDelete(g, user.ID)
		g.CategoryGroups = nil

		members := e.scope.Members[:0]
		for _, m := range e.scope.Members {
			if m.GroupID != groupID {
				members = append(members, m)
			}
		}
		e.scope.Members = members
		cells := e.scope.Cells[:0]
		for _, c := range e.scope.Cells {
			if c.GroupID != groupID {
				cells = append(cells, c)
			}
		}
		e.scope.Cells = cells
		return nil
	})
	if err == nil {
		s.core.logger.Info("groupe supprimé", zap.String("catalogue_id", catalogueID), zap.String("group_id", groupID))
	}
	return err
}

// Move échange le groupe avec son voisin dans le module
func (s *GroupService) Move(ctx context.Context, user authz.User, catalogueID, groupID string, dir ordering.Direction) (bool, error) {
	var moved bool
	_, err := s.core.editScope(ctx, user, authz.CanUpdate, catalogueID, func(e *scopeEdit) error {
		if _, err := e.group(groupID); err != nil {
			return err
		}
		moved = ordering.Move(e.scope.Groups, sanitize.GroupOrder(), groupID, dir, nil)
		return nil
	})
	return moved, err
}

// SetMembers fixe la liste ordonnée des actes du groupe.
// Les actes retirés sont tombstonés, leurs valeurs disparaissent à l'assainissement.
func (s *GroupService) SetMembers(ctx context.Context, user authz.User, catalogueID, groupID string, actIDs []string) ([]*dto.GroupMember, error) {
	scope, err := s.core.editScope(ctx, user, authz.CanUpdate, catalogueID, func(e *scopeEdit) error {
		g, err := e.editableGroup(groupID)
		if err != nil {
			return err
		}
		cm := e.catalogueModule(g.ModuleID)
		wanted := map[string]int{}
		var ordered []string
		for _, id := range actIDs {
			id = strings.TrimSpace(id)
			if _, dup := wanted[id]; dup || id == "" {
				continue
			}
			act, ok := e.snap.Index.Acts[id]
			if !ok || act.ModuleID != g.ModuleID {
				return dto.NewValidationError("acte hors du module du groupe", map[string]interface{}{"actId": id})
			}
			if cm == nil || !sanitize.ExposesCategory(cm, act.EffectiveCategoryID()) {
				return dto.NewValidationError("catégorie non exposée par le catalogue", map[string]interface{}{
					"actId":      id,
					"categoryId": act.EffectiveCategoryID(),
				})
			}
			wanted[id] = len(ordered) + 1
			ordered = append(ordered, id)
		}

		existing := map[string]*dto.GroupMember{}
		for _, m := range groupMembers(e.scope.Members, groupID) {
			existing[m.ActID] = m
			pos, keep := wanted[m.ActID]
			switch {
			case keep && !dto.IsActive(m):
				s.core.stamper.ApplyCreate(m, user.ID)
				m.Ordre = dto.FlexInt(pos)
			case keep:
				if int(m.Ordre) != pos {
					m.Ordre = dto.FlexInt(pos)
					s.core.stamper.ApplyUpdate(m, user.ID)
				}
			case dto.IsActive(m):
				s.core.stamper.ApplyDelete(m, user.ID)
			}
		}
		for _, id := range ordered {
			if _, ok := existing[id]; ok {
				continue
			}
			m := &dto.GroupMember{GroupID: groupID, ActID: id, Ordre: dto.FlexInt(wanted[id])}
			s.core.stamper.ApplyCreate(m, user.ID)
			e.scope.Members = append(e.scope.Members, m)
		}
		s.core.stamper.ApplyUpdate(g, user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orderedMembers(scope.Members, groupID), nil
}

// MoveMember échange un acte avec son voisin de la même catégorie
func (s *GroupService) MoveMember(ctx context.Context, user authz.User, catalogueID, groupID, actID string, dir ordering.Direction) (bool, error) {
	var moved bool
	_, err := s.core.editScope(ctx, user, authz.CanUpdate, catalogueID, func(e *scopeEdit) error {
		if _, err := e.editableGroup(groupID); err != nil {
			return err
		}
		act, ok := e.snap.Index.Acts[actID]
		if !ok {
			return dto.NewNotFoundError("acte", actID)
		}
		category := act.EffectiveCategoryID()
		sameCategory := func(m *dto.GroupMember) bool {
			a, ok := e.snap.Index.Acts[m.ActID]
			return ok && a.EffectiveCategoryID() == category
		}
		moved = ordering.Move(groupMembers(e.scope.Members, groupID), sanitize.MemberOrder(), actID, dir, sameCategory)
		return nil
	})
	return moved, err
}

// MoveCategory déplace une catégorie dans l'ordre d'affichage du groupe,
// parmi les catégories qui ont au moins un acte membre
func (s *GroupService) MoveCategory(ctx context.Context, user authz.User, catalogueID, groupID, categoryID string, dir ordering.Direction) (bool, error) {
	var moved bool
	_, err := s.core.editScope(ctx, user, authz.CanUpdate, catalogueID, func(e *scopeEdit) error {
		g, err := e.editableGroup(groupID)
		if err != nil {
			return err
		}
		filled := map[string]bool{}
		for _, m := range e.members(groupID) {
			if a, ok := e.snap.Index.Acts[m.ActID]; ok {
				filled[a.EffectiveCategoryID()] = true
			}
		}
		order := ordering.NormalizeCatOrder(g.CatOrder, e.snap.Index.ModuleCategories(g.ModuleID))
		g.CatOrder, moved = ordering.MoveInList(order, categoryID, dir, func(id string) bool { return filled[id] })
		if moved {
			s.core.stamper.ApplyUpdate(g, user.ID)
		}
		return nil
	})
	return moved, err
}

// SaveGrid enregistre ordre des membres, ordre des catégories et valeurs, puis verrouille le groupe
func (s *GroupService) SaveGrid(ctx context.Context, user authz.User, catalogueID, groupID string, in GridInput) (*dto.Group, error) {
	scope, err := s.core.editScope(ctx, user, authz.CanUpdate, catalogueID, func(e *scopeEdit) error {
		g, err := e.editableGroup(groupID)
		if err != nil {
			return err
		}
		if len(in.MemberOrder) > 0 {
			applyMemberOrder(e.members(groupID), in.MemberOrder)
		}
		if len(in.CatOrder) > 0 {
			g.CatOrder = ordering.NormalizeCatOrder(in.CatOrder, e.snap.Index.ModuleCategories(g.ModuleID))
		}
		for _, c := range in.Cells {
			key := dto.CellKey{GroupID: groupID, ActID: c.ActID, LevelID: c.LevelID, Kind: dto.Kind(c.Kind)}
			if _, err := s.cells.upsert(e, user, key, c); err != nil {
				return err
			}
		}
		g.State = dto.GroupLocked
		s.core.stamper.ApplyUpdate(g, user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.core.logger.Info("grille verrouillée",
		zap.String("catalogue_id", catalogueID),
		zap.String("group_id", groupID),
		zap.Int("cells", len(in.Cells)))
	return findGroup(scope, groupID), nil
}

// applyMemberOrder renumérote les membres cités en tête, les autres conservent leur ordre relatif
func applyMemberOrder(members []*dto.GroupMember, order []string) {
	pos := map[string]int{}
	for i, id := range order {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		pi, iok := pos[members[i].ActID]
		pj, jok := pos[members[j].ActID]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		}
		return false
	})
	for i, m := range members {
		m.Ordre = dto.FlexInt(i + 1)
	}
}

// Unlock repasse le groupe en édition
func (s *GroupService) Unlock(ctx context.Context, user authz.User, catalogueID, groupID string) (*dto.Group, error) {
	scope, err := s.core.editScope(ctx, user, authz.CanUpdate, catalogueID, func(e *scopeEdit) error {
		g, err := e.group(groupID)
		if err != nil {
			return err
		}
		if g.Locked() {
			g.State = dto.GroupEditing
			s.core.stamper.ApplyUpdate(g, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findGroup(scope, groupID), nil
}

// Labels compartiments d'affichage d'une catégorie du groupe
func (s *GroupService) Labels(ctx context.Context, catalogueID, groupID, categoryID string) ([]labels.Bucket, error) {
	e, err := s.core.readScope(ctx, catalogueID)
	if err != nil {
		return nil, err
	}
	g, err := e.group(groupID)
	if err != nil {
		return nil, err
	}
	return labels.Buckets(g.CategoryGroups[categoryID], e.categoryMembers(groupID, categoryID)), nil
}

// CreateLabel ajoute un libellé sur des actes disponibles de la catégorie
func (s *GroupService) CreateLabel(ctx context.Context, user authz.User, catalogueID, groupID, categoryID, libelle string, actIDs []string) (*dto.Label, error) {
	id := s.core.ids.NewID()
	g, err := s.editLabels(ctx, user, authz.CanCreate, catalogueID, groupID, categoryID, func(current []dto.Label, members []string) ([]dto.Label, error) {
		return labels.Create(current, members, id, libelle, actIDs)
	})
	if err != nil {
		return nil, err
	}
	return findLabel(g, categoryID, id), nil
}

// UpdateLabel remplace libellé et actes; ses anciens actes restent disponibles pour lui
func (s *GroupService) UpdateLabel(ctx context.Context, user authz.User, catalogueID, groupID, categoryID, labelID, libelle string, actIDs []string) (*dto.Label, error) {
	g, err := s.editLabels(ctx, user, authz.CanUpdate, catalogueID, groupID, categoryID, func(current []dto.Label, members []string) ([]dto.Label, error) {
		return labels.Update(current, members, labelID, libelle, actIDs)
	})
	if err != nil {
		return nil, err
	}
	return findLabel(g, categoryID, labelID), nil
}

// DeleteLabel retire le libellé; ses actes retournent dans la liste libre
func (s *GroupService) DeleteLabel(ctx context.Context, user authz.User, catalogueID, groupID, categoryID, labelID string) error {
	_, err := s.editLabels(ctx, user, authz.CanDelete, catalogueID, groupID, categoryID, func(current []dto.Label, _ []string) ([]dto.Label, error) {
		return labels.Delete(current, labelID)
	})
	return err
}

// editLabels applique fn aux libellés d'une catégorie et renvoie le groupe assaini
func (s *GroupService) editLabels(ctx context.Context, user authz.User, capability authz.Capability, catalogueID, groupID, categoryID string, fn func(current []dto.Label, members []string) ([]dto.Label, error)) (*dto.Group, error) {
	scope, err := s.core.editScope(ctx, user, capability, catalogueID, func(e *scopeEdit) error {
		g, err := e.editableGroup(groupID)
		if err != nil {
			return err
		}
		if !e.snap.Index.ValidCategory(g.ModuleID, categoryID) {
			return dto.NewValidationError("catégorie hors du module", map[string]interface{}{"categoryId": categoryID})
		}
		next, err := fn(g.CategoryGroups[categoryID], e.categoryMembers(groupID, categoryID))
		if err != nil {
			return err
		}
		if g.CategoryGroups == nil {
			g.CategoryGroups = map[string][]dto.Label{}
		}
		g.CategoryGroups[categoryID] = next
		s.core.stamper.ApplyUpdate(g, user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findGroup(scope, groupID), nil
}
