package services

import (
	"context"
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/valuetypes"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

// CellInput contenu saisi d'une cellule; ActID, LevelID et Kind servent à l'enregistrement de grille
type CellInput struct {
	ActID      string
	LevelID    string
	Kind       string
	Type       string
	Data       map[string]interface{}
	Value      string
	Expression string
	DependsOn  dto.Dependency
}

func (in CellInput) empty() bool {
	return strings.TrimSpace(in.Type) == "" &&
		len(in.Data) == 0 &&
		strings.TrimSpace(in.Value) == "" &&
		in.DependsOn == nil
}

// Draft transaction d'édition d'une cellule: BeginEdit, puis CommitEdit ou CancelEdit
type Draft struct {
	CatalogueID string      `json:"catalogueId"`
	Key         dto.CellKey `json:"key"`
	Exists      bool        `json:"exists"`
	Content     CellInput   `json:"-"`

	cancelled bool
}

// CellService valeurs de la matrice d'un groupe
type CellService struct {
	core *Core
}

func NewCellService(core *Core) *CellService {
	return &CellService{core: core}
}

// Cells valeurs actives d'un groupe
func (s *CellService) Cells(ctx context.Context, catalogueID, groupID string) ([]*dto.CellValue, error) {
	e, err := s.core.readScope(ctx, catalogueID)
	if err != nil {
		return nil, err
	}
	if _, err := e.group(groupID); err != nil {
		return nil, err
	}
	var out []*dto.CellValue
	for _, c := range dto.ActiveOnly(e.scope.Cells) {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return out, nil
}

// BeginEdit ouvre un brouillon prérempli avec la valeur stockée
func (s *CellService) BeginEdit(ctx context.Context, catalogueID string, key dto.CellKey) (*Draft, error) {
	e, err := s.core.readScope(ctx, catalogueID)
	if err != nil {
		return nil, err
	}
	if _, err := e.editableGroup(key.GroupID); err != nil {
		return nil, err
	}
	key, err = checkCellKey(e, key)
	if err != nil {
		return nil, err
	}
	d := &Draft{CatalogueID: catalogueID, Key: key}
	if c := findCell(e.scope.Cells, key); c != nil && dto.IsActive(c) {
		cp := c.Clone()
		d.Exists = true
		d.Content = CellInput{
			ActID:      key.ActID,
			LevelID:    key.LevelID,
			Kind:       string(key.Kind),
			Type:       cp.Type,
			Data:       cp.Data,
			Value:      cp.Value,
			Expression: cp.Expression,
			DependsOn:  cp.DependsOn,
		}
	}
	return d, nil
}

// CommitEdit valide le brouillon et enregistre la cellule. Un contenu vide efface la valeur,
// NotFound si aucune valeur active n'existait.
func (s *CellService) CommitEdit(ctx context.Context, user authz.User, d *Draft) (*dto.CellValue, error) {
	if d == nil || d.cancelled {
		return nil, dto.NewValidationError("édition annulée", nil)
	}
	capability := authz.CanCreate
	if d.Exists {
		capability = authz.CanUpdate
	}
	var key dto.CellKey
	scope, err := s.core.editScope(ctx, user, capability, d.CatalogueID, func(e *scopeEdit) error {
		if _, err := e.editableGroup(d.Key.GroupID); err != nil {
			return err
		}
		c, err := s.upsert(e, user, d.Key, d.Content)
		if err != nil {
			return err
		}
		if c == nil {
			return dto.NewNotFoundError("cellule", d.Key.String())
		}
		key = c.Key()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findCell(scope.Cells, key), nil
}

// CancelEdit abandonne le brouillon sans rien écrire
func (s *CellService) CancelEdit(d *Draft) {
	if d != nil {
		d.cancelled = true
	}
}

// Clear tombstone la valeur d'une cellule
func (s *CellService) Clear(ctx context.Context, user authz.User, catalogueID string, key dto.CellKey) error {
	_, err := s.core.editScope(ctx, user, authz.CanDelete, catalogueID, func(e *scopeEdit) error {
		if _, err := e.editableGroup(key.GroupID); err != nil {
			return err
		}
		if k, ok := dto.ParseKind(string(key.Kind)); ok {
			key.Kind = k
		}
		c := findCell(e.scope.Cells, key)
		if c == nil || !dto.IsActive(c) {
			return dto.NewNotFoundError("valeur", key.String())
		}
		s.core.stamper.ApplyDelete(c, user.ID)
		return nil
	})
	return err
}

// upsert écrit le contenu validé dans la collection de travail
func (s *CellService) upsert(e *scopeEdit, user authz.User, key dto.CellKey, in CellInput) (*dto.CellValue, error) {
	key, err := checkCellKey(e, key)
	if err != nil {
		return nil, err
	}
	existing := findCell(e.scope.Cells, key)

	// contenu vide: efface la valeur active, nil si rien n'était saisi
	if in.empty() {
		if existing == nil || !dto.IsActive(existing) {
			return nil, nil
		}
		s.core.stamper.ApplyDelete(existing, user.ID)
		return existing, nil
	}

	next := &dto.CellValue{
		GroupID:    key.GroupID,
		ActID:      key.ActID,
		LevelID:    key.LevelID,
		Kind:       key.Kind,
		Expression: strings.TrimSpace(in.Expression),
		Value:      strings.TrimSpace(in.Value),
	}
	if t := strings.TrimSpace(in.Type); t != "" {
		def := e.snap.Index.ValueTypes.Lookup(t)
		if def == nil {
			return nil, dto.NewValidationError("type de valeur inconnu", map[string]interface{}{"type": t})
		}
		data := valuetypes.Normalize(def, in.Data)
		if err := valuetypes.Validate(def, data); err != nil {
			return nil, err
		}
		next.Type = def.ID
		next.Data = data
	} else if len(in.Data) > 0 {
		next.Data = valuetypes.Normalize(nil, in.Data)
	}
	if in.DependsOn != nil {
		dep := sanitize.CleanDependency(in.DependsOn)
		if dep == nil {
			return nil, dto.NewValidationError("dépendance invalide", map[string]interface{}{
				"mode": string(in.DependsOn.Mode()),
			})
		}
		if dependsOnItself(key, dep) {
			return nil, dto.NewValidationError("une cellule ne peut pas dépendre d'elle-même", map[string]interface{}{
				"key": key.String(),
			})
		}
		next.DependsOn = dep
	}

	if existing == nil {
		s.core.stamper.ApplyCreate(next, user.ID)
		e.scope.Cells = append(e.scope.Cells, next)
		return next, nil
	}
	next.Fields = existing.Fields
	if dto.IsActive(existing) {
		s.core.stamper.ApplyUpdate(next, user.ID)
	} else {
		s.core.stamper.ApplyCreate(next, user.ID)
	}
	*existing = *next
	return existing, nil
}

// checkCellKey vérifie membre, niveau et colonne d'une clé et normalise la colonne
func checkCellKey(e *scopeEdit, key dto.CellKey) (dto.CellKey, error) {
	kind, ok := dto.ParseKind(string(key.Kind))
	if !ok {
		return key, dto.NewValidationError("colonne invalide", map[string]interface{}{"kind": string(key.Kind)})
	}
	key.Kind = kind
	member := false
	for _, m := range e.members(key.GroupID) {
		if m.ActID == key.ActID {
			member = true
			break
		}
	}
	if !member {
		return key, dto.NewValidationError("acte non membre du groupe", map[string]interface{}{"actId": key.ActID})
	}
	if _, ok := e.snap.Index.Levels[key.LevelID]; !ok {
		return key, dto.NewValidationError("niveau inconnu", map[string]interface{}{"levelId": key.LevelID})
	}
	if lvl, isOption := kind.OptionLevelID(); isOption {
		if _, ok := e.snap.Index.Levels[lvl]; !ok {
			return key, dto.NewValidationError("niveau d'option inconnu", map[string]interface{}{"levelId": lvl})
		}
	}
	if kind == dto.KindSurco {
		if act, ok := e.snap.Index.Acts[key.ActID]; ok && !bool(act.AllowSurco) {
			return key, dto.NewValidationError("surcomplémentaire non autorisée pour cet acte", map[string]interface{}{"actId": key.ActID})
		}
	}
	return key, nil
}

func findCell(cells []*dto.CellValue, key dto.CellKey) *dto.CellValue {
	for _, c := range cells {
		if c.Key() == key {
			return c
		}
	}
	return nil
}

// dependsOnItself vrai si une référence de la dépendance désigne la cellule elle-même
func dependsOnItself(key dto.CellKey, dep dto.Dependency) bool {
	self := func(ref dto.CellRef) bool {
		level, kind := ref.LevelID, ref.Kind
		if level == "" {
			level = key.LevelID
		}
		if kind == "" {
			kind = key.Kind
		}
		return ref.ActID == key.ActID && level == key.LevelID && kind == key.Kind
	}
	switch d := dep.(type) {
	case dto.CopyDependency:
		return self(d.Source)
	case dto.PercentDependency:
		return self(d.Source)
	case dto.FormulaDependency:
		for _, o := range d.Operands {
			if !o.IsLiteral() && self(o.Source) {
				return true
			}
		}
	}
	return false
}
