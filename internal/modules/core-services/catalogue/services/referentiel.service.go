package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/ordering"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/queries"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/authz"
)

// ReferentielService lecture et remplacement des collections du référentiel
type ReferentielService struct {
	core *Core
}

func NewReferentielService(core *Core) *ReferentielService {
	return &ReferentielService{core: core}
}

// Referentiels référentiel assaini complet, tombstones compris
func (s *ReferentielService) Referentiels(ctx context.Context) (sanitize.Referentiels, error) {
	snap, err := s.core.repo.Load(ctx)
	if err != nil {
		return sanitize.Referentiels{}, err
	}
	return snap.Referentiels, nil
}

// Collection collection d'une clé du référentiel; activeOnly retire les tombstones
func Collection(refs sanitize.Referentiels, key string, activeOnly bool) (interface{}, bool) {
	switch key {
	case queries.KeyOffers:
		return filter(refs.Offers, activeOnly), true
	case queries.KeyCatPersonnel:
		return filter(refs.CatPersonnel, activeOnly), true
	case queries.KeyModules:
		return filter(refs.Modules, activeOnly), true
	case queries.KeyCategories:
		return filter(refs.Categories, activeOnly), true
	case queries.KeyActs:
		return filter(refs.Acts, activeOnly), true
	case queries.KeyLevelSets:
		return filter(refs.LevelSets, activeOnly), true
	case queries.KeyLevels:
		return filter(refs.Levels, activeOnly), true
	case queries.KeyValueTypes:
		return filter(refs.ValueTypes, activeOnly), true
	}
	return nil, false
}

func filter[T audit.Record](items []T, activeOnly bool) []T {
	if activeOnly {
		return dto.ActiveOnly(items)
	}
	return items
}

// ValueTypes définitions connues: intégrées puis référentiel
func (s *ReferentielService) ValueTypes(ctx context.Context) ([]*dto.ValueType, error) {
	snap, err := s.core.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Index.ValueTypes.All(), nil
}

// Replace remplace une collection entière du référentiel par les candidats fournis.
// Les enregistrements absents des candidats sont tombstonés; le risque d'un module est immuable.
func (s *ReferentielService) Replace(ctx context.Context, user authz.User, key string, raw []byte) (sanitize.Referentiels, error) {
	if !queries.IsReferentielKey(key) {
		return sanitize.Referentiels{}, dto.NewNotFoundError("référentiel", key)
	}
	var out sanitize.Referentiels
	err := s.core.mutate(user, authz.CanUpdate, func() error {
		refs, err := s.core.repo.RawReferentiels(ctx)
		if err != nil {
			return err
		}
		refs = s.core.repo.Pipeline().Referentiels(refs)

		st := s.core.stamper
		switch key {
		case queries.KeyOffers:
			next, err := candidates[*dto.Offer](raw)
			if err != nil {
				return err
			}
			refs.Offers = reconcile(st, user.ID, refs.Offers, next, func(o *dto.Offer) string { return o.ID })
		case queries.KeyCatPersonnel:
			next, err := candidates[*dto.CatPersonnel](raw)
			if err != nil {
				return err
			}
			refs.CatPersonnel = reconcile(st, user.ID, refs.CatPersonnel, next, func(c *dto.CatPersonnel) string { return c.ID })
		case queries.KeyModules:
			next, err := candidates[*dto.Module](raw)
			if err != nil {
				return err
			}
			if err := checkModuleRisks(refs.Modules, next); err != nil {
				return err
			}
			refs.Modules = reconcile(st, user.ID, refs.Modules, next, func(m *dto.Module) string { return m.ID })
		case queries.KeyCategories:
			next, err := candidates[*dto.Category](raw)
			if err != nil {
				return err
			}
			refs.Categories = reconcile(st, user.ID, refs.Categories, next, func(c *dto.Category) string { return c.ID })
		case queries.KeyActs:
			next, err := candidates[*dto.Act](raw)
			if err != nil {
				return err
			}
			refs.Acts = reconcile(st, user.ID, refs.Acts, next, func(a *dto.Act) string { return a.ID })
		case queries.KeyLevelSets:
			next, err := candidates[*dto.LevelSet](raw)
			if err != nil {
				return err
			}
			refs.LevelSets = reconcile(st, user.ID, refs.LevelSets, next, func(l *dto.LevelSet) string { return l.ID })
		case queries.KeyLevels:
			next, err := candidates[*dto.Level](raw)
			if err != nil {
				return err
			}
			refs.Levels = reconcile(st, user.ID, refs.Levels, next, func(l *dto.Level) string { return l.ID })
		case queries.KeyValueTypes:
			next, err := candidates[*dto.ValueType](raw)
			if err != nil {
				return err
			}
			refs.ValueTypes = reconcile(st, user.ID, refs.ValueTypes, next, func(v *dto.ValueType) string { return v.ID })
		}

		out = s.core.repo.Pipeline().Referentiels(refs)
		if err := s.save(ctx, out); err != nil {
			return err
		}
		s.core.logger.Info("référentiel remplacé", zap.String("key", key), zap.String("user", user.ID))
		return nil
	})
	return out, err
}

// MoveCategory déplace une catégorie dans son module
func (s *ReferentielService) MoveCategory(ctx context.Context, user authz.User, categoryID string, dir ordering.Direction) (bool, error) {
	return s.move(ctx, user, func(refs *sanitize.Referentiels) (bool, bool) {
		for _, c := range dto.ActiveOnly(refs.Categories) {
			if c.ID == categoryID {
				return true, ordering.Move(refs.Categories, sanitize.CategoryOrder(), categoryID, dir, nil)
			}
		}
		return false, false
	}, "catégorie", categoryID)
}

// MoveAct déplace un acte dans sa catégorie
func (s *ReferentielService) MoveAct(ctx context.Context, user authz.User, actID string, dir ordering.Direction) (bool, error) {
	return s.move(ctx, user, func(refs *sanitize.Referentiels) (bool, bool) {
		for _, a := range dto.ActiveOnly(refs.Acts) {
			if a.ID == actID {
				return true, ordering.Move(refs.Acts, sanitize.ActOrder(), actID, dir, nil)
			}
		}
		return false, false
	}, "acte", actID)
}

func (s *ReferentielService) move(ctx context.Context, user authz.User, fn func(*sanitize.Referentiels) (found, moved bool), resource, id string) (bool, error) {
	var moved bool
	err := s.core.mutate(user, authz.CanUpdate, func() error {
		snap, err := s.core.repo.Load(ctx)
		if err != nil {
			return err
		}
		refs := snap.Referentiels
		found, ok := fn(&refs)
		if !found {
			return dto.NewNotFoundError(resource, id)
		}
		if !ok {
			return nil
		}
		moved = true
		return s.save(ctx, refs)
	})
	return moved, err
}

func (s *ReferentielService) save(ctx context.Context, refs sanitize.Referentiels) error {
	writes, err := ReferentielWrites(refs)
	if err != nil {
		return err
	}
	return s.core.repo.Apply(ctx, writes)
}

// candidates décode un tableau candidat
func candidates[T any](raw []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, dto.NewValidationError("collection candidate illisible", map[string]interface{}{
			"cause": err.Error(),
		})
	}
	return out, nil
}

// reconcile tamponne les candidats par rapport à la collection courante:
// un identifiant inconnu est une création, un connu une mise à jour si son contenu change,
// un enregistrement courant absent des candidats est tombstoné.
func reconcile[E any, P interface {
	*E
	audit.Record
}](st *audit.Stamper, user string, current, next []P, id func(P) string) []P {
	known := make(map[string]P, len(current))
	for _, c := range current {
		known[id(c)] = c
	}
	seen := map[string]bool{}
	out := make([]P, 0, len(next)+len(current))
	for _, n := range next {
		if (*E)(n) == nil {
			continue
		}
		cur, ok := known[id(n)]
		if !ok || id(n) == "" {
			st.ApplyCreate(n, user)
			out = append(out, n)
			continue
		}
		seen[id(n)] = true
		wantDeleted := n.AuditFields().DeletedAt != nil
		*n.AuditFields() = *cur.AuditFields()
		switch {
		case wantDeleted && dto.IsActive(cur):
			st.ApplyDelete(n, user)
		case !wantDeleted && !dto.IsActive(cur):
			st.Restore(n, user)
		case !sameContent(cur, n):
			st.ApplyUpdate(n, user)
		}
		out = append(out, n)
	}
	for _, c := range current {
		if seen[id(c)] {
			continue
		}
		if dto.IsActive(c) {
			st.ApplyDelete(c, user)
		}
		out = append(out, c)
	}
	return out
}

func sameContent(a, b interface{}) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// checkModuleRisks refuse le changement de risque d'un module existant
func checkModuleRisks(current, next []*dto.Module) error {
	risks := make(map[string]dto.Risk, len(current))
	for _, m := range dto.ActiveOnly(current) {
		risks[m.ID] = m.Risk
	}
	for _, m := range next {
		if m == nil {
			continue
		}
		prev, ok := risks[m.ID]
		if !ok {
			continue
		}
		if risk, _ := dto.ParseRisk(string(m.Risk)); risk != prev {
			return dto.NewValidationError("le risque d'un module ne peut pas être modifié", map[string]interface{}{
				"moduleId": m.ID,
				"risk":     prev,
			})
		}
	}
	return nil
}
