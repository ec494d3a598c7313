package sanitize

import (
	"sort"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/valuetypes"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
)

// Index accès par identifiant aux enregistrements actifs du référentiel
type Index struct {
	Offers       map[string]*dto.Offer
	CatPersonnel map[string]*dto.CatPersonnel
	Modules      map[string]*dto.Module
	Categories   map[string]*dto.Category
	Acts         map[string]*dto.Act
	LevelSets    map[string]*dto.LevelSet
	Levels       map[string]*dto.Level
	ValueTypes   *valuetypes.Registry

	moduleCategories map[string][]string
}

// NewIndex indexe un référentiel déjà assaini
func NewIndex(refs Referentiels) *Index {
	idx := &Index{
		Offers:           byID(refs.Offers, func(o *dto.Offer) string { return o.ID }),
		CatPersonnel:     byID(refs.CatPersonnel, func(c *dto.CatPersonnel) string { return c.ID }),
		Modules:          byID(refs.Modules, func(m *dto.Module) string { return m.ID }),
		Categories:       byID(refs.Categories, func(c *dto.Category) string { return c.ID }),
		Acts:             byID(refs.Acts, func(a *dto.Act) string { return a.ID }),
		LevelSets:        byID(refs.LevelSets, func(s *dto.LevelSet) string { return s.ID }),
		Levels:           byID(refs.Levels, func(l *dto.Level) string { return l.ID }),
		ValueTypes:       valuetypes.NewRegistry(refs.ValueTypes),
		moduleCategories: map[string][]string{},
	}

	cats := dto.ActiveOnly(refs.Categories)
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Ordre < cats[j].Ordre })
	for _, c := range cats {
		idx.moduleCategories[c.ModuleID] = append(idx.moduleCategories[c.ModuleID], c.ID)
	}
	for _, a := range dto.ActiveOnly(refs.Acts) {
		if a.CategoryID != "" {
			continue
		}
		ung := dto.UngroupedCategoryID(a.ModuleID)
		list := idx.moduleCategories[a.ModuleID]
		if len(list) == 0 || list[len(list)-1] != ung {
			idx.moduleCategories[a.ModuleID] = append(list, ung)
		}
	}
	return idx
}

func byID[T audit.Record](items []T, id func(T) string) map[string]T {
	out := make(map[string]T, len(items))
	for _, it := range items {
		if dto.IsActive(it) {
			out[id(it)] = it
		}
	}
	return out
}

// ModuleCategories catégories du module dans l'ordre du référentiel,
// suivies de la catégorie synthétique si des actes n'en ont pas
func (idx *Index) ModuleCategories(moduleID string) []string {
	return append([]string(nil), idx.moduleCategories[moduleID]...)
}

// ValidCategory vrai pour une catégorie active du module ou sa catégorie synthétique
func (idx *Index) ValidCategory(moduleID, categoryID string) bool {
	if dto.IsUngrouped(categoryID) {
		return categoryID == dto.UngroupedCategoryID(moduleID)
	}
	c, ok := idx.Categories[categoryID]
	return ok && c.ModuleID == moduleID
}

// ModuleActs actes actifs d'un module triés par catégorie puis ordre
func (idx *Index) ModuleActs(moduleID string) []*dto.Act {
	catPos := map[string]int{}
	for i, id := range idx.moduleCategories[moduleID] {
		catPos[id] = i
	}
	var out []*dto.Act
	for _, a := range idx.Acts {
		if a.ModuleID == moduleID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := catPos[out[i].EffectiveCategoryID()], catPos[out[j].EffectiveCategoryID()]
		if pi != pj {
			return pi < pj
		}
		if out[i].Ordre != out[j].Ordre {
			return out[i].Ordre < out[j].Ordre
		}
		return out[i].ID < out[j].ID
	})
	return out
}
