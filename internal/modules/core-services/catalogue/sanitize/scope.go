package sanitize

import (
	"sort"
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/labels"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/ordering"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/valuetypes"
)

// DefaultGroupName nom attribué à un groupe sans nom
const DefaultGroupName = "Groupe"

var catalogueModuleOrder = ordering.Accessor[*dto.CatalogueModule]{
	ID:       func(m *dto.CatalogueModule) string { return m.ModuleID },
	Scope:    func(m *dto.CatalogueModule) string { return m.CatalogueID },
	Active:   func(m *dto.CatalogueModule) bool { return dto.IsActive(m) },
	Ordre:    func(m *dto.CatalogueModule) int { return int(m.Ordre) },
	SetOrdre: func(m *dto.CatalogueModule, n int) { m.Ordre = dto.FlexInt(n) },
}

// CatalogueModuleOrder accès à l'ordre des modules dans un catalogue
func CatalogueModuleOrder() ordering.Accessor[*dto.CatalogueModule] { return catalogueModuleOrder }

var groupOrder = ordering.Accessor[*dto.Group]{
	ID:       func(g *dto.Group) string { return g.ID },
	Scope:    func(g *dto.Group) string { return g.ModuleID },
	Active:   func(g *dto.Group) bool { return dto.IsActive(g) },
	Ordre:    func(g *dto.Group) int { return int(g.Ordre) },
	SetOrdre: func(g *dto.Group, n int) { g.Ordre = dto.FlexInt(n) },
}

// GroupOrder accès à l'ordre des groupes dans (catalogue, module)
func GroupOrder() ordering.Accessor[*dto.Group] { return groupOrder }

var memberOrder = ordering.Accessor[*dto.GroupMember]{
	ID:       func(m *dto.GroupMember) string { return m.ActID },
	Scope:    func(m *dto.GroupMember) string { return m.GroupID },
	Active:   func(m *dto.GroupMember) bool { return dto.IsActive(m) },
	Ordre:    func(m *dto.GroupMember) int { return int(m.Ordre) },
	SetOrdre: func(m *dto.GroupMember, n int) { m.Ordre = dto.FlexInt(n) },
}

// MemberOrder accès à l'ordre des actes dans un groupe
func MemberOrder() ordering.Accessor[*dto.GroupMember] { return memberOrder }

func (p *Pipeline) catalogueModules(idx *Index, catalogue *dto.Catalogue, in []*dto.CatalogueModule) []*dto.CatalogueModule {
	items := make([]*dto.CatalogueModule, 0, len(in))
	for _, m := range compact(in) {
		m.CatalogueID = strings.TrimSpace(m.CatalogueID)
		if m.CatalogueID == "" {
			m.CatalogueID = catalogue.ID
		}
		if m.CatalogueID != catalogue.ID {
			continue
		}
		m.ModuleID = strings.TrimSpace(m.ModuleID)
		mod, ok := idx.Modules[m.ModuleID]
		if !ok || mod.Risk != catalogue.Risk {
			continue
		}
		m.CategoryIDs = uniqStrings(m.CategoryIDs, func(id string) bool {
			return idx.ValidCategory(m.ModuleID, id)
		})
		items = append(items, m)
	}
	items, _ = lastWriteWins(items,
		func(m *dto.CatalogueModule) string { return m.ModuleID },
		func(m *dto.CatalogueModule) string { return m.ModuleID },
		func(first, last *dto.CatalogueModule) {
			ordre := first.Ordre
			fields := first.Fields
			*first = *last
			if first.Ordre <= 0 {
				first.Ordre = ordre
			}
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, m := range items {
		p.stamper.EnsureFields(m)
	}
	ordering.Resequence(items, catalogueModuleOrder)
	return items
}

// ExposesCategory vrai si la catégorie est exposée par l'inclusion du module
func ExposesCategory(cm *dto.CatalogueModule, categoryID string) bool {
	if len(cm.CategoryIDs) == 0 {
		return true
	}
	for _, id := range cm.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

func (p *Pipeline) groups(idx *Index, catalogue *dto.Catalogue, modules []*dto.CatalogueModule, in []*dto.Group) []*dto.Group {
	included := map[string]bool{}
	for _, m := range dto.ActiveOnly(modules) {
		included[m.ModuleID] = true
	}
	items := make([]*dto.Group, 0, len(in))
	for _, g := range compact(in) {
		g.CatalogueID = strings.TrimSpace(g.CatalogueID)
		if g.CatalogueID == "" {
			g.CatalogueID = catalogue.ID
		}
		g.ModuleID = strings.TrimSpace(g.ModuleID)
		if g.CatalogueID != catalogue.ID || !included[g.ModuleID] {
			continue
		}
		g.ID = p.ensureID(strings.TrimSpace(g.ID))
		g.Nom = strings.TrimSpace(g.Nom)
		if g.Nom == "" {
			g.Nom = DefaultGroupName
		}
		g.SelectionType = dto.ParseSelectionType(string(g.SelectionType))
		if g.State != dto.GroupLocked {
			g.State = dto.GroupEditing
		}
		g.NiveauSetBaseID = strings.TrimSpace(g.NiveauSetBaseID)
		if g.NiveauSetBaseID == "" {
			g.NiveauSetBaseID = catalogue.DefaultNiveauSetID
		}
		if _, ok := idx.LevelSets[g.NiveauSetBaseID]; !ok {
			g.NiveauSetBaseID = ""
		}
		g.NiveauSetSurcoID = strings.TrimSpace(g.NiveauSetSurcoID)
		if _, ok := idx.LevelSets[g.NiveauSetSurcoID]; !ok {
			g.NiveauSetSurcoID = ""
		}
		g.CatOrder = ordering.NormalizeCatOrder(g.CatOrder, idx.ModuleCategories(g.ModuleID))
		g.CategorySelectionTypes = p.selectionTypes(idx, g)
		g.SubItems = p.subItems(g.SubItems)
		items = append(items, g)
	}
	items = uniqueIDs(items, func(g *dto.Group) string { return g.ID })
	suffixDuplicates(items,
		func(g *dto.Group) string { return g.ModuleID },
		func(g *dto.Group) string { return g.Nom },
		func(g *dto.Group, v string) { g.Nom = v })
	for _, g := range items {
		p.stamper.EnsureFields(g)
	}
	ordering.Resequence(items, groupOrder)
	return items
}

func (p *Pipeline) selectionTypes(idx *Index, g *dto.Group) map[string]dto.SelectionType {
	if len(g.CategorySelectionTypes) == 0 {
		return nil
	}
	out := map[string]dto.SelectionType{}
	for catID, t := range g.CategorySelectionTypes {
		if idx.ValidCategory(g.ModuleID, catID) {
			out[catID] = dto.ParseSelectionType(string(t))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (p *Pipeline) subItems(in []dto.SubItem) []dto.SubItem {
	seen := map[string]bool{}
	items := make([]*dto.SubItem, 0, len(in))
	for i := range in {
		s := in[i]
		s.Libelle = strings.TrimSpace(s.Libelle)
		if s.Libelle == "" {
			continue
		}
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" || seen[s.ID] {
			s.ID = p.ids.NewID()
		}
		seen[s.ID] = true
		items = append(items, &s)
	}
	ordering.Resequence(items, ordering.Accessor[*dto.SubItem]{
		Ordre:    func(s *dto.SubItem) int { return int(s.Ordre) },
		SetOrdre: func(s *dto.SubItem, n int) { s.Ordre = dto.FlexInt(n) },
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].Ordre < items[j].Ordre })
	if len(items) == 0 {
		return nil
	}
	out := make([]dto.SubItem, len(items))
	for i, s := range items {
		out[i] = *s
	}
	return out
}

func (p *Pipeline) members(idx *Index, modules []*dto.CatalogueModule, groups []*dto.Group, in []*dto.GroupMember) []*dto.GroupMember {
	exposure := map[string]*dto.CatalogueModule{}
	for _, m := range dto.ActiveOnly(modules) {
		exposure[m.ModuleID] = m
	}
	liveGroups := byID(groups, func(g *dto.Group) string { return g.ID })
	items := make([]*dto.GroupMember, 0, len(in))
	for _, m := range compact(in) {
		m.GroupID, m.ActID = strings.TrimSpace(m.GroupID), strings.TrimSpace(m.ActID)
		g, ok := liveGroups[m.GroupID]
		if !ok {
			continue
		}
		act, ok := idx.Acts[m.ActID]
		if !ok || act.ModuleID != g.ModuleID {
			continue
		}
		if cm := exposure[g.ModuleID]; cm == nil || !ExposesCategory(cm, act.EffectiveCategoryID()) {
			continue
		}
		items = append(items, m)
	}
	items, _ = lastWriteWins(items,
		func(m *dto.GroupMember) string { return m.GroupID + "|" + m.ActID },
		func(m *dto.GroupMember) string { return m.GroupID + "|" + m.ActID },
		func(first, last *dto.GroupMember) {
			ordre := first.Ordre
			fields := first.Fields
			*first = *last
			if first.Ordre <= 0 {
				first.Ordre = ordre
			}
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, m := range items {
		p.stamper.EnsureFields(m)
	}
	ordering.Resequence(items, memberOrder)
	return items
}

func (p *Pipeline) cells(idx *Index, members []*dto.GroupMember, in []*dto.CellValue) []*dto.CellValue {
	live := map[string]bool{}
	for _, m := range dto.ActiveOnly(members) {
		live[m.GroupID+"|"+m.ActID] = true
	}
	items := make([]*dto.CellValue, 0, len(in))
	for _, c := range compact(in) {
		c.GroupID, c.ActID = strings.TrimSpace(c.GroupID), strings.TrimSpace(c.ActID)
		c.LevelID = strings.TrimSpace(c.LevelID)
		if !live[c.GroupID+"|"+c.ActID] {
			continue
		}
		if _, ok := idx.Levels[c.LevelID]; !ok {
			continue
		}
		kind, ok := dto.ParseKind(string(c.Kind))
		if !ok {
			continue
		}
		if lvl, isOption := kind.OptionLevelID(); isOption {
			if _, ok := idx.Levels[lvl]; !ok {
				continue
			}
		}
		c.Kind = kind
		p.cellContent(idx, c)
		items = append(items, c)
	}
	items, _ = lastWriteWins(items,
		func(c *dto.CellValue) string { return c.Key().String() },
		func(c *dto.CellValue) string { return c.Key().String() },
		func(first, last *dto.CellValue) {
			fields := first.Fields
			*first = *last
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, c := range items {
		p.stamper.EnsureFields(c)
	}
	return items
}

// cellContent normalise type, data, texte affiché et dépendance d'une cellule
func (p *Pipeline) cellContent(idx *Index, c *dto.CellValue) {
	c.Type = strings.TrimSpace(c.Type)
	def := idx.ValueTypes.Lookup(c.Type)
	if def == nil {
		c.Type = ""
	}
	c.Data = valuetypes.Normalize(def, c.Data)
	c.Expression = strings.TrimSpace(c.Expression)
	c.Value = strings.TrimSpace(c.Value)
	if def != nil {
		if rendered := valuetypes.Render(def, c.Data); rendered != "" {
			c.Value = rendered
		}
	}
	c.DependsOn = dependency(c.DependsOn)
}

// CleanDependency renvoie la dépendance normalisée, nil si elle est mal formée
func CleanDependency(d dto.Dependency) dto.Dependency {
	return dependency(d)
}

func dependency(d dto.Dependency) dto.Dependency {
	ref := func(r dto.CellRef) (dto.CellRef, bool) {
		r.ActID = strings.TrimSpace(r.ActID)
		r.LevelID = strings.TrimSpace(r.LevelID)
		if r.ActID == "" {
			return r, false
		}
		if r.Kind != "" {
			k, ok := dto.ParseKind(string(r.Kind))
			if !ok {
				return r, false
			}
			r.Kind = k
		}
		return r, true
	}
	switch dep := d.(type) {
	case dto.CopyDependency:
		src, ok := ref(dep.Source)
		if !ok {
			return nil
		}
		return dto.CopyDependency{Source: src}
	case dto.PercentDependency:
		src, ok := ref(dep.Source)
		if !ok {
			return nil
		}
		return dto.PercentDependency{Source: src, Percent: dep.Percent}
	case dto.FormulaDependency:
		op, ok := dto.ParseOperator(string(dep.Operator))
		if !ok || len(dep.Operands) == 0 {
			return nil
		}
		out := dto.FormulaDependency{Operator: op}
		for _, o := range dep.Operands {
			if o.IsLiteral() {
				if o.Value == nil {
					return nil
				}
				o.Source = dto.CellRef{}
			} else {
				src, ok := ref(o.Source)
				if !ok {
					return nil
				}
				o.Source = src
			}
			o.Suffix = strings.TrimSpace(o.Suffix)
			out.Operands = append(out.Operands, o)
		}
		return dto.CloneDependency(out)
	}
	return nil
}

// finalizeGroups restreint les libellés de catégories aux membres actifs du groupe
func (p *Pipeline) finalizeGroups(idx *Index, groups []*dto.Group, members []*dto.GroupMember) {
	byGroup := map[string][]*dto.GroupMember{}
	for _, m := range dto.ActiveOnly(members) {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m)
	}
	for _, g := range groups {
		if len(g.CategoryGroups) == 0 {
			g.CategoryGroups = nil
			continue
		}
		list := byGroup[g.ID]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Ordre < list[j].Ordre })
		out := map[string][]dto.Label{}
		for catID, ls := range g.CategoryGroups {
			if !idx.ValidCategory(g.ModuleID, catID) {
				continue
			}
			var actIDs []string
			for _, m := range list {
				if a, ok := idx.Acts[m.ActID]; ok && a.EffectiveCategoryID() == catID {
					actIDs = append(actIDs, m.ActID)
				}
			}
			if normalized := labels.Normalize(ls, actIDs, p.ids.NewID); len(normalized) > 0 {
				out[catID] = normalized
			}
		}
		if len(out) == 0 {
			out = nil
		}
		g.CategoryGroups = out
	}
}
