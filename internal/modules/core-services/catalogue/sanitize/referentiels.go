package sanitize

import (
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/ordering"
)

func (p *Pipeline) offers(in []*dto.Offer) []*dto.Offer {
	items := make([]*dto.Offer, 0, len(in))
	for _, o := range compact(in) {
		o.Code, o.Libelle = strings.TrimSpace(o.Code), strings.TrimSpace(o.Libelle)
		if o.Code == "" {
			continue
		}
		o.ID = p.ensureID(strings.TrimSpace(o.ID))
		items = append(items, o)
	}
	items = uniqueIDs(items, func(o *dto.Offer) string { return o.ID })
	items, _ = lastWriteWins(items,
		func(o *dto.Offer) string { return ci(o.Code) },
		func(o *dto.Offer) string { return o.ID },
		func(first, last *dto.Offer) {
			id := first.ID
			fields := first.Fields
			*first = *last
			first.ID = id
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, o := range items {
		p.stamper.EnsureFields(o)
	}
	return items
}

func (p *Pipeline) catPersonnel(in []*dto.CatPersonnel) []*dto.CatPersonnel {
	items := make([]*dto.CatPersonnel, 0, len(in))
	for _, c := range compact(in) {
		c.Code, c.Libelle = strings.TrimSpace(c.Code), strings.TrimSpace(c.Libelle)
		if c.Code == "" {
			continue
		}
		c.ID = p.ensureID(strings.TrimSpace(c.ID))
		items = append(items, c)
	}
	items = uniqueIDs(items, func(c *dto.CatPersonnel) string { return c.ID })
	items, _ = lastWriteWins(items,
		func(c *dto.CatPersonnel) string { return ci(c.Code) },
		func(c *dto.CatPersonnel) string { return c.ID },
		func(first, last *dto.CatPersonnel) {
			id := first.ID
			fields := first.Fields
			*first = *last
			first.ID = id
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, c := range items {
		p.stamper.EnsureFields(c)
	}
	return items
}

func (p *Pipeline) modules(in []*dto.Module) ([]*dto.Module, map[string]string) {
	items := make([]*dto.Module, 0, len(in))
	for _, m := range compact(in) {
		m.Code, m.Libelle = strings.TrimSpace(m.Code), strings.TrimSpace(m.Libelle)
		if m.Code == "" {
			continue
		}
		m.ID = p.ensureID(strings.TrimSpace(m.ID))
		m.Risk, _ = dto.ParseRisk(string(m.Risk))
		items = append(items, m)
	}
	items = uniqueIDs(items, func(m *dto.Module) string { return m.ID })
	items, aliases := lastWriteWins(items,
		func(m *dto.Module) string { return ci(m.Code) },
		func(m *dto.Module) string { return m.ID },
		func(first, last *dto.Module) {
			id, risk := first.ID, first.Risk
			fields := first.Fields
			*first = *last
			first.ID, first.Risk = id, risk
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, m := range items {
		p.stamper.EnsureFields(m)
	}
	return items, aliases
}

var categoryOrder = ordering.Accessor[*dto.Category]{
	ID:       func(c *dto.Category) string { return c.ID },
	Scope:    func(c *dto.Category) string { return c.ModuleID },
	Active:   func(c *dto.Category) bool { return dto.IsActive(c) },
	Ordre:    func(c *dto.Category) int { return int(c.Ordre) },
	SetOrdre: func(c *dto.Category, n int) { c.Ordre = dto.FlexInt(n) },
}

// CategoryOrder accès à l'ordre des catégories dans leur module
func CategoryOrder() ordering.Accessor[*dto.Category] { return categoryOrder }

func (p *Pipeline) categories(in []*dto.Category, modules []*dto.Module, moduleAliases map[string]string) ([]*dto.Category, map[string]string) {
	known := byID(modules, func(m *dto.Module) string { return m.ID })
	items := make([]*dto.Category, 0, len(in))
	for _, c := range compact(in) {
		c.Code, c.Libelle = strings.TrimSpace(c.Code), strings.TrimSpace(c.Libelle)
		c.ModuleID = alias(moduleAliases, strings.TrimSpace(c.ModuleID))
		if c.Code == "" {
			continue
		}
		if _, ok := known[c.ModuleID]; !ok {
			continue
		}
		c.ID = p.ensureID(strings.TrimSpace(c.ID))
		items = append(items, c)
	}
	items = uniqueIDs(items, func(c *dto.Category) string { return c.ID })
	items, aliases := lastWriteWins(items,
		func(c *dto.Category) string { return c.ModuleID + "|" + ci(c.Code) },
		func(c *dto.Category) string { return c.ID },
		func(first, last *dto.Category) {
			id, ordre := first.ID, first.Ordre
			fields := first.Fields
			*first = *last
			first.ID = id
			if first.Ordre <= 0 {
				first.Ordre = ordre
			}
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, c := range items {
		p.stamper.EnsureFields(c)
	}
	ordering.Resequence(items, categoryOrder)
	return items, aliases
}

var actOrder = ordering.Accessor[*dto.Act]{
	ID:       func(a *dto.Act) string { return a.ID },
	Scope:    func(a *dto.Act) string { return a.EffectiveCategoryID() },
	Active:   func(a *dto.Act) bool { return dto.IsActive(a) },
	Ordre:    func(a *dto.Act) int { return int(a.Ordre) },
	SetOrdre: func(a *dto.Act, n int) { a.Ordre = dto.FlexInt(n) },
}

// ActOrder accès à l'ordre des actes dans leur catégorie
func ActOrder() ordering.Accessor[*dto.Act] { return actOrder }

func (p *Pipeline) acts(in []*dto.Act, modules []*dto.Module, categories []*dto.Category, moduleAliases, categoryAliases map[string]string) []*dto.Act {
	mods := byID(modules, func(m *dto.Module) string { return m.ID })
	cats := byID(categories, func(c *dto.Category) string { return c.ID })
	items := make([]*dto.Act, 0, len(in))
	for _, a := range compact(in) {
		a.Code = strings.TrimSpace(a.Code)
		a.Libelle = strings.TrimSpace(a.Libelle)
		a.LibelleLong = strings.TrimSpace(a.LibelleLong)
		a.ModuleID = alias(moduleAliases, strings.TrimSpace(a.ModuleID))
		a.CategoryID = alias(categoryAliases, strings.TrimSpace(a.CategoryID))
		if dto.IsUngrouped(a.CategoryID) {
			a.CategoryID = ""
		}
		if a.Code == "" {
			continue
		}
		if a.CategoryID != "" {
			cat, ok := cats[a.CategoryID]
			if !ok {
				continue
			}
			if a.ModuleID == "" {
				a.ModuleID = cat.ModuleID
			}
			if cat.ModuleID != a.ModuleID {
				continue
			}
		}
		mod, ok := mods[a.ModuleID]
		if !ok {
			continue
		}
		a.Risk = mod.Risk
		if a.Risk == dto.RiskPrevoyance {
			a.AllowSurco = false
		}
		a.ID = p.ensureID(strings.TrimSpace(a.ID))
		items = append(items, a)
	}
	items = uniqueIDs(items, func(a *dto.Act) string { return a.ID })
	suffixDuplicates(items,
		func(a *dto.Act) string { return a.EffectiveCategoryID() },
		func(a *dto.Act) string { return a.Code },
		func(a *dto.Act, v string) { a.Code = v })
	for _, a := range items {
		p.stamper.EnsureFields(a)
	}
	ordering.Resequence(items, actOrder)
	return items
}

var levelSetOrder = ordering.Accessor[*dto.LevelSet]{
	ID:       func(s *dto.LevelSet) string { return s.ID },
	Active:   func(s *dto.LevelSet) bool { return dto.IsActive(s) },
	Ordre:    func(s *dto.LevelSet) int { return int(s.Ordre) },
	SetOrdre: func(s *dto.LevelSet, n int) { s.Ordre = dto.FlexInt(n) },
}

func (p *Pipeline) levelSets(in []*dto.LevelSet) ([]*dto.LevelSet, map[string]string) {
	items := make([]*dto.LevelSet, 0, len(in))
	for _, s := range compact(in) {
		s.Code, s.Libelle = strings.TrimSpace(s.Code), strings.TrimSpace(s.Libelle)
		if s.Code == "" {
			continue
		}
		s.ID = p.ensureID(strings.TrimSpace(s.ID))
		if s.IsEnabled == nil {
			enabled := dto.Flag(true)
			s.IsEnabled = &enabled
		}
		items = append(items, s)
	}
	items = uniqueIDs(items, func(s *dto.LevelSet) string { return s.ID })
	items, aliases := lastWriteWins(items,
		func(s *dto.LevelSet) string { return ci(s.Code) },
		func(s *dto.LevelSet) string { return s.ID },
		func(first, last *dto.LevelSet) {
			id, ordre := first.ID, first.Ordre
			fields := first.Fields
			*first = *last
			first.ID = id
			if first.Ordre <= 0 {
				first.Ordre = ordre
			}
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, s := range items {
		p.stamper.EnsureFields(s)
	}
	ordering.Resequence(items, levelSetOrder)
	return items, aliases
}

var levelOrder = ordering.Accessor[*dto.Level]{
	ID:       func(l *dto.Level) string { return l.ID },
	Scope:    func(l *dto.Level) string { return l.SetID },
	Active:   func(l *dto.Level) bool { return dto.IsActive(l) },
	Ordre:    func(l *dto.Level) int { return int(l.Ordre) },
	SetOrdre: func(l *dto.Level, n int) { l.Ordre = dto.FlexInt(n) },
}

func (p *Pipeline) levels(in []*dto.Level, sets []*dto.LevelSet, setAliases map[string]string) []*dto.Level {
	known := byID(sets, func(s *dto.LevelSet) string { return s.ID })
	items := make([]*dto.Level, 0, len(in))
	for _, l := range compact(in) {
		l.Code, l.Libelle = strings.TrimSpace(l.Code), strings.TrimSpace(l.Libelle)
		l.SetID = alias(setAliases, strings.TrimSpace(l.SetID))
		if l.Code == "" {
			continue
		}
		if _, ok := known[l.SetID]; !ok {
			continue
		}
		l.ID = p.ensureID(strings.TrimSpace(l.ID))
		if l.IsEnabled == nil {
			enabled := dto.Flag(true)
			l.IsEnabled = &enabled
		}
		items = append(items, l)
	}
	items = uniqueIDs(items, func(l *dto.Level) string { return l.ID })
	items, _ = lastWriteWins(items,
		func(l *dto.Level) string { return l.SetID + "|" + ci(l.Code) },
		func(l *dto.Level) string { return l.ID },
		func(first, last *dto.Level) {
			id, ordre := first.ID, first.Ordre
			fields := first.Fields
			*first = *last
			first.ID = id
			if first.Ordre <= 0 {
				first.Ordre = ordre
			}
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, l := range items {
		p.stamper.EnsureFields(l)
	}
	ordering.Resequence(items, levelOrder)
	return items
}

func (p *Pipeline) valueTypes(in []*dto.ValueType) []*dto.ValueType {
	items := make([]*dto.ValueType, 0, len(in))
	for _, vt := range compact(in) {
		vt.Code, vt.Libelle = strings.TrimSpace(vt.Code), strings.TrimSpace(vt.Libelle)
		if vt.Code == "" {
			continue
		}
		vt.ID = p.ensureID(strings.TrimSpace(vt.ID))
		vt.Champs = valueFields(vt.Champs)
		items = append(items, vt)
	}
	items = uniqueIDs(items, func(vt *dto.ValueType) string { return vt.ID })
	items, _ = lastWriteWins(items,
		func(vt *dto.ValueType) string { return ci(vt.Code) },
		func(vt *dto.ValueType) string { return vt.ID },
		func(first, last *dto.ValueType) {
			id := first.ID
			fields := first.Fields
			*first = *last
			first.ID = id
			keepIdentity(&fields, &last.Fields)
			first.Fields = fields
		})
	for _, vt := range items {
		p.stamper.EnsureFields(vt)
	}
	return items
}

func valueFields(in []dto.ValueField) []dto.ValueField {
	seen := map[string]bool{}
	out := []dto.ValueField{}
	for _, f := range in {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" || seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		f.Label = strings.TrimSpace(f.Label)
		f.Suffix = strings.TrimRight(f.Suffix, " \t")
		switch k := dto.FieldKind(ci(string(f.Kind))); k {
		case dto.FieldNumber, dto.FieldEnum, dto.FieldBoolean, dto.FieldText:
			f.Kind = k
		default:
			f.Kind = dto.FieldText
		}
		if len(f.Options) > 0 {
			f.Options = uniqStrings(f.Options, nil)
		} else {
			f.Options = nil
		}
		out = append(out, f)
	}
	return out
}
