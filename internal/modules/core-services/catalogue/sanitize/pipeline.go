package sanitize

import (
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/idgen"
)

// Pipeline assainit les collections candidates avant qu'elles ne deviennent l'état validé.
// Chaque passe est idempotente: l'appliquer deux fois donne le résultat d'une seule.
type Pipeline struct {
	stamper *audit.Stamper
	ids     idgen.Generator
}

// NewPipeline provider Fx
func NewPipeline(stamper *audit.Stamper, ids idgen.Generator) *Pipeline {
	return &Pipeline{stamper: stamper, ids: ids}
}

// Referentiels collections du catalogue de référence
type Referentiels struct {
	Offers       []*dto.Offer        `json:"offers"`
	CatPersonnel []*dto.CatPersonnel `json:"catPersonnel"`
	Modules      []*dto.Module       `json:"modules"`
	Categories   []*dto.Category     `json:"categories"`
	Acts         []*dto.Act          `json:"acts"`
	LevelSets    []*dto.LevelSet     `json:"levelSets"`
	Levels       []*dto.Level        `json:"levels"`
	ValueTypes   []*dto.ValueType    `json:"valueTypes"`
}

// Scope collections rattachées à un catalogue
type Scope struct {
	Modules []*dto.CatalogueModule `json:"modules"`
	Groups  []*dto.Group           `json:"groups"`
	Members []*dto.GroupMember     `json:"members"`
	Cells   []*dto.CellValue       `json:"cells"`
}

func (p *Pipeline) ensureID(id string) string {
	if id == "" {
		return p.ids.NewID()
	}
	return id
}

// Referentiels assainit le référentiel complet dans l'ordre des dépendances
func (p *Pipeline) Referentiels(in Referentiels) Referentiels {
	out := Referentiels{
		Offers:       p.offers(in.Offers),
		CatPersonnel: p.catPersonnel(in.CatPersonnel),
	}
	var moduleAliases, categoryAliases, setAliases map[string]string
	out.Modules, moduleAliases = p.modules(in.Modules)
	out.Categories, categoryAliases = p.categories(in.Categories, out.Modules, moduleAliases)
	out.Acts = p.acts(in.Acts, out.Modules, out.Categories, moduleAliases, categoryAliases)
	out.LevelSets, setAliases = p.levelSets(in.LevelSets)
	out.Levels = p.levels(in.Levels, out.LevelSets, setAliases)
	out.ValueTypes = p.valueTypes(in.ValueTypes)
	return out
}

// Scope assainit les collections d'un catalogue; un catalogue absent ou supprimé vide tout
func (p *Pipeline) Scope(idx *Index, catalogue *dto.Catalogue, in Scope) Scope {
	if catalogue == nil || !dto.IsActive(catalogue) {
		return Scope{
			Modules: []*dto.CatalogueModule{},
			Groups:  []*dto.Group{},
			Members: []*dto.GroupMember{},
			Cells:   []*dto.CellValue{},
		}
	}
	out := Scope{}
	out.Modules = p.catalogueModules(idx, catalogue, in.Modules)
	out.Groups = p.groups(idx, catalogue, out.Modules, in.Groups)
	out.Members = p.members(idx, out.Modules, out.Groups, in.Members)
	out.Cells = p.cells(idx, out.Members, in.Cells)
	p.finalizeGroups(idx, out.Groups, out.Members)
	return out
}
