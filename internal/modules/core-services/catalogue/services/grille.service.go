package services

import (
	"context"
	"sort"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/evaluation"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/labels"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/ordering"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
)

// UngroupedLabel libellé de la catégorie synthétique
const UngroupedLabel = "Sans catégorie"

// Column colonne de la matrice
type Column struct {
	LevelID string   `json:"levelId"`
	SetID   string   `json:"setId"`
	Libelle string   `json:"libelle"`
	Kind    dto.Kind `json:"kind"`
}

// GrilleAct ligne de la matrice
type GrilleAct struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Libelle     string `json:"libelle"`
	LibelleLong string `json:"libelleLong,omitempty"`
	AllowSurco  bool   `json:"allowSurco"`
}

// GrilleCategory catégorie visible avec ses compartiments et ses actes
type GrilleCategory struct {
	ID            string            `json:"id"`
	Libelle       string            `json:"libelle"`
	SelectionType dto.SelectionType `json:"selectionType"`
	Buckets       []labels.Bucket   `json:"buckets"`
	Acts          []GrilleAct       `json:"acts"`
}

// GrilleCell valeur affichée d'une cellule
type GrilleCell struct {
	Key dto.CellKey `json:"key"`
	evaluation.Result
}

// Grille vue de lecture d'un groupe: catégories, colonnes et valeurs évaluées
type Grille struct {
	Catalogue  *dto.Catalogue   `json:"catalogue"`
	Group      *dto.Group       `json:"group"`
	Categories []GrilleCategory `json:"categories"`
	Columns    []Column         `json:"columns"`
	Cells      []GrilleCell     `json:"cells"`
}

// GrilleService construit la matrice affichée d'un groupe
type GrilleService struct {
	core *Core
}

func NewGrilleService(core *Core) *GrilleService {
	return &GrilleService{core: core}
}

// Grille matrice d'un groupe; les valeurs dépendantes sont recalculées à chaque lecture
func (s *GrilleService) Grille(ctx context.Context, catalogueID, groupID string) (*Grille, error) {
	e, err := s.core.readScope(ctx, catalogueID)
	if err != nil {
		return nil, err
	}
	g, err := e.group(groupID)
	if err != nil {
		return nil, err
	}
	idx := e.snap.Index

	members := e.members(groupID)
	row := map[string]int{}
	byCategory := map[string][]string{}
	for i, m := range members {
		act, ok := idx.Acts[m.ActID]
		if !ok {
			continue
		}
		row[m.ActID] = i
		byCategory[act.EffectiveCategoryID()] = append(byCategory[act.EffectiveCategoryID()], m.ActID)
	}

	out := &Grille{Catalogue: e.catalogue, Group: g, Categories: []GrilleCategory{}, Cells: []GrilleCell{}}
	for _, catID := range ordering.NormalizeCatOrder(g.CatOrder, idx.ModuleCategories(g.ModuleID)) {
		actIDs := byCategory[catID]
		if len(actIDs) == 0 {
			continue
		}
		cat := GrilleCategory{
			ID:            catID,
			Libelle:       categoryLabel(idx, catID),
			SelectionType: g.SelectionType,
			Buckets:       labels.Buckets(g.CategoryGroups[catID], actIDs),
		}
		if t, ok := g.CategorySelectionTypes[catID]; ok {
			cat.SelectionType = t
		}
		for _, id := range actIDs {
			a := idx.Acts[id]
			cat.Acts = append(cat.Acts, GrilleAct{
				ID:          a.ID,
				Code:        a.Code,
				Libelle:     a.Libelle,
				LibelleLong: a.LibelleLong,
				AllowSurco:  bool(a.AllowSurco),
			})
		}
		out.Categories = append(out.Categories, cat)
	}

	var groupCells []*dto.CellValue
	for _, c := range dto.ActiveOnly(e.scope.Cells) {
		if c.GroupID == groupID {
			groupCells = append(groupCells, c)
		}
	}
	out.Columns = columns(idx, g, groupCells)

	col := map[string]int{}
	for i, c := range out.Columns {
		col[c.LevelID+"|"+string(c.Kind)] = i
	}
	engine := evaluation.NewEngine(idx.ValueTypes, e.snap.Referentiels.Acts, e.scope.Cells,
		evaluation.WithMaxDepth(s.core.settings.MaxDepth))
	for _, c := range groupCells {
		if _, ok := row[c.ActID]; !ok {
			continue
		}
		if _, ok := col[c.LevelID+"|"+string(c.Kind)]; !ok {
			continue
		}
		out.Cells = append(out.Cells, GrilleCell{Key: c.Key(), Result: engine.Evaluate(c)})
	}
	sort.SliceStable(out.Cells, func(i, j int) bool {
		a, b := out.Cells[i].Key, out.Cells[j].Key
		if row[a.ActID] != row[b.ActID] {
			return row[a.ActID] < row[b.ActID]
		}
		return col[a.LevelID+"|"+string(a.Kind)] < col[b.LevelID+"|"+string(b.Kind)]
	})
	return out, nil
}

func categoryLabel(idx *sanitize.Index, catID string) string {
	if c, ok := idx.Categories[catID]; ok {
		return c.Libelle
	}
	return UngroupedLabel
}

// levelsOf niveaux actifs d'un jeu dans l'ordre
func levelsOf(idx *sanitize.Index, setID string) []*dto.Level {
	if setID == "" {
		return nil
	}
	var out []*dto.Level
	for _, l := range idx.Levels {
		if l.SetID == setID && dto.Enabled(l.IsEnabled) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ordre != out[j].Ordre {
			return out[i].Ordre < out[j].Ordre
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// columns niveaux du jeu de base, puis du jeu surco, puis les options saisies sur un niveau de base.
// Les valeurs des niveaux hors des jeux choisis restent stockées mais ne sont pas affichées.
func columns(idx *sanitize.Index, g *dto.Group, cells []*dto.CellValue) []Column {
	out := []Column{}
	base := levelsOf(idx, g.NiveauSetBaseID)
	basePos := map[string]int{}
	for i, l := range base {
		basePos[l.ID] = i
		out = append(out, Column{LevelID: l.ID, SetID: l.SetID, Libelle: l.Libelle, Kind: dto.KindBase})
	}
	for _, l := range levelsOf(idx, g.NiveauSetSurcoID) {
		out = append(out, Column{LevelID: l.ID, SetID: l.SetID, Libelle: l.Libelle, Kind: dto.KindSurco})
	}

	seen := map[string]bool{}
	var options []Column
	for _, c := range cells {
		if _, isOption := c.Kind.OptionLevelID(); !isOption {
			continue
		}
		lvl, ok := idx.Levels[c.LevelID]
		if _, visible := basePos[c.LevelID]; !ok || !visible {
			continue
		}
		k := c.LevelID + "|" + string(c.Kind)
		if seen[k] {
			continue
		}
		seen[k] = true
		options = append(options, Column{LevelID: lvl.ID, SetID: lvl.SetID, Libelle: lvl.Libelle, Kind: c.Kind})
	}
	sort.SliceStable(options, func(i, j int) bool {
		if basePos[options[i].LevelID] != basePos[options[j].LevelID] {
			return basePos[options[i].LevelID] < basePos[options[j].LevelID]
		}
		return options[i].Kind < options[j].Kind
	})
	return append(out, options...)
}
