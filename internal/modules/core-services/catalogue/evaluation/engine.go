package evaluation

import (
	"fmt"
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/valuetypes"
)

// DefaultMaxDepth profondeur maximale d'une chaîne de dépendances
const DefaultMaxDepth = 16

const (
	notePrefix   = "↪ dépend de "
	noteCircular = "↺ dépendance circulaire"
)

// Result valeur affichée d'une cellule, dérivée et jamais persistée
type Result struct {
	Value      string                 `json:"value"`
	Expression string                 `json:"expression,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Note       string                 `json:"note,omitempty"`
	Quantity   *valuetypes.Quantity   `json:"quantity,omitempty"`
	Derived    bool                   `json:"derived"`
	Resolved   bool                   `json:"resolved"`
	Cyclic     bool                   `json:"cyclic,omitempty"`
}

// Engine évalue les cellules d'un état figé; sans effet de bord, réutilisable
type Engine struct {
	registry *valuetypes.Registry
	acts     map[string]*dto.Act
	cells    map[dto.CellKey]*dto.CellValue
	maxDepth int
}

// Option réglage de l'Engine
type Option func(*Engine)

// WithMaxDepth borne la profondeur de récursion
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// NewEngine indexe les actes et cellules fournis
func NewEngine(registry *valuetypes.Registry, acts []*dto.Act, cells []*dto.CellValue, opts ...Option) *Engine {
	if registry == nil {
		registry = valuetypes.NewRegistry(nil)
	}
	e := &Engine{
		registry: registry,
		acts:     make(map[string]*dto.Act, len(acts)),
		cells:    make(map[dto.CellKey]*dto.CellValue, len(cells)),
		maxDepth: DefaultMaxDepth,
	}
	for _, a := range acts {
		e.acts[a.ID] = a
	}
	for _, c := range cells {
		if dto.IsActive(c) {
			e.cells[c.Key()] = c
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lookup cellule indexée par clé
func (e *Engine) Lookup(key dto.CellKey) (*dto.CellValue, bool) {
	c, ok := e.cells[key]
	return c, ok
}

// Evaluate valeur affichée d'une cellule
func (e *Engine) Evaluate(cell *dto.CellValue) Result {
	return e.evaluate(cell, map[dto.CellKey]bool{}, 0)
}

// EvaluateKey évalue une cellule indexée; résultat vide si elle n'existe pas
func (e *Engine) EvaluateKey(key dto.CellKey) Result {
	c, ok := e.cells[key]
	if !ok {
		return Result{}
	}
	return e.Evaluate(c)
}

func (e *Engine) evaluate(cell *dto.CellValue, visiting map[dto.CellKey]bool, depth int) Result {
	key := cell.Key()
	if visiting[key] || depth > e.maxDepth {
		return Result{Derived: true, Cyclic: true, Note: noteCircular}
	}
	if cell.DependsOn == nil {
		return e.own(cell)
	}
	visiting[key] = true
	defer delete(visiting, key)

	switch dep := cell.DependsOn.(type) {
	case dto.CopyDependency:
		return e.copy(cell, dep, visiting, depth)
	case dto.PercentDependency:
		return e.percent(cell, dep, visiting, depth)
	case dto.FormulaDependency:
		return e.formula(cell, dep, visiting, depth)
	default:
		return e.own(cell)
	}
}

// own valeur saisie de la cellule, régénérée depuis data si le texte manque
func (e *Engine) own(cell *dto.CellValue) Result {
	def := e.registry.Lookup(cell.Type)
	value := cell.Value
	if strings.TrimSpace(value) == "" {
		value = valuetypes.Render(def, cell.Data)
	}
	r := Result{
		Value:      value,
		Expression: cell.Expression,
		Data:       cloneData(cell.Data),
		Resolved:   value != "",
	}
	if q, ok := valuetypes.Extract(def, cell.Data, value); ok {
		r.Quantity = &q
	}
	return r
}

func (e *Engine) source(cell *dto.CellValue, ref dto.CellRef) (*dto.CellValue, bool) {
	key := dto.CellKey{
		GroupID: cell.GroupID,
		ActID:   ref.ActID,
		LevelID: ref.LevelID,
		Kind:    ref.Kind,
	}
	if key.LevelID == "" {
		key.LevelID = cell.LevelID
	}
	if key.Kind == "" {
		key.Kind = cell.Kind
	}
	src, ok := e.cells[key]
	return src, ok
}

func (e *Engine) actLabel(actID string) string {
	if a, ok := e.acts[actID]; ok && a.Libelle != "" {
		return a.Libelle
	}
	return actID
}

func (e *Engine) copy(cell *dto.CellValue, dep dto.CopyDependency, visiting map[dto.CellKey]bool, depth int) Result {
	src, ok := e.source(cell, dep.Source)
	if !ok {
		r := e.own(cell)
		r.Derived = true
		return r
	}
	res := e.evaluate(src, visiting, depth+1)
	if res.Cyclic {
		return res
	}
	res.Derived = true
	res.Note = notePrefix + e.actLabel(dep.Source.ActID)
	return res
}

func (e *Engine) quantityOf(cell *dto.CellValue, ref dto.CellRef, visiting map[dto.CellKey]bool, depth int) (*valuetypes.Quantity, bool) {
	src, ok := e.source(cell, ref)
	if !ok {
		return nil, false
	}
	res := e.evaluate(src, visiting, depth+1)
	if res.Cyclic {
		return nil, true
	}
	return res.Quantity, false
}

func (e *Engine) percent(cell *dto.CellValue, dep dto.PercentDependency, visiting map[dto.CellKey]bool, depth int) Result {
	q, cyclic := e.quantityOf(cell, dep.Source, visiting, depth)
	if cyclic {
		return Result{Derived: true, Cyclic: true, Note: noteCircular}
	}
	label := e.actLabel(dep.Source.ActID)
	blank := Result{
		Derived:    true,
		Expression: fmt.Sprintf("%s%% de %s", valuetypes.FormatNumber(dep.Percent), label),
		Note:       notePrefix + label,
	}
	if q == nil {
		return blank
	}
	ratio := dep.Percent / 100
	out := valuetypes.Quantity{
		Value:  q.Value * ratio,
		Min:    scale(q.Min, ratio),
		Max:    scale(q.Max, ratio),
		Suffix: q.Suffix,
	}
	blank.Value = out.Display()
	blank.Quantity = &out
	blank.Data = quantityData(out)
	blank.Resolved = true
	return blank
}

func scale(v *float64, ratio float64) *float64 {
	if v == nil {
		return nil
	}
	x := *v * ratio
	return &x
}

func quantityData(q valuetypes.Quantity) map[string]interface{} {
	data := map[string]interface{}{"value": q.Value}
	if q.Min != nil {
		data["min"] = *q.Min
	}
	if q.Max != nil {
		data["max"] = *q.Max
	}
	if q.Suffix != "" {
		data["suffix"] = q.Suffix
	}
	return data
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
