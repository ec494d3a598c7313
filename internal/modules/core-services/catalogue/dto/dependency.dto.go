package dto

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DependencyMode discriminant de la dépendance
type DependencyMode string

const (
	ModeCopy    DependencyMode = "copy"
	ModePercent DependencyMode = "percent"
	ModeFormula DependencyMode = "formula"
)

// Dependency règle de dérivation d'une cellule: CopyDependency, PercentDependency ou FormulaDependency
type Dependency interface {
	Mode() DependencyMode
	dependency()
}

// CellRef référence d'une cellule source dans le même groupe.
// LevelID vide = niveau de la cellule dépendante.
type CellRef struct {
	ActID   string `json:"actId"`
	LevelID string `json:"levelId,omitempty"`
	Kind    Kind   `json:"kind"`
}

// CopyDependency reprend la cellule source telle quelle
type CopyDependency struct {
	Source CellRef
}

// PercentDependency applique un pourcentage au contenu numérique de la source
type PercentDependency struct {
	Source  CellRef
	Percent float64
}

// Operator opérateur de formule
type Operator string

const (
	OpAdd Operator = "add"
	OpSub Operator = "sub"
	OpMul Operator = "mul"
	OpDiv Operator = "div"
)

// ParseOperator normalise un opérateur
func ParseOperator(s string) (Operator, bool) {
	switch op := Operator(strings.ToLower(strings.TrimSpace(s))); op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return op, true
	}
	return "", false
}

// Operand opérande de formule: référence de cellule, ou littéral quand ActID est vide
type Operand struct {
	Source CellRef
	Value  *float64
	Min    *float64
	Max    *float64
	Suffix string
}

// IsLiteral vrai pour un opérande constant
func (o Operand) IsLiteral() bool { return o.Source.ActID == "" }

// FormulaDependency replie les opérandes de gauche à droite
type FormulaDependency struct {
	Operator Operator
	Operands []Operand
}

func (CopyDependency) Mode() DependencyMode    { return ModeCopy }
func (PercentDependency) Mode() DependencyMode { return ModePercent }
func (FormulaDependency) Mode() DependencyMode { return ModeFormula }

func (CopyDependency) dependency()    {}
func (PercentDependency) dependency() {}
func (FormulaDependency) dependency() {}

// CloneDependency copie profonde
func CloneDependency(d Dependency) Dependency {
	switch dep := d.(type) {
	case FormulaDependency:
		ops := make([]Operand, len(dep.Operands))
		for i, op := range dep.Operands {
			ops[i] = Operand{
				Source: op.Source,
				Value:  cloneFloat(op.Value),
				Min:    cloneFloat(op.Min),
				Max:    cloneFloat(op.Max),
				Suffix: op.Suffix,
			}
		}
		return FormulaDependency{Operator: dep.Operator, Operands: ops}
	default:
		return d
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

type operandWire struct {
	ActID   string  `json:"actId,omitempty"`
	LevelID string  `json:"levelId,omitempty"`
	Kind    Kind    `json:"kind,omitempty"`
	Value   *Number `json:"value,omitempty"`
	Min     *Number `json:"min,omitempty"`
	Max     *Number `json:"max,omitempty"`
	Suffix  string  `json:"suffix,omitempty"`
}

type dependencyWire struct {
	Mode     DependencyMode `json:"mode"`
	ActID    string         `json:"actId,omitempty"`
	LevelID  string         `json:"levelId,omitempty"`
	Kind     Kind           `json:"kind,omitempty"`
	Percent  *Number        `json:"percent,omitempty"`
	Operator Operator       `json:"operator,omitempty"`
	Operands []operandWire  `json:"operands,omitempty"`
}

func toWire(d Dependency) *dependencyWire {
	switch dep := d.(type) {
	case CopyDependency:
		return &dependencyWire{Mode: ModeCopy, ActID: dep.Source.ActID, LevelID: dep.Source.LevelID, Kind: dep.Source.Kind}
	case PercentDependency:
		p := Number(dep.Percent)
		return &dependencyWire{Mode: ModePercent, ActID: dep.Source.ActID, LevelID: dep.Source.LevelID, Kind: dep.Source.Kind, Percent: &p}
	case FormulaDependency:
		w := &dependencyWire{Mode: ModeFormula, Operator: dep.Operator}
		for _, op := range dep.Operands {
			w.Operands = append(w.Operands, operandWire{
				ActID:   op.Source.ActID,
				LevelID: op.Source.LevelID,
				Kind:    op.Source.Kind,
				Value:   NumberPtr(op.Value),
				Min:     NumberPtr(op.Min),
				Max:     NumberPtr(op.Max),
				Suffix:  op.Suffix,
			})
		}
		return w
	}
	return nil
}

// EncodeDependency forme JSON discriminée par "mode"
func EncodeDependency(d Dependency) ([]byte, error) {
	return json.Marshal(toWire(d))
}

// DecodeDependency lit la forme discriminée; un mode inconnu donne nil sans erreur
func DecodeDependency(b []byte) (Dependency, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var w dependencyWire
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	ref := CellRef{
		ActID:   strings.TrimSpace(w.ActID),
		LevelID: strings.TrimSpace(w.LevelID),
		Kind:    w.Kind,
	}
	switch DependencyMode(strings.ToLower(string(w.Mode))) {
	case ModeCopy:
		return CopyDependency{Source: ref}, nil
	case ModePercent:
		if w.Percent == nil {
			return nil, nil
		}
		return PercentDependency{Source: ref, Percent: float64(*w.Percent)}, nil
	case ModeFormula:
		f := FormulaDependency{Operator: w.Operator}
		for _, op := range w.Operands {
			f.Operands = append(f.Operands, Operand{
				Source: CellRef{
					ActID:   strings.TrimSpace(op.ActID),
					LevelID: strings.TrimSpace(op.LevelID),
					Kind:    op.Kind,
				},
				Value:  op.Value.Float(),
				Min:    op.Min.Float(),
				Max:    op.Max.Float(),
				Suffix: strings.TrimSpace(op.Suffix),
			})
		}
		return f, nil
	}
	return nil, nil
}
