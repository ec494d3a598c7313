package evaluation

import (
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/valuetypes"
)

var operatorSymbols = map[dto.Operator]string{
	dto.OpAdd: "+",
	dto.OpSub: "−",
	dto.OpMul: "×",
	dto.OpDiv: "÷",
}

// apply opération binaire; ok=false pour une division par zéro ou un opérateur inconnu
func apply(op dto.Operator, a, b float64) (float64, bool) {
	switch op {
	case dto.OpAdd:
		return a + b, true
	case dto.OpSub:
		return a - b, true
	case dto.OpMul:
		return a * b, true
	case dto.OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}
	return 0, false
}

type triple struct {
	value    float64
	min, max *float64
	suffix   string
}

func (e *Engine) operand(cell *dto.CellValue, op dto.Operand, visiting map[dto.CellKey]bool, depth int) (*triple, bool) {
	if op.IsLiteral() {
		if op.Value == nil {
			return nil, false
		}
		return &triple{value: *op.Value, min: op.Min, max: op.Max, suffix: op.Suffix}, false
	}
	q, cyclic := e.quantityOf(cell, op.Source, visiting, depth)
	if cyclic || q == nil {
		return nil, cyclic
	}
	t := &triple{value: q.Value, min: q.Min, max: q.Max, suffix: q.Suffix}
	if op.Suffix != "" {
		t.suffix = op.Suffix
	}
	return t, false
}

// foldHint replie une borne; une opérande sans borne contribue par sa valeur.
// nil si aucune opérande ne porte la borne ou si une division par zéro survient.
func foldHint(op dto.Operator, terms []*triple, pick func(*triple) *float64) *float64 {
	present := false
	for _, t := range terms {
		if pick(t) != nil {
			present = true
			break
		}
	}
	if !present {
		return nil
	}
	at := func(t *triple) float64 {
		if v := pick(t); v != nil {
			return *v
		}
		return t.value
	}
	acc := at(terms[0])
	for _, t := range terms[1:] {
		v, ok := apply(op, acc, at(t))
		if !ok {
			return nil
		}
		acc = v
	}
	return &acc
}

func (e *Engine) formula(cell *dto.CellValue, dep dto.FormulaDependency, visiting map[dto.CellKey]bool, depth int) Result {
	blank := Result{Derived: true, Expression: e.describe(dep)}
	if len(dep.Operands) == 0 {
		return blank
	}
	if _, ok := operatorSymbols[dep.Operator]; !ok {
		return blank
	}
	terms := make([]*triple, 0, len(dep.Operands))
	for _, op := range dep.Operands {
		t, cyclic := e.operand(cell, op, visiting, depth)
		if cyclic {
			return Result{Derived: true, Cyclic: true, Note: noteCircular, Expression: blank.Expression}
		}
		if t == nil {
			return blank
		}
		terms = append(terms, t)
	}

	value := terms[0].value
	for _, t := range terms[1:] {
		v, ok := apply(dep.Operator, value, t.value)
		if !ok {
			return blank
		}
		value = v
	}
	q := valuetypes.Quantity{
		Value: value,
		Min:   foldHint(dep.Operator, terms, func(t *triple) *float64 { return t.min }),
		Max:   foldHint(dep.Operator, terms, func(t *triple) *float64 { return t.max }),
	}
	for _, t := range terms {
		if t.suffix != "" {
			q.Suffix = t.suffix
			break
		}
	}
	blank.Value = q.Display()
	blank.Quantity = &q
	blank.Data = quantityData(q)
	blank.Resolved = true
	return blank
}

// describe expression lisible: "Consultation − 25"
func (e *Engine) describe(dep dto.FormulaDependency) string {
	symbol, ok := operatorSymbols[dep.Operator]
	if !ok {
		symbol = "?"
	}
	parts := make([]string, 0, len(dep.Operands))
	for _, op := range dep.Operands {
		switch {
		case !op.IsLiteral():
			parts = append(parts, e.actLabel(op.Source.ActID))
		case op.Value != nil:
			parts = append(parts, valuetypes.FormatNumber(*op.Value)+op.Suffix)
		default:
			parts = append(parts, "∅")
		}
	}
	return strings.Join(parts, " "+symbol+" ")
}
