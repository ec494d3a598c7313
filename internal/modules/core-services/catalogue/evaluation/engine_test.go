package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/valuetypes"
)

func f(v float64) *float64 { return &v }

func cell(actID string, kind dto.Kind, value string) *dto.CellValue {
	return &dto.CellValue{GroupID: "g1", ActID: actID, LevelID: "n1", Kind: kind, Value: value}
}

var acts = []*dto.Act{
	{ID: "a1", Libelle: "Consultation généraliste"},
	{ID: "a2", Libelle: "Consultation spécialiste"},
	{ID: "a3", Libelle: "Imagerie"},
}

func TestPercentScalesSourceAndKeepsSuffix(t *testing.T) {
	src := cell("a1", dto.KindBase, "200 €")
	dep := cell("a2", dto.KindBase, "")
	dep.DependsOn = dto.PercentDependency{Source: dto.CellRef{ActID: "a1", Kind: dto.KindBase}, Percent: 50}

	got := NewEngine(nil, acts, []*dto.CellValue{src, dep}).Evaluate(dep)

	assert.Equal(t, "100€", got.Value)
	assert.True(t, got.Resolved)
	assert.Equal(t, "↪ dépend de Consultation généraliste", got.Note)
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 100.0, got.Quantity.Value)
}

func TestPercentPrefersTypedFieldsAndScalesHints(t *testing.T) {
	src := cell("a1", dto.KindBase, "")
	src.Type = "montant"
	src.Data = map[string]interface{}{"amount": 80.0, "min": 20.0, "max": 120.0}
	dep := cell("a2", dto.KindBase, "")
	dep.DependsOn = dto.PercentDependency{Source: dto.CellRef{ActID: "a1", Kind: dto.KindBase}, Percent: 25}

	got := NewEngine(valuetypes.NewRegistry(nil), acts, []*dto.CellValue{src, dep}).Evaluate(dep)

	assert.Equal(t, "20€", got.Value)
	require.NotNil(t, got.Quantity.Min)
	assert.Equal(t, 5.0, *got.Quantity.Min)
	assert.Equal(t, 30.0, *got.Quantity.Max)
}

func TestPercentBlankWhenSourceMissingOrNotNumeric(t *testing.T) {
	text := cell("a1", dto.KindBase, "Frais réels")
	dep := cell("a2", dto.KindBase, "ancienne saisie")
	dep.DependsOn = dto.PercentDependency{Source: dto.CellRef{ActID: "a1", Kind: dto.KindBase}, Percent: 50}
	orphan := cell("a3", dto.KindBase, "")
	orphan.DependsOn = dto.PercentDependency{Source: dto.CellRef{ActID: "zz", Kind: dto.KindBase}, Percent: 50}

	e := NewEngine(nil, acts, []*dto.CellValue{text, dep, orphan})

	for _, c := range []*dto.CellValue{dep, orphan} {
		got := e.Evaluate(c)
		assert.Empty(t, got.Value)
		assert.False(t, got.Resolved)
	}
}

func TestFormulaLiteralOperands(t *testing.T) {
	dep := cell("a1", dto.KindBase, "")
	dep.DependsOn = dto.FormulaDependency{Operator: dto.OpSub, Operands: []dto.Operand{
		{Value: f(100), Suffix: "%"},
		{Value: f(25)},
	}}

	got := NewEngine(nil, acts, []*dto.CellValue{dep}).Evaluate(dep)

	assert.Equal(t, "75%", got.Value)
	assert.Equal(t, 75.0, got.Quantity.Value)
	assert.Equal(t, "100% − 25", got.Expression)
}

func TestFormulaWithoutSuffix(t *testing.T) {
	dep := cell("a1", dto.KindBase, "")
	dep.DependsOn = dto.FormulaDependency{Operator: dto.OpSub, Operands: []dto.Operand{{Value: f(100)}, {Value: f(25)}}}

	assert.Equal(t, "75", NewEngine(nil, acts, nil).Evaluate(dep).Value)
}

func TestFormulaMixesCellsAndFoldsHints(t *testing.T) {
	a1 := cell("a1", dto.KindBase, "")
	a1.Data = map[string]interface{}{"montant": 30.0, "min": 10.0}
	a2 := cell("a2", dto.KindSurco, "15 €")
	dep := cell("a3", dto.KindBase, "")
	dep.DependsOn = dto.FormulaDependency{Operator: dto.OpAdd, Operands: []dto.Operand{
		{Source: dto.CellRef{ActID: "a1", Kind: dto.KindBase}},
		{Source: dto.CellRef{ActID: "a2", Kind: dto.KindSurco}},
		{Value: f(5)},
	}}

	got := NewEngine(nil, acts, []*dto.CellValue{a1, a2, dep}).Evaluate(dep)

	assert.Equal(t, "50€", got.Value)
	require.NotNil(t, got.Quantity.Min)
	assert.Equal(t, 30.0, *got.Quantity.Min)
	assert.Nil(t, got.Quantity.Max)
}

func TestFormulaShortCircuits(t *testing.T) {
	tests := []struct {
		name string
		dep  dto.FormulaDependency
	}{
		{"division par zéro", dto.FormulaDependency{Operator: dto.OpDiv, Operands: []dto.Operand{{Value: f(10)}, {Value: f(0)}}}},
		{"opérande nul", dto.FormulaDependency{Operator: dto.OpAdd, Operands: []dto.Operand{{Value: f(10)}, {}}}},
		{"cellule absente", dto.FormulaDependency{Operator: dto.OpMul, Operands: []dto.Operand{{Value: f(10)}, {Source: dto.CellRef{ActID: "zz", Kind: dto.KindBase}}}}},
		{"sans opérande", dto.FormulaDependency{Operator: dto.OpAdd}},
		{"opérateur inconnu", dto.FormulaDependency{Operator: "pow", Operands: []dto.Operand{{Value: f(2)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cell("a1", dto.KindBase, "saisie")
			c.DependsOn = tt.dep
			got := NewEngine(nil, acts, nil).Evaluate(c)
			assert.Empty(t, got.Value)
			assert.False(t, got.Resolved)
			assert.Nil(t, got.Quantity)
		})
	}
}

func TestCopyClonesSourceAndFallsBackToOwnValue(t *testing.T) {
	src := cell("a1", dto.KindBase, "Frais réels")
	src.Expression = "FR"
	src.Data = map[string]interface{}{"actif": true}
	copyFound := cell("a2", dto.KindBase, "")
	copyFound.DependsOn = dto.CopyDependency{Source: dto.CellRef{ActID: "a1", Kind: dto.KindBase}}
	copyMissing := cell("a3", dto.KindBase, "90 €")
	copyMissing.DependsOn = dto.CopyDependency{Source: dto.CellRef{ActID: "a1", LevelID: "n9", Kind: dto.KindBase}}

	e := NewEngine(nil, acts, []*dto.CellValue{src, copyFound, copyMissing})

	got := e.Evaluate(copyFound)
	assert.Equal(t, "Frais réels", got.Value)
	assert.Equal(t, "FR", got.Expression)
	assert.Equal(t, map[string]interface{}{"actif": true}, got.Data)
	assert.Contains(t, got.Note, "Consultation généraliste")

	got.Data["actif"] = false
	assert.Equal(t, true, src.Data["actif"])

	fallback := e.Evaluate(copyMissing)
	assert.Equal(t, "90 €", fallback.Value)
	assert.True(t, fallback.Resolved)
}

func TestCopyFollowsChains(t *testing.T) {
	base := cell("a1", dto.KindBase, "40 €")
	mid := cell("a2", dto.KindBase, "")
	mid.DependsOn = dto.PercentDependency{Source: dto.CellRef{ActID: "a1", Kind: dto.KindBase}, Percent: 50}
	top := cell("a3", dto.KindBase, "")
	top.DependsOn = dto.CopyDependency{Source: dto.CellRef{ActID: "a2", Kind: dto.KindBase}}

	got := NewEngine(nil, acts, []*dto.CellValue{base, mid, top}).Evaluate(top)
	assert.Equal(t, "20€", got.Value)
}

func TestCyclesEvaluateBlank(t *testing.T) {
	a := cell("a1", dto.KindBase, "10 €")
	b := cell("a2", dto.KindBase, "20 €")
	a.DependsOn = dto.CopyDependency{Source: dto.CellRef{ActID: "a2", Kind: dto.KindBase}}
	b.DependsOn = dto.PercentDependency{Source: dto.CellRef{ActID: "a1", Kind: dto.KindBase}, Percent: 10}
	self := cell("a3", dto.KindBase, "5")
	self.DependsOn = dto.FormulaDependency{Operator: dto.OpAdd, Operands: []dto.Operand{
		{Value: f(1)},
		{Source: dto.CellRef{ActID: "a3", Kind: dto.KindBase}},
	}}

	e := NewEngine(nil, acts, []*dto.CellValue{a, b, self})
	for _, c := range []*dto.CellValue{a, b, self} {
		got := e.Evaluate(c)
		assert.True(t, got.Cyclic, c.ActID)
		assert.Empty(t, got.Value, c.ActID)
	}
}

func TestDepthBound(t *testing.T) {
	cells := []*dto.CellValue{cell("a0", dto.KindBase, "1")}
	for i := 1; i <= 5; i++ {
		c := cell("a"+string(rune('0'+i)), dto.KindBase, "")
		c.DependsOn = dto.CopyDependency{Source: dto.CellRef{ActID: "a" + string(rune('0'+i-1)), Kind: dto.KindBase}}
		cells = append(cells, c)
	}
	last := cells[len(cells)-1]

	assert.Equal(t, "1", NewEngine(nil, nil, cells).Evaluate(last).Value)
	assert.True(t, NewEngine(nil, nil, cells, WithMaxDepth(3)).Evaluate(last).Cyclic)
}

func TestEvaluateIsPure(t *testing.T) {
	src := cell("a1", dto.KindBase, "200 €")
	dep := cell("a2", dto.KindBase, "")
	dep.DependsOn = dto.PercentDependency{Source: dto.CellRef{ActID: "a1", Kind: dto.KindBase}, Percent: 50}
	e := NewEngine(nil, acts, []*dto.CellValue{src, dep})

	first := e.Evaluate(dep)
	second := e.Evaluate(dep)
	assert.Equal(t, first, second)
	assert.Empty(t, dep.Value)
}
