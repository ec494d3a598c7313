package valuetypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100"},
		{75, "75"},
		{62.5, "62.50"},
		{1.005, "1.01"},
		{3.0001, "3"},
		{-2.25, "-2.25"},
		{0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%v)", tt.in)
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in         string
		wantOK     bool
		wantValue  float64
		wantSuffix string
	}{
		{"200 €", true, 200, "€"},
		{"125 % du salaire de référence", true, 125, "% du salaire de référence"},
		{"12,5% BR", true, 12.5, "% BR"},
		{"-3.75", true, -3.75, ""},
		{"Frais réels", false, 0, ""},
		{"", false, 0, ""},
	}
	for _, tt := range tests {
		q, ok := ParseQuantity(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.wantValue, q.Value, tt.in)
			assert.Equal(t, tt.wantSuffix, q.Suffix, tt.in)
		}
	}
}

func TestRegistryOverridesBuiltinByCode(t *testing.T) {
	custom := &dto.ValueType{ID: "vt-custom", Code: "MONTANT", Libelle: "Montant TTC", Champs: []dto.ValueField{
		{Name: "amount", Kind: dto.FieldNumber, Suffix: " € TTC"},
	}}
	r := NewRegistry([]*dto.ValueType{custom})

	assert.Same(t, custom, r.Lookup("montant"))
	assert.Same(t, custom, r.Lookup("vt-montant"))
	assert.Same(t, custom, r.Lookup("vt-custom"))
	assert.Nil(t, r.Lookup("inconnu"))
	assert.Len(t, r.All(), len(Builtins()))
}

func TestValidate(t *testing.T) {
	r := NewRegistry(nil)
	forfait := r.Lookup("forfait")
	require.NotNil(t, forfait)

	assert.NoError(t, Validate(forfait, map[string]interface{}{"montant": 150.0, "periodicite": "annuel"}))

	err := Validate(forfait, map[string]interface{}{"montant": -1.0, "periodicite": "mensuel"})
	require.Error(t, err)
	assert.True(t, dto.IsValidation(err))
	se := err.(*dto.ServiceError)
	assert.Contains(t, se.Details, "montant")
	assert.Contains(t, se.Details, "periodicite")

	err = Validate(r.Lookup("texte"), map[string]interface{}{"texte": "  "})
	require.Error(t, err)
	assert.Equal(t, "champ obligatoire", err.(*dto.ServiceError).Details["texte"])
}

func TestValidateStep(t *testing.T) {
	step := dto.Number(0.5)
	def := &dto.ValueType{Code: "demi", Champs: []dto.ValueField{{Name: "n", Kind: dto.FieldNumber, Step: &step}}}

	assert.NoError(t, Validate(def, map[string]interface{}{"n": 2.5}))
	assert.Error(t, Validate(def, map[string]interface{}{"n": 2.3}))
}

func TestNormalizeAndRender(t *testing.T) {
	r := NewRegistry(nil)
	forfait := r.Lookup("forfait")

	data := Normalize(forfait, map[string]interface{}{"montant": "150,5", "periodicite": " annuel ", "bruit": 1, "max": "300"})
	assert.Equal(t, map[string]interface{}{"montant": 150.5, "periodicite": "annuel", "max": 300.0}, data)
	assert.Equal(t, "150.50€ annuel", Render(forfait, data))

	assert.Equal(t, "Frais réels", Render(r.Lookup("frais_reels"), Normalize(r.Lookup("frais_reels"), map[string]interface{}{"actif": "oui"})))
	assert.Equal(t, "Non couvert", Render(r.Lookup("non_couvert"), nil))
	assert.Equal(t, "100% BR", Render(r.Lookup("pourcentage_br"), map[string]interface{}{"taux": 100.0}))
}

func TestExtract(t *testing.T) {
	r := NewRegistry(nil)

	q, ok := Extract(r.Lookup("montant"), map[string]interface{}{"amount": 200.0, "min": 10.0}, "")
	require.True(t, ok)
	assert.Equal(t, 200.0, q.Value)
	assert.Equal(t, "€", q.Suffix)
	require.NotNil(t, q.Min)
	assert.Equal(t, 10.0, *q.Min)
	assert.Nil(t, q.Max)

	q, ok = Extract(nil, nil, "125 % du salaire de référence")
	require.True(t, ok)
	assert.Equal(t, 125.0, q.Value)
	assert.Equal(t, "% du salaire de référence", q.Suffix)

	q, ok = Extract(r.Lookup("forfait"), map[string]interface{}{"montant": 40.0}, "")
	require.True(t, ok)
	assert.Equal(t, "40€", q.Display())

	_, ok = Extract(r.Lookup("frais_reels"), map[string]interface{}{"actif": true}, "Frais réels")
	assert.False(t, ok)
}
