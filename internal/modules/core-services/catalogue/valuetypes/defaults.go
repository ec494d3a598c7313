package valuetypes

import "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"

func number(name, label, suffix string, required bool, min *float64) dto.ValueField {
	return dto.ValueField{
		Name:     name,
		Label:    label,
		Kind:     dto.FieldNumber,
		Required: dto.Flag(required),
		Min:      dto.NumberPtr(min),
		Suffix:   suffix,
	}
}

func zero() *float64 {
	v := 0.0
	return &v
}

// Builtins types de valeur toujours disponibles, surchargeables par code
func Builtins() []*dto.ValueType {
	return []*dto.ValueType{
		{ID: "vt-montant", Code: "montant", Libelle: "Montant", Champs: []dto.ValueField{
			number("amount", "Montant", "€", true, zero()),
		}},
		{ID: "vt-pourcentage", Code: "pourcentage", Libelle: "Pourcentage", Champs: []dto.ValueField{
			number("percent", "Taux", "%", true, zero()),
		}},
		{ID: "vt-pourcentage-br", Code: "pourcentage_br", Libelle: "% de la base de remboursement", Champs: []dto.ValueField{
			number("taux", "Taux", "% BR", true, zero()),
		}},
		{ID: "vt-pmss", Code: "pmss", Libelle: "% du PMSS", Champs: []dto.ValueField{
			number("taux", "Taux", "% PMSS", true, zero()),
		}},
		{ID: "vt-forfait", Code: "forfait", Libelle: "Forfait", Champs: []dto.ValueField{
			number("montant", "Montant", "€", true, zero()),
			{Name: "periodicite", Label: "Périodicité", Kind: dto.FieldEnum, Options: []string{"annuel", "semestriel", "par_acte"}},
		}},
		{ID: "vt-frais-reels", Code: "frais_reels", Libelle: "Frais réels", Champs: []dto.ValueField{
			{Name: "actif", Label: "Frais réels", Kind: dto.FieldBoolean},
		}},
		{ID: "vt-texte", Code: "texte", Libelle: "Texte libre", Champs: []dto.ValueField{
			{Name: "texte", Label: "Texte", Kind: dto.FieldText, Required: true},
		}},
		{ID: "vt-non-couvert", Code: "non_couvert", Libelle: "Non couvert"},
	}
}
