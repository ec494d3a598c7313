package dto

import (
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
)

// Risk risque couvert par un module ou un catalogue
type Risk string

const (
	RiskSante      Risk = "sante"
	RiskPrevoyance Risk = "prevoyance"
)

// ParseRisk normalise un risque; ok=false si la valeur est inconnue
func ParseRisk(s string) (Risk, bool) {
	switch r := Risk(strings.ToLower(strings.TrimSpace(s))); r {
	case RiskSante, RiskPrevoyance:
		return r, true
	}
	return RiskSante, false
}

// Offer offre commerciale à laquelle un catalogue est rattaché
type Offer struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Libelle string `json:"libelle"`
	audit.Fields
}

// CatPersonnel catégorie de personnel (cadres, non-cadres...)
type CatPersonnel struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Libelle string `json:"libelle"`
	audit.Fields
}

// Module domaine de garanties (hospitalisation, décès...)
type Module struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Libelle string `json:"libelle"`
	Risk    Risk   `json:"risk"`
	audit.Fields
}

// Category regroupement d'actes dans un module
type Category struct {
	ID       string  `json:"id"`
	ModuleID string  `json:"moduleId"`
	Code     string  `json:"code"`
	Libelle  string  `json:"libelle"`
	Ordre    FlexInt `json:"ordre"`
	audit.Fields
}

// UngroupedPrefix préfixe de la catégorie synthétique des actes sans catégorie
const UngroupedPrefix = "ungrouped:"

// UngroupedCategoryID identifiant de la catégorie synthétique d'un module
func UngroupedCategoryID(moduleID string) string {
	return UngroupedPrefix + moduleID
}

// IsUngrouped vrai pour un identifiant de catégorie synthétique
func IsUngrouped(categoryID string) bool {
	return strings.HasPrefix(categoryID, UngroupedPrefix)
}

// Act ligne de garantie
type Act struct {
	ID          string  `json:"id"`
	CategoryID  string  `json:"categoryId"`
	ModuleID    string  `json:"moduleId"`
	Code        string  `json:"code"`
	Libelle     string  `json:"libelle"`
	LibelleLong string  `json:"libelleLong"`
	AllowSurco  Flag    `json:"allowSurco"`
	Ordre       FlexInt `json:"ordre"`
	Risk        Risk    `json:"risk"`
	audit.Fields
}

// EffectiveCategoryID catégorie réelle ou synthétique de l'acte
func (a *Act) EffectiveCategoryID() string {
	if a.CategoryID == "" {
		return UngroupedCategoryID(a.ModuleID)
	}
	return a.CategoryID
}

// LevelSet jeu de niveaux de couverture
type LevelSet struct {
	ID                   string  `json:"id"`
	Code                 string  `json:"code"`
	Libelle              string  `json:"libelle"`
	Ordre                FlexInt `json:"ordre"`
	IsEnabled            *Flag   `json:"isEnabled"`
	AllowMultipleNiveaux *Flag   `json:"allowMultipleNiveaux,omitempty"`
	audit.Fields
}

// Level niveau de couverture (Essentiel, Confort...)
type Level struct {
	ID        string  `json:"id"`
	SetID     string  `json:"setId"`
	Code      string  `json:"code"`
	Libelle   string  `json:"libelle"`
	Ordre     FlexInt `json:"ordre"`
	IsEnabled *Flag   `json:"isEnabled"`
	audit.Fields
}

// Enabled lecture d'un drapeau optionnel, vrai par défaut
func Enabled(f *Flag) bool {
	return f == nil || bool(*f)
}

// FieldKind nature d'un champ de type de valeur
type FieldKind string

const (
	FieldText    FieldKind = "text"
	FieldNumber  FieldKind = "number"
	FieldEnum    FieldKind = "enum"
	FieldBoolean FieldKind = "boolean"
)

// ValueField champ d'un type de valeur
type ValueField struct {
	Name     string    `json:"name"`
	Label    string    `json:"label,omitempty"`
	Kind     FieldKind `json:"kind"`
	Required Flag      `json:"required"`
	Min      *Number   `json:"min,omitempty"`
	Max      *Number   `json:"max,omitempty"`
	Step     *Number   `json:"step,omitempty"`
	Suffix   string    `json:"suffix,omitempty"`
	Options  []string  `json:"options,omitempty"`
}

// ValueType définition d'un type de valeur saisissable dans une cellule
type ValueType struct {
	ID      string       `json:"id"`
	Code    string       `json:"code"`
	Libelle string       `json:"libelle"`
	Champs  []ValueField `json:"fields"`
	audit.Fields
}
