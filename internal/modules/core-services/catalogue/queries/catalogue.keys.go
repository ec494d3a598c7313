package queries

import "fmt"

// Clés des collections du magasin clé-valeur.
// Chaque clé porte une collection entière (remplacement complet à l'écriture).
const (
	KeyOffers       = "ref_offres"
	KeyCatPersonnel = "ref_cat_personnel"
	KeyModules      = "ref_modules"
	KeyCategories   = "ref_categories"
	KeyActs         = "ref_acts"
	KeyLevelSets    = "ref_niveau_sets"
	KeyLevels       = "ref_niveaux"
	KeyValueTypes   = "ref_value_types"

	KeyCatalogues = "catalogues"
)

// ReferentielKeys ordre de chargement du référentiel
var ReferentielKeys = []string{
	KeyOffers,
	KeyCatPersonnel,
	KeyModules,
	KeyCategories,
	KeyActs,
	KeyLevelSets,
	KeyLevels,
	KeyValueTypes,
}

// CatalogueModulesKey modules inclus dans un catalogue
func CatalogueModulesKey(catalogueID string) string {
	return fmt.Sprintf("catalogue_modules:%s", catalogueID)
}

// GroupsKey groupes d'un catalogue
func GroupsKey(catalogueID string) string {
	return fmt.Sprintf("groupes:%s", catalogueID)
}

// MembersKey actes des groupes d'un catalogue
func MembersKey(catalogueID string) string {
	return fmt.Sprintf("groupe_actes:%s", catalogueID)
}

// CellsKey valeurs des groupes d'un catalogue
func CellsKey(catalogueID string) string {
	return fmt.Sprintf("groupe_valeurs:%s", catalogueID)
}

// ScopeKeys toutes les collections rattachées à un catalogue
func ScopeKeys(catalogueID string) []string {
	return []string{
		CatalogueModulesKey(catalogueID),
		GroupsKey(catalogueID),
		MembersKey(catalogueID),
		CellsKey(catalogueID),
	}
}

// IsReferentielKey vrai pour une clé de référentiel connue
func IsReferentielKey(key string) bool {
	for _, k := range ReferentielKeys {
		if k == key {
			return true
		}
	}
	return false
}
