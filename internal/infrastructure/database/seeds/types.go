package seeds

import (
	"context"
	"encoding/json"
)

// Dataset collections de seed indexées par clé du magasin, chaque valeur est un tableau JSON
type Dataset map[string]json.RawMessage

// Config source du seed et collections attendues (dans l'ordre d'écriture)
type Config struct {
	Path string // vide = jeu embarqué
	Keys []string
}

// SeedDataStatus représente l'état des données de seeding
type SeedDataStatus struct {
	Present []string `json:"present"`
	Missing []string `json:"missing"`
}

// SeedReport collections écrites par un seeding
type SeedReport struct {
	Seeded  []string `json:"seeded"`
	Skipped []string `json:"skipped"`
}

// SeedingService seed les collections de référence manquantes
type SeedingService interface {
	CheckSeedDataExists(ctx context.Context) (*SeedDataStatus, error)
	SeedReferentiels(ctx context.Context) (*SeedReport, error)
	LoadDataset() (Dataset, error)
}

// IsComplete vrai si aucune collection ne manque
func (s *SeedDataStatus) IsComplete() bool {
	return len(s.Missing) == 0
}

// GetMissingSeeds retourne la liste des seeds manquants
func (s *SeedDataStatus) GetMissingSeeds() []string {
	return append([]string(nil), s.Missing...)
}
