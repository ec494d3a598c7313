package seeds

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
)

//go:embed data/referentiels.json
var embeddedReferentiels []byte

// EmbeddedName nom logique du jeu embarqué
const EmbeddedName = "embedded:referentiels.json"

type seedingService struct {
	store  kvstore.Store
	config *Config
	logger *zap.Logger
}

// NewSeedingService crée un nouveau service de seeding
func NewSeedingService(store kvstore.Store, cfg *Config, logger *zap.Logger) SeedingService {
	return &seedingService{
		store:  store,
		config: cfg,
		logger: logger.Named("seeding"),
	}
}

// CheckSeedDataExists vérifie quelles collections existent déjà
func (s *seedingService) CheckSeedDataExists(ctx context.Context) (*SeedDataStatus, error) {
	status := &SeedDataStatus{Present: []string{}, Missing: []string{}}
	for _, key := range s.config.Keys {
		_, found, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, ErrStoreOperation("vérification "+key, err)
		}
		if found {
			status.Present = append(status.Present, key)
		} else {
			status.Missing = append(status.Missing, key)
		}
	}
	return status, nil
}

// SeedReferentiels écrit en un lot les collections absentes du magasin.
// Les collections déjà présentes ne sont jamais écrasées.
func (s *seedingService) SeedReferentiels(ctx context.Context) (*SeedReport, error) {
	status, err := s.CheckSeedDataExists(ctx)
	if err != nil {
		return nil, err
	}
	report := &SeedReport{Seeded: []string{}, Skipped: status.Present}
	if status.IsComplete() {
		s.logger.Info("référentiel déjà présent, seeding ignoré")
		return report, nil
	}

	dataset, err := s.LoadDataset()
	if err != nil {
		return nil, err
	}

	var writes []kvstore.Write
	for _, key := range status.Missing {
		raw, ok := dataset[key]
		if !ok {
			raw = json.RawMessage(`[]`)
		}
		writes = append(writes, kvstore.Put(key, raw))
		report.Seeded = append(report.Seeded, key)
		s.logger.Info("collection seedée", zap.String("key", key), zap.Int("bytes", len(raw)))
	}
	if err := s.store.Apply(ctx, writes); err != nil {
		return nil, ErrStoreOperation("écriture du seed", err)
	}
	return report, nil
}

// LoadDataset charge le jeu configuré (JSON ou YAML) ou le jeu embarqué
func (s *seedingService) LoadDataset() (Dataset, error) {
	name, raw := EmbeddedName, embeddedReferentiels
	if s.config.Path != "" {
		data, err := os.ReadFile(s.config.Path)
		if err != nil {
			return nil, ErrFileLoad(s.config.Path, err)
		}
		name, raw = s.config.Path, data
	}
	return ParseDataset(name, raw, s.config.Keys)
}

// ParseDataset décode un jeu de seed; le format suit l'extension (.yaml/.yml ou JSON)
func ParseDataset(name string, raw []byte, keys []string) (Dataset, error) {
	if ext := strings.ToLower(filepath.Ext(name)); ext == ".yaml" || ext == ".yml" {
		converted, err := yamlToJSON(raw)
		if err != nil {
			return nil, ErrFileLoad(name, err)
		}
		raw = converted
	}

	var dataset Dataset
	if err := json.Unmarshal(raw, &dataset); err != nil {
		return nil, ErrFileLoad(name, err)
	}

	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	for key, value := range dataset {
		if !known[key] {
			return nil, ErrUnknownCollection(key)
		}
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, ErrInvalidCollection(key, fmt.Errorf("tableau JSON attendu"))
		}
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, ErrInvalidCollection(key, err)
		}
	}
	return dataset, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(jsonCompatible(doc))
}

// jsonCompatible convertit les mappings YAML à clés non textuelles
func jsonCompatible(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			t[k] = jsonCompatible(item)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []interface{}:
		for i, item := range t {
			t[i] = jsonCompatible(item)
		}
		return t
	}
	return v
}
