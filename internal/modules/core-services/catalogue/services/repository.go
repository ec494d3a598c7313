package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/queries"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/sanitize"
)

// Snapshot état validé du référentiel et des catalogues, assaini au chargement
type Snapshot struct {
	Referentiels sanitize.Referentiels
	Index        *sanitize.Index
	Catalogues   []*dto.Catalogue
}

// Catalogue recherche un catalogue, tombstoné compris
func (s *Snapshot) Catalogue(id string) *dto.Catalogue {
	for _, c := range s.Catalogues {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ActiveCatalogue catalogue non supprimé ou NotFound
func (s *Snapshot) ActiveCatalogue(id string) (*dto.Catalogue, error) {
	c := s.Catalogue(id)
	if c == nil || !dto.IsActive(c) {
		return nil, dto.NewNotFoundError("catalogue", id)
	}
	return c, nil
}

// Repository lit et écrit les collections entières du magasin clé-valeur.
// Toute collection lue passe par le pipeline d'assainissement.
type Repository struct {
	store    kvstore.Store
	pipeline *sanitize.Pipeline
	logger   *zap.Logger
}

// NewRepository provider Fx
func NewRepository(store kvstore.Store, pipeline *sanitize.Pipeline, logger *zap.Logger) *Repository {
	return &Repository{
		store:    store,
		pipeline: pipeline,
		logger:   logger.Named("catalogue-repository"),
	}
}

// Pipeline pipeline d'assainissement utilisé par le dépôt
func (r *Repository) Pipeline() *sanitize.Pipeline {
	return r.pipeline
}

// load lit une collection; une clé absente donne la collection vide
func load[T any](ctx context.Context, store kvstore.Store, key string) ([]T, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lecture de %s: %w", key, err)
	}
	out := []T{}
	if !found || len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("décodage de %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// put encode une collection entière
func put[T any](key string, items []T) (kvstore.Write, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return kvstore.Write{}, fmt.Errorf("encodage de %s: %w", key, err)
	}
	return kvstore.Put(key, b), nil
}

// RawReferentiels collections du référentiel telles que stockées
func (r *Repository) RawReferentiels(ctx context.Context) (sanitize.Referentiels, error) {
	var (
		refs sanitize.Referentiels
		err  error
	)
	if refs.Offers, err = load[*dto.Offer](ctx, r.store, queries.KeyOffers); err != nil {
		return refs, err
	}
	if refs.CatPersonnel, err = load[*dto.CatPersonnel](ctx, r.store, queries.KeyCatPersonnel); err != nil {
		return refs, err
	}
	if refs.Modules, err = load[*dto.Module](ctx, r.store, queries.KeyModules); err != nil {
		return refs, err
	}
	if refs.Categories, err = load[*dto.Category](ctx, r.store, queries.KeyCategories); err != nil {
		return refs, err
	}
	if refs.Acts, err = load[*dto.Act](ctx, r.store, queries.KeyActs); err != nil {
		return refs, err
	}
	if refs.LevelSets, err = load[*dto.LevelSet](ctx, r.store, queries.KeyLevelSets); err != nil {
		return refs, err
	}
	if refs.Levels, err = load[*dto.Level](ctx, r.store, queries.KeyLevels); err != nil {
		return refs, err
	}
	if refs.ValueTypes, err = load[*dto.ValueType](ctx, r.store, queries.KeyValueTypes); err != nil {
		return refs, err
	}
	return refs, nil
}

// Load charge et assainit le référentiel puis les catalogues
func (r *Repository) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := r.RawReferentiels(ctx)
	if err != nil {
		return nil, err
	}
	refs := r.pipeline.Referentiels(raw)
	idx := sanitize.NewIndex(refs)

	catalogues, err := load[*dto.Catalogue](ctx, r.store, queries.KeyCatalogues)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Referentiels: refs,
		Index:        idx,
		Catalogues:   r.pipeline.Catalogues(idx, catalogues),
	}, nil
}

// RawScope collections d'un catalogue telles que stockées
func (r *Repository) RawScope(ctx context.Context, catalogueID string) (sanitize.Scope, error) {
	var (
		scope sanitize.Scope
		err   error
	)
	if scope.Modules, err = load[*dto.CatalogueModule](ctx, r.store, queries.CatalogueModulesKey(catalogueID)); err != nil {
		return scope, err
	}
	if scope.Groups, err = load[*dto.Group](ctx, r.store, queries.GroupsKey(catalogueID)); err != nil {
		return scope, err
	}
	if scope.Members, err = load[*dto.GroupMember](ctx, r.store, queries.MembersKey(catalogueID)); err != nil {
		return scope, err
	}
	if scope.Cells, err = load[*dto.CellValue](ctx, r.store, queries.CellsKey(catalogueID)); err != nil {
		return scope, err
	}
	return scope, nil
}

// LoadScope charge et assainit les collections d'un catalogue du snapshot
func (r *Repository) LoadScope(ctx context.Context, snap *Snapshot, catalogueID string) (sanitize.Scope, error) {
	raw, err := r.RawScope(ctx, catalogueID)
	if err != nil {
		return sanitize.Scope{}, err
	}
	return r.pipeline.Scope(snap.Index, snap.Catalogue(catalogueID), raw), nil
}

// ReferentielWrites écritures du référentiel complet
func ReferentielWrites(refs sanitize.Referentiels) ([]kvstore.Write, error) {
	var writes []kvstore.Write
	add := func(w kvstore.Write, err error) error {
		if err != nil {
			return err
		}
		writes = append(writes, w)
		return nil
	}
	steps := []func() error{
		func() error { return add(put(queries.KeyOffers, refs.Offers)) },
		func() error { return add(put(queries.KeyCatPersonnel, refs.CatPersonnel)) },
		func() error { return add(put(queries.KeyModules, refs.Modules)) },
		func() error { return add(put(queries.KeyCategories, refs.Categories)) },
		func() error { return add(put(queries.KeyActs, refs.Acts)) },
		func() error { return add(put(queries.KeyLevelSets, refs.LevelSets)) },
		func() error { return add(put(queries.KeyLevels, refs.Levels)) },
		func() error { return add(put(queries.KeyValueTypes, refs.ValueTypes)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return writes, nil
}

// CataloguesWrite écriture de la collection globale des catalogues
func CataloguesWrite(catalogues []*dto.Catalogue) (kvstore.Write, error) {
	return put(queries.KeyCatalogues, catalogues)
}

// ScopeWrites écritures des quatre collections d'un catalogue
func ScopeWrites(catalogueID string, scope sanitize.Scope) ([]kvstore.Write, error) {
	modules, err := put(queries.CatalogueModulesKey(catalogueID), scope.Modules)
	if err != nil {
		return nil, err
	}
	groups, err := put(queries.GroupsKey(catalogueID), scope.Groups)
	if err != nil {
		return nil, err
	}
	members, err := put(queries.MembersKey(catalogueID), scope.Members)
	if err != nil {
		return nil, err
	}
	cells, err := put(queries.CellsKey(catalogueID), scope.Cells)
	if err != nil {
		return nil, err
	}
	return []kvstore.Write{modules, groups, members, cells}, nil
}

// RemoveScopeWrites suppression des collections d'un catalogue
func RemoveScopeWrites(catalogueID string) []kvstore.Write {
	keys := queries.ScopeKeys(catalogueID)
	writes := make([]kvstore.Write, 0, len(keys))
	for _, k := range keys {
		writes = append(writes, kvstore.Remove(k))
	}
	return writes
}

// Apply écrit un lot en une seule opération du magasin
func (r *Repository) Apply(ctx context.Context, writes []kvstore.Write) error {
	writes = kvstore.Compact(writes)
	if len(writes) == 0 {
		return nil
	}
	if err := r.store.Apply(ctx, writes); err != nil {
		r.logger.Error("échec d'écriture du lot", zap.Int("writes", len(writes)), zap.Error(err))
		return fmt.Errorf("écriture du lot: %w", err)
	}
	r.logger.Debug("lot écrit", zap.Int("writes", len(writes)))
	return nil
}

// Ping vérifie la disponibilité du magasin
func (r *Repository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
