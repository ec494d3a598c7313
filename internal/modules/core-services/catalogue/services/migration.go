package services

import (
	"bytes"
	"context"

	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/queries"
)

// MigrationReport clés réécrites par la migration des enregistrements legacy
type MigrationReport struct {
	Rewritten []string `json:"rewritten"`
	Removed   []string `json:"removed"`
	Unchanged int      `json:"unchanged"`
}

// Migrate réassainit toutes les collections stockées et ne réécrit que celles qui changent.
// Les collections d'un catalogue supprimé sont retirées.
func (r *Repository) Migrate(ctx context.Context) (*MigrationReport, error) {
	snap, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	writes, err := ReferentielWrites(snap.Referentiels)
	if err != nil {
		return nil, err
	}
	cw, err := CataloguesWrite(snap.Catalogues)
	if err != nil {
		return nil, err
	}
	writes = append(writes, cw)

	for _, c := range snap.Catalogues {
		if !dto.IsActive(c) {
			writes = append(writes, RemoveScopeWrites(c.ID)...)
			continue
		}
		scope, err := r.LoadScope(ctx, snap, c.ID)
		if err != nil {
			return nil, err
		}
		sw, err := ScopeWrites(c.ID, scope)
		if err != nil {
			return nil, err
		}
		writes = append(writes, sw...)
	}

	report := &MigrationReport{Rewritten: []string{}, Removed: []string{}}
	var changed []kvstore.Write
	for _, w := range writes {
		current, found, err := r.store.Get(ctx, w.Key)
		if err != nil {
			return nil, err
		}
		switch {
		case w.IsDelete() && !found:
			continue
		case w.IsDelete():
			report.Removed = append(report.Removed, w.Key)
		case found && bytes.Equal(current, w.Value):
			report.Unchanged++
			continue
		case !found && !queries.IsReferentielKey(w.Key) && bytes.Equal(w.Value, []byte("[]")):
			// collection vide jamais créée
			continue
		default:
			report.Rewritten = append(report.Rewritten, w.Key)
		}
		changed = append(changed, w)
	}

	if err := r.Apply(ctx, changed); err != nil {
		return nil, err
	}
	r.logger.Info("migration des collections terminée",
		zap.Int("rewritten", len(report.Rewritten)),
		zap.Int("removed", len(report.Removed)),
		zap.Int("unchanged", report.Unchanged))
	return report, nil
}
