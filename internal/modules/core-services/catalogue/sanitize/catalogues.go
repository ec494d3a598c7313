package sanitize

import (
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
)

// DefaultVersion version attribuée à un catalogue qui n'en a pas
const DefaultVersion = "v1"

// Catalogues assainit la collection globale des catalogues
func (p *Pipeline) Catalogues(idx *Index, in []*dto.Catalogue) []*dto.Catalogue {
	items := make([]*dto.Catalogue, 0, len(in))
	for _, c := range compact(in) {
		c.OfferID = strings.TrimSpace(c.OfferID)
		if _, ok := idx.Offers[c.OfferID]; !ok {
			continue
		}
		c.ID = p.ensureID(strings.TrimSpace(c.ID))
		c.Risk, _ = dto.ParseRisk(string(c.Risk))
		c.Version = strings.TrimSpace(c.Version)
		if c.Version == "" {
			c.Version = DefaultVersion
		}
		c.Status = dto.ParseStatus(string(c.Status))
		c.ValidFrom = strings.TrimSpace(c.ValidFrom)
		c.ValidTo = strings.TrimSpace(c.ValidTo)
		c.DefaultNiveauSetID = strings.TrimSpace(c.DefaultNiveauSetID)
		if _, ok := idx.LevelSets[c.DefaultNiveauSetID]; !ok {
			c.DefaultNiveauSetID = ""
		}
		c.CatPersonnelIDs = uniqStrings(c.CatPersonnelIDs, func(id string) bool {
			_, ok := idx.CatPersonnel[id]
			return ok
		})
		items = append(items, c)
	}
	items = uniqueIDs(items, func(c *dto.Catalogue) string { return c.ID })
	suffixDuplicates(items,
		func(c *dto.Catalogue) string {
			return c.OfferID + "|" + ci(string(c.Risk)) + "|" + dto.FlexIntString(c.Year)
		},
		func(c *dto.Catalogue) string { return c.Version },
		func(c *dto.Catalogue, v string) { c.Version = v })
	for _, c := range items {
		p.stamper.EnsureFields(c)
	}
	return items
}
