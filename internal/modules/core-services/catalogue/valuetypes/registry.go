package valuetypes

import (
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
)

// Registry types de valeur connus: intégrés puis référentiel (le référentiel gagne à code égal)
type Registry struct {
	types  []*dto.ValueType
	byID   map[string]*dto.ValueType
	byCode map[string]*dto.ValueType
}

// NewRegistry construit le registre à partir des définitions stockées actives
func NewRegistry(stored []*dto.ValueType) *Registry {
	r := &Registry{
		byID:   map[string]*dto.ValueType{},
		byCode: map[string]*dto.ValueType{},
	}
	for _, vt := range Builtins() {
		r.add(vt)
	}
	for _, vt := range dto.ActiveOnly(stored) {
		r.add(vt)
	}
	return r
}

func (r *Registry) add(vt *dto.ValueType) {
	code := strings.ToLower(vt.Code)
	if prev, ok := r.byCode[code]; ok {
		r.byID[prev.ID] = vt
		for i, t := range r.types {
			if t == prev {
				r.types[i] = vt
				break
			}
		}
	} else {
		r.types = append(r.types, vt)
	}
	r.byCode[code] = vt
	r.byID[vt.ID] = vt
}

// Lookup recherche par identifiant puis par code; nil si inconnu
func (r *Registry) Lookup(ref string) *dto.ValueType {
	if ref == "" {
		return nil
	}
	if vt, ok := r.byID[ref]; ok {
		return vt
	}
	return r.byCode[strings.ToLower(strings.TrimSpace(ref))]
}

// All définitions dans l'ordre d'enregistrement
func (r *Registry) All() []*dto.ValueType {
	return append([]*dto.ValueType(nil), r.types...)
}
