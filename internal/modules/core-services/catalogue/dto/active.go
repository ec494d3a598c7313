package dto

import "github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"

// ActiveOnly projection unique des enregistrements non tombstonés
func ActiveOnly[T audit.Record](items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if IsActive(it) {
			out = append(out, it)
		}
	}
	return out
}

// IsActive vrai si l'enregistrement existe et n'est pas supprimé
func IsActive(r audit.Record) bool {
	if r == nil {
		return false
	}
	f := r.AuditFields()
	return f != nil && f.IsActive()
}
