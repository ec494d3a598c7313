package sanitize

import (
	"strconv"
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
)

// compact retire les entrées nulles et copie chaque enregistrement (l'entrée n'est jamais modifiée)
func compact[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, it := range in {
		if it == nil {
			continue
		}
		c := *it
		out = append(out, &c)
	}
	return out
}

func ci(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func active[T audit.Record](r T) bool {
	return dto.IsActive(r)
}

// lastWriteWins fusionne les doublons actifs d'une même clé: la première occurrence garde
// sa position et son identité, les champs viennent de la dernière. Renvoie id écarté → id gardé.
func lastWriteWins[T audit.Record](items []T, key func(T) string, id func(T) string, merge func(first, last T)) ([]T, map[string]string) {
	first := map[string]T{}
	aliases := map[string]string{}
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if k == "" || !active(it) {
			out = append(out, it)
			continue
		}
		if kept, ok := first[k]; ok {
			if id(it) != id(kept) {
				aliases[id(it)] = id(kept)
			}
			merge(kept, it)
			continue
		}
		first[k] = it
		out = append(out, it)
	}
	return out, aliases
}

// uniqueIDs garde un seul enregistrement par id, tombstones compris: la position et la création
// viennent de la première occurrence, le reste de la dernière
func uniqueIDs[T audit.Record](items []T, id func(T) string) []T {
	pos := map[string]int{}
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := id(it)
		i, seen := pos[k]
		if !seen {
			pos[k] = len(out)
			out = append(out, it)
			continue
		}
		prev, next := out[i].AuditFields(), it.AuditFields()
		if prev.CreatedAt != nil {
			next.CreatedAt, next.CreatedBy = prev.CreatedAt, prev.CreatedBy
		}
		out[i] = it
	}
	return out
}

// keepIdentity conserve id et création du premier enregistrement lors d'une fusion
func keepIdentity(first, last *audit.Fields) {
	createdAt, createdBy := first.CreatedAt, first.CreatedBy
	*first = *last
	if createdAt != nil {
		first.CreatedAt = createdAt
		first.CreatedBy = createdBy
	}
}

// suffixDuplicates rend uniques des valeurs actives par périmètre: x, x-2, x-3...
func suffixDuplicates[T audit.Record](items []T, scope func(T) string, get func(T) string, set func(T, string)) {
	used := map[string]bool{}
	for _, it := range items {
		if !active(it) {
			continue
		}
		v := get(it)
		k := scope(it) + "\x00" + ci(v)
		if !used[k] {
			used[k] = true
			continue
		}
		for n := 2; ; n++ {
			candidate := v + "-" + strconv.Itoa(n)
			ck := scope(it) + "\x00" + ci(candidate)
			if !used[ck] {
				used[ck] = true
				set(it, candidate)
				break
			}
		}
	}
}

// uniqStrings supprime vides et doublons en gardant l'ordre; keep filtre les valeurs valides
func uniqStrings(in []string, keep func(string) bool) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] || (keep != nil && !keep(s)) {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func alias(aliases map[string]string, id string) string {
	if to, ok := aliases[id]; ok {
		return to
	}
	return id
}
