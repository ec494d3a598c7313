package ordering

import "sort"

// Direction sens d'un déplacement
type Direction int

const (
	Up Direction = iota
	Down
)

// ParseDirection "up"/"down"
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up", "haut":
		return Up, true
	case "down", "bas":
		return Down, true
	}
	return Up, false
}

// Accessor lecture/écriture du champ ordre d'un élément (T est un pointeur)
type Accessor[T any] struct {
	ID       func(T) string
	Scope    func(T) string
	Active   func(T) bool
	Ordre    func(T) int
	SetOrdre func(T, int)
}

// Resequence renumérote 1..N les éléments actifs de chaque périmètre en conservant
// l'ordre relatif. Les éléments sans ordre (<= 0) passent en fin, dans l'ordre d'origine.
func Resequence[T any](items []T, acc Accessor[T]) {
	scopes := map[string][]int{}
	var keys []string
	for i, it := range items {
		if acc.Active != nil && !acc.Active(it) {
			continue
		}
		s := ""
		if acc.Scope != nil {
			s = acc.Scope(it)
		}
		if _, ok := scopes[s]; !ok {
			keys = append(keys, s)
		}
		scopes[s] = append(scopes[s], i)
	}
	for _, s := range keys {
		idx := scopes[s]
		sort.SliceStable(idx, func(a, b int) bool {
			oa, ob := acc.Ordre(items[idx[a]]), acc.Ordre(items[idx[b]])
			switch {
			case oa <= 0 && ob <= 0:
				return false
			case oa <= 0:
				return false
			case ob <= 0:
				return true
			}
			return oa < ob
		})
		for n, i := range idx {
			acc.SetOrdre(items[i], n+1)
		}
	}
}

// Sorted éléments actifs d'un périmètre triés par ordre
func Sorted[T any](items []T, acc Accessor[T], scope string) []T {
	var out []T
	for _, it := range items {
		if acc.Active != nil && !acc.Active(it) {
			continue
		}
		if acc.Scope != nil && acc.Scope(it) != scope {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(a, b int) bool { return acc.Ordre(out[a]) < acc.Ordre(out[b]) })
	return out
}

// Move échange l'ordre de l'élément id avec son voisin dans le sous-ensemble visible.
// Renvoie false (aucune modification d'ordre) si l'élément est absent, invisible ou déjà en bord.
func Move[T any](items []T, acc Accessor[T], id string, dir Direction, visible func(T) bool) bool {
	var target T
	found := false
	for _, it := range items {
		if acc.ID(it) == id && (acc.Active == nil || acc.Active(it)) {
			target, found = it, true
			break
		}
	}
	if !found {
		return false
	}
	scope := ""
	if acc.Scope != nil {
		scope = acc.Scope(target)
	}
	Resequence(items, acc)

	var row []T
	for _, it := range Sorted(items, acc, scope) {
		if visible == nil || visible(it) {
			row = append(row, it)
		}
	}
	pos := -1
	for i, it := range row {
		if acc.ID(it) == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false
	}
	other := pos - 1
	if dir == Down {
		other = pos + 1
	}
	if other < 0 || other >= len(row) {
		return false
	}
	a, b := row[pos], row[other]
	oa, ob := acc.Ordre(a), acc.Ordre(b)
	acc.SetOrdre(a, ob)
	acc.SetOrdre(b, oa)
	return true
}
