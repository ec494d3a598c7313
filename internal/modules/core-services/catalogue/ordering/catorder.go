package ordering

// NormalizeCatOrder conserve les catégories encore valides dans l'ordre stocké,
// sans doublon, puis ajoute les manquantes dans l'ordre du référentiel.
func NormalizeCatOrder(stored []string, referential []string) []string {
	valid := make(map[string]bool, len(referential))
	for _, id := range referential {
		valid[id] = true
	}
	seen := make(map[string]bool, len(referential))
	out := make([]string, 0, len(referential))
	for _, id := range stored {
		if valid[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range referential {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// MoveInList échange la position de id avec sa voisine visible dans une permutation
func MoveInList(order []string, id string, dir Direction, visible func(string) bool) ([]string, bool) {
	var positions []int
	for i, v := range order {
		if visible == nil || visible(v) {
			positions = append(positions, i)
		}
	}
	at := -1
	for n, i := range positions {
		if order[i] == id {
			at = n
			break
		}
	}
	if at < 0 {
		return order, false
	}
	other := at - 1
	if dir == Down {
		other = at + 1
	}
	if other < 0 || other >= len(positions) {
		return order, false
	}
	out := append([]string(nil), order...)
	i, j := positions[at], positions[other]
	out[i], out[j] = out[j], out[i]
	return out, true
}
