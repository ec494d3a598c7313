package labels

import (
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
)

// Bucket regroupement affiché: un libellé ou la liste libre (LabelID vide)
type Bucket struct {
	LabelID string   `json:"labelId,omitempty"`
	Libelle string   `json:"libelle,omitempty"`
	ActIDs  []string `json:"actIds"`
	Free    bool     `json:"free"`
}

// Available actes membres de la catégorie non revendiqués par un autre libellé.
// excludeLabelID permet à un libellé de récupérer ses propres actes.
func Available(members []string, labels []dto.Label, excludeLabelID string) []string {
	claimed := map[string]bool{}
	for _, l := range labels {
		if l.ID == excludeLabelID {
			continue
		}
		for _, id := range l.ActIDs {
			claimed[id] = true
		}
	}
	out := []string{}
	for _, id := range members {
		if !claimed[id] {
			out = append(out, id)
		}
	}
	return out
}

func checkSelection(libelle string, actIDs, available []string) ([]string, error) {
	if strings.TrimSpace(libelle) == "" {
		return nil, dto.NewValidationError("le libellé est obligatoire", nil)
	}
	actIDs = uniq(actIDs)
	if len(actIDs) == 0 {
		return nil, dto.NewValidationError("un libellé doit contenir au moins un acte", nil)
	}
	allowed := map[string]bool{}
	for _, id := range available {
		allowed[id] = true
	}
	var rejected []string
	for _, id := range actIDs {
		if !allowed[id] {
			rejected = append(rejected, id)
		}
	}
	if len(rejected) > 0 {
		return nil, dto.NewValidationError("actes indisponibles pour ce libellé", map[string]interface{}{
			"actIds": rejected,
		})
	}
	return actIDs, nil
}

// Create ajoute un libellé; les actes doivent être disponibles
func Create(labels []dto.Label, members []string, id, libelle string, actIDs []string) ([]dto.Label, error) {
	ids, err := checkSelection(libelle, actIDs, Available(members, labels, ""))
	if err != nil {
		return labels, err
	}
	out := append(append([]dto.Label(nil), labels...), dto.Label{
		ID:      id,
		Libelle: strings.TrimSpace(libelle),
		ActIDs:  ids,
	})
	return out, nil
}

// Update remplace libellé et actes en excluant ses anciens actes du calcul de disponibilité
func Update(labels []dto.Label, members []string, id, libelle string, actIDs []string) ([]dto.Label, error) {
	idx := indexOf(labels, id)
	if idx < 0 {
		return labels, dto.NewNotFoundError("libellé", id)
	}
	ids, err := checkSelection(libelle, actIDs, Available(members, labels, id))
	if err != nil {
		return labels, err
	}
	out := append([]dto.Label(nil), labels...)
	out[idx] = dto.Label{ID: id, Libelle: strings.TrimSpace(libelle), ActIDs: ids}
	return out, nil
}

// Delete retire le libellé; ses actes retournent dans la liste libre
func Delete(labels []dto.Label, id string) ([]dto.Label, error) {
	idx := indexOf(labels, id)
	if idx < 0 {
		return labels, dto.NewNotFoundError("libellé", id)
	}
	out := append([]dto.Label(nil), labels[:idx]...)
	return append(out, labels[idx+1:]...), nil
}

// Normalize restreint les libellés aux membres courants et rétablit la partition:
// un acte revendiqué deux fois reste au premier libellé, un libellé vidé disparaît.
func Normalize(labels []dto.Label, members []string, newID func() string) []dto.Label {
	member := map[string]bool{}
	for _, id := range members {
		member[id] = true
	}
	claimed := map[string]bool{}
	seenIDs := map[string]bool{}
	out := []dto.Label{}
	for _, l := range labels {
		libelle := strings.TrimSpace(l.Libelle)
		if libelle == "" {
			continue
		}
		var ids []string
		for _, id := range l.ActIDs {
			id = strings.TrimSpace(id)
			if member[id] && !claimed[id] {
				claimed[id] = true
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		id := strings.TrimSpace(l.ID)
		if id == "" || seenIDs[id] {
			id = newID()
		}
		seenIDs[id] = true
		out = append(out, dto.Label{ID: id, Libelle: libelle, ActIDs: ids})
	}
	return out
}

// Buckets libellés dans leur ordre puis la liste libre, actes dans l'ordre des membres
func Buckets(labels []dto.Label, members []string) []Bucket {
	pos := map[string]int{}
	for i, id := range members {
		pos[id] = i
	}
	claimed := map[string]bool{}
	var out []Bucket
	for _, l := range labels {
		var ids []string
		for _, id := range l.ActIDs {
			if _, ok := pos[id]; ok && !claimed[id] {
				claimed[id] = true
				ids = append(ids, id)
			}
		}
		sortByPosition(ids, pos)
		out = append(out, Bucket{LabelID: l.ID, Libelle: l.Libelle, ActIDs: ids})
	}
	free := []string{}
	for _, id := range members {
		if !claimed[id] {
			free = append(free, id)
		}
	}
	return append(out, Bucket{ActIDs: free, Free: true})
}

func sortByPosition(ids []string, pos map[string]int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && pos[ids[j]] < pos[ids[j-1]]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

func indexOf(labels []dto.Label, id string) int {
	for i, l := range labels {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
