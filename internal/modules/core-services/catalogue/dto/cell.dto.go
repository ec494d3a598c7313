package dto

import (
	"encoding/json"
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
)

// Kind colonne de la matrice: base, surco ou option-<levelId>
type Kind string

const (
	KindBase  Kind = "base"
	KindSurco Kind = "surco"

	optionPrefix = "option-"
)

// OptionKind colonne option d'un niveau
func OptionKind(levelID string) Kind {
	return Kind(optionPrefix + levelID)
}

// OptionLevelID niveau visé par une colonne option
func (k Kind) OptionLevelID() (string, bool) {
	if !strings.HasPrefix(string(k), optionPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(string(k), optionPrefix)
	return id, id != ""
}

// ParseKind normalise une colonne; ok=false si la forme est invalide
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch Kind(lower) {
	case KindBase, KindSurco:
		return Kind(lower), true
	}
	if strings.HasPrefix(lower, optionPrefix) && len(s) > len(optionPrefix) {
		return OptionKind(s[len(optionPrefix):]), true
	}
	return "", false
}

// CellKey clé unique d'une cellule
type CellKey struct {
	GroupID string `json:"groupId"`
	ActID   string `json:"actId"`
	LevelID string `json:"levelId"`
	Kind    Kind   `json:"kind"`
}

func (k CellKey) String() string {
	return k.GroupID + "/" + k.ActID + "/" + k.LevelID + "/" + string(k.Kind)
}

// CellValue valeur typée d'un triplet (acte, niveau, colonne) dans un groupe.
// Value est la saisie affichable; l'affichage dépendant est recalculé à la lecture.
type CellValue struct {
	GroupID    string                 `json:"groupId"`
	ActID      string                 `json:"actId"`
	LevelID    string                 `json:"levelId"`
	Kind       Kind                   `json:"kind"`
	Type       string                 `json:"type,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Expression string                 `json:"expression,omitempty"`
	Value      string                 `json:"value"`
	DependsOn  Dependency             `json:"-"`
	audit.Fields
}

// Key clé de la cellule
func (c *CellValue) Key() CellKey {
	return CellKey{GroupID: c.GroupID, ActID: c.ActID, LevelID: c.LevelID, Kind: c.Kind}
}

// Clone copie profonde (data et dépendance comprises)
func (c *CellValue) Clone() *CellValue {
	out := *c
	if c.Data != nil {
		out.Data = make(map[string]interface{}, len(c.Data))
		for k, v := range c.Data {
			out.Data[k] = v
		}
	}
	out.DependsOn = CloneDependency(c.DependsOn)
	return &out
}

func (c CellValue) MarshalJSON() ([]byte, error) {
	type plain CellValue
	return json.Marshal(struct {
		plain
		DependsOn *dependencyWire `json:"dependsOn"`
	}{plain: plain(c), DependsOn: toWire(c.DependsOn)})
}

// UnmarshalJSON tolère une dépendance illisible: elle est ignorée et la cellule conservée
func (c *CellValue) UnmarshalJSON(b []byte) error {
	type plain CellValue
	aux := struct {
		*plain
		DependsOn json.RawMessage `json:"dependsOn"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	dep, err := DecodeDependency(aux.DependsOn)
	if err != nil {
		dep = nil
	}
	c.DependsOn = dep
	return nil
}
