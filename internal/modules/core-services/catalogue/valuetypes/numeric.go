package valuetypes

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var numericToken = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// Quantity contenu numérique d'une cellule: valeur, bornes optionnelles et unité
type Quantity struct {
	Value  float64  `json:"value"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Suffix string   `json:"suffix,omitempty"`
}

// Display rendu "<nombre><suffixe>"
func (q Quantity) Display() string {
	return FormatNumber(q.Value) + q.Suffix
}

// ParseQuantity extrait le premier nombre signé d'un texte libre.
// La virgule vaut séparateur décimal; le reste du texte devient le suffixe.
func ParseQuantity(text string) (Quantity, bool) {
	loc := numericToken.FindStringIndex(text)
	if loc == nil {
		return Quantity{}, false
	}
	token := strings.Replace(text[loc[0]:loc[1]], ",", ".", 1)
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Quantity{}, false
	}
	return Quantity{Value: v, Suffix: strings.TrimSpace(text[loc[1]:])}, true
}

// FormatNumber entiers sans décimales, sinon deux décimales (".00" retiré)
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		if v == 0 {
			return "0"
		}
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	s := decimal.NewFromFloat(v).StringFixed(2)
	s = strings.TrimSuffix(s, ".00")
	if s == "-0" {
		return "0"
	}
	return s
}
