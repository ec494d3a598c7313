package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexInt entier tolérant: accepte 3, 3.0, "3" ou null.
// Une valeur absente, non finie ou illisible vaut 0 (non renseignée).
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	v, ok := ParseNumber(b)
	if !ok {
		*n = 0
		return nil
	}
	*n = FlexInt(math.Round(v))
	return nil
}

// Number décimal tolérant ("12,5" accepté)
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	v, ok := ParseNumber(b)
	if !ok {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Float pointeur utilitaire
func (n *Number) Float() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}

// NumberPtr conversion inverse de Float
func NumberPtr(v *float64) *Number {
	if v == nil {
		return nil
	}
	n := Number(*v)
	return &n
}

// Flag booléen tolérant: true, "true", "1", 1, "oui"
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		*f = false
		return nil
	}
	*f = Flag(truthy(raw))
	return nil
}

func truthy(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "oui", "yes", "on":
			return true
		}
	}
	return false
}

// ParseNumber interprète un littéral JSON nombre ou chaîne numérique
func ParseNumber(b []byte) (float64, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return 0, false
	}
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return 0, false
	}
	return ToFloat(raw)
}

// ToFloat convertit une valeur décodée (nombre ou chaîne) en float fini
func ToFloat(raw interface{}) (float64, bool) {
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case FlexInt:
		v = float64(x)
	case Number:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FlexIntString rendu décimal d'un FlexInt
func FlexIntString(n FlexInt) string {
	return strconv.Itoa(int(n))
}
