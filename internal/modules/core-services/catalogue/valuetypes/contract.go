package valuetypes

import (
	"fmt"
	"math"
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
)

// Clés numériques lues en priorité dans data
var preferredKeys = []string{"amount", "montant", "percent", "taux"}

// Bornes conservées par Normalize même hors définition
var hintKeys = []string{"min", "max"}

// Validate vérifie data contre la définition; erreurs détaillées par champ
func Validate(def *dto.ValueType, data map[string]interface{}) error {
	if def == nil {
		return nil
	}
	problems := map[string]interface{}{}
	for _, f := range def.Champs {
		raw, present := data[f.Name]
		if present && isBlank(raw) {
			present = false
		}
		if !present {
			if f.Required {
				problems[f.Name] = "champ obligatoire"
			}
			continue
		}
		if msg := checkField(f, raw); msg != "" {
			problems[f.Name] = msg
		}
	}
	if len(problems) > 0 {
		return dto.NewValidationError(fmt.Sprintf("valeur invalide pour le type %s", def.Code), problems)
	}
	return nil
}

func checkField(f dto.ValueField, raw interface{}) string {
	switch f.Kind {
	case dto.FieldNumber:
		v, ok := dto.ToFloat(raw)
		if !ok {
			return "nombre attendu"
		}
		if f.Min != nil && v < float64(*f.Min) {
			return fmt.Sprintf("doit être >= %s", FormatNumber(float64(*f.Min)))
		}
		if f.Max != nil && v > float64(*f.Max) {
			return fmt.Sprintf("doit être <= %s", FormatNumber(float64(*f.Max)))
		}
		if f.Step != nil && *f.Step > 0 {
			base := 0.0
			if f.Min != nil {
				base = float64(*f.Min)
			}
			steps := (v - base) / float64(*f.Step)
			if math.Abs(steps-math.Round(steps)) > 1e-9 {
				return fmt.Sprintf("doit être un multiple de %s", FormatNumber(float64(*f.Step)))
			}
		}
	case dto.FieldEnum:
		s, ok := raw.(string)
		if !ok {
			return "valeur de liste attendue"
		}
		if len(f.Options) > 0 && !contains(f.Options, strings.TrimSpace(s)) {
			return fmt.Sprintf("valeur hors liste (%s)", strings.Join(f.Options, ", "))
		}
	case dto.FieldBoolean:
		if _, ok := raw.(bool); !ok {
			return "booléen attendu"
		}
	default:
		if _, ok := raw.(string); !ok {
			return "texte attendu"
		}
	}
	return ""
}

// Normalize convertit data selon la définition et écarte les clés inconnues.
// Sans définition, data est recopiée telle quelle.
func Normalize(def *dto.ValueType, data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	out := map[string]interface{}{}
	if def == nil {
		for k, v := range data {
			out[k] = v
		}
		return out
	}
	for _, f := range def.Champs {
		raw, ok := data[f.Name]
		if !ok || raw == nil {
			continue
		}
		switch f.Kind {
		case dto.FieldNumber:
			if v, ok := dto.ToFloat(raw); ok {
				out[f.Name] = v
			} else {
				out[f.Name] = raw
			}
		case dto.FieldBoolean:
			switch b := raw.(type) {
			case bool:
				out[f.Name] = b
			case string:
				out[f.Name] = truthyString(b)
			case float64:
				out[f.Name] = b != 0
			default:
				out[f.Name] = raw
			}
		default:
			if s, ok := raw.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out[f.Name] = s
				}
			} else {
				out[f.Name] = raw
			}
		}
	}
	for _, k := range hintKeys {
		if v, ok := dto.ToFloat(data[k]); ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Render texte affiché à partir des champs typés
func Render(def *dto.ValueType, data map[string]interface{}) string {
	if def == nil {
		return ""
	}
	if len(def.Champs) == 0 {
		return def.Libelle
	}
	var parts []string
	for _, f := range def.Champs {
		raw, ok := data[f.Name]
		if !ok || isBlank(raw) {
			continue
		}
		switch f.Kind {
		case dto.FieldNumber:
			if v, ok := dto.ToFloat(raw); ok {
				parts = append(parts, FormatNumber(v)+f.Suffix)
			}
		case dto.FieldBoolean:
			if b, ok := raw.(bool); ok && b {
				label := f.Label
				if label == "" {
					label = f.Name
				}
				parts = append(parts, label)
			}
		default:
			if s, ok := raw.(string); ok {
				parts = append(parts, strings.TrimSpace(s)+f.Suffix)
			}
		}
	}
	return strings.Join(parts, " ")
}

// Extract quantité numérique d'une cellule: champs numériques explicites d'abord,
// puis premier nombre du texte affiché. Le suffixe du texte source est propagé.
func Extract(def *dto.ValueType, data map[string]interface{}, value string) (Quantity, bool) {
	parsed, parsedOK := ParseQuantity(value)

	var q Quantity
	found := false
	for _, k := range preferredKeys {
		if v, ok := dto.ToFloat(data[k]); ok {
			q = Quantity{Value: v, Suffix: fieldSuffix(def, k)}
			found = true
			break
		}
	}
	if !found && def != nil {
		for _, f := range def.Champs {
			if f.Kind != dto.FieldNumber {
				continue
			}
			if v, ok := dto.ToFloat(data[f.Name]); ok {
				q = Quantity{Value: v, Suffix: f.Suffix}
				found = true
				break
			}
		}
	}
	if !found {
		if !parsedOK {
			return Quantity{}, false
		}
		q = parsed
	} else if parsedOK && parsed.Suffix != "" {
		q.Suffix = parsed.Suffix
	}
	if v, ok := dto.ToFloat(data["min"]); ok {
		q.Min = &v
	}
	if v, ok := dto.ToFloat(data["max"]); ok {
		q.Max = &v
	}
	return q, true
}

func fieldSuffix(def *dto.ValueType, name string) string {
	if def == nil {
		return ""
	}
	for _, f := range def.Champs {
		if f.Name == name {
			return f.Suffix
		}
	}
	return ""
}

func isBlank(raw interface{}) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func truthyString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "oui", "yes", "on":
		return true
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
