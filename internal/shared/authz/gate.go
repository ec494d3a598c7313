package authz

import (
	"errors"
	"fmt"
	"strings"
)

// Capability capacité demandée par une mutation
type Capability string

const (
	CanCreate Capability = "create"
	CanUpdate Capability = "update"
	CanDelete Capability = "delete"
)

// ErrForbidden refus du gate, enveloppé par la couche service
var ErrForbidden = errors.New("action non autorisée")

// User identité transmise par l'authentification externe
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Gate évalue les capacités d'un utilisateur
type Gate interface {
	Can(user User, capability Capability) bool
}

// RoleGate associe chaque rôle à un ensemble de capacités
type RoleGate struct {
	roles map[string]map[Capability]bool
}

// DefaultRoles rôles utilisés quand la configuration n'en fournit pas
var DefaultRoles = map[string][]Capability{
	"admin":        {CanCreate, CanUpdate, CanDelete},
	"gestionnaire": {CanCreate, CanUpdate},
	"lecteur":      {},
}

// NewRoleGate construit un gate à partir d'une table rôle → capacités
func NewRoleGate(roles map[string][]Capability) *RoleGate {
	g := &RoleGate{roles: make(map[string]map[Capability]bool, len(roles))}
	for role, caps := range roles {
		set := make(map[Capability]bool, len(caps))
		for _, c := range caps {
			set[c] = true
		}
		g.roles[strings.ToLower(strings.TrimSpace(role))] = set
	}
	return g
}

func (g *RoleGate) Can(user User, capability Capability) bool {
	caps, ok := g.roles[strings.ToLower(strings.TrimSpace(user.Role))]
	if !ok {
		return false
	}
	return caps[capability]
}

// Require renvoie ErrForbidden enrichi quand la capacité est absente
func Require(g Gate, user User, capability Capability) error {
	if g.Can(user, capability) {
		return nil
	}
	role := user.Role
	if role == "" {
		role = "anonyme"
	}
	return fmt.Errorf("%w: rôle %q sans capacité %q", ErrForbidden, role, capability)
}

// ParseRoles lit le format "admin:create|update|delete,lecteur:"
func ParseRoles(value string) (map[string][]Capability, error) {
	roles := make(map[string][]Capability)
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, list, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("entrée de rôle invalide: %q", entry)
		}
		caps := []Capability{}
		for _, raw := range strings.Split(list, "|") {
			raw = strings.ToLower(strings.TrimSpace(raw))
			if raw == "" {
				continue
			}
			c := Capability(raw)
			switch c {
			case CanCreate, CanUpdate, CanDelete:
				caps = append(caps, c)
			default:
				return nil, fmt.Errorf("capacité inconnue %q pour le rôle %s", raw, name)
			}
		}
		roles[strings.TrimSpace(name)] = caps
	}
	return roles, nil
}
