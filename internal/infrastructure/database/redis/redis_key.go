package redis

import (
	"fmt"
	"regexp"
	"strings"
)

// RedisKeyGenerator préfixe les clés du magasin par l'espace de noms de l'instance
// Format: catalog_{namespace}:{clé de collection}
type RedisKeyGenerator struct {
	namespace string
}

var (
	validNamespace = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)
	validKey       = regexp.MustCompile(`^[a-zA-Z0-9_:.\-]+$`)
)

// NewRedisKeyGenerator crée le générateur; un espace de noms vide vaut "default"
func NewRedisKeyGenerator(namespace string) *RedisKeyGenerator {
	namespace = strings.ToLower(strings.TrimSpace(namespace))
	if namespace == "" {
		namespace = "default"
	}
	return &RedisKeyGenerator{namespace: namespace}
}

// Prefix préfixe commun à toutes les clés de l'instance
func (rkg *RedisKeyGenerator) Prefix() string {
	return fmt.Sprintf("catalog_%s", rkg.namespace)
}

// GenerateKey clé Redis d'une collection
func (rkg *RedisKeyGenerator) GenerateKey(key string) (string, error) {
	full := rkg.Prefix() + ":" + key
	if err := rkg.ValidateKey(full); err != nil {
		return "", err
	}
	return full, nil
}

// ValidateKey valide qu'une clé respecte les conventions
func (rkg *RedisKeyGenerator) ValidateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("clé vide")
	}

	if len(key) > 250 {
		return fmt.Errorf("clé trop longue (max 250 caractères): %d", len(key))
	}

	if !validKey.MatchString(key) {
		return fmt.Errorf("clé contient des caractères invalides: %s", key)
	}

	parts := strings.SplitN(key, ":", 2)
	if len(parts) < 2 || parts[1] == "" {
		return fmt.Errorf("clé sans collection: %s", key)
	}

	prefix := parts[0]
	if !strings.HasPrefix(prefix, "catalog_") {
		return fmt.Errorf("clé doit commencer par 'catalog_': %s", key)
	}
	if !validNamespace.MatchString(strings.TrimPrefix(prefix, "catalog_")) {
		return fmt.Errorf("espace de noms invalide: %s", prefix)
	}

	return nil
}

// CollectionKey retire le préfixe d'une clé Redis
func (rkg *RedisKeyGenerator) CollectionKey(key string) (string, bool) {
	return strings.CutPrefix(key, rkg.Prefix()+":")
}

// GenerateWildcardPattern motif SCAN de toutes les clés de l'instance
func (rkg *RedisKeyGenerator) GenerateWildcardPattern() string {
	return rkg.Prefix() + ":*"
}
