package seeds

import "fmt"

// SeedingError représente une erreur de seeding
type SeedingError struct {
	Message string                 `json:"message"`
	Type    string                 `json:"type"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implémente l'interface error
func (e *SeedingError) Error() string {
	return e.Message
}

// NewSeedingError crée une nouvelle erreur de seeding
func NewSeedingError(message, errorType string, details map[string]interface{}) *SeedingError {
	return &SeedingError{
		Message: message,
		Type:    errorType,
		Details: details,
	}
}

// Erreurs prédéfinies pour le seeding
var (
	ErrFileLoad = func(filePath string, err error) error {
		return NewSeedingError(
			fmt.Sprintf("impossible de charger le fichier de seed %s: %v", filePath, err),
			"file_load_error",
			map[string]interface{}{"file_path": filePath, "error": err.Error()},
		)
	}

	ErrUnknownCollection = func(key string) error {
		return NewSeedingError(
			fmt.Sprintf("collection %s inconnue", key),
			"unknown_collection",
			map[string]interface{}{"key": key},
		)
	}

	ErrInvalidCollection = func(key string, err error) error {
		return NewSeedingError(
			fmt.Sprintf("collection %s invalide: %v", key, err),
			"invalid_collection",
			map[string]interface{}{"key": key, "error": err.Error()},
		)
	}

	ErrStoreOperation = func(operation string, err error) error {
		return NewSeedingError(
			fmt.Sprintf("erreur magasin lors de %s: %v", operation, err),
			"store_error",
			map[string]interface{}{"operation": operation, "error": err.Error()},
		)
	}
)
