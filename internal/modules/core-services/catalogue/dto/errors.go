package dto

import (
	"errors"
	"fmt"
)

// ServiceError erreur métier typée renvoyée par les services du catalogue
type ServiceError struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

const (
	ErrorTypeValidation    = "validation"
	ErrorTypeReferential   = "referential"
	ErrorTypeAuthorization = "authorization"
	ErrorTypeNotFound      = "not_found"
)

// NewValidationError mutation rejetée, la collection reste inchangée
func NewValidationError(message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{Type: ErrorTypeValidation, Message: message, Details: details}
}

// NewReferentialError référence absente; utilisé hors sanitation (lecture ciblée)
func NewReferentialError(message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{Type: ErrorTypeReferential, Message: message, Details: details}
}

// NewAuthorizationError refus du gate avant toute modification
func NewAuthorizationError(cause error) *ServiceError {
	return &ServiceError{Type: ErrorTypeAuthorization, Message: cause.Error()}
}

// NewNotFoundError ressource inconnue ou supprimée
func NewNotFoundError(resource, id string) *ServiceError {
	return &ServiceError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s introuvable", resource),
		Details: map[string]interface{}{"resource": resource, "id": id},
	}
}

// ErrorType type d'une ServiceError enveloppée, vide sinon
func ErrorType(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}

func IsValidation(err error) bool    { return ErrorType(err) == ErrorTypeValidation }
func IsReferential(err error) bool   { return ErrorType(err) == ErrorTypeReferential }
func IsAuthorization(err error) bool { return ErrorType(err) == ErrorTypeAuthorization }
func IsNotFound(err error) bool      { return ErrorType(err) == ErrorTypeNotFound }
