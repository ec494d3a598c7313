package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	dto "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/back-office/catalogues/dto"
	coredto "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/ordering"
	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/services"
)

// newValidator validateur dont les erreurs portent les noms JSON des champs
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func success(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// bind décode le corps JSON puis applique les règles validate; false si une réponse 400 est partie
func bind(ctx *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Données invalides",
			"details": map[string]interface{}{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return false
	}
	if verr := validateRequest(v, req); verr != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Erreur de validation",
			"details": verr,
		})
		return false
	}
	return true
}

func validateRequest(v *validator.Validate, req interface{}) *dto.ValidationError {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	validationError := &dto.ValidationError{
		Code:   "VALIDATION_ERROR",
		Champs: make(map[string]string),
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		validationError.Champs["body"] = err.Error()
		return validationError
	}
	for _, fieldErr := range fieldErrs {
		validationError.Champs[fieldErr.Field()] = validationMessage(fieldErr)
	}
	return validationError
}

func validationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "Ce champ est requis"
	case "min":
		return fmt.Sprintf("Doit valoir au moins %s", err.Param())
	case "max":
		return fmt.Sprintf("Doit valoir au maximum %s", err.Param())
	case "oneof":
		return fmt.Sprintf("Valeur invalide. Valeurs autorisées: %s", err.Param())
	default:
		return "Valeur invalide"
	}
}

// respondError traduit une erreur de service en réponse HTTP
func respondError(ctx *gin.Context, err error, fallback string) {
	var se *coredto.ServiceError
	if !errors.As(err, &se) {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": fallback,
			"details": map[string]interface{}{
				"code":    "INTERNAL_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	status, code := http.StatusBadRequest, "VALIDATION_ERROR"
	switch se.Type {
	case coredto.ErrorTypeReferential:
		code = "REFERENTIAL_ERROR"
	case coredto.ErrorTypeAuthorization:
		status, code = http.StatusForbidden, "FORBIDDEN"
	case coredto.ErrorTypeNotFound:
		status, code = http.StatusNotFound, "NOT_FOUND"
	}
	details := map[string]interface{}{"code": code}
	if len(se.Details) > 0 {
		details["champs"] = se.Details
	}
	ctx.JSON(status, gin.H{
		"error":   se.Message,
		"details": details,
	})
}

// direction lit le sens d'un déplacement
func direction(ctx *gin.Context, v *validator.Validate) (ordering.Direction, bool) {
	var req dto.MoveRequest
	if !bind(ctx, v, &req) {
		return ordering.Up, false
	}
	dir, _ := ordering.ParseDirection(req.Direction)
	return dir, true
}

// cellInput convertit le contenu reçu; une dépendance illisible est une erreur de validation
func cellInput(req dto.CellRequest) (services.CellInput, error) {
	in := services.CellInput{
		Type:       req.Type,
		Data:       req.Data,
		Value:      req.Value,
		Expression: req.Expression,
	}
	raw := bytes.TrimSpace(req.DependsOn)
	if len(raw) == 0 || string(raw) == "null" {
		return in, nil
	}
	dep, err := coredto.DecodeDependency(raw)
	if err != nil || dep == nil {
		return in, coredto.NewValidationError("dépendance invalide", map[string]interface{}{
			"dependsOn": string(raw),
		})
	}
	in.DependsOn = dep
	return in, nil
}

func cellContent(in services.CellInput) *dto.CellContent {
	out := &dto.CellContent{
		Type:       in.Type,
		Data:       in.Data,
		Value:      in.Value,
		Expression: in.Expression,
		DependsOn:  []byte("null"),
	}
	if in.DependsOn != nil {
		if b, err := coredto.EncodeDependency(in.DependsOn); err == nil {
			out.DependsOn = b
		}
	}
	return out
}
