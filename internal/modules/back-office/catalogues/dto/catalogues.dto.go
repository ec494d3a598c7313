package dto

import (
	"encoding/json"

	coredto "github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
)

// DTOs pour /api/v1/catalogues
type CatalogueRequest struct {
	OfferID              string   `json:"offerId" validate:"required"`
	Risk                 string   `json:"risk" validate:"required"`
	Year                 int      `json:"year" validate:"required,min=1900,max=2200"`
	Version              string   `json:"version" validate:"omitempty,max=50"`
	Status               string   `json:"status" validate:"omitempty,max=30"`
	ValidFrom            string   `json:"validFrom"`
	ValidTo              string   `json:"validTo"`
	AllowMultipleNiveaux bool     `json:"allowMultipleNiveaux"`
	DefaultNiveauSetID   string   `json:"defaultNiveauSetId"`
	CatPersonnelIDs      []string `json:"catPersonnelIds" validate:"dive,required"`
}

type ModuleRequest struct {
	ModuleID    string   `json:"moduleId" validate:"required"`
	CategoryIDs []string `json:"categoryIds" validate:"dive,required"`
}

type ModuleCategoriesRequest struct {
	CategoryIDs []string `json:"categoryIds" validate:"dive,required"`
}

type MoveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down haut bas"`
}

// DTOs pour /api/v1/catalogues/:id/groupes
type GroupRequest struct {
	ModuleID               string            `json:"moduleId" validate:"required"`
	Nom                    string            `json:"nom" validate:"max=200"`
	Priorite               int               `json:"priorite" validate:"min=0"`
	SelectionType          string            `json:"selectionType"`
	CategorySelectionTypes map[string]string `json:"categorySelectionTypes"`
	NiveauSetBaseID        string            `json:"niveauSetBaseId"`
	NiveauSetSurcoID       string            `json:"niveauSetSurcoId"`
	SubItems               []coredto.SubItem `json:"subItems"`
}

type MembersRequest struct {
	ActIDs []string `json:"actIds" validate:"dive,required"`
}

type LabelRequest struct {
	Libelle string   `json:"libelle" validate:"required,max=200"`
	ActIDs  []string `json:"actIds" validate:"required,min=1,dive,required"`
}

// CellRequest contenu d'une cellule; dependsOn suit le format stocké
type CellRequest struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	Value      string                 `json:"value"`
	Expression string                 `json:"expression"`
	DependsOn  json.RawMessage        `json:"dependsOn"`
}

type GridCellRequest struct {
	ActID   string `json:"actId" validate:"required"`
	LevelID string `json:"levelId" validate:"required"`
	Kind    string `json:"kind" validate:"required"`
	CellRequest
}

// GridRequest état de la grille envoyé au verrouillage
type GridRequest struct {
	MemberOrder []string          `json:"memberOrder"`
	CatOrder    []string          `json:"catOrder"`
	Cells       []GridCellRequest `json:"cells" validate:"dive"`
}

// CellDraftResponse brouillon ouvert par GET sur une cellule
type CellDraftResponse struct {
	Key     coredto.CellKey `json:"key"`
	Exists  bool            `json:"exists"`
	Content *CellContent    `json:"content,omitempty"`
}

type CellContent struct {
	Type       string                 `json:"type,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Value      string                 `json:"value"`
	Expression string                 `json:"expression,omitempty"`
	DependsOn  json.RawMessage        `json:"dependsOn"`
}

type ValidationError struct {
	Code   string            `json:"code"`
	Champs map[string]string `json:"champs"`
}
