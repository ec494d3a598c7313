package dto

import (
	"strconv"
	"strings"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/shared/audit"
)

// CatalogueStatus statut de publication
type CatalogueStatus string

const (
	StatusBrouillon CatalogueStatus = "brouillon"
	StatusActif     CatalogueStatus = "actif"
	StatusArchive   CatalogueStatus = "archive"
)

// ParseStatus normalise un statut, brouillon par défaut
func ParseStatus(s string) CatalogueStatus {
	switch st := CatalogueStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActif, StatusArchive:
		return st
	}
	return StatusBrouillon
}

// Catalogue instance offre × risque × année × version
type Catalogue struct {
	ID                   string          `json:"id"`
	OfferID              string          `json:"offerId"`
	Risk                 Risk            `json:"risk"`
	Year                 FlexInt         `json:"year"`
	Version              string          `json:"version"`
	Status               CatalogueStatus `json:"status"`
	ValidFrom            string          `json:"validFrom,omitempty"`
	ValidTo              string          `json:"validTo,omitempty"`
	AllowMultipleNiveaux Flag            `json:"allowMultipleNiveaux"`
	DefaultNiveauSetID   string          `json:"defaultNiveauSetId,omitempty"`
	CatPersonnelIDs      []string        `json:"catPersonnelIds"`
	audit.Fields
}

// UniqueKey clé d'unicité (offerId, risk, year, version) insensible à la casse
func (c *Catalogue) UniqueKey() string {
	return strings.Join([]string{
		c.OfferID,
		strings.ToLower(string(c.Risk)),
		strconv.Itoa(int(c.Year)),
		strings.ToLower(strings.TrimSpace(c.Version)),
	}, "|")
}

// CatalogueModule inclusion d'un module dans un catalogue
type CatalogueModule struct {
	CatalogueID string   `json:"catalogueId"`
	ModuleID    string   `json:"moduleId"`
	Ordre       FlexInt  `json:"ordre"`
	CategoryIDs []string `json:"categoryIds"`
	audit.Fields
}

// SelectionType mode de sélection des actes d'un groupe
type SelectionType string

const (
	SelectionRadio    SelectionType = "radio"
	SelectionCheckbox SelectionType = "checkbox"
)

// ParseSelectionType normalise, radio par défaut
func ParseSelectionType(s string) SelectionType {
	if SelectionType(strings.ToLower(strings.TrimSpace(s))) == SelectionCheckbox {
		return SelectionCheckbox
	}
	return SelectionRadio
}

// GroupState état du cycle de vie d'un groupe
type GroupState string

const (
	GroupEditing GroupState = "editing"
	GroupLocked  GroupState = "locked"
)

// Label sous-partition nommée des actes d'une catégorie dans un groupe
type Label struct {
	ID      string   `json:"id"`
	Libelle string   `json:"libelle"`
	ActIDs  []string `json:"actIds"`
}

// SubItem sous-élément libre d'un groupe
type SubItem struct {
	ID      string  `json:"id"`
	Libelle string  `json:"libelle"`
	Ordre   FlexInt `json:"ordre"`
}

// Group ensemble ordonné d'actes configurés ensemble pour (catalogue, module)
type Group struct {
	ID                     string                   `json:"id"`
	CatalogueID            string                   `json:"catalogueId"`
	ModuleID               string                   `json:"moduleId"`
	Nom                    string                   `json:"nom"`
	Priorite               FlexInt                  `json:"priorite"`
	Ordre                  FlexInt                  `json:"ordre"`
	CatOrder               []string                 `json:"catOrder"`
	SelectionType          SelectionType            `json:"selectionType"`
	CategorySelectionTypes map[string]SelectionType `json:"categorySelectionTypes"`
	CategoryGroups         map[string][]Label       `json:"categoryGroups"`
	SubItems               []SubItem                `json:"subItems"`
	NiveauSetBaseID        string                   `json:"niveauSetBaseId,omitempty"`
	NiveauSetSurcoID       string                   `json:"niveauSetSurcoId,omitempty"`
	State                  GroupState               `json:"state"`
	audit.Fields
}

// Locked vrai si la grille est finalisée
func (g *Group) Locked() bool { return g.State == GroupLocked }

// GroupMember appartenance d'un acte à un groupe
type GroupMember struct {
	GroupID string  `json:"groupId"`
	ActID   string  `json:"actId"`
	Ordre   FlexInt `json:"ordre"`
	audit.Fields
}
