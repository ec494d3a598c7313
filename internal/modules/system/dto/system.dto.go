package dto

// ReferentielStatusDTO collections de référence présentes et manquantes
type ReferentielStatusDTO struct {
	Present []string `json:"present"`
	Missing []string `json:"missing"`
}

// CataloguesStatusDTO décompte des catalogues
type CataloguesStatusDTO struct {
	Actifs    int            `json:"actifs"`
	Supprimes int            `json:"supprimes"`
	ParStatut map[string]int `json:"par_statut"`
}

// SystemInfoResponse représente la réponse complète de /api/v1/system/info
type SystemInfoResponse struct {
	Environment string               `json:"environment"`
	Backend     string               `json:"backend"`
	MaxDepth    int                  `json:"max_depth"`
	Referentiel ReferentielStatusDTO `json:"referentiel"`
	Catalogues  CataloguesStatusDTO  `json:"catalogues"`
	ValueTypes  []string             `json:"value_types"`
}

// StandardAPIResponse représente la structure standard des réponses API
type StandardAPIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Alertes []AlerteDTO `json:"alertes,omitempty"`
}

// AlerteDTO représente une alerte système
type AlerteDTO struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
