package audit

import "time"

// SystemUser identité utilisée quand aucun utilisateur n'est fourni
const SystemUser = "system"

// Fields bloc d'audit porté par chaque enregistrement persisté
type Fields struct {
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	CreatedBy string     `json:"createdBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	DeletedAt *time.Time `json:"deletedAt"`
	DeletedBy *string    `json:"deletedBy"`
}

// Record tout enregistrement exposant son bloc d'audit
type Record interface {
	AuditFields() *Fields
}

// AuditFields implémente Record pour les structs qui embarquent Fields
func (f *Fields) AuditFields() *Fields { return f }

// IsActive indique si l'enregistrement n'est pas tombstoné
func (f *Fields) IsActive() bool { return f.DeletedAt == nil }

// Stamper applique les tampons d'audit avec une horloge injectable
type Stamper struct {
	Clock func() time.Time
}

// NewStamper crée un Stamper sur l'horloge système
func NewStamper() *Stamper {
	return &Stamper{Clock: time.Now}
}

func (s *Stamper) now() time.Time {
	if s == nil || s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

// Now instant courant de l'horloge, en UTC
func (s *Stamper) Now() time.Time {
	return s.now()
}

// ApplyCreate tamponne createdAt/By et updatedAt/By, et remet le tombstone à zéro
func (s *Stamper) ApplyCreate(r Record, user string) {
	f := r.AuditFields()
	now := s.now()
	user = identity(user)
	f.CreatedAt = &now
	f.CreatedBy = user
	f.UpdatedAt = &now
	f.UpdatedBy = user
	f.DeletedAt = nil
	f.DeletedBy = nil
}

// ApplyUpdate rafraîchit updatedAt/By
func (s *Stamper) ApplyUpdate(r Record, user string) {
	f := r.AuditFields()
	now := s.now()
	f.UpdatedAt = &now
	f.UpdatedBy = identity(user)
}

// ApplyDelete pose le tombstone (soft delete)
func (s *Stamper) ApplyDelete(r Record, user string) {
	f := r.AuditFields()
	now := s.now()
	user = identity(user)
	f.DeletedAt = &now
	f.DeletedBy = &user
	f.UpdatedAt = &now
	f.UpdatedBy = user
}

// Restore efface le tombstone
func (s *Stamper) Restore(r Record, user string) {
	f := r.AuditFields()
	f.DeletedAt = nil
	f.DeletedBy = nil
	s.ApplyUpdate(r, user)
}

// EnsureFields complète un enregistrement legacy sans écraser l'existant.
// Au premier passage updatedAt/By reprennent createdAt/By.
func (s *Stamper) EnsureFields(r Record) {
	f := r.AuditFields()
	if f.CreatedAt == nil {
		now := s.now()
		f.CreatedAt = &now
	}
	if f.CreatedBy == "" {
		f.CreatedBy = SystemUser
	}
	if f.UpdatedAt == nil {
		at := *f.CreatedAt
		f.UpdatedAt = &at
	}
	if f.UpdatedBy == "" {
		f.UpdatedBy = f.CreatedBy
	}
	if f.DeletedAt == nil {
		f.DeletedBy = nil
	} else if f.DeletedBy == nil {
		sys := SystemUser
		f.DeletedBy = &sys
	}
}

func identity(user string) string {
	if user == "" {
		return SystemUser
	}
	return user
}
