package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name string
	Fields
}

func fixedStamper(t time.Time) *Stamper {
	return &Stamper{Clock: func() time.Time { return t }}
}

func TestApplyCreateFallsBackToSystemIdentity(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &record{Name: "x"}

	fixedStamper(now).ApplyCreate(r, "")

	require.NotNil(t, r.CreatedAt)
	assert.Equal(t, now, *r.CreatedAt)
	assert.Equal(t, SystemUser, r.CreatedBy)
	assert.Equal(t, SystemUser, r.UpdatedBy)
	assert.True(t, r.IsActive())
}

func TestApplyDeleteThenRestore(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := fixedStamper(now)
	r := &record{}
	s.ApplyCreate(r, "alice")

	s.ApplyDelete(r, "bob")
	assert.False(t, r.IsActive())
	require.NotNil(t, r.DeletedBy)
	assert.Equal(t, "bob", *r.DeletedBy)
	assert.Equal(t, "alice", r.CreatedBy)

	s.Restore(r, "carol")
	assert.True(t, r.IsActive())
	assert.Nil(t, r.DeletedBy)
	assert.Equal(t, "carol", r.UpdatedBy)
}

func TestEnsureFieldsIsIdempotent(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)
	r := &record{}

	fixedStamper(first).EnsureFields(r)
	snapshot := r.Fields
	fixedStamper(later).EnsureFields(r)

	assert.Equal(t, snapshot, r.Fields)
	assert.Equal(t, first, *r.UpdatedAt)
	assert.Equal(t, SystemUser, r.UpdatedBy)
}

func TestEnsureFieldsKeepsExistingValues(t *testing.T) {
	created := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	r := &record{Fields: Fields{CreatedAt: &created, CreatedBy: "legacy"}}

	fixedStamper(time.Now()).EnsureFields(r)

	assert.Equal(t, created, *r.CreatedAt)
	assert.Equal(t, created, *r.UpdatedAt)
	assert.Equal(t, "legacy", r.UpdatedBy)
}
