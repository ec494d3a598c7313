package labels

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/modules/core-services/catalogue/dto"
)

var members = []string{"a1", "a2", "a3", "a4"}

func assertPartition(t *testing.T, labels []dto.Label) {
	t.Helper()
	seen := map[string]string{}
	for _, l := range labels {
		for _, id := range l.ActIDs {
			prev, dup := seen[id]
			assert.False(t, dup, "acte %s présent dans %s et %s", id, prev, l.ID)
			seen[id] = l.ID
		}
	}
}

func TestCreateRejectsClaimedOrForeignActs(t *testing.T) {
	labels, err := Create(nil, members, "l1", "Optique", []string{"a1", "a2"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		actIDs []string
	}{
		{"vide", nil},
		{"déjà revendiqué", []string{"a2", "a3"}},
		{"hors catégorie", []string{"zz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Create(labels, members, "l2", "Dentaire", tt.actIDs)
			require.Error(t, err)
			assert.True(t, dto.IsValidation(err))
			assert.Equal(t, labels, out)
		})
	}

	_, err = Create(labels, members, "l2", "   ", []string{"a3"})
	assert.True(t, dto.IsValidation(err))
}

func TestUpdateCanKeepOwnActs(t *testing.T) {
	labels, _ := Create(nil, members, "l1", "Optique", []string{"a1", "a2"})
	labels, _ = Create(labels, members, "l2", "Dentaire", []string{"a3"})

	labels, err := Update(labels, members, "l1", "Optique+", []string{"a2", "a4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a4"}, labels[0].ActIDs)
	assert.Equal(t, "Optique+", labels[0].Libelle)

	_, err = Update(labels, members, "l1", "Optique", []string{"a3"})
	assert.True(t, dto.IsValidation(err))
	_, err = Update(labels, members, "nope", "x", []string{"a1"})
	assert.True(t, dto.IsNotFound(err))
	assertPartition(t, labels)
}

func TestDeleteReturnsActsToFreeList(t *testing.T) {
	labels, _ := Create(nil, members, "l1", "Optique", []string{"a1", "a2"})
	labels, err := Delete(labels, "l1")
	require.NoError(t, err)
	assert.Empty(t, labels)
	assert.Equal(t, members, Available(members, labels, ""))
}

func TestBucketsFollowMemberOrder(t *testing.T) {
	labels := []dto.Label{{ID: "l1", Libelle: "B", ActIDs: []string{"a3", "a1"}}}
	got := Buckets(labels, members)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"a1", "a3"}, got[0].ActIDs)
	assert.True(t, got[1].Free)
	assert.Equal(t, []string{"a2", "a4"}, got[1].ActIDs)
}

func TestNormalizeRestoresPartition(t *testing.T) {
	n := 0
	newID := func() string { n++; return fmt.Sprintf("gen-%d", n) }
	raw := []dto.Label{
		{ID: "l1", Libelle: " A ", ActIDs: []string{"a1", "a2", "gone"}},
		{ID: "l1", Libelle: "B", ActIDs: []string{"a2", "a3"}},
		{ID: "l3", Libelle: "C", ActIDs: []string{"a1"}},
		{ID: "l4", Libelle: "", ActIDs: []string{"a4"}},
	}
	got := Normalize(raw, members, newID)

	assert.Equal(t, []dto.Label{
		{ID: "l1", Libelle: "A", ActIDs: []string{"a1", "a2"}},
		{ID: "gen-1", Libelle: "B", ActIDs: []string{"a3"}},
	}, got)
	assertPartition(t, got)
	assert.Equal(t, got, Normalize(got, members, newID))
}
