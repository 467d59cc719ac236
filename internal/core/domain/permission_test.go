package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanCreateUserWithRole(t *testing.T) {
	children := DefaultRoleGraph[RoleCity]
	assert.True(t, CanCreateUserWithRole(children, RoleDistrict))
	assert.False(t, CanCreateUserWithRole(children, RoleWard))
	assert.False(t, CanCreateUserWithRole(DefaultRoleGraph[RoleCivilGroup], RoleCivilGroup))
}

func TestCanManageOtherUserDirectOnly(t *testing.T) {
	root, mid := uint(1), uint(2)

	assert.True(t, CanManageOtherUser(root, &root, true), "direct child")
	assert.False(t, CanManageOtherUser(root, &mid, true), "grandchild is not managed")
	assert.False(t, CanManageOtherUser(root, &root, false), "missing target fails closed")
	assert.False(t, CanManageOtherUser(root, nil, true), "root has no manager")
}

func TestCanCreateLocationUnder(t *testing.T) {
	provisioned := []ProvisionedName{
		{Name: "Ba Dinh", ParentsCode: "01"},
		{Name: "Ba Dinh", ParentsCode: "02"},
	}

	assert.True(t, CanCreateLocationUnder("01", "Ba Dinh", provisioned))
	assert.False(t, CanCreateLocationUnder("03", "Ba Dinh", provisioned))
	assert.False(t, CanCreateLocationUnder("01", "Hoan Kiem", provisioned))
	assert.False(t, CanCreateLocationUnder("01", "Ba Dinh", nil))
}

func TestValidateDeclareWindow(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.Local)
	morning := time.Date(2024, 5, 10, 8, 0, 0, 0, time.Local)

	assert.NoError(t, ValidateDeclareWindow(morning, morning.Add(time.Hour), now), "earlier today is allowed")
	assert.ErrorIs(t, ValidateDeclareWindow(morning.Add(-24*time.Hour), now, now), ErrInvalidDeclareStart)
	assert.ErrorIs(t, ValidateDeclareWindow(now, now.Add(-time.Minute), now), ErrInvalidDeclareEnd)
	assert.NoError(t, ValidateDeclareWindow(now, now, now), "zero-length window")
}

func TestDeclareWindowContains(t *testing.T) {
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	w := DeclareWindow{Start: start, End: start.Add(48 * time.Hour)}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(start.Add(48*time.Hour)))
	assert.False(t, w.Contains(start.Add(-time.Second)))
}
