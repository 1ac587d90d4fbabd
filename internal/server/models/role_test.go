package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleName_Protection(t *testing.T) {
	assert.Equal(t, ProtectionAdmin, RoleAdmin.Protection())
	assert.Equal(t, ProtectionNone, RoleModerator.Protection())
	assert.Equal(t, ProtectionNone, RoleMember.Protection())
	assert.Equal(t, ProtectionNone, RoleName("admin").Protection(), "role names are case sensitive")
}

func TestProtectedBy(t *testing.T) {
	p, ok := ProtectedBy([]RoleName{RoleMember, RoleAdmin})
	assert.True(t, ok)
	assert.Equal(t, ProtectionAdmin, p)
	assert.Equal(t, "admin", p.String())

	_, ok = ProtectedBy([]RoleName{RoleMember, RoleModerator})
	assert.False(t, ok)

	_, ok = ProtectedBy(nil)
	assert.False(t, ok)
}

func TestRoleName_Known(t *testing.T) {
	for _, r := range KnownRoles {
		assert.True(t, r.Known(), r)
	}
	assert.False(t, RoleName("Owner").Known())
}

func TestPhoto_HasRemoteObject(t *testing.T) {
	id := "users/1/a.jpg"
	empty := ""
	assert.True(t, (&Photo{PublicID: &id}).HasRemoteObject())
	assert.False(t, (&Photo{PublicID: &empty}).HasRemoteObject())
	assert.False(t, (&Photo{}).HasRemoteObject())
}

func TestParseRoleName(t *testing.T) {
	r, ok := ParseRoleName("moderator")
	assert.True(t, ok)
	assert.Equal(t, RoleModerator, r)

	r, ok = ParseRoleName("Owner")
	assert.False(t, ok)
	assert.Equal(t, RoleName("Owner"), r)
}
