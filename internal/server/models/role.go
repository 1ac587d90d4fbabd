package models

import "strings"

// RoleName is the name of a role as stored in the roles table.
type RoleName string

const (
	RoleMember    RoleName = "Member"
	RoleModerator RoleName = "Moderator"
	RoleAdmin     RoleName = "Admin"
)

// KnownRoles lists the roles seeded by migrations.
var KnownRoles = []RoleName{RoleMember, RoleModerator, RoleAdmin}

// Protection says why a role exempts its holder from account deletion.
type Protection int

const (
	ProtectionNone Protection = iota
	ProtectionAdmin
)

func (p Protection) String() string {
	switch p {
	case ProtectionNone:
		return "none"
	case ProtectionAdmin:
		return "admin"
	}
	return "unknown"
}

// Protection maps the role onto its deletion protection. Roles this build
// does not know about carry no protection.
func (r RoleName) Protection() Protection {
	switch r {
	case RoleAdmin:
		return ProtectionAdmin
	case RoleModerator, RoleMember:
		return ProtectionNone
	}
	return ProtectionNone
}

// ParseRoleName matches s against KnownRoles ignoring case and returns the
// canonical name.
func ParseRoleName(s string) (RoleName, bool) {
	for _, r := range KnownRoles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return RoleName(s), false
}

// Known reports whether r is one of KnownRoles.
func (r RoleName) Known() bool {
	switch r {
	case RoleMember, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ProtectedBy returns the first protection granted by roles, if any.
func ProtectedBy(roles []RoleName) (Protection, bool) {
	for _, r := range roles {
		if p := r.Protection(); p != ProtectionNone {
			return p, true
		}
	}
	return ProtectionNone, false
}
