// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account identity. UserName is unique.
type User struct {
	ID        int64
	UserName  string
	KnownAs   string
	CreatedAt time.Time
}

// UserWithRoles is a row of the admin users listing.
type UserWithRoles struct {
	ID       int64
	UserName string
	Roles    []RoleName
}

// Login is an external login credential attached to a user.
type Login struct {
	Provider    string
	ProviderKey string
}
