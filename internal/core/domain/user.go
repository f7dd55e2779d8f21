package domain

import "time"

// MetadataRoleKey is the key under which the user's role is kept in Metadata.
const MetadataRoleKey = "role"

// User models an account known to the identity provider.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	FullName     string         `json:"full_name,omitempty"`
	PasswordHash string         `json:"-"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// RoleOrDefault derives the request role from the metadata bag. Missing,
// non-string or unknown values yield DefaultRole.
func (u *User) RoleOrDefault() Role {
	if u == nil || u.Metadata == nil {
		return DefaultRole
	}
	raw, _ := u.Metadata[MetadataRoleKey].(string)
	if r, ok := ParseRole(raw); ok {
		return r
	}
	return DefaultRole
}
