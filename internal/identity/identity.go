package identity

import (
	"encoding/json"
	"fmt"
)

// Role is the closed set of roles an account can hold.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleFinance    Role = "FINANCE"
	RoleManager    Role = "MANAGER"
	RoleLaboratory Role = "LABORATORY"
	RoleDirector   Role = "DIRECTOR"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleFinance, RoleManager, RoleLaboratory, RoleDirector}
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleFinance, RoleManager, RoleLaboratory, RoleDirector:
		return Role(raw), nil
	}
	return "", fmt.Errorf("identity: unknown role %q", raw)
}

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// UnmarshalJSON rejects role values outside the enumeration, so a stored
// identity with an invalid role fails to parse instead of leaking through.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Identity is the authenticated user record returned by the credential
// exchange and persisted alongside the session token.
type Identity struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	FullName    string   `json:"full_name"`
	Role        Role     `json:"role"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions,omitempty"`
}

// HasCapability reports whether this identity holds the capability.
func (i *Identity) HasCapability(capability string) bool {
	return HasCapability(i, capability)
}
