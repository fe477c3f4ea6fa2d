package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a coarse permission level attached to a user.
type Role string

const (
	// RoleAdmin is a tenant administrator.
	RoleAdmin Role = "admin"
	// RoleStaff is a tenant staff member.
	RoleStaff Role = "staff"
	// RoleOperator is a platform super-operator who may act on any tenant,
	// subject to justification and distinct audit marking.
	RoleOperator Role = "operator"
)

// Actor is a verified caller identity resolved by the authentication layer.
// It is the only source of tenant scope for any operation in this package
// tree; tenant ids found in request payloads are never trusted.
type Actor struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	TenantID uuid.UUID `json:"tenant_id"`
	Roles    []Role    `json:"roles"`
}

// HasRole returns true if the actor carries the given role.
func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsOperator returns true if the actor is a platform super-operator.
func (a Actor) IsOperator() bool {
	return a.HasRole(RoleOperator)
}

// User represents a platform user account.
type User struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Roles      []Role    `json:"roles"`
	APIKeyHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUser creates a user account holding the hash of an already issued API key.
func NewUser(tenantID uuid.UUID, email, name string, roles []Role, apiKeyHash string) *User {
	return &User{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Email:      email,
		Name:       name,
		Roles:      roles,
		APIKeyHash: apiKeyHash,
		CreatedAt:  time.Now(),
	}
}

// Actor returns the verified caller identity for this user.
func (u *User) Actor() Actor {
	return Actor{
		UserID:   u.ID,
		Email:    u.Email,
		TenantID: u.TenantID,
		Roles:    u.Roles,
	}
}
