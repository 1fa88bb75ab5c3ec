// Package users is the admin surface over console accounts: role
// assignment, research-layer membership, activation.
package users

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	PasswordHash string      `json:"-"`
	Roles        []string    `json:"roles"`
	LayerIDs     []uuid.UUID `json:"layerIds"`
	Active       bool        `json:"active"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// CreateRequest is the admin's account-creation payload. The plaintext
// password never reaches the model.
type CreateRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Roles    []string    `json:"roles"`
	LayerIDs []uuid.UUID `json:"layerIds"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
