// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/domain/password"
)

// User is an account holder. A closed account keeps its row with DeletedAt set.
type User struct {
	ID              uuid.UUID
	Email           string
	Name            string
	PasswordHash    string
	TermsAcceptedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// NewUser creates an account that accepted the terms at now. The password
// hash is set once the candidate password has passed the policy.
func NewUser(email, name string, now time.Time) *User {
	return &User{
		ID:              uuid.New(),
		Email:           email,
		Name:            name,
		TermsAcceptedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// SetPasswordHash replaces the stored hash.
func (u *User) SetPasswordHash(hash string, now time.Time) {
	u.PasswordHash = hash
	u.UpdatedAt = now
}

// IsDeleted reports whether the account has been closed.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// Subject returns the identity a password is checked against.
func (u *User) Subject() *password.Subject {
	return &password.Subject{ID: u.ID, Email: u.Email, Name: u.Name}
}
