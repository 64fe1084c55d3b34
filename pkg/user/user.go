// Package user is the directory of registered accounts. The AI agent
// reads it to resolve free-text assignee names; the auth layer owns
// writes.
package user

import (
	"context"
	"time"
)

// User is a directory entry.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store is the contract for user persistence.
type Store interface {
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)
	ByID(ctx context.Context, id string) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	// MatchName returns users whose name contains the pattern,
	// case-insensitive, in name order.
	MatchName(ctx context.Context, pattern string) ([]User, error)
	List(ctx context.Context) ([]User, error)
	EnsureTable(ctx context.Context) error
}
