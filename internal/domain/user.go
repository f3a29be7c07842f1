// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// User represents a registered account.
type User struct {
	ID                int64
	Email             string
	Name              string
	PasswordHash      string
	Verified          bool
	VerificationToken string
	CreatedAt         time.Time
}

// Session represents an active user session.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, email, name, passwordHash, verificationToken string) (*User, error)
	// MarkVerified flips the verified flag and clears the token for the user
	// holding verificationToken. Returns false when no user matches.
	MarkVerified(ctx context.Context, verificationToken string) (bool, error)
	UpdateName(ctx context.Context, id int64, name string) error
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
