// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"time"

	"slimmom/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("wrong email or password")
	// ErrEmailInUse indicates that an account already exists for the email.
	ErrEmailInUse = errors.New("email in use")
	// ErrEmailNotVerified indicates a login attempt before email verification.
	ErrEmailNotVerified = errors.New("email address is not verified")
	// ErrAlreadyVerified indicates a verification resend for a verified account.
	ErrAlreadyVerified = errors.New("verification has already been passed")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNameTooShort indicates a profile name below the minimum length.
	ErrNameTooShort = errors.New("name must contain at least 4 characters")
)

const sessionTTL = 24 * time.Hour

// Mailer is the outbound port for transactional mail.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, verificationToken string) error
}

// AuthService handles registration, email verification and sessions.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	mailer   Mailer
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, mailer Mailer) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
	}
}

// Register creates an unverified account and sends the verification mail.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	verificationToken := uuid.NewString()
	user, err := s.users.Create(ctx, email, name, string(hash), verificationToken)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, email, verificationToken); err != nil {
		// The account exists; the mail can be re-sent later.
		log.Printf("send verification mail to %s: %v", email, err)
	}
	return user, nil
}

// VerifyEmail marks the account holding the token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, verificationToken string) error {
	ok, err := s.users.MarkVerified(ctx, verificationToken)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// ResendVerification sends the verification mail again for an unverified
// account.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Verified || user.VerificationToken == "" {
		return ErrAlreadyVerified
	}
	return s.mailer.SendVerificationEmail(ctx, email, user.VerificationToken)
}

// Login authenticates a user and creates a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, "", ErrEmailNotVerified
	}

	token, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LoginWithUser creates a session for an externally authenticated identity
// (e.g. via SSO), provisioning a verified account on first sight.
func (s *AuthService) LoginWithUser(ctx context.Context, email string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		// No password hash: the identity provider owns the credentials and
		// has already verified the address.
		user, err = s.users.Create(ctx, email, email, "", "")
		if err != nil {
			// Retry the lookup in case a concurrent callback created it.
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil || user == nil {
				return nil, "", err
			}
		}
	}

	token, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks a session token and resolves its user.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateName changes the user's display name.
func (s *AuthService) UpdateName(ctx context.Context, userID int64, name string) error {
	if len(name) < 4 {
		return ErrNameTooShort
	}
	return s.users.UpdateName(ctx, userID, name)
}

func (s *AuthService) createSession(ctx context.Context, userID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, userID, token, time.Now().Add(sessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
