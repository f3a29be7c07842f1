package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"slimmom/internal/adapter/memory"
	"slimmom/internal/app"
)

// recordingMailer captures verification tokens instead of sending mail.
type recordingMailer struct {
	tokens []string
	err    error
}

func (m *recordingMailer) SendVerificationEmail(ctx context.Context, to, verificationToken string) error {
	if m.err != nil {
		return m.err
	}
	m.tokens = append(m.tokens, verificationToken)
	return nil
}

func newAuthService(t *testing.T) (*app.AuthService, *memory.DB, *recordingMailer) {
	t.Helper()
	db := memory.New()
	mailer := &recordingMailer{}
	return app.NewAuthService(db, db.NewSessionRepo(), mailer), db, mailer
}

func TestRegisterVerifyLogin(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "nadia@example.com", "Nadia", "s3cret-pass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.PasswordHash == "s3cret-pass" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if len(mailer.tokens) != 1 || mailer.tokens[0] == "" {
		t.Fatalf("expected one verification mail, got %v", mailer.tokens)
	}

	// Unverified accounts cannot log in.
	if _, _, err := svc.Login(ctx, "nadia@example.com", "s3cret-pass"); !errors.Is(err, app.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}

	if err := svc.VerifyEmail(ctx, mailer.tokens[0]); err != nil {
		t.Fatalf("verify: %v", err)
	}

	got, token, err := svc.Login(ctx, "nadia@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || got.Email != "nadia@example.com" {
		t.Errorf("unexpected login result: token=%q user=%+v", token, got)
	}

	// The token resolves back to the user.
	resolved, err := svc.ValidateSession(ctx, token)
	if err != nil || resolved.ID != got.ID {
		t.Fatalf("validate session: user=%+v err=%v", resolved, err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dup@example.com", "First", "password1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, "dup@example.com", "Second", "password2")
	if !errors.Is(err, app.ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestRegister_MailFailureDoesNotFailSignup(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	mailer.err = errors.New("smtp down")

	user, err := svc.Register(context.Background(), "offline@example.com", "Offline", "password")
	if err != nil {
		t.Fatalf("signup must survive a mail failure: %v", err)
	}
	if user == nil {
		t.Fatal("expected the account to be created")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "user@example.com", "User", "right-password"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.VerifyEmail(ctx, mailer.tokens[0]); err != nil {
		t.Fatalf("verify: %v", err)
	}

	_, _, err := svc.Login(ctx, "user@example.com", "wrong-password")
	if !errors.Is(err, app.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, app.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	svc, _, _ := newAuthService(t)

	err := svc.VerifyEmail(context.Background(), "no-such-token")
	if !errors.Is(err, app.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResendVerification(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "slow@example.com", "Slow", "password"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ResendVerification(ctx, "slow@example.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if len(mailer.tokens) != 2 || mailer.tokens[0] != mailer.tokens[1] {
		t.Fatalf("expected the same token twice, got %v", mailer.tokens)
	}

	if err := svc.VerifyEmail(ctx, mailer.tokens[0]); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.ResendVerification(ctx, "slow@example.com"); !errors.Is(err, app.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
	if err := svc.ResendVerification(ctx, "ghost@example.com"); !errors.Is(err, app.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestValidateSession_Expired(t *testing.T) {
	db := memory.New()
	sessions := db.NewSessionRepo()
	svc := app.NewAuthService(db, sessions, &recordingMailer{})
	ctx := context.Background()

	user, err := db.Create(ctx, "expired@example.com", "Expired", "hash", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := sessions.Create(ctx, user.ID, "stale-token", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("create session: %v", err)
	}

	_, err = svc.ValidateSession(ctx, "stale-token")
	if !errors.Is(err, app.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// The expired session is gone; a second check reports not-found.
	_, err = svc.ValidateSession(ctx, "stale-token")
	if !errors.Is(err, app.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestValidateSession_UnknownToken(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.ValidateSession(context.Background(), "never-issued")
	if !errors.Is(err, app.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	svc, _, mailer := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bye@example.com", "Bye", "password"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.VerifyEmail(ctx, mailer.tokens[0]); err != nil {
		t.Fatalf("verify: %v", err)
	}
	_, token, err := svc.Login(ctx, "bye@example.com", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ValidateSession(ctx, token); !errors.Is(err, app.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestLoginWithUser_ProvisionsAccount(t *testing.T) {
	svc, db, _ := newAuthService(t)
	ctx := context.Background()

	user, token, err := svc.LoginWithUser(ctx, "sso@example.com")
	if err != nil {
		t.Fatalf("sso login: %v", err)
	}
	if token == "" || user.Email != "sso@example.com" {
		t.Fatalf("unexpected result: token=%q user=%+v", token, user)
	}

	// A second SSO login reuses the account.
	again, _, err := svc.LoginWithUser(ctx, "sso@example.com")
	if err != nil {
		t.Fatalf("second sso login: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("expected the same account, got IDs %d and %d", user.ID, again.ID)
	}

	stored, _ := db.GetByEmail(ctx, "sso@example.com")
	if stored == nil || stored.PasswordHash != "" {
		t.Errorf("sso accounts carry no password hash: %+v", stored)
	}
}

func TestUpdateName(t *testing.T) {
	svc, db, _ := newAuthService(t)
	ctx := context.Background()

	user, err := db.Create(ctx, "rename@example.com", "Old Name", "hash", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := svc.UpdateName(ctx, user.ID, "abc"); !errors.Is(err, app.ErrNameTooShort) {
		t.Fatalf("expected ErrNameTooShort, got %v", err)
	}
	if err := svc.UpdateName(ctx, user.ID, "New Name"); err != nil {
		t.Fatalf("update name: %v", err)
	}

	got, _ := db.GetByID(ctx, user.ID)
	if got.Name != "New Name" {
		t.Errorf("expected name updated, got %q", got.Name)
	}
}
