// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"slimmom/internal/domain"
)

// DB implements every repository port against in-process state.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	sessions map[string]*domain.Session
	products []domain.Product
	diaries  []*domain.Diary

	userIDCounter  int64
	diaryIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.ProductRepository = (*DB)(nil)
var _ domain.DiaryRepository = (*DiaryRepo)(nil)

// --- UserRepository ---

// GetByEmail retrieves a user by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, email, name, passwordHash, verificationToken string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:                db.userIDCounter,
		Email:             email,
		Name:              name,
		PasswordHash:      passwordHash,
		VerificationToken: verificationToken,
		CreatedAt:         time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// MarkVerified flips the verified flag for the token's user.
func (db *DB) MarkVerified(ctx context.Context, verificationToken string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if verificationToken == "" {
		return false, nil
	}
	for _, u := range db.users {
		if u.VerificationToken == verificationToken {
			u.Verified = true
			u.VerificationToken = ""
			return true, nil
		}
	}
	return false, nil
}

// UpdateName changes a user's display name.
func (db *DB) UpdateName(ctx context.Context, id int64, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			u.Name = name
			return nil
		}
	}
	return errors.New("user not found")
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}

// --- ProductRepository ---

// SeedProducts loads catalog products, assigning IDs where missing.
func (db *DB) SeedProducts(products []domain.Product) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, p := range products {
		if p.ID == 0 {
			p.ID = int64(i + 1)
		}
		db.products = append(db.products, p)
	}
}

// SearchByTitle returns products whose title contains the query,
// case-insensitively.
func (db *DB) SearchByTitle(ctx context.Context, query string) ([]domain.Product, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	q := strings.ToLower(query)
	out := []domain.Product{}
	for _, p := range db.products {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindExcludedForBloodType returns products flagged for the blood type.
func (db *DB) FindExcludedForBloodType(ctx context.Context, bloodType int) ([]domain.Product, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := []domain.Product{}
	for _, p := range db.products {
		if p.ExcludedFor(bloodType) {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- DiaryRepository ---

// DiaryRepo implements diary persistence.
type DiaryRepo struct {
	db *DB
}

// NewDiaryRepo creates a new diary repository.
func (db *DB) NewDiaryRepo() *DiaryRepo {
	return &DiaryRepo{db: db}
}

// GetByUserAndDay returns the diary for the user's calendar day, or nil.
func (r *DiaryRepo) GetByUserAndDay(ctx context.Context, userID int64, day domain.Day) (*domain.Diary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, d := range r.db.diaries {
		if d.UserID == userID && d.Date.Equal(day.Time) {
			return copyDiary(d), nil
		}
	}
	return nil, nil
}

// GetMostRecent returns the chronologically latest diary for the user.
func (r *DiaryRepo) GetMostRecent(ctx context.Context, userID int64) (*domain.Diary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var latest *domain.Diary
	for _, d := range r.db.diaries {
		if d.UserID != userID {
			continue
		}
		if latest == nil || d.Date.After(latest.Date.Time) {
			latest = d
		}
	}
	if latest == nil {
		return nil, nil
	}
	return copyDiary(latest), nil
}

// Create stores a new diary, enforcing the one-per-(user, day) invariant.
func (r *DiaryRepo) Create(ctx context.Context, d *domain.Diary) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.diaries {
		if existing.UserID == d.UserID && existing.Date.Equal(d.Date.Time) {
			return errors.New("diary already exists for this day")
		}
	}

	r.db.diaryIDCounter++
	d.ID = r.db.diaryIDCounter
	r.db.diaries = append(r.db.diaries, copyDiary(d))
	return nil
}

// Update replaces the stored diary with the same ID.
func (r *DiaryRepo) Update(ctx context.Context, d *domain.Diary) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, existing := range r.db.diaries {
		if existing.ID == d.ID {
			r.db.diaries[i] = copyDiary(d)
			return nil
		}
	}
	return errors.New("diary not found")
}

// ListByUser returns all diaries for the user, oldest first.
func (r *DiaryRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Diary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []domain.Diary{}
	for _, d := range r.db.diaries {
		if d.UserID == userID {
			out = append(out, *copyDiary(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out, nil
}

func copyDiary(d *domain.Diary) *domain.Diary {
	cp := *d
	cp.ConsumedProducts = append([]domain.ConsumedProduct(nil), d.ConsumedProducts...)
	cp.NonRecommendedFood = append([]domain.Product(nil), d.NonRecommendedFood...)
	return &cp
}
