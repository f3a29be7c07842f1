package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"slimmom/internal/domain"
)

var (
	// ErrFutureDate indicates that metrics were submitted for a date after
	// the server's current day.
	ErrFutureDate = errors.New("future dates are not allowed")
	// ErrDiaryNotFound indicates a mutation against a date with no diary.
	ErrDiaryNotFound = errors.New("no diary exists for the selected date")
	// ErrInvalidCalorieTarget indicates the computed daily target was not a
	// usable positive number.
	ErrInvalidCalorieTarget = errors.New("calculated calorie target is invalid")
)

type diaryKey struct {
	userID int64
	day    string
}

// DiaryService owns the per-user, per-day diary: creation, day rollover,
// consumed-product mutation and derived-field recomputation.
type DiaryService struct {
	diaries  domain.DiaryRepository
	products domain.ProductRepository

	mu    sync.Mutex
	locks map[diaryKey]*sync.Mutex
}

// NewDiaryService creates a DiaryService backed by the given repositories.
func NewDiaryService(diaries domain.DiaryRepository, products domain.ProductRepository) *DiaryService {
	return &DiaryService{
		diaries:  diaries,
		products: products,
		locks:    make(map[diaryKey]*sync.Mutex),
	}
}

// lockFor serializes read-modify-write cycles per (user, day). The
// repositories only guarantee per-row atomicity, so without this two
// concurrent product additions could lose an update.
func (s *DiaryService) lockFor(userID int64, day domain.Day) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := diaryKey{userID: userID, day: day.String()}
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// CalculateIntake computes the daily calorie target for the given metrics
// together with the foods excluded for the blood type.
func (s *DiaryService) CalculateIntake(ctx context.Context, height, age, currentWeight, desiredWeight float64, bloodType int) (float64, []domain.Product, error) {
	rate, err := domain.CalculateDailyRate(height, age, currentWeight, desiredWeight, bloodType)
	if err != nil {
		return 0, nil, err
	}
	excluded, err := s.products.FindExcludedForBloodType(ctx, bloodType)
	if err != nil {
		return 0, nil, fmt.Errorf("lookup excluded foods: %w", err)
	}
	return rate, excluded, nil
}

// EnsureTodayDiary creates today's diary by rolling forward the most recent
// diary's target and non-recommended foods, with an empty product list. It
// is a no-op when today's diary already exists or when the user has no
// diary to roll forward from; the returned diary is nil in the latter case.
func (s *DiaryService) EnsureTodayDiary(ctx context.Context, userID int64) (*domain.Diary, error) {
	today := domain.Today()
	l := s.lockFor(userID, today)
	l.Lock()
	defer l.Unlock()

	existing, err := s.diaries.GetByUserAndDay(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	last, err := s.diaries.GetMostRecent(ctx, userID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, nil
	}

	d := &domain.Diary{
		UserID:             userID,
		Date:               today,
		NecessaryCalories:  last.NecessaryCalories,
		ConsumedProducts:   []domain.ConsumedProduct{},
		NonRecommendedFood: last.NonRecommendedFood,
	}
	d.Recalculate()
	if err := s.diaries.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SubmitMetrics computes the calorie target for the metrics and upserts it
// into the diary for the given day. An insert starts with an empty product
// list; an update overwrites only the target and the non-recommended foods,
// leaving accumulated consumption untouched.
func (s *DiaryService) SubmitMetrics(ctx context.Context, userID int64, day domain.Day, height, age, currentWeight, desiredWeight float64, bloodType int) (*domain.Diary, error) {
	if day.After(domain.Today().Time) {
		return nil, ErrFutureDate
	}

	rate, excluded, err := s.CalculateIntake(ctx, height, age, currentWeight, desiredWeight, bloodType)
	if err != nil {
		return nil, err
	}
	// A target of 0 is rejected as invalid, matching the original system.
	if rate <= 0 {
		return nil, ErrInvalidCalorieTarget
	}

	l := s.lockFor(userID, day)
	l.Lock()
	defer l.Unlock()

	d, err := s.diaries.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if d == nil {
		d = &domain.Diary{
			UserID:           userID,
			Date:             day,
			ConsumedProducts: []domain.ConsumedProduct{},
		}
		d.NecessaryCalories = rate
		d.NonRecommendedFood = excluded
		d.Recalculate()
		if err := s.diaries.Create(ctx, d); err != nil {
			return nil, err
		}
		return d, nil
	}

	d.NecessaryCalories = rate
	d.NonRecommendedFood = excluded
	d.Recalculate()
	if err := s.diaries.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// AddProducts appends consumed products to the diary for the given day and
// recomputes the derived fields.
func (s *DiaryService) AddProducts(ctx context.Context, userID int64, day domain.Day, entries []domain.ConsumedProduct) (*domain.Diary, error) {
	l := s.lockFor(userID, day)
	l.Lock()
	defer l.Unlock()

	d, err := s.diaries.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDiaryNotFound
	}

	d.ConsumedProducts = append(d.ConsumedProducts, entries...)
	d.Recalculate()
	if err := s.diaries.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// RemoveProduct drops all entries with the given semantic product ID from
// the diary for the day. Removing an unknown ID succeeds without change.
func (s *DiaryService) RemoveProduct(ctx context.Context, userID int64, day domain.Day, productID string) (*domain.Diary, error) {
	l := s.lockFor(userID, day)
	l.Lock()
	defer l.Unlock()

	d, err := s.diaries.GetByUserAndDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDiaryNotFound
	}

	kept := d.ConsumedProducts[:0:0]
	for _, p := range d.ConsumedProducts {
		if p.ProductID != productID {
			kept = append(kept, p)
		}
	}
	d.ConsumedProducts = kept
	d.Recalculate()
	if err := s.diaries.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDiaries returns every diary for the user.
func (s *DiaryService) ListDiaries(ctx context.Context, userID int64) ([]domain.Diary, error) {
	return s.diaries.ListByUser(ctx, userID)
}
