package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"slimmom/internal/domain"
)

// DiaryRepo implements diary repository operations on DB.
type DiaryRepo struct {
	db *DB
}

// NewDiaryRepo wraps a DB as a DiaryRepository.
func NewDiaryRepo(db *DB) *DiaryRepo {
	return &DiaryRepo{db: db}
}

const diaryColumns = "id, user_id, day, necessary_calories, consumed_calories, remaining_calories, percentage_remaining, consumed_products, non_recommended_food"

// GetByUserAndDay returns the diary for the user's calendar day, or nil.
func (r *DiaryRepo) GetByUserAndDay(ctx context.Context, userID int64, day domain.Day) (*domain.Diary, error) {
	row := r.db.sql.QueryRowContext(ctx,
		"SELECT "+diaryColumns+" FROM diaries WHERE user_id = $1 AND day = $2;",
		userID, day.Time)
	return scanDiary(row)
}

// GetMostRecent returns the chronologically latest diary for the user, or
// nil. The DATE column orders correctly across year boundaries.
func (r *DiaryRepo) GetMostRecent(ctx context.Context, userID int64) (*domain.Diary, error) {
	row := r.db.sql.QueryRowContext(ctx,
		"SELECT "+diaryColumns+" FROM diaries WHERE user_id = $1 ORDER BY day DESC LIMIT 1;",
		userID)
	return scanDiary(row)
}

// Create inserts a new diary; the UNIQUE(user_id, day) constraint enforces
// the one-diary-per-day invariant.
func (r *DiaryRepo) Create(ctx context.Context, d *domain.Diary) error {
	consumed, nonRecommended, err := marshalDiaryJSON(d)
	if err != nil {
		return err
	}
	return r.db.sql.QueryRowContext(ctx,
		"INSERT INTO diaries (user_id, day, necessary_calories, consumed_calories, remaining_calories, percentage_remaining, consumed_products, non_recommended_food) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id;",
		d.UserID, d.Date.Time, d.NecessaryCalories, d.ConsumedCalories, d.RemainingCalories, d.PercentageRemaining, consumed, nonRecommended,
	).Scan(&d.ID)
}

// Update rewrites the target, derived fields and product list of a diary.
func (r *DiaryRepo) Update(ctx context.Context, d *domain.Diary) error {
	consumed, nonRecommended, err := marshalDiaryJSON(d)
	if err != nil {
		return err
	}
	_, err = r.db.sql.ExecContext(ctx,
		"UPDATE diaries SET necessary_calories = $1, consumed_calories = $2, remaining_calories = $3, percentage_remaining = $4, consumed_products = $5, non_recommended_food = $6 WHERE id = $7;",
		d.NecessaryCalories, d.ConsumedCalories, d.RemainingCalories, d.PercentageRemaining, consumed, nonRecommended, d.ID)
	return err
}

// ListByUser returns all diaries for the user, oldest first.
func (r *DiaryRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Diary, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+diaryColumns+" FROM diaries WHERE user_id = $1 ORDER BY day;",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Diary{}
	for rows.Next() {
		d, err := scanDiaryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiary(row *sql.Row) (*domain.Diary, error) {
	d, err := scanDiaryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func scanDiaryRow(row rowScanner) (*domain.Diary, error) {
	var d domain.Diary
	var day time.Time
	var consumed, nonRecommended []byte
	err := row.Scan(&d.ID, &d.UserID, &day, &d.NecessaryCalories, &d.ConsumedCalories, &d.RemainingCalories, &d.PercentageRemaining, &consumed, &nonRecommended)
	if err != nil {
		return nil, err
	}
	d.Date = domain.DayOf(day)
	if err := json.Unmarshal(consumed, &d.ConsumedProducts); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(nonRecommended, &d.NonRecommendedFood); err != nil {
		return nil, err
	}
	return &d, nil
}

func marshalDiaryJSON(d *domain.Diary) ([]byte, []byte, error) {
	products := d.ConsumedProducts
	if products == nil {
		products = []domain.ConsumedProduct{}
	}
	consumed, err := json.Marshal(products)
	if err != nil {
		return nil, nil, err
	}
	food := d.NonRecommendedFood
	if food == nil {
		food = []domain.Product{}
	}
	nonRecommended, err := json.Marshal(food)
	if err != nil {
		return nil, nil, err
	}
	return consumed, nonRecommended, nil
}
