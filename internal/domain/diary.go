package domain

import (
	"context"
	"math"
)

// ConsumedProduct is a single product logged into a diary. ProductID is the
// semantic catalog identifier used for removal; entries are immutable once
// added.
type ConsumedProduct struct {
	ProductID            string  `json:"id"`
	Title                string  `json:"title"`
	Weight               float64 `json:"weight"`
	Calories             float64 `json:"calories"`
	Categories           string  `json:"categories,omitempty"`
	GroupBloodNotAllowed []bool  `json:"groupBloodNotAllowed,omitempty"`
}

// Diary is the per-user, per-day record of the calorie target and everything
// consumed against it. At most one diary exists per (user, day).
type Diary struct {
	ID                  int64             `json:"id"`
	UserID              int64             `json:"userId"`
	Date                Day               `json:"date"`
	NecessaryCalories   float64           `json:"necessaryCalories"`
	ConsumedCalories    float64           `json:"consumedCalories"`
	RemainingCalories   float64           `json:"remainingCalories"`
	PercentageRemaining float64           `json:"percentageRemaining"`
	ConsumedProducts    []ConsumedProduct `json:"consumedProducts"`
	NonRecommendedFood  []Product         `json:"nonRecommendedFood,omitempty"`
}

// SumConsumedCalories totals the calories of the logged products.
func SumConsumedCalories(products []ConsumedProduct) float64 {
	var total float64
	for _, p := range products {
		total += p.Calories
	}
	return total
}

// PercentageRemaining returns how much of the target is left, as a
// percentage clamped at 0 and rounded to two decimals. A zero target yields
// exactly 0 rather than a non-finite value.
func PercentageRemaining(remaining, necessary float64) float64 {
	pct := remaining / necessary * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return math.Round(math.Max(0, pct)*100) / 100
}

// Recalculate rederives ConsumedCalories, RemainingCalories and
// PercentageRemaining from the product list and target. RemainingCalories
// keeps its sign when consumption exceeds the target.
func (d *Diary) Recalculate() {
	d.ConsumedCalories = SumConsumedCalories(d.ConsumedProducts)
	d.RemainingCalories = d.NecessaryCalories - d.ConsumedCalories
	d.PercentageRemaining = PercentageRemaining(d.RemainingCalories, d.NecessaryCalories)
}

// DiaryRepository is the port for diary persistence, keyed by (user, day).
type DiaryRepository interface {
	GetByUserAndDay(ctx context.Context, userID int64, day Day) (*Diary, error)
	// GetMostRecent returns the chronologically latest diary for the user,
	// or nil if the user has none.
	GetMostRecent(ctx context.Context, userID int64) (*Diary, error)
	Create(ctx context.Context, d *Diary) error
	Update(ctx context.Context, d *Diary) error
	ListByUser(ctx context.Context, userID int64) ([]Diary, error)
}
