package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"slimmom/internal/adapter/memory"
	"slimmom/internal/app"
	"slimmom/internal/domain"
)

func newDiaryService(t *testing.T) (*app.DiaryService, *memory.DiaryRepo, *memory.DB) {
	t.Helper()
	db := memory.New()
	db.SeedProducts([]domain.Product{
		{Title: "White bread", Categories: "flour", Weight: 100, Calories: 260, GroupBloodNotAllowed: []bool{false, true, false, false, false}},
		{Title: "Green tea", Categories: "beverages", Weight: 100, Calories: 1, GroupBloodNotAllowed: []bool{false, false, false, false, false}},
	})
	diaries := db.NewDiaryRepo()
	return app.NewDiaryService(diaries, db), diaries, db
}

func yesterday() domain.Day {
	return domain.DayOf(time.Now().In(time.Local).AddDate(0, 0, -1))
}

func TestEnsureTodayDiary_NoPriorDiary(t *testing.T) {
	svc, _, _ := newDiaryService(t)
	ctx := context.Background()

	d, err := svc.EnsureTodayDiary(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != nil {
		t.Fatalf("expected no diary for a user with no history, got %+v", d)
	}

	list, err := svc.ListDiaries(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no diaries, got %d", len(list))
	}
}

func TestEnsureTodayDiary_RollsForward(t *testing.T) {
	svc, diaries, _ := newDiaryService(t)
	ctx := context.Background()

	excluded := []domain.Product{{ID: 1, Title: "White bread"}}
	prior := &domain.Diary{
		UserID:            1,
		Date:              yesterday(),
		NecessaryCalories: 1137.5,
		ConsumedProducts: []domain.ConsumedProduct{
			{ProductID: "p1", Title: "Green tea", Weight: 200, Calories: 2},
		},
		NonRecommendedFood: excluded,
	}
	prior.Recalculate()
	if err := diaries.Create(ctx, prior); err != nil {
		t.Fatalf("seed prior diary: %v", err)
	}

	d, err := svc.EnsureTodayDiary(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d == nil {
		t.Fatal("expected a rolled-forward diary")
	}
	if !d.Date.Equal(domain.Today().Time) {
		t.Errorf("expected today's date, got %s", d.Date)
	}
	if d.NecessaryCalories != 1137.5 {
		t.Errorf("expected target 1137.5, got %v", d.NecessaryCalories)
	}
	if len(d.ConsumedProducts) != 0 {
		t.Errorf("expected empty product list, got %d entries", len(d.ConsumedProducts))
	}
	if len(d.NonRecommendedFood) != 1 || d.NonRecommendedFood[0].Title != "White bread" {
		t.Errorf("expected non-recommended food rolled forward, got %+v", d.NonRecommendedFood)
	}
	if d.RemainingCalories != 1137.5 || d.PercentageRemaining != 100 {
		t.Errorf("expected fresh derived fields, got remaining=%v pct=%v", d.RemainingCalories, d.PercentageRemaining)
	}
}

func TestEnsureTodayDiary_Idempotent(t *testing.T) {
	svc, diaries, _ := newDiaryService(t)
	ctx := context.Background()

	prior := &domain.Diary{UserID: 1, Date: yesterday(), NecessaryCalories: 2000}
	prior.Recalculate()
	if err := diaries.Create(ctx, prior); err != nil {
		t.Fatalf("seed prior diary: %v", err)
	}

	first, err := svc.EnsureTodayDiary(ctx, 1)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.EnsureTodayDiary(ctx, 1)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same diary, got IDs %d and %d", first.ID, second.ID)
	}

	list, _ := svc.ListDiaries(ctx, 1)
	if len(list) != 2 { // yesterday's seed plus today's single rollover
		t.Fatalf("expected 2 diaries, got %d", len(list))
	}
}

// The most recent diary must be picked chronologically; the DD.MM.YYYY
// strings would sort 31.12.2025 after 02.01.2026.
func TestEnsureTodayDiary_ChronologicalRollover(t *testing.T) {
	svc, diaries, _ := newDiaryService(t)
	ctx := context.Background()

	older, _ := domain.ParseDay("31.12.2025")
	newer, _ := domain.ParseDay("02.01.2026")

	for _, d := range []*domain.Diary{
		{UserID: 1, Date: older, NecessaryCalories: 2000},
		{UserID: 1, Date: newer, NecessaryCalories: 1800},
	} {
		d.Recalculate()
		if err := diaries.Create(ctx, d); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	d, err := svc.EnsureTodayDiary(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d == nil || d.NecessaryCalories != 1800 {
		t.Fatalf("expected rollover from the chronologically newest diary (1800), got %+v", d)
	}
}

func TestSubmitMetrics_FutureDateRejected(t *testing.T) {
	svc, _, _ := newDiaryService(t)
	ctx := context.Background()

	tomorrow := domain.DayOf(time.Now().In(time.Local).AddDate(0, 0, 1))
	_, err := svc.SubmitMetrics(ctx, 1, tomorrow, 170, 25, 70, 65, 1)
	if !errors.Is(err, app.ErrFutureDate) {
		t.Fatalf("expected ErrFutureDate, got %v", err)
	}

	if _, err := svc.SubmitMetrics(ctx, 1, domain.Today(), 170, 25, 70, 65, 1); err != nil {
		t.Fatalf("today must be accepted: %v", err)
	}
}

func TestSubmitMetrics_CreatesDiary(t *testing.T) {
	svc, _, _ := newDiaryService(t)
	ctx := context.Background()

	d, err := svc.SubmitMetrics(ctx, 1, domain.Today(), 170, 25, 70, 65, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.NecessaryCalories != 1137.5 {
		t.Errorf("expected target 1137.5, got %v", d.NecessaryCalories)
	}
	if d.ConsumedCalories != 0 || d.RemainingCalories != 1137.5 || d.PercentageRemaining != 100 {
		t.Errorf("unexpected derived fields: %+v", d)
	}
	if len(d.NonRecommendedFood) != 1 || d.NonRecommendedFood[0].Title != "White bread" {
		t.Errorf("expected the blood-type-1 exclusion attached, got %+v", d.NonRecommendedFood)
	}
}

func TestSubmitMetrics_UpdatePreservesConsumption(t *testing.T) {
	svc, _, _ := newDiaryService(t)
	ctx := context.Background()
	today := domain.Today()

	if _, err := svc.SubmitMetrics(ctx, 1, today, 170, 25, 70, 65, 1); err != nil {
		t.Fatalf("initial submit: %v", err)
	}
	if _, err := svc.AddProducts(ctx, 1, today, []domain.ConsumedProduct{
		{ProductID: "p1", Title: "Oatmeal", Weight: 100, Calories: 300},
	}); err != nil {
		t.Fatalf("add product: %v", err)
	}

	// Resubmitting with a gain goal changes the target but not the log.
	d, err := svc.SubmitMetrics(ctx, 1, today, 170, 25, 70, 75, 1)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	want := 10*70.0 + 6.25*170 - 5*25 + 500
	if d.NecessaryCalories != want {
		t.Errorf("expected new target %v, got %v", want, d.NecessaryCalories)
	}
	if len(d.ConsumedProducts) != 1 || d.ConsumedCalories != 300 {
		t.Errorf("consumption must survive the upsert: %+v", d)
	}
	if d.RemainingCalories != want-300 {
		t.Errorf("expected remaining %v, got %v", want-300, d.RemainingCalories)
	}
}

func TestSubmitMetrics_InvalidTarget(t *testing.T) {
	svc, _, _ := newDiaryService(t)
	ctx := context.Background()

	// Maintain goal with a base rate below zero.
	_, err := svc.SubmitMetrics(ctx, 1, domain.Today(), 10, 100, 20, 20, 1)
	if !errors.Is(err, app.ErrInvalidCalorieTarget) {
		t.Fatalf("expected ErrInvalidCalorieTarget, got %v", err)
	}
}

func TestAddProducts_SpecScenario(t *testing.T) {
	svc, _, _ := newDiaryService(t)
	ctx := context.Background()
	today := domain.Today()

	if _, err := svc.SubmitMetrics(ctx, 1, today, 170, 25, 70, 65, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	d, err := svc.AddProducts(ctx, 1, today, []domain.ConsumedProduct{
		{ProductID: "p1", Title: "Oatmeal", Weight: 100, Calories: 300},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ConsumedCalories != 300 {
		t.Errorf("expected consumed 300, got %v", d.ConsumedCalories)
	}
	if d.RemainingCalories != 837.5 {
		t.Errorf("expected remaining 837.5, got %v", d.RemainingCalories)
	}
	if d.PercentageRemaining != 73.63 {
		t.Errorf("expected percentage 73.63, got %v", d.PercentageRemaining)
	}
}

func TestAddProducts_NoDiary(t *testing.T) {
	svc, _, _ := newDiaryService(t)

	_, err := svc.AddProducts(context.Background(), 1, domain.Today(), []domain.ConsumedProduct{
		{ProductID: "p1", Title: "Oatmeal", Weight: 100, Calories: 300},
	})
	if !errors.Is(err, app.ErrDiaryNotFound) {
		t.Fatalf("expected ErrDiaryNotFound, got %v", err)
	}
}

func TestRemoveProduct_RoundTrip(t *testing.T) {
	svc, _, _ := newDiaryService(t)
	ctx := context.Background()
	today := domain.Today()

	before, err := svc.SubmitMetrics(ctx, 1, today, 170, 25, 70, 65, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.AddProducts(ctx, 1, today, []domain.ConsumedProduct{
		{ProductID: "p1", Title: "Oatmeal", Weight: 100, Calories: 300},
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	after, err := svc.RemoveProduct(ctx, 1, today, "p1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(after.ConsumedProducts) != len(before.ConsumedProducts) {
		t.Errorf("product list not restored: %d entries", len(after.ConsumedProducts))
	}
	if after.ConsumedCalories != before.ConsumedCalories ||
		after.RemainingCalories != before.RemainingCalories ||
		after.PercentageRemaining != before.PercentageRemaining {
		t.Errorf("derived fields not restored: before=%+v after=%+v", before, after)
	}
}

func TestRemoveProduct_UnknownIDIsNoOp(t *testing.T) {
	svc, _, _ := newDiaryService(t)
	ctx := context.Background()
	today := domain.Today()

	if _, err := svc.SubmitMetrics(ctx, 1, today, 170, 25, 70, 65, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.AddProducts(ctx, 1, today, []domain.ConsumedProduct{
		{ProductID: "p1", Title: "Oatmeal", Weight: 100, Calories: 300},
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	d, err := svc.RemoveProduct(ctx, 1, today, "no-such-id")
	if err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if len(d.ConsumedProducts) != 1 || d.ConsumedCalories != 300 {
		t.Errorf("no-op removal must not change the diary: %+v", d)
	}
}

func TestRemoveProduct_NoDiary(t *testing.T) {
	svc, _, _ := newDiaryService(t)

	_, err := svc.RemoveProduct(context.Background(), 1, domain.Today(), "p1")
	if !errors.Is(err, app.ErrDiaryNotFound) {
		t.Fatalf("expected ErrDiaryNotFound, got %v", err)
	}
}

func TestCalculateIntake(t *testing.T) {
	svc, _, _ := newDiaryService(t)

	intake, excluded, err := svc.CalculateIntake(context.Background(), 170, 25, 70, 65, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intake != 1137.5 {
		t.Errorf("expected intake 1137.5, got %v", intake)
	}
	if len(excluded) != 1 || excluded[0].Title != "White bread" {
		t.Errorf("expected the flagged product, got %+v", excluded)
	}
}
