package domain

import "errors"

// ErrInvalidGoal indicates that the goal could not be classified from the
// current and desired weights (possible only with non-ordered inputs such
// as NaN).
var ErrInvalidGoal = errors.New("invalid goal")

// Goal adjustment applied to the base metabolic rate, in kcal/day.
const goalAdjustment = 500

// CalculateDailyRate derives the daily calorie target from body metrics.
//
// The goal is classified by comparing the desired weight to the current one:
// above means gain, below means lose, equal means maintain. The base rate is
// 10*weight + 6.25*height - 5*age; losing subtracts 500 kcal, gaining adds
// 500. bloodType is accepted for interface symmetry with the food-exclusion
// lookup but never influences the number.
func CalculateDailyRate(heightCm, ageYears, currentWeightKg, desiredWeightKg float64, bloodType int) (float64, error) {
	base := 10*currentWeightKg + 6.25*heightCm - 5*ageYears

	switch {
	case desiredWeightKg < currentWeightKg:
		return base - goalAdjustment, nil
	case desiredWeightKg > currentWeightKg:
		return base + goalAdjustment, nil
	case desiredWeightKg == currentWeightKg:
		return base, nil
	default:
		return 0, ErrInvalidGoal
	}
}
