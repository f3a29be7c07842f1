package domain

import "context"

// Product is a catalog food item.
//
// GroupBloodNotAllowed is indexed by blood type (1-4); index 0 is unused.
// A true flag marks the product as not recommended for that blood type.
type Product struct {
	ID                   int64   `json:"id"`
	Title                string  `json:"title"`
	Categories           string  `json:"categories,omitempty"`
	Weight               float64 `json:"weight"`
	Calories             float64 `json:"calories"`
	GroupBloodNotAllowed []bool  `json:"groupBloodNotAllowed,omitempty"`
}

// ExcludedFor reports whether the product is flagged for the blood type.
func (p Product) ExcludedFor(bloodType int) bool {
	if bloodType < 0 || bloodType >= len(p.GroupBloodNotAllowed) {
		return false
	}
	return p.GroupBloodNotAllowed[bloodType]
}

// ProductRepository is the port for read-only catalog access.
type ProductRepository interface {
	SearchByTitle(ctx context.Context, query string) ([]Product, error)
	FindExcludedForBloodType(ctx context.Context, bloodType int) ([]Product, error)
}
