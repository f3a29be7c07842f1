package app

import (
	"context"
	"strings"

	"slimmom/internal/domain"
)

// ProductService encapsulates read-only food catalog lookups.
type ProductService struct {
	repo domain.ProductRepository
}

// NewProductService creates a ProductService backed by the given repository.
func NewProductService(repo domain.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// Search returns catalog products whose title contains the query,
// case-insensitively and unanchored. An empty query matches everything.
func (s *ProductService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return s.repo.SearchByTitle(ctx, strings.TrimSpace(query))
}

// ExcludedForBloodType returns the products flagged as not recommended for
// the given blood type.
func (s *ProductService) ExcludedForBloodType(ctx context.Context, bloodType int) ([]domain.Product, error) {
	return s.repo.FindExcludedForBloodType(ctx, bloodType)
}
