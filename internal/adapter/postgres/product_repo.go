package postgres

import (
	"context"
	"database/sql"

	"slimmom/internal/domain"

	"github.com/lib/pq"
)

// SearchByTitle returns products whose title contains the query,
// case-insensitively and unanchored.
func (d *DB) SearchByTitle(ctx context.Context, query string) ([]domain.Product, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, title, categories, weight, calories, blood_not_allowed FROM products WHERE title ILIKE '%' || $1 || '%' ORDER BY title;",
		query)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// FindExcludedForBloodType returns products whose exclusion flag is set for
// the blood type. SQL arrays are 1-based while the domain slice is indexed
// by blood type directly, hence the +1.
func (d *DB) FindExcludedForBloodType(ctx context.Context, bloodType int) ([]domain.Product, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, title, categories, weight, calories, blood_not_allowed FROM products WHERE COALESCE(blood_not_allowed[$1 + 1], FALSE);",
		bloodType)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// SeedProducts inserts catalog products if the catalog is empty.
func (d *DB) SeedProducts(ctx context.Context, products []domain.Product) error {
	var count int
	if err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM products;").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, p := range products {
		_, err := d.sql.ExecContext(ctx,
			"INSERT INTO products (title, categories, weight, calories, blood_not_allowed) VALUES ($1, $2, $3, $4, $5);",
			p.Title, p.Categories, p.Weight, p.Calories, pq.Array(p.GroupBloodNotAllowed))
		if err != nil {
			return err
		}
	}
	return nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		var flags pq.BoolArray
		if err := rows.Scan(&p.ID, &p.Title, &p.Categories, &p.Weight, &p.Calories, &flags); err != nil {
			return nil, err
		}
		p.GroupBloodNotAllowed = []bool(flags)
		out = append(out, p)
	}
	return out, rows.Err()
}
