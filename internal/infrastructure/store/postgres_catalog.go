package store

import (
	"context"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/catalog"
	"github.com/lib/pq"
)

const productColumns = `id, name, description, price, image_url, is_active`

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if missing(err) {
		return nil, catalog.ErrProductNotFound
	}
	return p, err
}

// GetProducts returns the rows that exist among ids, active or not.
func (s *PostgresStore) GetProducts(ctx context.Context, ids []string) ([]*catalog.Product, error) {
	return s.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, pq.Array(ids))
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	return s.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name`)
}

func (s *PostgresStore) queryProducts(ctx context.Context, query string, args ...any) ([]*catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row rowScanner) (*catalog.Product, error) {
	var p catalog.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.IsActive); err != nil {
		return nil, err
	}
	return &p, nil
}
