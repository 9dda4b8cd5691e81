package store

import (
	"context"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/cart"
)

// AddItem increments in a single statement so concurrent adds never lose an update.
func (s *PostgresStore) AddItem(ctx context.Context, userID, productID string, quantity int) (cart.Item, error) {
	var item cart.Item
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING product_id, quantity, added_at
	`, userID, productID, quantity).Scan(&item.ProductID, &item.Quantity, &item.AddedAt)
	return item, err
}

func (s *PostgresStore) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
		userID, productID, quantity)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (s *PostgresStore) RemoveItem(ctx context.Context, userID, productID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (s *PostgresStore) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func (s *PostgresStore) ListItems(ctx context.Context, userID string) ([]cart.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, quantity, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at, product_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []cart.Item{}
	for rows.Next() {
		var item cart.Item
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
