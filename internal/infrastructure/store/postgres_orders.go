package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/pricing"
	"github.com/lib/pq"
)

const orderColumns = `id, order_number, user_id, coupon_code, subtotal, discount_amount, delivery_fee,
	total_amount, payment_method, payment_status, fulfillment_status, payment_reference,
	shipping_address, created_at, updated_at, version`

// CreateOrder inserts the order, its items and the coupon usage increment in one
// transaction. The increment only matches while the coupon has uses left.
func (s *PostgresStore) CreateOrder(ctx context.Context, o *order.Order, couponID string) error {
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if couponID != "" {
			res, err := tx.ExecContext(ctx, `
				UPDATE coupons
				SET used_count = used_count + 1, updated_at = NOW()
				WHERE id = $1 AND is_active
				  AND (max_usage_count IS NULL OR used_count < max_usage_count)
			`, couponID)
			if err != nil {
				return fmt.Errorf("increment coupon usage: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return coupon.ErrUsageLimitReached
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`,
			o.ID, o.OrderNumber, o.UserID, o.CouponCode,
			o.Subtotal, o.DiscountAmount, o.DeliveryFee, o.TotalAmount,
			o.PaymentMethod, o.PaymentStatus, o.FulfillmentStatus, o.PaymentReference,
			address, o.CreatedAt, o.UpdatedAt, o.Version,
		)
		if uniqueViolation(err, "orders_order_number_key") {
			return order.ErrDuplicateOrderNumber
		}
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("order_items", "order_id", "product_id", "name", "unit_price", "quantity"))
		if err != nil {
			return fmt.Errorf("prepare order items: %w", err)
		}
		for _, item := range o.Items {
			if _, err := stmt.ExecContext(ctx, o.ID, item.ProductID, item.Name, item.UnitPrice, item.Quantity); err != nil {
				stmt.Close()
				return fmt.Errorf("copy order item: %w", err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("flush order items: %w", err)
		}
		return stmt.Close()
	})
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return s.getOrderWhere(ctx, "id = $1", id)
}

func (s *PostgresStore) GetOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	return s.getOrderWhere(ctx, "order_number = $1", number)
}

func (s *PostgresStore) getOrderWhere(ctx context.Context, where string, arg any) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg)
	o, err := scanOrder(row)
	if missing(err) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, []*order.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PostgresStore) ListOrdersByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return s.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresStore) ListOrders(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	var (
		conds []string
		args  []any
	)
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if filter.FulfillmentStatus != "" {
		args = append(args, filter.FulfillmentStatus)
		conds = append(conds, fmt.Sprintf("fulfillment_status = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return s.queryOrders(ctx, query, args...)
}

func (s *PostgresStore) queryOrders(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of all orders with a single query.
func (s *PostgresStore) attachItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*order.Order, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		ids[i] = o.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, unit_price, quantity
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, product_id
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    pricing.LineItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

// UpdateOrderStatus writes the status axes when the stored version still matches.
func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, o *order.Order, expectedVersion int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $1, fulfillment_status = $2, payment_reference = $3,
		    updated_at = $4, version = $5
		WHERE id = $6 AND version = $7
	`, o.PaymentStatus, o.FulfillmentStatus, o.PaymentReference, o.UpdatedAt, o.Version, o.ID, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, o.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return order.ErrOrderNotFound
	}
	return order.ErrConcurrentUpdate
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o       order.Order
		address []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.CouponCode,
		&o.Subtotal, &o.DiscountAmount, &o.DeliveryFee, &o.TotalAmount,
		&o.PaymentMethod, &o.PaymentStatus, &o.FulfillmentStatus, &o.PaymentReference,
		&address, &o.CreatedAt, &o.UpdatedAt, &o.Version,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address of order %s: %w", o.ID, err)
	}
	return &o, nil
}
