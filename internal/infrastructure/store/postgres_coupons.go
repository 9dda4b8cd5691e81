package store

import (
	"context"
	"database/sql"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
)

const couponColumns = `id, code, discount_type, discount_value, minimum_order_amount, valid_from,
	valid_until, is_active, max_usage_count, used_count, created_at, updated_at`

func (s *PostgresStore) FindActiveCoupon(ctx context.Context, code string) (*coupon.Coupon, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE UPPER(code) = UPPER($1) AND is_active`, code)
	return scanCoupon(row)
}

func (s *PostgresStore) GetCoupon(ctx context.Context, id string) (*coupon.Coupon, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id)
	return scanCoupon(row)
}

func (s *PostgresStore) ListCoupons(ctx context.Context) ([]*coupon.Coupon, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := []*coupon.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func (s *PostgresStore) CreateCoupon(ctx context.Context, c *coupon.Coupon) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO coupons (`+couponColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		c.ID, c.Code, c.DiscountType, c.DiscountValue, c.MinimumOrderAmount, c.ValidFrom,
		c.ValidUntil, c.IsActive, maxUsage(c), c.UsedCount, c.CreatedAt, c.UpdatedAt,
	)
	if uniqueViolation(err, "coupons_code_key") {
		return coupon.ErrDuplicateCode
	}
	return err
}

// UpdateCoupon rewrites the editable fields. used_count is owned by CreateOrder.
func (s *PostgresStore) UpdateCoupon(ctx context.Context, c *coupon.Coupon) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE coupons
		SET code = $2, discount_type = $3, discount_value = $4, minimum_order_amount = $5,
		    valid_from = $6, valid_until = $7, is_active = $8, max_usage_count = $9, updated_at = $10
		WHERE id = $1
	`,
		c.ID, c.Code, c.DiscountType, c.DiscountValue, c.MinimumOrderAmount,
		c.ValidFrom, c.ValidUntil, c.IsActive, maxUsage(c), c.UpdatedAt,
	)
	if uniqueViolation(err, "coupons_code_key") {
		return coupon.ErrDuplicateCode
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return coupon.ErrCouponNotFound
	}
	return nil
}

func maxUsage(c *coupon.Coupon) sql.NullInt64 {
	if c.MaxUsageCount == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*c.MaxUsageCount), Valid: true}
}

func scanCoupon(row rowScanner) (*coupon.Coupon, error) {
	var (
		c        coupon.Coupon
		maxUsage sql.NullInt64
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MinimumOrderAmount, &c.ValidFrom,
		&c.ValidUntil, &c.IsActive, &maxUsage, &c.UsedCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if missing(err) {
		return nil, coupon.ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	if maxUsage.Valid {
		limit := int(maxUsage.Int64)
		c.MaxUsageCount = &limit
	}
	return &c, nil
}
