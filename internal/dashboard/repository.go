package dashboard

import (
	"context"
	"database/sql"
	"time"

	"irokart-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	// CountOrders counts orders created at or after since; a zero since counts all.
	CountOrders(ctx context.Context, since time.Time) (int64, error)
	CountOrdersByStatus(ctx context.Context, status string) (int64, error)
	CountProfiles(ctx context.Context) (int64, error)
	CountActiveProducts(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	// CapturedRevenue sums total_amount of captured orders created at or after since.
	CapturedRevenue(ctx context.Context, since time.Time) (decimal.Decimal, error)
	RecentOrders(ctx context.Context, limit int) ([]*RecentOrder, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) CountOrders(ctx context.Context, since time.Time) (int64, error) {
	if since.IsZero() {
		return r.count(ctx, `SELECT COUNT(*) FROM orders`)
	}
	return r.count(ctx, `SELECT COUNT(*) FROM orders WHERE created_at >= $1`, since)
}

func (r *repository) CountOrdersByStatus(ctx context.Context, status string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders WHERE order_status = $1`, status)
}

func (r *repository) CountProfiles(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM profiles`)
}

func (r *repository) CountActiveProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products WHERE is_active = true`)
}

func (r *repository) CountLowStock(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM inventory WHERE quantity <= low_stock_threshold`)
}

func (r *repository) CapturedRevenue(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	var err error
	if since.IsZero() {
		err = r.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = 'captured'
		`).Scan(&sum)
	} else {
		err = r.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(total_amount), 0) FROM orders
			WHERE payment_status = 'captured' AND created_at >= $1
		`, since).Scan(&sum)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *repository) RecentOrders(ctx context.Context, limit int) ([]*RecentOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.order_number, o.order_status, o.payment_status, o.total_amount, o.created_at,
			pr.id, pr.full_name, pr.email
		FROM orders o
		LEFT JOIN profiles pr ON pr.id = o.profile_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query recent orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*RecentOrder{}
	for rows.Next() {
		var (
			o         RecentOrder
			profileID *string
			b         Buyer
		)
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.OrderStatus, &o.PaymentStatus, &o.TotalAmount, &o.CreatedAt,
			&profileID, &b.FullName, &b.Email,
		); err != nil {
			return nil, err
		}
		if profileID != nil {
			o.Profile = &b
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}
