package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"irokart-be/internal/db"
	"irokart-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repository statements take a db.Queryer so they can run on the pool or
// inside a transaction owned by the order workflow.
type Repository interface {
	Levels(ctx context.Context, q db.Queryer, productIDs []string) (map[string]*Level, error)
	Create(ctx context.Context, q db.Queryer, l *Level) error
	Set(ctx context.Context, q db.Queryer, productID string, quantity int, threshold *int) (*Level, error)
	Reserve(ctx context.Context, q db.Queryer, productID string, qty int) error
	Release(ctx context.Context, q db.Queryer, productID string, qty int) error
	Commit(ctx context.Context, q db.Queryer, productID string, qty int) error
	Restock(ctx context.Context, q db.Queryer, productID string, qty int) error
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Levels(ctx context.Context, q db.Queryer, productIDs []string) (map[string]*Level, error) {
	levels := make(map[string]*Level, len(productIDs))
	if len(productIDs) == 0 {
		return levels, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT product_id, quantity, reserved_quantity, low_stock_threshold, updated_at
		FROM inventory
		WHERE product_id = ANY($1)
	`, pq.Array(productIDs))
	if err != nil {
		logger.FromCtx(ctx).Error("inventory query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l Level
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.ReservedQuantity, &l.LowStockThreshold, &l.UpdatedAt); err != nil {
			return nil, err
		}
		levels[l.ProductID] = &l
	}
	return levels, rows.Err()
}

func (r *repository) Create(ctx context.Context, q db.Queryer, l *Level) error {
	if l.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if l.LowStockThreshold <= 0 {
		l.LowStockThreshold = DefaultLowStockThreshold
	}
	return q.QueryRowContext(ctx, `
		INSERT INTO inventory (product_id, quantity, reserved_quantity, low_stock_threshold)
		VALUES ($1, $2, 0, $3)
		RETURNING updated_at
	`, l.ProductID, l.Quantity, l.LowStockThreshold).Scan(&l.UpdatedAt)
}

// Set replaces the on-hand quantity, creating the row when the product has none.
// The update is refused when it would drop below what is already reserved.
func (r *repository) Set(ctx context.Context, q db.Queryer, productID string, quantity int, threshold *int) (*Level, error) {
	if quantity < 0 {
		return nil, ErrNegativeQuantity
	}

	var l Level
	err := q.QueryRowContext(ctx, `
		INSERT INTO inventory (product_id, quantity, reserved_quantity, low_stock_threshold)
		VALUES ($1, $2, 0, COALESCE($3, 10))
		ON CONFLICT (product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			low_stock_threshold = COALESCE($3, inventory.low_stock_threshold),
			updated_at = NOW()
		WHERE inventory.reserved_quantity <= EXCLUDED.quantity
		RETURNING product_id, quantity, reserved_quantity, low_stock_threshold, updated_at
	`, productID, quantity, threshold).Scan(&l.ProductID, &l.Quantity, &l.ReservedQuantity, &l.LowStockThreshold, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBelowReserved
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Reserve holds qty units for an order. It is a compare-and-swap on
// available stock, so concurrent checkouts cannot oversell.
func (r *repository) Reserve(ctx context.Context, q db.Queryer, productID string, qty int) error {
	res, err := q.ExecContext(ctx, `
		UPDATE inventory
		SET reserved_quantity = reserved_quantity + $1, updated_at = NOW()
		WHERE product_id = $2 AND quantity - reserved_quantity >= $1
	`, qty, productID)
	if err != nil {
		return fmt.Errorf("reserve inventory: %w", err)
	}
	return expectOne(res, ErrInsufficientStock)
}

func (r *repository) Release(ctx context.Context, q db.Queryer, productID string, qty int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE inventory
		SET reserved_quantity = GREATEST(reserved_quantity - $1, 0), updated_at = NOW()
		WHERE product_id = $2
	`, qty, productID)
	if err != nil {
		return fmt.Errorf("release inventory: %w", err)
	}
	return nil
}

// Commit turns a reservation into a shipment: both counters drop by qty.
func (r *repository) Commit(ctx context.Context, q db.Queryer, productID string, qty int) error {
	res, err := q.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = quantity - $1, reserved_quantity = reserved_quantity - $1, updated_at = NOW()
		WHERE product_id = $2 AND reserved_quantity >= $1
	`, qty, productID)
	if err != nil {
		return fmt.Errorf("commit inventory: %w", err)
	}
	return expectOne(res, ErrInsufficientStock)
}

func (r *repository) Restock(ctx context.Context, q db.Queryer, productID string, qty int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE product_id = $2
	`, qty, productID)
	if err != nil {
		return fmt.Errorf("restock inventory: %w", err)
	}
	return nil
}

func expectOne(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return none
	}
	return nil
}
