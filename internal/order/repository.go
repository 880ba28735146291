package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"irokart-be/internal/db"
	"irokart-be/internal/inventory"
	"irokart-be/internal/logger"
	"irokart-be/internal/payment"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// PlaceTx writes the order, its items, the stock reservations and the
	// payment row in one transaction.
	PlaceTx(ctx context.Context, o *Order, items []*Item, pay *payment.Payment) error
	List(ctx context.Context, f ListFilter) ([]*Order, error)
	Count(ctx context.Context, f ListFilter) (int, error)
	ListByProfile(ctx context.Context, profileID string) ([]*Order, error)
	GetDetail(ctx context.Context, id string) (*Order, error)
	UpdateStatusTx(ctx context.Context, id string, in StatusUpdate, now time.Time) (*Order, error)
}

type repository struct {
	db       *sql.DB
	inv      inventory.Repository
	payments payment.Repository
}

func NewRepository(db *sql.DB, inv inventory.Repository, payments payment.Repository) Repository {
	return &repository{db: db, inv: inv, payments: payments}
}

const orderColumns = `o.id, o.order_number, o.profile_id, o.order_type,
	o.shipping_address_snapshot, o.billing_address_snapshot,
	o.subtotal, o.discount_amount, o.tax_amount, o.shipping_amount, o.total_amount,
	o.order_status, o.payment_status, o.customer_note, o.admin_note,
	o.tracking_number, o.courier_company, o.delivered_at, o.created_at, o.updated_at`

const customerColumns = `pr.id, pr.full_name, pr.email, pr.phone, pr.user_type, pr.avatar_url`

const itemColumns = `id, order_id, product_id, seller_id, product_name, product_sku,
	product_image_url, quantity, unit_price, cost_price, discount_amount, tax_amount,
	total_price, item_type, fulfillment_status`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(sc scanner, withCustomer bool) (*Order, error) {
	var (
		o                 Order
		status, payStatus string
		customerID        *string
		c                 Customer
	)
	dest := []any{
		&o.ID, &o.OrderNumber, &o.ProfileID, &o.OrderType,
		&o.ShippingAddress, &o.BillingAddress,
		&o.Subtotal, &o.DiscountAmount, &o.TaxAmount, &o.ShippingAmount, &o.TotalAmount,
		&status, &payStatus, &o.CustomerNote, &o.AdminNote,
		&o.TrackingNumber, &o.CourierCompany, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	}
	if withCustomer {
		dest = append(dest, &customerID, &c.FullName, &c.Email, &c.Phone, &c.UserType, &c.AvatarURL)
	}
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}
	o.Status = Status(status)
	o.PaymentStatus = payment.Status(payStatus)
	if customerID != nil {
		o.Customer = &c
	}
	return &o, nil
}

func (r *repository) PlaceTx(ctx context.Context, o *Order, items []*Item, pay *payment.Payment) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PlaceTx"),
		zap.String("order_number", o.OrderNumber),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`, o.ProfileID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrProfileNotFound
		}

		if err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (
				order_number, profile_id, order_type, shipping_address_snapshot, billing_address_snapshot,
				subtotal, discount_amount, tax_amount, shipping_amount, total_amount,
				order_status, payment_status, customer_note
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at, updated_at
		`,
			o.OrderNumber, o.ProfileID, o.OrderType, o.ShippingAddress, o.BillingAddress,
			o.Subtotal, o.DiscountAmount, o.TaxAmount, o.ShippingAmount, o.TotalAmount,
			string(o.Status), string(o.PaymentStatus), o.CustomerNote,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range items {
			it.OrderID = o.ID
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (
					order_id, product_id, seller_id, product_name, product_sku, product_image_url,
					quantity, unit_price, cost_price, discount_amount, tax_amount, total_price,
					item_type, fulfillment_status
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
				RETURNING id
			`,
				it.OrderID, it.ProductID, it.SellerID, it.ProductName, it.ProductSKU, it.ProductImageURL,
				it.Quantity, it.UnitPrice, it.CostPrice, it.DiscountAmount, it.TaxAmount, it.TotalPrice,
				it.ItemType, string(it.FulfillmentStatus),
			).Scan(&it.ID); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}

			if it.TracksStock() {
				if err := r.inv.Reserve(ctx, tx, it.ProductID, it.Quantity); err != nil {
					if errors.Is(err, inventory.ErrInsufficientStock) {
						log.Warn("reservation refused", zap.String("product_id", it.ProductID), zap.Int("quantity", it.Quantity))
					}
					return err
				}
			}
		}

		pay.OrderID = o.ID
		if err := r.payments.Insert(ctx, tx, pay); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("order placement rolled back", zap.Error(err))
		return err
	}

	o.Items = items
	log.Info("order placed", zap.String("order_id", o.ID), zap.Int("items", len(items)))
	return nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	query := `SELECT ` + orderColumns + `, ` + customerColumns + `
		FROM orders o
		LEFT JOIN profiles pr ON pr.id = o.profile_id`
	where, args := filterClause(f)
	query += where + " ORDER BY o.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows, true)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) Count(ctx context.Context, f ListFilter) (int, error) {
	where, args := filterClause(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&n); err != nil {
		logger.FromCtx(ctx).Error("failed to count orders", zap.Error(err))
		return 0, err
	}
	return n, nil
}

func filterClause(f ListFilter) (string, []any) {
	if f.Status == "" {
		return "", nil
	}
	return " WHERE o.order_status = $1", []any{string(f.Status)}
}

func (r *repository) ListByProfile(ctx context.Context, profileID string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.profile_id = $1
		ORDER BY o.created_at DESC
	`, profileID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query profile orders", zap.String("profile_id", profileID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows, false)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) GetDetail(ctx context.Context, id string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`, `+customerColumns+`
		FROM orders o
		LEFT JOIN profiles pr ON pr.id = o.profile_id
		WHERE o.id = $1
	`, id)
	o, err := scanOrder(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}

	if err := r.attachItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	if o.Payments, err = r.payments.ListByOrder(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// attachItems loads the items of every order in one query.
func (r *repository) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Items = []*Item{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, product_name
	`, pq.Array(ids))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query order items", zap.Error(err))
		return err
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func scanItem(sc scanner) (*Item, error) {
	var (
		it          Item
		fulfillment string
	)
	if err := sc.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.SellerID, &it.ProductName, &it.ProductSKU,
		&it.ProductImageURL, &it.Quantity, &it.UnitPrice, &it.CostPrice, &it.DiscountAmount, &it.TaxAmount,
		&it.TotalPrice, &it.ItemType, &fulfillment,
	); err != nil {
		return nil, err
	}
	it.FulfillmentStatus = FulfillmentStatus(fulfillment)
	return &it, nil
}

// UpdateStatusTx locks the order row, checks the transition against the
// current status and applies its stock, item and payment effects before
// writing the new status.
func (r *repository) UpdateStatusTx(ctx context.Context, id string, in StatusUpdate, now time.Time) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatusTx"),
		zap.String("order_id", id),
		zap.String("target", string(in.Status)),
	)

	var updated *Order
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT order_status FROM orders WHERE id = $1 FOR UPDATE`, id,
		).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		from := Status(current)
		if !CanTransition(from, in.Status) {
			return &TransitionError{From: from, To: in.Status}
		}

		if err := r.applyEffects(ctx, tx, id, effectsOf(from, in.Status)); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE orders o SET
				order_status = $1,
				updated_at = $2,
				delivered_at = CASE WHEN $1 = 'delivered' THEN $2 ELSE o.delivered_at END,
				payment_status = CASE WHEN $1 = 'refunded' THEN 'refunded' ELSE o.payment_status END,
				admin_note = COALESCE($3, o.admin_note),
				tracking_number = COALESCE($4, o.tracking_number),
				courier_company = COALESCE($5, o.courier_company)
			WHERE o.id = $6
			RETURNING `+orderColumns,
			string(in.Status), now, in.AdminNote, in.TrackingNumber, in.CourierCompany, id,
		)
		updated, err = scanOrder(row, false)
		return err
	})
	if err != nil {
		var te *TransitionError
		if errors.As(err, &te) || errors.Is(err, ErrOrderNotFound) {
			log.Info("status update refused", zap.Error(err))
		} else {
			log.Error("status update failed", zap.Error(err))
		}
		return nil, err
	}

	log.Info("order status updated")
	return updated, nil
}

func (r *repository) applyEffects(ctx context.Context, tx *sql.Tx, orderID string, e effects) error {
	if e.touchesStock() {
		rows, err := tx.QueryContext(ctx, `
			SELECT product_id, quantity
			FROM order_items
			WHERE order_id = $1 AND item_type <> 'digital'
		`, orderID)
		if err != nil {
			return err
		}
		type line struct {
			productID string
			qty       int
		}
		var lines []line
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.productID, &l.qty); err != nil {
				rows.Close()
				return err
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, l := range lines {
			switch {
			case e.commitStock:
				err = r.inv.Commit(ctx, tx, l.productID, l.qty)
			case e.releaseStock:
				err = r.inv.Release(ctx, tx, l.productID, l.qty)
			case e.restock:
				err = r.inv.Restock(ctx, tx, l.productID, l.qty)
			}
			if err != nil {
				return err
			}
		}
	}

	if e.fulfillment != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE order_items SET fulfillment_status = $1 WHERE order_id = $2`,
			string(e.fulfillment), orderID,
		); err != nil {
			return fmt.Errorf("update fulfillment: %w", err)
		}
	}

	if e.refundPayments {
		if err := r.payments.SetStatusForOrder(ctx, tx, orderID, payment.StatusRefunded); err != nil {
			return err
		}
	}
	return nil
}
