package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"irokart-be/internal/db"
	"irokart-be/internal/logger"

	"go.uber.org/zap"
)

// GatewayEvent is a payment state change reported by the gateway.
type GatewayEvent struct {
	GatewayPaymentID string
	GatewayOrderID   string
	Status           Status
	At               time.Time
}

type Repository interface {
	Insert(ctx context.Context, q db.Queryer, p *Payment) error
	ListByOrder(ctx context.Context, orderID string) ([]*Payment, error)
	SetStatusForOrder(ctx context.Context, q db.Queryer, orderID string, status Status) error
	ApplyGatewayEvent(ctx context.Context, ev GatewayEvent) (orderID string, applied bool, err error)

	SaveWebhook(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		externalID string,
		payload json.RawMessage,
		signatureValid bool,
	) (webhookID int64, isDuplicate bool, err error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, order_id, profile_id, payment_method, payment_gateway, gateway_order_id,
	gateway_payment_id, gateway_signature, amount, currency, payment_status, paid_at, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, q db.Queryer, p *Payment) error {
	return q.QueryRowContext(ctx, `
		INSERT INTO payments (
			order_id, profile_id, payment_method, payment_gateway, gateway_order_id,
			gateway_payment_id, gateway_signature, amount, currency, payment_status, paid_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`,
		p.OrderID, p.ProfileID, p.PaymentMethod, p.PaymentGateway, p.GatewayOrderID,
		p.GatewayPaymentID, p.GatewaySignature, p.Amount, p.Currency, string(p.Status), p.PaidAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) ListByOrder(ctx context.Context, orderID string) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE order_id = $1 ORDER BY created_at ASC", orderID)
	if err != nil {
		logger.FromCtx(ctx).Error("list payments failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	payments := []*Payment{}
	for rows.Next() {
		var (
			p      Payment
			status string
		)
		if err := rows.Scan(
			&p.ID, &p.OrderID, &p.ProfileID, &p.PaymentMethod, &p.PaymentGateway, &p.GatewayOrderID,
			&p.GatewayPaymentID, &p.GatewaySignature, &p.Amount, &p.Currency, &status, &p.PaidAt,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Status = Status(status)
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

func (r *repository) SetStatusForOrder(ctx context.Context, q db.Queryer, orderID string, status Status) error {
	_, err := q.ExecContext(ctx, `
		UPDATE payments SET payment_status = $1, updated_at = NOW() WHERE order_id = $2
	`, string(status), orderID)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// ApplyGatewayEvent moves the payment row and its order's payment_status in
// one transaction. An event the current status does not accept (a capture
// after a refund, say) leaves both rows alone and reports applied=false.
func (r *repository) ApplyGatewayEvent(ctx context.Context, ev GatewayEvent) (string, bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ApplyGatewayEvent"),
		zap.String("gateway_payment_id", ev.GatewayPaymentID),
		zap.String("status", string(ev.Status)),
	)

	var paidAt *time.Time
	if ev.Status == StatusCaptured {
		at := ev.At
		paidAt = &at
	}

	var (
		orderID string
		current string
		applied bool
	)
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT order_id, payment_status FROM payments WHERE gateway_payment_id = $1 FOR UPDATE
		`, ev.GatewayPaymentID).Scan(&orderID, &current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPaymentNotFound
		}
		if err != nil {
			return err
		}
		if !Status(current).Accepts(ev.Status) {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE payments
			SET payment_status = $1, paid_at = COALESCE(paid_at, $2), updated_at = NOW()
			WHERE gateway_payment_id = $3
		`, string(ev.Status), paidAt, ev.GatewayPaymentID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET payment_status = $1, updated_at = NOW()
			WHERE id = $2 AND payment_status <> 'refunded'
		`, string(ev.Status), orderID); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		log.Warn("gateway event not applied", zap.Error(err))
		return "", false, err
	}

	if !applied {
		log.Info("stale gateway event skipped", zap.String("current", current), zap.String("order_id", orderID))
		return orderID, false, nil
	}
	log.Info("gateway event applied", zap.String("order_id", orderID))
	return orderID, true, nil
}

// SaveWebhook records an incoming event. An event id that was already
// processed is reported as a duplicate; one that failed earlier is handed
// back for another attempt.
func (r *repository) SaveWebhook(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	externalID string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		external_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET process_error = NULL
	WHERE payment_webhooks.processed_at IS NULL
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		provider,
		eventID,
		eventType,
		externalID,
		signatureValid,
		[]byte(payload),
	).Scan(&id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(
	ctx context.Context,
	webhookID int64,
) error {

	const q = `
	UPDATE payment_webhooks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(
	ctx context.Context,
	webhookID int64,
	reason string,
) error {

	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
