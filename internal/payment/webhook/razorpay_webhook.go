package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"irokart-be/internal/apperr"
	"irokart-be/internal/logger"
	"irokart-be/internal/metrics"
	"irokart-be/internal/payment"
	"irokart-be/internal/realtime"
	"irokart-be/internal/transport"

	"go.uber.org/zap"
)

const (
	SignatureHeader = "X-Razorpay-Signature"
	EventIDHeader   = "X-Razorpay-Event-Id"

	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"

	maxWebhookBytes = 1 << 20
)

// Payload is the subset of a Razorpay webhook body the handler reads.
type Payload struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
				Amount    int64  `json:"amount"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

type PaymentEntity struct {
	ID             string `json:"id"`
	OrderID        string `json:"order_id"`
	Amount         int64  `json:"amount"`
	AmountRefunded int64  `json:"amount_refunded"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
}

func (p *Payload) paymentID() string {
	if id := p.Payload.Payment.Entity.ID; id != "" {
		return id
	}
	return p.Payload.Refund.Entity.PaymentID
}

type Handler struct {
	repo   payment.Repository
	secret string
	pub    realtime.Publisher
}

func NewWebhookHandler(repo payment.Repository, secret string, pub realtime.Publisher) *Handler {
	return &Handler{repo: repo, secret: secret, pub: pub}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("provider", payment.ProviderRazorpay),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		transport.WriteError(w, r, apperr.Validationf("failed to read body"))
		return
	}

	if !payment.VerifyWebhookSignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		log.Warn("invalid webhook signature")
		transport.WriteError(w, r, apperr.New(apperr.Unauthorized, "invalid webhook signature"))
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Event == "" {
		transport.WriteError(w, r, apperr.Validationf("invalid JSON payload"))
		return
	}
	metrics.Default().Counter(metrics.WebhooksReceived).Inc()

	eventID := r.Header.Get(EventIDHeader)
	if eventID == "" {
		eventID = fmt.Sprintf("%s:%s:%d", payload.Event, payload.paymentID(), payload.CreatedAt)
	}
	log = log.With(zap.String("event_id", eventID), zap.String("event", payload.Event))

	webhookID, dup, err := h.repo.SaveWebhook(ctx, payment.ProviderRazorpay, eventID, payload.Event,
		payload.paymentID(), json.RawMessage(body), true)
	if err != nil {
		log.Error("failed to store webhook", zap.Error(err))
		transport.WriteError(w, r, err)
		return
	}
	if dup {
		metrics.Default().Counter(metrics.WebhooksDuplicate).Inc()
		log.Info("duplicate webhook acknowledged")
		transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if err := h.process(ctx, &payload); err != nil {
		log.Error("webhook processing failed", zap.Error(err))
		if markErr := h.repo.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(markErr))
		}
		transport.WriteError(w, r, err)
		return
	}

	if err := h.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("failed to mark webhook processed", zap.Error(err))
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) process(ctx context.Context, p *Payload) error {
	status, ok := statusFor(p)
	if !ok {
		logger.FromCtx(ctx).Info("ignoring webhook event", zap.String("event", p.Event))
		return nil
	}

	paymentID := p.paymentID()
	if paymentID == "" {
		return apperr.Validationf("webhook without payment id")
	}

	at := time.Now().UTC()
	if p.CreatedAt > 0 {
		at = time.Unix(p.CreatedAt, 0).UTC()
	}

	orderID, applied, err := h.repo.ApplyGatewayEvent(ctx, payment.GatewayEvent{
		GatewayPaymentID: paymentID,
		GatewayOrderID:   p.Payload.Payment.Entity.OrderID,
		Status:           status,
		At:               at,
	})
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			// the order may not be placed yet; a non-2xx makes the gateway retry
			return err
		}
		return fmt.Errorf("apply %s: %w", p.Event, err)
	}
	if !applied {
		metrics.Default().Counter(metrics.WebhooksStale).Inc()
		return nil
	}

	realtime.PublishAll(ctx, h.pub,
		realtime.NewEvent(realtime.TablePayments, realtime.OpUpdate, paymentID),
		realtime.NewEvent(realtime.TableOrders, realtime.OpUpdate, orderID),
	)
	return nil
}

func statusFor(p *Payload) (payment.Status, bool) {
	switch p.Event {
	case EventPaymentCaptured:
		return payment.StatusCaptured, true
	case EventPaymentFailed:
		return payment.StatusFailed, true
	case EventRefundProcessed:
		pe := p.Payload.Payment.Entity
		if pe.Amount > 0 && pe.AmountRefunded > 0 && pe.AmountRefunded < pe.Amount {
			return payment.StatusPartiallyRefunded, true
		}
		return payment.StatusRefunded, true
	}
	return "", false
}
