package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"irokart-be/internal/apperr"
	"irokart-be/internal/logger"

	"go.uber.org/zap"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

type razorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewRazorpayGateway(keyID, keySecret string) Gateway {
	if keyID == "" || keySecret == "" {
		logger.L().Warn("Razorpay credentials are empty")
	}

	return &razorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   razorpayBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "CreateOrder"),
		zap.Int64("amount", amountPaise),
		zap.String("currency", currency),
		zap.String("receipt", receipt),
	)

	if g.keyID == "" || g.keySecret == "" {
		return nil, ErrGatewayNotConfig
	}

	jsonBody, err := json.Marshal(map[string]any{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("Razorpay request failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "Payment gateway error", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "Payment gateway error", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("Razorpay returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		var rzErr razorpayError
		if json.Unmarshal(bodyBytes, &rzErr) == nil && rzErr.Error.Description != "" {
			return nil, apperr.Wrap(apperr.Upstream, rzErr.Error.Description,
				fmt.Errorf("razorpay %d: %s", resp.StatusCode, rzErr.Error.Code))
		}
		return nil, apperr.Wrap(apperr.Upstream, "Payment gateway error",
			fmt.Errorf("razorpay %d", resp.StatusCode))
	}

	var order GatewayOrder
	if err := json.Unmarshal(bodyBytes, &order); err != nil {
		log.Error("Failed decoding Razorpay response", zap.Error(err))
		return nil, apperr.Wrap(apperr.Upstream, "Payment gateway error", err)
	}
	order.Raw = json.RawMessage(bodyBytes)

	log.Info("Razorpay order created", zap.String("gateway_order_id", order.ID))
	return &order, nil
}
