package transport

import (
	"encoding/json"
	"net/http"

	"irokart-be/internal/apperr"
	"irokart-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	// money is rendered as JSON numbers, the shape the storefront reads
	decimal.MarshalJSONWithoutQuotes = true
}

const internalErrorMessage = "Internal server error"

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Error("failed to encode response", zap.Error(err))
	}
}

// WriteError renders err as {"error": "..."} with the status of its kind.
// Errors without a kind are logged and hidden behind a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)

	msg, ok := apperr.Message(err)
	if !ok {
		msg = internalErrorMessage
	}

	log := logger.FromCtx(r.Context()).With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	} else {
		log.Info("request rejected", zap.String("reason", msg))
	}

	WriteJSON(w, status, ErrorResponse{Error: msg})
}
