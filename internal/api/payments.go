package api

import (
	"net/http"

	"irokart-be/internal/payment"
	"irokart-be/internal/transport"
)

func (h *Handler) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	var in payment.CreateOrderInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := h.svc.Payments.CreateOrder(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}

// VerifyPayment answers 400 with the result body on a mismatch, so callers
// read {verified:false} rather than a bare error.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var in payment.VerifyInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res := h.svc.Payments.Verify(r.Context(), in)
	status := http.StatusOK
	if !res.Verified {
		status = http.StatusBadRequest
	}
	transport.WriteJSON(w, status, res)
}
