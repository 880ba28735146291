package api

import (
	"net/http"

	"irokart-be/internal/transport"
)

const healthMessage = "IroKart backend is running"

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: healthMessage})
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, h.svc.Metrics.Snapshot())
}
