package api

import (
	"net/http"

	"irokart-be/internal/order"
	"irokart-be/internal/transport"
)

type ordersResponse struct {
	Orders []*order.Order `json:"orders"`
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := transport.Page(r, order.DefaultListLimit, order.MaxListLimit)

	res, err := h.svc.Orders.List(r.Context(), order.ListFilter{
		Status: order.Status(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.ListByProfile(r.Context(), uidFrom(r))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, ordersResponse{Orders: orders})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in order.StatusUpdate
	if err := transport.DecodeJSON(r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := h.svc.Orders.UpdateStatus(r.Context(), r.PathValue("id"), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}

// PlaceOrder leaves field checks to the service so every rejection happens
// before the first write and carries the same messages.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in order.PlaceOrderInput
	if err := transport.Decode(r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Orders.Place(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, res)
}
