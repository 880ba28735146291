package api

import (
	"net/http"

	"irokart-be/internal/transport"
	"irokart-be/internal/user"
)

const defaultUserListLimit = 100

type usersResponse struct {
	Users []*user.Profile `json:"users"`
}

type accountStatusRequest struct {
	AccountStatus user.AccountStatus `json:"account_status" validate:"required"`
}

type userTypeRequest struct {
	UserType user.UserType `json:"user_type" validate:"required"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := transport.Page(r, defaultUserListLimit, 0)

	users, err := h.svc.Users.List(r.Context(), user.ListFilter{
		Search: q.Get("search"),
		Type:   q.Get("type"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, usersResponse{Users: users})
}

func (h *Handler) SetAccountStatus(w http.ResponseWriter, r *http.Request) {
	var req accountStatusRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	p, err := h.svc.Users.SetAccountStatus(r.Context(), r.PathValue("id"), req.AccountStatus)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) SetUserType(w http.ResponseWriter, r *http.Request) {
	var req userTypeRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	p, err := h.svc.Users.SetUserType(r.Context(), r.PathValue("id"), req.UserType)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}
