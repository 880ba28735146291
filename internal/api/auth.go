package api

import (
	"net/http"
	"strings"

	"irokart-be/internal/auth"
	"irokart-be/internal/transport"
	"irokart-be/internal/user"
	"irokart-be/internal/utils"
)

const (
	signUpMessage = "Account created. You can now sign in."
	signInMessage = "Sign In Successful"
)

type signUpResponse struct {
	Message string         `json:"message"`
	User    *user.AuthUser `json:"user"`
}

type signInResponse struct {
	User    *user.AuthUser `json:"user"`
	Session *auth.Session  `json:"session"`
	Message string         `json:"message"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var in user.SignUpInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Users.SignUp(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, signUpResponse{Message: signUpMessage, User: u})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var in user.SignInInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	u, session, err := h.svc.Users.SignIn(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, signInResponse{User: u, Session: session, Message: signInMessage})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Users.Me(r.Context(), uidFrom(r))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, profile)
}

// uidFrom prefers the uid query parameter and falls back to the signed-in
// subject.
func uidFrom(r *http.Request) string {
	if uid := strings.TrimSpace(r.URL.Query().Get("uid")); uid != "" {
		return uid
	}
	uid, _ := utils.GetUserIDFromContext(r.Context())
	return uid
}
