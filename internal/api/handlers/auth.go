package handlers

import (
	"log/slog"
	"net/http"

	"github.com/baharkarakas/stocksim/internal/api/httpx"
	"github.com/baharkarakas/stocksim/internal/middleware"
	"github.com/baharkarakas/stocksim/internal/services"
)

type AuthHandler struct {
	Users   *services.UserService
	Session *middleware.AuthMiddleware
}

func NewAuthHandler(us *services.UserService, am *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{Users: us, Session: am}
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, formView{Fields: []string{"username", "password", "confirmation"}})
}

// Register creates the account and logs the new user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Register(r.Context(), services.RegisterArgs{
		Username:     r.PostFormValue("username"),
		Password:     r.PostFormValue("password"),
		Confirmation: r.PostFormValue("confirmation"),
	})
	if err != nil {
		fail(w, r, err, http.StatusBadRequest)
		return
	}
	if err := h.Session.StartSession(w, u.ID); err != nil {
		fail(w, r, err, http.StatusBadRequest)
		return
	}
	slog.Info("user registered", "user_id", u.ID, "request_id", middleware.RequestIDFrom(r.Context()))
	home(w, r)
}

// LoginForm forgets any current session.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.Session.ClearSession(w)
	httpx.WriteJSON(w, http.StatusOK, formView{Fields: []string{"username", "password"}})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.Session.ClearSession(w)

	u, err := h.Users.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		fail(w, r, err, http.StatusForbidden)
		return
	}
	if err := h.Session.StartSession(w, u.ID); err != nil {
		fail(w, r, err, http.StatusForbidden)
		return
	}
	home(w, r)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Session.ClearSession(w)
	home(w, r)
}
