package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/boardadmin/boardadmin/internal/service"
	"github.com/boardadmin/boardadmin/internal/ui"
)

type loginForm struct {
	Action  string
	LoginID string
	Admin   bool
}

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{
		authService: authService,
	}
}

func (h *authHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, loginForm{Action: "/login"}, "")
}

func (h *authHandler) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, loginForm{Action: "/admin/login", Admin: true}, "")
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := loginForm{Action: "/login", LoginID: strings.TrimSpace(r.FormValue("login_id"))}

	user, err := h.authService.Login(form.LoginID, r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slog.Error("login failed", "error", err, "login_id", form.LoginID)
		}
		h.renderLogin(w, r, form, "Invalid ID or password")
		return
	}

	err = h.authService.StartSession(w, user)
	if err != nil {
		slog.Error("failed to start session", "error", err, "user_id", user.ID)
		h.renderLogin(w, r, form, "An error occurred. Please try again.")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, "/board", http.StatusSeeOther)
}

func (h *authHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	form := loginForm{Action: "/admin/login", Admin: true, LoginID: strings.TrimSpace(r.FormValue("login_id"))}

	user, err := h.authService.LoginAdmin(form.LoginID, r.FormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAdmin):
			slog.Warn("admin login by non-admin", "login_id", form.LoginID)
			h.renderLogin(w, r, form, "An administrator account is required")
		case errors.Is(err, service.ErrInvalidCredentials):
			h.renderLogin(w, r, form, "Invalid ID or password")
		default:
			slog.Error("admin login failed", "error", err, "login_id", form.LoginID)
			h.renderLogin(w, r, form, "An error occurred. Please try again.")
		}
		return
	}

	err = h.authService.StartSession(w, user)
	if err != nil {
		slog.Error("failed to start session", "error", err, "user_id", user.ID)
		h.renderLogin(w, r, form, "An error occurred. Please try again.")
		return
	}

	slog.Info("admin logged in", "user_id", user.ID)
	http.Redirect(w, r, "/admin/attachments", http.StatusSeeOther)
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *authHandler) renderLogin(w http.ResponseWriter, r *http.Request, form loginForm, errMsg string) {
	v := ui.NewView(r, "Log in")
	v.Error = errMsg
	v.Data = form
	ui.Render(w, r, ui.Page("login", v))
}
