package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/boardadmin/boardadmin/internal/ctxkeys"
	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/boardadmin/boardadmin/internal/service"
	"github.com/boardadmin/boardadmin/internal/ui"
	"github.com/boardadmin/boardadmin/internal/validation"
)

const (
	msgDuplicateLoginID = "ID already exists"
	msgDuplicateEmail   = "email already exists"
	msgGenericError     = "An error occurred. Please try again."
)

type resetForm struct {
	LoginID string
	Email   string
}

type findIDResult struct {
	Email    string
	MaskedID string
}

type AccountHandler struct {
	authService *service.AuthService
	userService *service.UserService
	mailer      service.Mailer
	appName     string
	loginURL    string
}

func NewAccountHandler(authService *service.AuthService, userService *service.UserService, mailer service.Mailer, appName, appURL string) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		userService: userService,
		mailer:      mailer,
		appName:     appName,
		loginURL:    strings.TrimSuffix(appURL, "/") + "/login",
	}
}

func (h *AccountHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup", "Sign up", validation.AccountForm{}, "", "")
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	form := accountForm(r)

	err := form.Validate(true)
	if err != nil {
		h.render(w, r, "signup", "Sign up", form, err.Error(), "")
		return
	}

	exists, err := h.userService.LoginIDExists(form.LoginID)
	if err != nil {
		slog.Error("failed to check login id", "error", err, "login_id", form.LoginID)
		h.render(w, r, "signup", "Sign up", form, msgGenericError, "")
		return
	}
	if exists {
		form.LoginID = ""
		h.render(w, r, "signup", "Sign up", form, msgDuplicateLoginID, "")
		return
	}

	exists, err = h.userService.EmailExists(form.Email)
	if err != nil {
		slog.Error("failed to check email", "error", err, "email", form.Email)
		h.render(w, r, "signup", "Sign up", form, msgGenericError, "")
		return
	}
	if exists {
		form.Email = ""
		h.render(w, r, "signup", "Sign up", form, msgDuplicateEmail, "")
		return
	}

	user := &model.User{
		LoginID: form.LoginID,
		Email:   form.Email,
		Name:    form.Name,
		Active:  true,
	}

	err = h.userService.SetPassword(user, form.Password)
	if err == nil {
		err = h.userService.AssignRole(user, model.RoleUser)
	}
	if err == nil {
		err = h.userService.Save(user)
	}
	if err != nil {
		form.Password = ""
		switch {
		case errors.Is(err, service.ErrDuplicateLoginID):
			form.LoginID = ""
			h.render(w, r, "signup", "Sign up", form, msgDuplicateLoginID, "")
		case errors.Is(err, service.ErrDuplicateEmail):
			form.Email = ""
			h.render(w, r, "signup", "Sign up", form, msgDuplicateEmail, "")
		default:
			slog.Error("failed to create user", "error", err, "login_id", form.LoginID)
			h.render(w, r, "signup", "Sign up", form, msgGenericError, "")
		}
		return
	}

	slog.Info("user signed up", "user_id", user.ID, "login_id", user.LoginID)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AccountHandler) MyPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "mypage", "My page", nil, "", "")
}

func (h *AccountHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	form := validation.AccountForm{
		LoginID: user.LoginID,
		Name:    user.Name,
		Email:   user.Email,
	}
	h.render(w, r, "account_update", "Edit account", form, "", "")
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	form := accountForm(r)

	err := form.Validate(false)
	if err != nil {
		form.Password = ""
		h.render(w, r, "account_update", "Edit account", form, err.Error(), "")
		return
	}

	changes := &model.User{
		LoginID: form.LoginID,
		Name:    form.Name,
		Email:   form.Email,
	}
	if form.Password != "" {
		err = h.userService.SetPassword(changes, form.Password)
		if err != nil {
			slog.Error("failed to hash password", "error", err, "user_id", user.ID)
			h.render(w, r, "account_update", "Edit account", form, msgGenericError, "")
			return
		}
	}
	form.Password = ""

	ok, err := h.userService.Update(user.ID, changes)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			h.render(w, r, "account_update", "Edit account", form, msgDuplicateEmail, "")
			return
		}
		slog.Error("failed to update user", "error", err, "user_id", user.ID)
		h.render(w, r, "account_update", "Edit account", form, msgGenericError, "")
		return
	}
	if !ok {
		h.render(w, r, "account_update", "Edit account", form, msgDuplicateLoginID, "")
		return
	}

	slog.Info("account updated", "user_id", user.ID)
	http.Redirect(w, r, "/mypage", http.StatusSeeOther)
}

func (h *AccountHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "account_delete", "Delete account", nil, "", "")
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current := ctxkeys.User(r.Context())

	// The context copy has no password hash
	user, err := h.userService.ByID(current.ID)
	if err != nil {
		slog.Error("failed to load user for deletion", "error", err, "user_id", current.ID)
		h.render(w, r, "account_delete", "Delete account", nil, msgGenericError, "")
		return
	}

	if !h.userService.CheckPassword(user, r.FormValue("password")) {
		slog.Warn("account deletion with wrong password", "user_id", user.ID)
		h.render(w, r, "account_delete", "Delete account", nil, "Password does not match", "")
		return
	}

	err = h.userService.Deactivate(user)
	if err != nil {
		slog.Error("failed to delete account", "error", err, "user_id", user.ID)
		h.render(w, r, "account_delete", "Delete account", nil, msgGenericError, "")
		return
	}

	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AccountHandler) PasswordResetPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "password_reset", "Reset password", resetForm{}, "", "")
}

// PasswordReset emails a temporary password when the ID and email belong
// to the same active account. Delivery failures are logged, not shown, and
// leave the previous password in place.
func (h *AccountHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	form := resetForm{
		LoginID: strings.TrimSpace(r.FormValue("login_id")),
		Email:   strings.TrimSpace(strings.ToLower(r.FormValue("email"))),
	}

	user, err := h.userService.ByLoginID(form.LoginID)
	if err != nil && !errors.Is(err, service.ErrUserNotFound) {
		slog.Error("failed to look up user for password reset", "error", err, "login_id", form.LoginID)
		h.render(w, r, "password_reset", "Reset password", form, msgGenericError, "")
		return
	}
	if user == nil || !user.Active || user.Email != form.Email {
		h.render(w, r, "password_reset", "Reset password", form, "No account matches that ID and email", "")
		return
	}

	previousHash := user.PasswordHash
	tempPassword, err := h.userService.IssueTemporaryPassword(user)
	if err != nil {
		slog.Error("failed to issue temporary password", "error", err, "user_id", user.ID)
		h.render(w, r, "password_reset", "Reset password", form, msgGenericError, "")
		return
	}

	subject, body := service.TemporaryPasswordEmail(h.appName, h.loginURL, user.LoginID, tempPassword)
	err = h.mailer.SendSimpleMessage(user.Email, subject, body)
	if err != nil {
		// Nobody will learn the temporary password, so keep the old one
		slog.Error("failed to send temporary password", "error", err, "user_id", user.ID)
		user.PasswordHash = previousHash
		restoreErr := h.userService.Save(user)
		if restoreErr != nil {
			slog.Error("failed to restore password after send failure", "error", restoreErr, "user_id", user.ID)
		}
	}

	h.render(w, r, "password_reset", "Reset password", resetForm{}, "", "A temporary password was sent to "+user.Email)
}

func (h *AccountHandler) FindIDPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "find_id", "Find ID", findIDResult{}, "", "")
}

func (h *AccountHandler) FindID(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))

	user, ok := h.activeUserByEmail(w, r, email)
	if !ok {
		return
	}

	h.render(w, r, "find_id", "Find ID", findIDResult{Email: email, MaskedID: service.MaskLoginID(user.LoginID)}, "", "")
}

func (h *AccountHandler) SendIDEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))

	user, ok := h.activeUserByEmail(w, r, email)
	if !ok {
		return
	}

	subject, body := service.LoginIDEmail(h.appName, h.loginURL, user.LoginID)
	err := h.mailer.SendSimpleMessage(user.Email, subject, body)
	if err != nil {
		slog.Error("failed to send login id email", "error", err, "user_id", user.ID)
	}

	h.render(w, r, "find_id", "Find ID", findIDResult{}, "", "Your ID was sent to "+user.Email)
}

// activeUserByEmail renders the find-ID page with an error and returns false
// when no active account uses email.
func (h *AccountHandler) activeUserByEmail(w http.ResponseWriter, r *http.Request, email string) (*model.User, bool) {
	user, err := h.userService.ByEmail(email)
	if err != nil && !errors.Is(err, service.ErrUserNotFound) {
		slog.Error("failed to look up user by email", "error", err)
		h.render(w, r, "find_id", "Find ID", findIDResult{Email: email}, msgGenericError, "")
		return nil, false
	}
	if user == nil || !user.Active {
		h.render(w, r, "find_id", "Find ID", findIDResult{Email: email}, "No account is registered with that email", "")
		return nil, false
	}
	return user, true
}

func (h *AccountHandler) render(w http.ResponseWriter, r *http.Request, page, title string, data any, errMsg, successMsg string) {
	v := ui.NewView(r, title)
	v.Data = data
	v.Error = errMsg
	v.Success = successMsg
	ui.Render(w, r, ui.Page(page, v))
}

func accountForm(r *http.Request) validation.AccountForm {
	return validation.AccountForm{
		LoginID:  strings.TrimSpace(r.FormValue("login_id")),
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(strings.ToLower(r.FormValue("email"))),
		Password: r.FormValue("password"),
	}
}
