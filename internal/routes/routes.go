package routes

import (
	"net/http"

	"github.com/boardadmin/boardadmin/internal/app"
	"github.com/boardadmin/boardadmin/internal/handler"
	"github.com/boardadmin/boardadmin/internal/metrics"
	"github.com/boardadmin/boardadmin/internal/middleware"
	"github.com/boardadmin/boardadmin/internal/ui"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	account := handler.NewAccountHandler(app.AuthService, app.UserService, app.EmailService, app.Cfg.AppName, app.Cfg.AppURL)
	post := handler.NewPostHandler(app.PostService, app.AttachmentService)
	attachment := handler.NewAttachmentHandler(app.AttachmentService, app.Cfg.MaxUploadMemory)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files
	mux.Handle("GET /assets/", ui.StaticHandler())

	// Operations
	mux.HandleFunc("GET /healthz", home.Healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	// Home
	mux.HandleFunc("GET /{$}", home.HomePage)

	// Board
	mux.HandleFunc("GET /board", post.Board)
	mux.HandleFunc("GET /posts/{id}", post.Show)
	mux.HandleFunc("GET /posts/{id}/attachments", attachment.ListByPost)
	mux.HandleFunc("GET /attachments/{id}", attachment.Download)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	recoveryLimiter := middleware.RateLimitRecovery()

	mux.HandleFunc("GET /login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("GET /admin/login", auth.AdminLoginPage)
	mux.HandleFunc("POST /login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /admin/login", rateLimiter(auth.AdminLogin))
	mux.HandleFunc("POST /logout", auth.Logout)

	// Account recovery
	mux.HandleFunc("GET /signup", middleware.RequireGuest(account.SignupPage))
	mux.HandleFunc("POST /signup", rateLimiter(middleware.RequireGuest(account.Signup)))
	mux.HandleFunc("GET /password/reset", account.PasswordResetPage)
	mux.HandleFunc("POST /password/reset", recoveryLimiter(account.PasswordReset))
	mux.HandleFunc("GET /findId", account.FindIDPage)
	mux.HandleFunc("POST /findId", rateLimiter(account.FindID))
	mux.HandleFunc("POST /sendIdEmail", recoveryLimiter(account.SendIDEmail))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Account
	mux.HandleFunc("GET /mypage", middleware.RequireAuth(account.MyPage))
	mux.HandleFunc("GET /account/update", middleware.RequireAuth(account.UpdatePage))
	mux.HandleFunc("POST /account/update", middleware.RequireAuth(account.Update))
	mux.HandleFunc("GET /account/delete", middleware.RequireAuth(account.DeletePage))
	mux.HandleFunc("POST /account/delete", middleware.RequireAuth(account.Delete))

	// Posts and attachments
	mux.HandleFunc("POST /posts", middleware.RequireAuth(post.Create))
	mux.HandleFunc("POST /posts/{id}/attachments", middleware.RequireAuth(attachment.Upload))
	mux.HandleFunc("POST /attachments/{id}/delete", middleware.RequireAuth(attachment.Delete))
	mux.HandleFunc("DELETE /attachments/{id}", middleware.RequireAuth(attachment.DeleteAPI))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /admin/attachments", middleware.RequireAdmin(attachment.AdminList))
	mux.HandleFunc("GET /api/admin/attachments", middleware.RequireAdmin(attachment.AdminListAPI))
	mux.HandleFunc("POST /admin/posts/{id}/delete", middleware.RequireAdmin(post.AdminDelete))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService),
		middleware.WithURLPath,
	)

	return handler
}
