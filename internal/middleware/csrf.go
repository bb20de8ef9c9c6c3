package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"mime"
	"net/http"

	"github.com/boardadmin/boardadmin/internal/ctxkeys"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfTokenBytes = 32
	csrfCookieTTL  = 7 * 24 * 60 * 60

	defaultMaxUploadMemory = 32 << 20
)

// CSRFProtection implements the double-submit cookie pattern. Every request
// gets a token in its context for templates; unsafe methods must echo the
// cookie value in the X-CSRF-Token header or the csrf_token form field.
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := csrfToken(w, r)
		r = r.WithContext(ctxkeys.WithCSRFToken(r.Context(), token))

		if !safeMethod(r.Method) && !tokensMatch(token, submittedCSRFToken(r)) {
			slog.Warn("csrf validation failed", "path", r.URL.Path, "method", r.Method, "ip", clientIP(r))
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// submittedCSRFToken reads the header first, then the form field. Multipart
// bodies are parsed here with the configured memory limit; later
// ParseMultipartForm calls in handlers are no-ops.
func submittedCSRFToken(r *http.Request) string {
	if token := r.Header.Get(csrfHeader); token != "" {
		return token
	}

	if isMultipart(r) {
		err := r.ParseMultipartForm(maxUploadMemory(r))
		if err != nil {
			slog.Warn("failed to parse multipart form", "error", err, "path", r.URL.Path)
			return ""
		}
	}
	return r.PostFormValue(csrfFormField)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func maxUploadMemory(r *http.Request) int64 {
	cfg := ctxkeys.Config(r.Context())
	if cfg == nil || cfg.MaxUploadMemory <= 0 {
		return defaultMaxUploadMemory
	}
	return cfg.MaxUploadMemory
}

// csrfToken returns the token from the cookie, issuing a new cookie when it
// is missing or malformed
func csrfToken(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err == nil && len(cookie.Value) == base64.RawURLEncoding.EncodedLen(csrfTokenBytes) {
		return cookie.Value
	}

	token := newCSRFToken()
	cfg := ctxkeys.Config(r.Context())

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   csrfCookieTTL,
	})

	return token
}

func newCSRFToken() string {
	b := make([]byte, csrfTokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		panic("failed to generate csrf token: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func tokensMatch(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
