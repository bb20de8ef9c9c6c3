package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

const authCookieName = "auth_token"

var (
	ErrInvalidCredentials = errors.New("invalid login id or password")
	ErrNotAdmin           = errors.New("administrator role required")
)

type AuthService struct {
	userService  *UserService
	jwtSecret    string
	isProduction bool
	jwtExpiry    time.Duration
}

func NewAuthService(userService *UserService, jwtSecret string, isProduction bool, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		userService:  userService,
		jwtSecret:    jwtSecret,
		isProduction: isProduction,
		jwtExpiry:    jwtExpiry,
	}
}

// Login checks the credentials of an active account
func (s *AuthService) Login(loginID, password string) (*model.User, error) {
	user, err := s.userService.ByLoginID(strings.TrimSpace(loginID))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.Active || !s.userService.CheckPassword(user, password) {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return user, nil
}

// LoginAdmin is Login restricted to administrators
func (s *AuthService) LoginAdmin(loginID, password string) (*model.User, error) {
	user, err := s.Login(loginID, password)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() {
		return nil, ErrNotAdmin
	}

	return user, nil
}

func (s *AuthService) GenerateJWT(user *model.User) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(s.jwtExpiry)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     expiry.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiry, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// StartSession issues a JWT for user and stores it in the auth cookie
func (s *AuthService) StartSession(w http.ResponseWriter, user *model.User) error {
	token, expiry, err := s.GenerateJWT(user)
	if err != nil {
		return fmt.Errorf("failed to generate JWT: %w", err)
	}

	s.SetJWTCookie(w, token, expiry)
	return nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionUser resolves the user behind the auth cookie. Inactive or unknown
// users are treated as anonymous.
func (s *AuthService) SessionUser(r *http.Request) (*model.User, error) {
	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return nil, err
	}

	claims, err := s.VerifyJWT(cookie.Value)
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("token has no user_id")
	}

	user, err := s.userService.ByID(userID)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, fmt.Errorf("account %s is inactive", userID)
	}

	return user, nil
}
