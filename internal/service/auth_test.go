package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestLogin(t *testing.T) {
	users := newUserService(t)
	auth := NewAuthService(users, testSecret, false, time.Hour)

	user := signup(t, users, "johndoe", "john@example.com", "c0rrect-h0rse")

	got, err := auth.Login("johndoe", "c0rrect-h0rse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = auth.Login("johndoe", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login("nobody", "c0rrect-h0rse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, users.Deactivate(user))
	_, err = auth.Login("johndoe", "c0rrect-h0rse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAdmin(t *testing.T) {
	users := newUserService(t)
	auth := NewAuthService(users, testSecret, false, time.Hour)

	signup(t, users, "johndoe", "john@example.com", "c0rrect-h0rse")
	admin := signup(t, users, "root", "root@example.com", "c0rrect-h0rse")
	require.NoError(t, users.AssignRole(admin, model.RoleAdmin))
	require.NoError(t, users.Save(admin))

	_, err := auth.LoginAdmin("johndoe", "c0rrect-h0rse")
	assert.ErrorIs(t, err, ErrNotAdmin)

	got, err := auth.LoginAdmin("root", "c0rrect-h0rse")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
}

func TestSessionRoundTrip(t *testing.T) {
	users := newUserService(t)
	auth := NewAuthService(users, testSecret, false, time.Hour)
	user := signup(t, users, "johndoe", "john@example.com", "c0rrect-h0rse")

	rec := httptest.NewRecorder()
	require.NoError(t, auth.StartSession(rec, user))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	got, err := auth.SessionUser(req)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, users.Deactivate(user))
	_, err = auth.SessionUser(req)
	assert.Error(t, err)
}

func TestVerifyJWTRejectsForeignSecret(t *testing.T) {
	users := newUserService(t)
	issuer := NewAuthService(users, "another-secret-0123456789", false, time.Hour)
	verifier := NewAuthService(users, testSecret, false, time.Hour)

	token, _, err := issuer.GenerateJWT(&model.User{ID: "u1", Role: model.RoleUser})
	require.NoError(t, err)

	_, err = verifier.VerifyJWT(token)
	assert.Error(t, err)

	claims, err := issuer.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	auth := NewAuthService(nil, testSecret, false, -time.Minute)

	token, _, err := auth.GenerateJWT(&model.User{ID: "u1"})
	require.NoError(t, err)

	_, err = auth.VerifyJWT(token)
	assert.Error(t, err)
}
