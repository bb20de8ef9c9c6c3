package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boardadmin/boardadmin/internal/ctxkeys"
	"github.com/boardadmin/boardadmin/internal/dbtest"
	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/boardadmin/boardadmin/internal/repository"
	"github.com/boardadmin/boardadmin/internal/service"
	"github.com/boardadmin/boardadmin/internal/storage"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendSimpleMessage(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type testEnv struct {
	db          Pinger
	users       *service.UserService
	auth        *service.AuthService
	posts       *service.PostService
	attachments *service.AttachmentService
	mailer      *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := dbtest.New(t)
	root := filepath.Join(t.TempDir(), "files")
	require.NoError(t, storage.EnsureDir(root))
	local, err := storage.NewLocalStorage(root)
	require.NoError(t, err)

	postRepo := repository.NewPostRepository(database)
	users := service.NewUserService(repository.NewUserRepository(database))
	attachments := service.NewAttachmentService(repository.NewAttachmentRepository(database), postRepo, local, 20)

	return &testEnv{
		db:          database,
		users:       users,
		auth:        service.NewAuthService(users, "test-secret-0123456789", false, time.Hour),
		posts:       service.NewPostService(postRepo, attachments),
		attachments: attachments,
		mailer:      &fakeMailer{},
	}
}

func (e *testEnv) user(t *testing.T, loginID, role string) *model.User {
	t.Helper()

	user := &model.User{LoginID: loginID, Email: loginID + "@example.com", Name: "User " + loginID, Active: true}
	require.NoError(t, e.users.SetPassword(user, "c0rrect-h0rse"))
	require.NoError(t, e.users.AssignRole(user, role))
	require.NoError(t, e.users.Save(user))
	return user
}

func (e *testEnv) post(t *testing.T, user *model.User) *model.Post {
	t.Helper()

	post, err := e.posts.Create(user.ID, "A post", "content")
	require.NoError(t, err)
	return post
}

func withUser(r *http.Request, user *model.User) *http.Request {
	return r.WithContext(ctxkeys.WithUser(r.Context(), user))
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
