package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadRequest(t *testing.T, postID, field, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/attachments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetPathValue("id", postID)
	return req
}

func TestUploadAndDownload(t *testing.T) {
	env := newTestEnv(t)
	h := NewAttachmentHandler(env.attachments, 1<<20)
	user := env.user(t, "johndoe", model.RoleUser)
	post := env.post(t, user)

	req := withUser(uploadRequest(t, post.ID, "file", "report.pdf", "hello world!"), user)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Attachment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "report.pdf", created.OriginalName)
	assert.Equal(t, post.ID, created.PostID)
	assert.Equal(t, int64(12), created.Size)
	assert.Empty(t, created.StoragePath, "storage path is not exposed")

	req = httptest.NewRequest(http.MethodGet, "/attachments/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec = httptest.NewRecorder()
	h.Download(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world!", rec.Body.String())
	assert.Equal(t, "attachment; filename=report.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "12", rec.Header().Get("Content-Length"))
}

func TestUploadFormRedirects(t *testing.T) {
	env := newTestEnv(t)
	h := NewAttachmentHandler(env.attachments, 1<<20)
	user := env.user(t, "johndoe", model.RoleUser)
	post := env.post(t, user)

	rec := httptest.NewRecorder()
	h.Upload(rec, withUser(uploadRequest(t, post.ID, "file", "a.txt", "abc"), user))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/posts/"+post.ID, rec.Header().Get("Location"))
}

func TestUploadUnknownPost(t *testing.T) {
	env := newTestEnv(t)
	h := NewAttachmentHandler(env.attachments, 1<<20)
	user := env.user(t, "johndoe", model.RoleUser)

	req := withUser(uploadRequest(t, "missing", "file", "a.txt", "abc"), user)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post not found")

	rec = httptest.NewRecorder()
	h.Upload(rec, withUser(uploadRequest(t, "missing", "file", "a.txt", "abc"), user))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	all, err := env.attachments.ListAll(1, 20)
	require.NoError(t, err)
	assert.Zero(t, all.Total)
}

func TestUploadWithoutFile(t *testing.T) {
	env := newTestEnv(t)
	h := NewAttachmentHandler(env.attachments, 1<<20)
	user := env.user(t, "johndoe", model.RoleUser)
	post := env.post(t, user)

	rec := httptest.NewRecorder()
	h.Upload(rec, withUser(uploadRequest(t, post.ID, "", "", ""), user))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByPostJSON(t *testing.T) {
	env := newTestEnv(t)
	h := NewAttachmentHandler(env.attachments, 1<<20)
	user := env.user(t, "johndoe", model.RoleUser)
	post := env.post(t, user)
	other := env.post(t, user)

	for _, p := range []*model.Post{post, post, other} {
		_, err := env.attachments.Store(strings.NewReader("x"), "f.txt", p.ID)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/posts/"+post.ID+"/attachments", nil)
	req.SetPathValue("id", post.ID)
	rec := httptest.NewRecorder()
	h.ListByPost(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Attachment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 2)
}

func TestDeleteAPI(t *testing.T) {
	env := newTestEnv(t)
	h := NewAttachmentHandler(env.attachments, 1<<20)
	user := env.user(t, "johndoe", model.RoleUser)
	post := env.post(t, user)

	a, err := env.attachments.Store(strings.NewReader("x"), "f.txt", post.ID)
	require.NoError(t, err)

	for _, want := range []int{http.StatusNoContent, http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodDelete, "/attachments/"+a.ID, nil)
		req.SetPathValue("id", a.ID)
		rec := httptest.NewRecorder()
		h.DeleteAPI(rec, withUser(req, user))
		assert.Equal(t, want, rec.Code)
	}
}

func TestDeleteFormRedirectsToPost(t *testing.T) {
	env := newTestEnv(t)
	h := NewAttachmentHandler(env.attachments, 1<<20)
	user := env.user(t, "johndoe", model.RoleUser)
	post := env.post(t, user)

	a, err := env.attachments.Store(strings.NewReader("x"), "f.txt", post.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/attachments/"+a.ID+"/delete", nil)
	req.SetPathValue("id", a.ID)
	rec := httptest.NewRecorder()
	h.Delete(rec, withUser(req, user))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/posts/"+post.ID, rec.Header().Get("Location"))

	_, err = env.attachments.ByID(a.ID)
	assert.Error(t, err)
}

func TestDownloadUnknown(t *testing.T) {
	env := newTestEnv(t)
	h := NewAttachmentHandler(env.attachments, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/attachments/nope", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.Download(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminList(t *testing.T) {
	env := newTestEnv(t)
	h := NewAttachmentHandler(env.attachments, 1<<20)
	admin := env.user(t, "root", model.RoleAdmin)
	post := env.post(t, admin)

	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		_, err := env.attachments.Store(strings.NewReader("x"), name, post.ID)
		require.NoError(t, err)
	}

	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/attachments?page=2&size=2", nil)
		rec := httptest.NewRecorder()
		h.AdminListAPI(rec, withUser(req, admin))

		require.Equal(t, http.StatusOK, rec.Code)

		var page model.Page[model.Attachment]
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, 2, page.Page)
		assert.Len(t, page.Items, 1)
	})

	t.Run("html", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/attachments", nil)
		rec := httptest.NewRecorder()
		h.AdminList(rec, withUser(req, admin))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "one.txt")
		assert.Contains(t, body, "three.txt")
		assert.Contains(t, body, "3 attachments")
	})
}
