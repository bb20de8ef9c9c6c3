package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/boardadmin/boardadmin/internal/ctxkeys"
	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/boardadmin/boardadmin/internal/service"
	"github.com/boardadmin/boardadmin/internal/ui"
)

type postPage struct {
	Post        *model.Post
	Attachments []*model.Attachment
}

type PostHandler struct {
	postService       *service.PostService
	attachmentService *service.AttachmentService
}

func NewPostHandler(postService *service.PostService, attachmentService *service.AttachmentService) *PostHandler {
	return &PostHandler{
		postService:       postService,
		attachmentService: attachmentService,
	}
}

func (h *PostHandler) Board(w http.ResponseWriter, r *http.Request) {
	h.renderBoard(w, r, "")
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	post, err := h.postService.Create(user.ID, r.FormValue("title"), r.FormValue("content"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidPost) {
			h.renderBoard(w, r, err.Error())
			return
		}
		slog.Error("failed to create post", "error", err, "user_id", user.ID)
		h.renderBoard(w, r, "Failed to create post")
		return
	}

	slog.Info("post created", "post_id", post.ID, "user_id", user.ID)
	http.Redirect(w, r, "/posts/"+post.ID, http.StatusSeeOther)
}

func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	post, err := h.postService.ByID(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			notFound(w, r)
			return
		}
		slog.Error("failed to get post", "error", err, "post_id", id)
		http.Error(w, "Failed to load post", http.StatusInternalServerError)
		return
	}

	attachments, err := h.attachmentService.ListByPost(id)
	if err != nil {
		slog.Error("failed to list attachments", "error", err, "post_id", id)
		http.Error(w, "Failed to load post", http.StatusInternalServerError)
		return
	}

	v := ui.NewView(r, post.Title)
	v.Data = postPage{Post: post, Attachments: attachments}
	ui.Render(w, r, ui.Page("post", v))
}

// AdminDelete removes a post together with its attachments
func (h *PostHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.postService.Delete(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			notFound(w, r)
			return
		}
		slog.Error("failed to delete post", "error", err, "post_id", id)
		http.Error(w, "Failed to delete post", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/board", http.StatusSeeOther)
}

func (h *PostHandler) renderBoard(w http.ResponseWriter, r *http.Request, errMsg string) {
	page, size := pageParams(r)

	posts, err := h.postService.Posts(page, size)
	if err != nil {
		slog.Error("failed to list posts", "error", err)
		http.Error(w, "Failed to load board", http.StatusInternalServerError)
		return
	}

	v := ui.NewView(r, "Board")
	v.Error = errMsg
	v.Data = posts
	ui.Render(w, r, ui.Page("board", v))
}
