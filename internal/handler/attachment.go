package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/boardadmin/boardadmin/internal/service"
	"github.com/boardadmin/boardadmin/internal/storage"
	"github.com/boardadmin/boardadmin/internal/ui"
)

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	maxUploadMemory   int64
}

func NewAttachmentHandler(attachmentService *service.AttachmentService, maxUploadMemory int64) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		maxUploadMemory:   maxUploadMemory,
	}
}

// Upload stores the multipart field "file" as an attachment of the post.
// An unknown post is 404 for pages and 400 for API clients.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")

	// CSRFProtection normally parsed the form already with the same limit.
	// Requests carrying the token in a header are parsed here.
	err := r.ParseMultipartForm(h.maxUploadMemory)
	if err != nil {
		slog.Warn("failed to parse upload form", "error", err, "post_id", postID)
		h.fail(w, r, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close file", "error", closeErr)
		}
	}()

	attachment, err := h.attachmentService.Store(file, header.Filename, postID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidParent):
			slog.Warn("upload to unknown post", "post_id", postID)
			status := http.StatusNotFound
			if wantsJSON(r) {
				status = http.StatusBadRequest
			}
			h.fail(w, r, status, "Post not found")
		case errors.Is(err, service.ErrStorageWrite):
			slog.Error("failed to write attachment", "error", err, "post_id", postID)
			h.fail(w, r, http.StatusInternalServerError, "Failed to store file")
		default:
			slog.Error("failed to store attachment", "error", err, "post_id", postID)
			h.fail(w, r, http.StatusInternalServerError, "Failed to store file")
		}
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, attachment)
		return
	}
	http.Redirect(w, r, "/posts/"+postID, http.StatusSeeOther)
}

// ListByPost returns the attachments of a post as JSON, oldest first
func (h *AttachmentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")

	attachments, err := h.attachmentService.ListByPost(postID)
	if err != nil {
		slog.Error("failed to list attachments", "error", err, "post_id", postID)
		writeJSONError(w, http.StatusInternalServerError, "failed to list attachments")
		return
	}

	writeJSON(w, http.StatusOK, attachments)
}

// Download streams the stored bytes under the original file name
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	attachment, content, err := h.attachmentService.Open(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttachmentNotFound):
			notFound(w, r)
		case errors.Is(err, storage.ErrObjectNotFound):
			slog.Error("attachment file missing from storage", "attachment_id", id)
			notFound(w, r)
		default:
			slog.Error("failed to open attachment", "error", err, "attachment_id", id)
			http.Error(w, "Failed to read file", http.StatusInternalServerError)
		}
		return
	}
	defer func() {
		closeErr := content.Close()
		if closeErr != nil {
			slog.Error("failed to close attachment", "error", closeErr, "attachment_id", id)
		}
	}()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": attachment.OriginalName}))
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.Size, 10))

	_, err = io.Copy(w, content)
	if err != nil {
		slog.Warn("attachment download interrupted", "error", err, "attachment_id", id)
	}
}

// Delete handles the form post from the post page
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	attachment, err := h.attachmentService.ByID(id)
	if err != nil {
		if errors.Is(err, service.ErrAttachmentNotFound) {
			notFound(w, r)
			return
		}
		slog.Error("failed to get attachment", "error", err, "attachment_id", id)
		http.Error(w, "Failed to delete file", http.StatusInternalServerError)
		return
	}

	status, msg := h.delete(id)
	if status != http.StatusNoContent {
		if status == http.StatusNotFound {
			notFound(w, r)
			return
		}
		http.Error(w, msg, status)
		return
	}

	http.Redirect(w, r, "/posts/"+attachment.PostID, http.StatusSeeOther)
}

// DeleteAPI handles DELETE /attachments/{id}
func (h *AttachmentHandler) DeleteAPI(w http.ResponseWriter, r *http.Request) {
	status, msg := h.delete(r.PathValue("id"))
	if status != http.StatusNoContent {
		writeJSONError(w, status, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AttachmentHandler) delete(id string) (int, string) {
	err := h.attachmentService.Delete(id)
	switch {
	case err == nil:
		return http.StatusNoContent, ""
	case errors.Is(err, service.ErrAttachmentNotFound):
		return http.StatusNotFound, "attachment not found"
	case errors.Is(err, service.ErrStorageDelete):
		slog.Error("failed to remove attachment file", "error", err, "attachment_id", id)
		return http.StatusInternalServerError, "failed to delete file"
	default:
		slog.Error("failed to delete attachment", "error", err, "attachment_id", id)
		return http.StatusInternalServerError, "failed to delete attachment"
	}
}

// AdminList renders one page of all attachments
func (h *AttachmentHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := h.attachmentService.ListAll(page, size)
	if err != nil {
		slog.Error("failed to list attachments", "error", err, "page", page)
		http.Error(w, "Failed to list attachments", http.StatusInternalServerError)
		return
	}

	v := ui.NewView(r, "Attachments")
	v.Data = result
	ui.Render(w, r, ui.Page("admin_attachments", v))
}

// AdminListAPI is AdminList as JSON with the total count metadata
func (h *AttachmentHandler) AdminListAPI(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := h.attachmentService.ListAll(page, size)
	if err != nil {
		slog.Error("failed to list attachments", "error", err, "page", page)
		writeJSONError(w, http.StatusInternalServerError, "failed to list attachments")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AttachmentHandler) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSONError(w, status, msg)
		return
	}
	http.Error(w, msg, status)
}
