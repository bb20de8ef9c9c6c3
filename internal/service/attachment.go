package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/boardadmin/boardadmin/internal/metrics"
	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/boardadmin/boardadmin/internal/repository"
	"github.com/boardadmin/boardadmin/internal/storage"
	"github.com/google/uuid"
)

const maxPageSize = 100

var (
	ErrInvalidParent      = errors.New("parent post does not exist")
	ErrAttachmentNotFound = repository.ErrAttachmentNotFound
	ErrStorageWrite       = errors.New("failed to write attachment to storage")
	ErrStorageDelete      = errors.New("failed to delete attachment from storage")
)

// PostResolver answers whether a post exists. Attachments only use it as a
// precondition and never read or change the post.
type PostResolver interface {
	Exists(id string) (bool, error)
}

type AttachmentService struct {
	attachmentRepo  repository.AttachmentRepository
	posts           PostResolver
	storage         storage.Storage
	defaultPageSize int
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, posts PostResolver, storage storage.Storage, defaultPageSize int) *AttachmentService {
	if defaultPageSize <= 0 || defaultPageSize > maxPageSize {
		defaultPageSize = 20
	}

	return &AttachmentService{
		attachmentRepo:  attachmentRepo,
		posts:           posts,
		storage:         storage,
		defaultPageSize: defaultPageSize,
	}
}

// Store writes content under a freshly generated stored name and records it
// against postID. The post must exist; otherwise nothing is written.
// The row is only inserted after the write succeeded.
func (s *AttachmentService) Store(content io.Reader, originalName, postID string) (*model.Attachment, error) {
	exists, err := s.posts.Exists(postID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve post: %w", err)
	}
	if !exists {
		metrics.AttachmentErrors.WithLabelValues("store", "invalid_parent").Inc()
		return nil, fmt.Errorf("%w: %s", ErrInvalidParent, postID)
	}

	storedName := StoredName(originalName)

	path, size, err := s.storage.Save(storedName, content)
	if err != nil {
		metrics.AttachmentErrors.WithLabelValues("store", "storage").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	attachment := &model.Attachment{
		ID:           uuid.New().String(),
		PostID:       postID,
		OriginalName: originalName,
		StoredName:   storedName,
		StoragePath:  path,
		Size:         size,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.attachmentRepo.Create(attachment)
	if err != nil {
		// If DB insert fails, try to cleanup the stored file
		delErr := s.storage.Delete(path)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", path)
		}
		metrics.AttachmentErrors.WithLabelValues("store", "database").Inc()
		return nil, fmt.Errorf("failed to create attachment record: %w", err)
	}

	metrics.AttachmentsStored.Inc()
	metrics.AttachmentSize.Observe(float64(size))
	slog.Info("attachment stored", "attachment_id", attachment.ID, "post_id", postID, "stored_name", storedName, "size", size)

	return attachment, nil
}

// StoredName builds the on-disk name "<32 hex chars>_<original name>".
// Only the last path element of originalName is kept so the file always
// lands directly in the storage root.
func StoredName(originalName string) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	base := originalName[strings.LastIndexAny(originalName, `/\`)+1:]
	return token + "_" + base
}

// ListByPost returns the attachments of a post, oldest first
func (s *AttachmentService) ListByPost(postID string) ([]*model.Attachment, error) {
	return s.attachmentRepo.ByPostID(postID)
}

func (s *AttachmentService) ByID(id string) (*model.Attachment, error) {
	return s.attachmentRepo.ByID(id)
}

// Open returns the attachment together with its stored content. The caller
// closes the reader.
func (s *AttachmentService) Open(id string) (*model.Attachment, io.ReadCloser, error) {
	attachment, err := s.attachmentRepo.ByID(id)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.storage.Open(attachment.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attachment %s: %w", id, err)
	}

	return attachment, content, nil
}

// Delete removes the stored file and then the record. A file that is already
// gone is fine. If the file cannot be removed the record is kept and the
// whole call should be retried.
func (s *AttachmentService) Delete(id string) error {
	attachment, err := s.attachmentRepo.ByID(id)
	if err != nil {
		return fmt.Errorf("failed to get attachment: %w", err)
	}

	err = s.storage.Delete(attachment.StoragePath)
	if err != nil {
		metrics.AttachmentErrors.WithLabelValues("delete", "storage").Inc()
		return fmt.Errorf("%w: %w", ErrStorageDelete, err)
	}

	err = s.attachmentRepo.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment record: %w", err)
	}

	metrics.AttachmentsDeleted.Inc()
	slog.Info("attachment deleted", "attachment_id", id, "post_id", attachment.PostID)
	return nil
}

// DeleteByPost deletes every attachment of a post. It keeps going after a
// failure and reports all failures together.
func (s *AttachmentService) DeleteByPost(postID string) error {
	attachments, err := s.attachmentRepo.ByPostID(postID)
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}

	var errs []error
	for _, attachment := range attachments {
		err = s.Delete(attachment.ID)
		if err != nil && !errors.Is(err, ErrAttachmentNotFound) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ListAll returns one page of all attachments. page is 1-based and clamped
// to the last page; a size outside 1..100 falls back to the configured default.
func (s *AttachmentService) ListAll(page, size int) (*model.Page[*model.Attachment], error) {
	if size < 1 || size > maxPageSize {
		size = s.defaultPageSize
	}

	total, err := s.attachmentRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count attachments: %w", err)
	}

	page, offset := model.PageOffset(page, size, total)
	attachments, err := s.attachmentRepo.Page(size, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	return model.NewPage(attachments, page, size, total), nil
}
