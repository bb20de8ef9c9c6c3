package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/boardadmin/boardadmin/internal/repository"
	"github.com/boardadmin/boardadmin/internal/validation"
)

var (
	ErrPostNotFound = repository.ErrPostNotFound
	ErrInvalidPost  = errors.New("invalid post")
)

type PostService struct {
	postRepo          repository.PostRepository
	attachmentService *AttachmentService
}

func NewPostService(postRepo repository.PostRepository, attachmentService *AttachmentService) *PostService {
	return &PostService{
		postRepo:          postRepo,
		attachmentService: attachmentService,
	}
}

func (s *PostService) Create(userID, title, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)

	err := validation.ValidateTitle(title)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPost, err)
	}

	post := &model.Post{
		UserID:  userID,
		Title:   title,
		Content: content,
	}

	err = s.postRepo.Create(post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

func (s *PostService) ByID(id string) (*model.Post, error) {
	return s.postRepo.ByID(id)
}

func (s *PostService) Posts(page, size int) (*model.Page[*model.Post], error) {
	if size < 1 || size > maxPageSize {
		size = 20
	}

	total, err := s.postRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	page, offset := model.PageOffset(page, size, total)
	posts, err := s.postRepo.Page(size, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return model.NewPage(posts, page, size, total), nil
}

// Delete removes a post after its attachments. The database does not cascade,
// so a post whose attachments could not all be removed is kept.
func (s *PostService) Delete(id string) error {
	_, err := s.postRepo.ByID(id)
	if err != nil {
		return err
	}

	err = s.attachmentService.DeleteByPost(id)
	if err != nil {
		return fmt.Errorf("failed to delete post attachments: %w", err)
	}

	err = s.postRepo.Delete(id)
	if err != nil && !errors.Is(err, repository.ErrPostNotFound) {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("post deleted", "post_id", id)
	return nil
}
