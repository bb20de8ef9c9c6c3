package repository

import (
	"database/sql"
	"errors"

	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
)

type AttachmentRepository interface {
	Create(attachment *model.Attachment) error
	ByID(id string) (*model.Attachment, error)
	ByPostID(postID string) ([]*model.Attachment, error)
	Page(limit, offset int) ([]*model.Attachment, error)
	Count() (int64, error)
	Delete(id string) error
}

type attachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(attachment *model.Attachment) error {
	query := `INSERT INTO attachments (id, post_id, original_name, stored_name, storage_path, size, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		attachment.ID,
		attachment.PostID,
		attachment.OriginalName,
		attachment.StoredName,
		attachment.StoragePath,
		attachment.Size,
		attachment.CreatedAt,
	)

	return err
}

func (r *attachmentRepository) ByID(id string) (*model.Attachment, error) {
	attachment := &model.Attachment{}
	query := `SELECT * FROM attachments WHERE id = $1`

	err := r.db.Get(attachment, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrAttachmentNotFound
	}
	if err != nil {
		return nil, err
	}

	return attachment, nil
}

// ByPostID returns the post's attachments oldest first.
func (r *attachmentRepository) ByPostID(postID string) ([]*model.Attachment, error) {
	attachments := []*model.Attachment{}
	query := `SELECT * FROM attachments WHERE post_id = $1 ORDER BY created_at ASC, id ASC`

	err := r.db.Select(&attachments, query, postID)
	if err != nil {
		return nil, err
	}

	return attachments, nil
}

func (r *attachmentRepository) Page(limit, offset int) ([]*model.Attachment, error) {
	attachments := []*model.Attachment{}
	query := `SELECT * FROM attachments ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`

	err := r.db.Select(&attachments, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return attachments, nil
}

func (r *attachmentRepository) Count() (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM attachments`).Scan(&count)
	return count, err
}

func (r *attachmentRepository) Delete(id string) error {
	query := `DELETE FROM attachments WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrAttachmentNotFound
	}

	return nil
}
