package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrPostNotFound = errors.New("post not found")
)

type PostRepository interface {
	Create(post *model.Post) error
	ByID(id string) (*model.Post, error)
	Exists(id string) (bool, error)
	Page(limit, offset int) ([]*model.Post, error)
	Count() (int64, error)
	Delete(id string) error
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO posts (id, user_id, title, content, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, post.ID, post.UserID, post.Title, post.Content, post.CreatedAt)
	return err
}

func (r *postRepository) ByID(id string) (*model.Post, error) {
	post := &model.Post{}
	query := `SELECT * FROM posts WHERE id = $1`

	err := r.db.Get(post, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (r *postRepository) Exists(id string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE id = $1`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Page returns posts newest first.
func (r *postRepository) Page(limit, offset int) ([]*model.Post, error) {
	posts := []*model.Post{}
	query := `SELECT * FROM posts ORDER BY created_at DESC, id ASC LIMIT $1 OFFSET $2`

	err := r.db.Select(&posts, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) Count() (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

func (r *postRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrPostNotFound
	}

	return nil
}
