package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateLoginID = errors.New("login id already exists")
	ErrDuplicateEmail   = errors.New("email already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByLoginID(loginID string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
	Update(user *model.User) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (id, login_id, email, name, password_hash, role, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		user.ID,
		user.LoginID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return uniqueViolation(err)
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	return r.one(`SELECT * FROM users WHERE id = $1`, id)
}

func (r *userRepository) ByLoginID(loginID string) (*model.User, error) {
	return r.one(`SELECT * FROM users WHERE login_id = $1`, loginID)
}

func (r *userRepository) ByEmail(email string) (*model.User, error) {
	return r.one(`SELECT * FROM users WHERE email = $1`, email)
}

func (r *userRepository) Update(user *model.User) error {
	query := `UPDATE users
	          SET login_id = $1, email = $2, name = $3, password_hash = $4, role = $5, active = $6, updated_at = $7
	          WHERE id = $8`

	result, err := r.db.Exec(query,
		user.LoginID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.Active,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return uniqueViolation(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepository) one(query string, arg any) (*model.User, error) {
	user := &model.User{}

	err := r.db.Get(user, query, arg)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// uniqueViolation maps unique constraint failures to the matching sentinel.
// Works for both SQLite and PostgreSQL error texts.
func uniqueViolation(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "UNIQUE constraint failed") && !strings.Contains(errStr, "duplicate key value") {
		return err
	}

	if strings.Contains(errStr, "login_id") {
		return ErrDuplicateLoginID
	}
	if strings.Contains(errStr, "email") {
		return ErrDuplicateEmail
	}
	return err
}
