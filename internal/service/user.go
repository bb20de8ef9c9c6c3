package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/boardadmin/boardadmin/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound     = repository.ErrUserNotFound
	ErrDuplicateLoginID = repository.ErrDuplicateLoginID
	ErrDuplicateEmail   = repository.ErrDuplicateEmail
	ErrUnknownRole      = errors.New("unknown role")
)

const temporaryPasswordLength = 8

type UserService struct {
	userRepository repository.UserRepository
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{
		userRepository: userRepository,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.userRepository.ByID(id)
}

func (s *UserService) ByLoginID(loginID string) (*model.User, error) {
	return s.userRepository.ByLoginID(strings.TrimSpace(loginID))
}

func (s *UserService) ByEmail(email string) (*model.User, error) {
	return s.userRepository.ByEmail(normalizeEmail(email))
}

func (s *UserService) LoginIDExists(loginID string) (bool, error) {
	return found(s.ByLoginID(loginID))
}

func (s *UserService) EmailExists(email string) (bool, error) {
	return found(s.ByEmail(email))
}

func found(user *model.User, err error) (bool, error) {
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// CheckPassword reports whether plaintext matches the user's password hash
func (s *UserService) CheckPassword(user *model.User, plaintext string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

// SetPassword hashes plaintext into user without persisting it
func (s *UserService) SetPassword(user *model.User, plaintext string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	return nil
}

// UpdatePassword hashes and persists a new password
func (s *UserService) UpdatePassword(user *model.User, plaintext string) error {
	err := s.SetPassword(user, plaintext)
	if err != nil {
		return err
	}
	return s.Save(user)
}

// IssueTemporaryPassword replaces the user's password with a random
// 8-character one and returns it in clear text for delivery by email.
func (s *UserService) IssueTemporaryPassword(user *model.User) (string, error) {
	tempPassword := uuid.New().String()[:temporaryPasswordLength]

	err := s.UpdatePassword(user, tempPassword)
	if err != nil {
		return "", fmt.Errorf("failed to store temporary password: %w", err)
	}

	slog.Info("temporary password issued", "user_id", user.ID)
	return tempPassword, nil
}

func (s *UserService) AssignRole(user *model.User, role string) error {
	switch role {
	case model.RoleUser, model.RoleAdmin:
		user.Role = role
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
}

// Save inserts a new user (empty ID) or updates an existing one
func (s *UserService) Save(user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	user.LoginID = strings.TrimSpace(user.LoginID)
	now := time.Now().UTC()
	user.UpdatedAt = now

	if user.ID == "" {
		user.ID = uuid.New().String()
		user.CreatedAt = now
		if user.Role == "" {
			user.Role = model.RoleUser
		}
		return s.userRepository.Create(user)
	}

	return s.userRepository.Update(user)
}

// Update copies the editable fields of changes onto the user with the given
// index. It returns false when the requested login id belongs to someone else.
// An empty PasswordHash in changes keeps the current password.
func (s *UserService) Update(index string, changes *model.User) (bool, error) {
	existing, err := s.userRepository.ByID(index)
	if err != nil {
		return false, err
	}

	loginID := strings.TrimSpace(changes.LoginID)
	if loginID != existing.LoginID {
		owner, err := s.userRepository.ByLoginID(loginID)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return false, err
		}
		if owner != nil && owner.ID != existing.ID {
			return false, nil
		}
	}

	existing.LoginID = loginID
	existing.Email = changes.Email
	existing.Name = strings.TrimSpace(changes.Name)
	existing.Active = true
	if changes.PasswordHash != "" {
		existing.PasswordHash = changes.PasswordHash
	}

	err = s.Save(existing)
	if errors.Is(err, repository.ErrDuplicateLoginID) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	*changes = *existing
	return true, nil
}

// Deactivate soft-deletes an account. The row stays so the login id and
// email remain reserved.
func (s *UserService) Deactivate(user *model.User) error {
	user.Active = false
	err := s.Save(user)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	slog.Info("account deactivated", "user_id", user.ID)
	return nil
}

// MaskLoginID hides the last two characters, e.g. "johndoe" -> "johnd**"
func MaskLoginID(loginID string) string {
	runes := []rune(loginID)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:len(runes)-2]) + "**"
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
