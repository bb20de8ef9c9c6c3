package service

import (
	"testing"

	"github.com/boardadmin/boardadmin/internal/dbtest"
	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/boardadmin/boardadmin/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(repository.NewUserRepository(dbtest.New(t)))
}

func signup(t *testing.T, s *UserService, loginID, email, password string) *model.User {
	t.Helper()

	user := &model.User{LoginID: loginID, Email: email, Name: "Test " + loginID, Active: true}
	require.NoError(t, s.SetPassword(user, password))
	require.NoError(t, s.AssignRole(user, model.RoleUser))
	require.NoError(t, s.Save(user))
	return user
}

func TestUserServiceSaveAndLookup(t *testing.T) {
	s := newUserService(t)

	user := signup(t, s, "johndoe", " John@Example.com ", "c0rrect-h0rse")
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "john@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)

	exists, err := s.LoginIDExists("johndoe")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.LoginIDExists("janedoe")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.EmailExists("JOHN@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	byEmail, err := s.ByEmail("john@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.True(t, s.CheckPassword(byEmail, "c0rrect-h0rse"))
	assert.False(t, s.CheckPassword(byEmail, "wrong"))
}

func TestUserServiceSaveDuplicates(t *testing.T) {
	s := newUserService(t)
	signup(t, s, "johndoe", "john@example.com", "c0rrect-h0rse")

	dup := &model.User{LoginID: "johndoe", Email: "other@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, s.Save(dup), ErrDuplicateLoginID)

	dup = &model.User{LoginID: "other", Email: "john@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, s.Save(dup), ErrDuplicateEmail)
}

func TestUserServiceUpdate(t *testing.T) {
	s := newUserService(t)
	john := signup(t, s, "johndoe", "john@example.com", "c0rrect-h0rse")
	signup(t, s, "janedoe", "jane@example.com", "c0rrect-h0rse")

	t.Run("login id taken by someone else", func(t *testing.T) {
		ok, err := s.Update(john.ID, &model.User{LoginID: "janedoe", Name: "John", Email: "john@example.com"})
		require.NoError(t, err)
		assert.False(t, ok)

		current, err := s.ByID(john.ID)
		require.NoError(t, err)
		assert.Equal(t, "johndoe", current.LoginID)
	})

	t.Run("keeps password when none given", func(t *testing.T) {
		changes := &model.User{LoginID: "johnny", Name: "Johnny", Email: "johnny@example.com"}
		ok, err := s.Update(john.ID, changes)
		require.NoError(t, err)
		assert.True(t, ok)

		current, err := s.ByID(john.ID)
		require.NoError(t, err)
		assert.Equal(t, "johnny", current.LoginID)
		assert.Equal(t, "Johnny", current.Name)
		assert.Equal(t, "johnny@example.com", current.Email)
		assert.True(t, s.CheckPassword(current, "c0rrect-h0rse"))
	})

	t.Run("changes password", func(t *testing.T) {
		changes := &model.User{LoginID: "johnny", Name: "Johnny", Email: "johnny@example.com"}
		require.NoError(t, s.SetPassword(changes, "n3w-passphrase"))

		ok, err := s.Update(john.ID, changes)
		require.NoError(t, err)
		assert.True(t, ok)

		current, err := s.ByID(john.ID)
		require.NoError(t, err)
		assert.True(t, s.CheckPassword(current, "n3w-passphrase"))
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := s.Update(john.ID, &model.User{LoginID: "johnny", Name: "Johnny", Email: "jane@example.com"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.Update("nope", &model.User{LoginID: "x"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestIssueTemporaryPassword(t *testing.T) {
	s := newUserService(t)
	user := signup(t, s, "johndoe", "john@example.com", "c0rrect-h0rse")

	temp, err := s.IssueTemporaryPassword(user)
	require.NoError(t, err)
	assert.Len(t, temp, 8)

	stored, err := s.ByID(user.ID)
	require.NoError(t, err)
	assert.True(t, s.CheckPassword(stored, temp))
	assert.False(t, s.CheckPassword(stored, "c0rrect-h0rse"))
}

func TestDeactivate(t *testing.T) {
	s := newUserService(t)
	user := signup(t, s, "johndoe", "john@example.com", "c0rrect-h0rse")

	require.NoError(t, s.Deactivate(user))

	stored, err := s.ByID(user.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	// The login id stays reserved
	exists, err := s.LoginIDExists("johndoe")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAssignRole(t *testing.T) {
	s := newUserService(t)
	user := &model.User{}

	require.NoError(t, s.AssignRole(user, model.RoleAdmin))
	assert.True(t, user.IsAdmin())
	assert.ErrorIs(t, s.AssignRole(user, "ROOT"), ErrUnknownRole)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestMaskLoginID(t *testing.T) {
	assert.Equal(t, "johnd**", MaskLoginID("johndoe"))
	assert.Equal(t, "a**", MaskLoginID("abc"))
	assert.Equal(t, "**", MaskLoginID("ab"))
	assert.Equal(t, "", MaskLoginID(""))
}
