package user

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(u *User) error {
	args := m.Called(u)
	return args.Error(0)
}

func (m *MockRepository) FindByID(id string) (*User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByUsername(username string) (*User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Update(u *User) error {
	args := m.Called(u)
	return args.Error(0)
}

func (m *MockRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRepository) List(filters Filters, sortBy SortBy, page Pagination) (*QueryResult, error) {
	args := m.Called(filters, sortBy, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*QueryResult), args.Error(1)
}

func (m *MockRepository) VerifyPassword(u *User, password string) bool {
	args := m.Called(u, password)
	return args.Bool(0)
}

func TestRegister(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo)

	repo.On("FindByUsername", "newuser").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.MatchedBy(func(u *User) bool {
		return u.Username == "newuser" &&
			u.Status == StatusActive &&
			u.PasswordHash != "" &&
			u.PasswordHash != "Sup3r$ecret"
	})).Return(nil)

	u, err := service.Register(RegisterRequest{Username: "newuser", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	require.Equal(t, "newuser", u.Username)
	require.True(t, VerifyPassword("Sup3r$ecret", u.PasswordHash))

	repo.AssertExpectations(t)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo)

	_, err := service.Register(RegisterRequest{Username: "x", Password: "Sup3r$ecret"})
	require.ErrorIs(t, err, ErrInvalidUsername)

	_, err = service.Register(RegisterRequest{Username: "newuser", Password: "weak"})
	require.ErrorIs(t, err, ErrWeakPassword)

	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo)

	repo.On("FindByUsername", "taken").Return(&User{Username: "taken"}, nil)

	_, err := service.Register(RegisterRequest{Username: "taken", Password: "Sup3r$ecret"})
	require.ErrorIs(t, err, ErrUsernameExists)
}

func TestGetNotFound(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo)

	repo.On("FindByID", "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Get("missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestBlock(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo)

	repo.On("FindByID", "u-1").Return(&User{Username: "bob", Status: StatusActive}, nil)
	repo.On("Update", mock.MatchedBy(func(u *User) bool {
		return u.Status == StatusBlocked && u.RevokedAt != nil
	})).Return(nil)

	u, err := service.Block("u-1")
	require.NoError(t, err)
	require.True(t, u.Blocked())

	repo.AssertExpectations(t)
}
