package user

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrUsernameExists is returned when registering a username that is taken
	ErrUsernameExists = errors.New("username already exists")
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
)

// RegisterRequest represents the input for user registration
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service interface for user operations
type Service interface {
	Register(req RegisterRequest) (*User, error)
	Get(id string) (*User, error)
	List(filters Filters, sortBy SortBy, page Pagination) (*QueryResult, error)
	Block(id string) (*User, error)
	Delete(id string) error
	VerifyPassword(u *User, password string) bool
}

// service struct for user operations
type service struct {
	repo Repository
}

// NewService creates a new user service
func NewService(repo Repository) Service {
	return &service{repo}
}

// Register validates the credentials and creates a new active user
func (s *service) Register(req RegisterRequest) (*User, error) {
	if err := ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(req.Username); err == nil {
		return nil, ErrUsernameExists
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     req.Username,
		PasswordHash: hash,
		Status:       StatusActive,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Get fetches a user by id
func (s *service) Get(id string) (*User, error) {
	u, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// List returns one page of users
func (s *service) List(filters Filters, sortBy SortBy, page Pagination) (*QueryResult, error) {
	return s.repo.List(filters, sortBy, page)
}

// Block marks the account blocked. The auth layer is responsible for
// revoking the blocked user's sessions alongside.
func (s *service) Block(id string) (*User, error) {
	u, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	u.Block(time.Now().UTC())
	if err := s.repo.Update(u); err != nil {
		return nil, err
	}

	return u, nil
}

// Delete removes the account
func (s *service) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// VerifyPassword verifies if the provided password matches the user's hashed password
func (s *service) VerifyPassword(u *User, password string) bool {
	return VerifyPassword(password, u.PasswordHash)
}
