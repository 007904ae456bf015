package user

import (
	"fmt"

	"gorm.io/gorm"
)

// Repository interface for user persistence
type Repository interface {
	Create(user *User) error
	FindByID(id string) (*User, error)
	FindByUsername(username string) (*User, error)
	Update(user *User) error
	Delete(id string) error
	List(filters Filters, sortBy SortBy, page Pagination) (*QueryResult, error)
	VerifyPassword(u *User, password string) bool
}

// repository struct for user persistence
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new user repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

// Create creates a new user
func (r *repository) Create(user *User) error {
	return r.db.Create(user).Error
}

// FindByID gets a user by ID
func (r *repository) FindByID(id string) (*User, error) {
	var user User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername gets a user by username
func (r *repository) FindByUsername(username string) (*User, error) {
	var user User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *repository) Update(user *User) error {
	return r.db.Save(user).Error
}

// Delete deletes a user
func (r *repository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&User{}).Error
}

// List returns one page of users matching the filters
func (r *repository) List(filters Filters, sortBy SortBy, page Pagination) (*QueryResult, error) {
	page = page.normalized()

	query := r.db.Model(&User{})
	query = applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var users []User
	err := query.
		Order(orderClause(sortBy)).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(page.PageSize) - 1) / int64(page.PageSize))

	return &QueryResult{
		Items:      users,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages,
	}, nil
}

func applyFilters(query *gorm.DB, filters Filters) *gorm.DB {
	if filters.Username != nil {
		query = query.Where("username = ?", *filters.Username)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}
	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}
	if filters.UpdatedAfter != nil {
		query = query.Where("updated_at >= ?", *filters.UpdatedAfter)
	}
	if filters.UpdatedBefore != nil {
		query = query.Where("updated_at <= ?", *filters.UpdatedBefore)
	}
	return query
}

// orderClause maps the typed sort onto a SQL fragment. Fields are a closed
// enum, so no user input reaches the clause directly.
func orderClause(sortBy SortBy) string {
	field := sortBy.Field
	switch field {
	case SortByUsername, SortByStatus, SortByCreatedAt:
	default:
		field = SortByCreatedAt
	}

	direction := "ASC"
	if sortBy.Direction == SortDesc {
		direction = "DESC"
	}

	return fmt.Sprintf("%s %s", field, direction)
}

// VerifyPassword verifies if the provided password matches the user's hashed password
func (r *repository) VerifyPassword(u *User, password string) bool {
	return VerifyPassword(password, u.PasswordHash)
}
