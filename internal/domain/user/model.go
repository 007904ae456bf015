package user

import (
	"time"

	"github.com/ntimofeev/auth-service/internal/database"
)

// Status represents the lifecycle state of a user account
type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
	StatusPending Status = "pending" // reserved for email verification
)

type User struct {
	database.BaseModel
	Username     string     `gorm:"column:username;unique;not null" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Status       Status     `gorm:"column:status;default:active" json:"status"`
	RevokedAt    *time.Time `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Blocked reports whether the account has been blocked
func (u *User) Blocked() bool {
	return u.Status == StatusBlocked
}

// Block marks the account blocked as of the given time
func (u *User) Block(at time.Time) {
	u.Status = StatusBlocked
	u.RevokedAt = &at
}

// Activate clears a block
func (u *User) Activate() {
	u.Status = StatusActive
	u.RevokedAt = nil
}
