// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey;size:16" json:"id"`
	Email        string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName    string `gorm:"size:50" json:"firstName,omitempty"`
	LastName     string `gorm:"size:50" json:"lastName,omitempty"`
	PasswordHash string `gorm:"not null" json:"-"`
	Verified     bool   `gorm:"default:false;not null" json:"verified"`
	IsAdmin      bool   `gorm:"default:false;not null" json:"isAdmin"`

	// One-time codes are stored as an HMAC, the code and its issue time are
	// always written and cleared together
	VerificationCode           *string    `gorm:"size:64" json:"-"`
	VerificationCodeIssuedAt   *time.Time `json:"-"`
	ForgotPasswordCode         *string    `gorm:"size:64" json:"-"`
	ForgotPasswordCodeIssuedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CreatedJobs []Job `gorm:"foreignKey:CreatedBy" json:"createdJobs,omitempty"`
}

// PublicUserColumns is every column that is safe to load for a read
// that ends up in a response
var PublicUserColumns = []string{
	"id", "email", "first_name", "last_name", "verified", "is_admin", "created_at", "updated_at",
}

// UserRef is the short form of a user embedded in job responses
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (UserRef) TableName() string {
	return "users"
}
