package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a craftsman account. Offers are always scoped to the owning
// user, resolved from the immutable Auth0 subject carried in the JWT.
type User struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Auth0ID string `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"uniqueIndex;not null" json:"email"`

	// Company details printed on rendered offers.
	CompanyName string `json:"company_name"`
	OrgNumber   string `json:"org_number"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
