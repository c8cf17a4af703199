package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a campus SSO account
type User struct {
	ID          string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name        string    `gorm:"column:name;size:100;index" json:"name"`
	Email       string    `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PhotoURL    string    `gorm:"column:photo_url;size:500" json:"photo_url,omitempty"`
	IsAdmin     bool      `gorm:"column:is_admin;default:false" json:"is_admin"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	LastLoginAt time.Time `gorm:"column:last_login_at" json:"last_login_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// UserResponse is the public user shape in API responses
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		PhotoURL: u.PhotoURL,
	}
}
