package repository

import (
	"time"

	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository user data access interface
type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id string) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	TouchLastLogin(id string) error
	ListAll() ([]*domain.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastLogin bumps last_login_at on a successful SSO callback
func (r *userRepository) TouchLastLogin(id string) error {
	return r.db.Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now().UTC()).Error
}

func (r *userRepository) ListAll() ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.Order("created_at DESC").Find(&users).Error
	return users, err
}
