package repository

import (
	"time"

	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	CreateInThread(msg *domain.Message) error
	FindByID(id uint64) (*domain.Message, error)
	ListByThread(threadID string) ([]*domain.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// CreateInThread appends the message and bumps the owning thread's
// updated_at as a single transaction. Either both land or neither does.
func (r *messageRepository) CreateInThread(msg *domain.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Thread{}).
			Where("id = ?", msg.ThreadID).
			Update("updated_at", time.Now().UTC()).Error
	})
}

func (r *messageRepository) FindByID(id uint64) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Preload("Sender").Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByThread returns the full history ascending by insertion order
func (r *messageRepository) ListByThread(threadID string) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.Preload("Sender").
		Where("thread_id = ?", threadID).
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}
