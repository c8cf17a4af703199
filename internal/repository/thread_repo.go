package repository

import (
	"errors"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ThreadRepository thread data access interface
type ThreadRepository interface {
	Create(thread *domain.Thread) error
	FindByID(id string) (*domain.Thread, error)
	FindByListingAndBuyer(listingID, buyerID string) (*domain.Thread, error)
	ListByUser(userID string) ([]*domain.Thread, error)
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new ThreadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// Create inserts a thread. A violation of the (listing_id, buyer_id) unique
// index is returned as common.ErrConflict so the resolver can re-fetch the
// winner's row instead of failing the caller.
func (r *threadRepository) Create(thread *domain.Thread) error {
	err := r.db.Create(thread).Error
	if err != nil && isDuplicateKey(err) {
		return common.ErrConflict
	}
	return err
}

func (r *threadRepository) FindByID(id string) (*domain.Thread, error) {
	var thread domain.Thread
	err := r.db.
		Preload("Listing").Preload("Listing.Owner").
		Preload("Buyer").Preload("Seller").
		Where("id = ?", id).First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) FindByListingAndBuyer(listingID, buyerID string) (*domain.Thread, error) {
	var thread domain.Thread
	err := r.db.
		Preload("Listing").Preload("Listing.Owner").
		Preload("Buyer").Preload("Seller").
		Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) ListByUser(userID string) ([]*domain.Thread, error) {
	var threads []*domain.Thread
	err := r.db.
		Preload("Listing").Preload("Listing.Owner").
		Preload("Buyer").Preload("Seller").
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&threads).Error
	return threads, err
}

// isDuplicateKey reports whether err is a unique-constraint violation
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
