package repository

import (
	"strings"

	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"gorm.io/gorm"
)

// ListingRepository listing data access interface
type ListingRepository interface {
	Create(listing *domain.Listing) error
	FindByID(id string) (*domain.Listing, error)
	List(params *ListingListParams) ([]*domain.Listing, error)
	ListByOwner(ownerID string) ([]*domain.Listing, error)
	Delete(id string) error
	ListReported() ([]*domain.Listing, error)
}

// ListingListParams filters the public browse query
type ListingListParams struct {
	Query    string
	Category string
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new ListingRepository
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(listing *domain.Listing) error {
	return r.db.Create(listing).Error
}

func (r *listingRepository) FindByID(id string) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.db.Preload("Owner").Where("id = ?", id).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) List(params *ListingListParams) ([]*domain.Listing, error) {
	query := r.db.Model(&domain.Listing{}).Preload("Owner")

	if params.Query != "" {
		// Title match, plus any category whose name starts with the query
		conditions := "title LIKE ?"
		args := []interface{}{"%" + params.Query + "%"}

		var matched []domain.ListingCategory
		for _, cat := range domain.Categories() {
			if strings.HasPrefix(strings.ToLower(string(cat)), strings.ToLower(params.Query)) {
				matched = append(matched, cat)
			}
		}
		if len(matched) > 0 {
			conditions += " OR category IN ?"
			args = append(args, matched)
		}
		query = query.Where("("+conditions+")", args...)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var listings []*domain.Listing
	err := query.Order("created_at DESC").Find(&listings).Error
	return listings, err
}

func (r *listingRepository) ListByOwner(ownerID string) ([]*domain.Listing, error) {
	var listings []*domain.Listing
	err := r.db.Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

// Delete removes a listing; threads and messages cascade at the DB level
func (r *listingRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&domain.Listing{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListReported returns listings with at least one open report, newest first
func (r *listingRepository) ListReported() ([]*domain.Listing, error) {
	var listings []*domain.Listing
	err := r.db.Preload("Owner").
		Where("id IN (?)", r.db.Model(&domain.Report{}).Select("listing_id")).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}
