package repository

import (
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"gorm.io/gorm"
)

// ReportRepository report data access interface
type ReportRepository interface {
	Create(report *domain.Report) error
	ListByListing(listingID string) ([]*domain.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *domain.Report) error {
	return r.db.Create(report).Error
}

// ListByListing returns every report filed against one listing, newest first
func (r *reportRepository) ListByListing(listingID string) ([]*domain.Report, error) {
	var reports []*domain.Report
	err := r.db.Preload("Reporter").
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}
