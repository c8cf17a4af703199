package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/notify"
	"github.com/campusmarket/campusmarket-backend/internal/repository"
	pkglogger "github.com/campusmarket/campusmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

// ReportService handles listing reports and moderator review
type ReportService interface {
	Create(listingID, reporterID, reason string) (*domain.Report, error)
	ListReportedListings() ([]*domain.ListingResponse, error)
	ListForListing(listingID string) ([]*domain.Report, error)
}

type reportService struct {
	repo        repository.ReportRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	dispatcher  notify.Dispatcher
	adminEmail  string
}

// NewReportService creates a new ReportService
func NewReportService(
	repo repository.ReportRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	dispatcher notify.Dispatcher,
	adminEmail string,
) ReportService {
	return &reportService{
		repo:        repo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
		adminEmail:  adminEmail,
	}
}

// Create records a report against a listing and queues the moderator alert
// and the reporter confirmation. The report persists even when either
// notification fails.
func (s *reportService) Create(listingID, reporterID, reason string) (*domain.Report, error) {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	report := &domain.Report{
		ListingID:  listingID,
		ReporterID: reporterID,
		Reason:     reason,
	}
	if err := s.repo.Create(report); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	go s.notifyAdmin(listing, reporterID, reason)
	go s.notifyReporter(listing, reporterID)

	return report, nil
}

func (s *reportService) ListReportedListings() ([]*domain.ListingResponse, error) {
	listings, err := s.listingRepo.ListReported()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return toListingResponses(listings), nil
}

// ListForListing returns the reports filed against one listing so a
// moderator can read the reasons behind a flag before acting on it
func (s *reportService) ListForListing(listingID string) ([]*domain.Report, error) {
	if _, err := s.listingRepo.FindByID(listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	reports, err := s.repo.ListByListing(listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return reports, nil
}

func (s *reportService) notifyAdmin(listing *domain.Listing, reporterID, reason string) {
	if s.adminEmail == "" {
		return
	}
	job := &notify.Job{
		RecipientEmail: s.adminEmail,
		Kind:           notify.KindListingReport,
		Context: map[string]string{
			"listing_id":    listing.ID,
			"listing_title": listing.Title,
			"reporter_id":   reporterID,
			"reason":        reason,
		},
	}
	if err := s.dispatcher.Dispatch(context.Background(), job); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("listing_id", listing.ID).Msg("queue report alert")
	}
}

func (s *reportService) notifyReporter(listing *domain.Listing, reporterID string) {
	reporter, err := s.userRepo.FindByID(reporterID)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("user_id", reporterID).Msg("lookup reporter")
		return
	}
	job := &notify.Job{
		RecipientID:    reporter.ID,
		RecipientEmail: reporter.Email,
		Kind:           notify.KindReportConfirmation,
		Context: map[string]string{
			"listing_id":    listing.ID,
			"listing_title": listing.Title,
		},
	}
	if err := s.dispatcher.Dispatch(context.Background(), job); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("user_id", reporter.ID).Msg("queue report confirmation")
	}
}
