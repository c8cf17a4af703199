package service

import (
	"testing"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestCreateReport_PersistsAndQueuesAlerts(t *testing.T) {
	reportRepo := new(MockReportRepository)
	listingRepo := new(MockListingRepository)
	userRepo := new(MockUserRepository)
	disp := newCaptureDispatcher()
	svc := NewReportService(reportRepo, listingRepo, userRepo, disp, "mods@bc.edu")

	listingRepo.On("FindByID", "listing-1").Return(testListing(), nil)
	reportRepo.On("Create", mock.AnythingOfType("*domain.Report")).Return(nil)
	userRepo.On("FindByID", "buyer-1").
		Return(&domain.User{ID: "buyer-1", Name: "Blake", Email: "blake@bc.edu"}, nil)

	report, err := svc.Create("listing-1", "buyer-1", "counterfeit tickets")

	assert.NoError(t, err)
	assert.Equal(t, "listing-1", report.ListingID)

	waitSignal(t, disp.done, "first notification")
	waitSignal(t, disp.done, "second notification")

	jobs := disp.dispatched()
	assert.Len(t, jobs, 2)
	kinds := map[notify.Kind]string{}
	for _, j := range jobs {
		kinds[j.Kind] = j.RecipientEmail
	}
	assert.Equal(t, "mods@bc.edu", kinds[notify.KindListingReport])
	assert.Equal(t, "blake@bc.edu", kinds[notify.KindReportConfirmation])
}

func TestCreateReport_ListingNotFound(t *testing.T) {
	reportRepo := new(MockReportRepository)
	listingRepo := new(MockListingRepository)
	svc := NewReportService(reportRepo, listingRepo, new(MockUserRepository), newCaptureDispatcher(), "mods@bc.edu")

	listingRepo.On("FindByID", "missing").Return(nil, gorm.ErrRecordNotFound)

	report, err := svc.Create("missing", "buyer-1", "spam")

	assert.Nil(t, report)
	assert.ErrorIs(t, err, common.ErrListingNotFound)
	reportRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestListReportedListings(t *testing.T) {
	reportRepo := new(MockReportRepository)
	listingRepo := new(MockListingRepository)
	svc := NewReportService(reportRepo, listingRepo, new(MockUserRepository), newCaptureDispatcher(), "")

	listingRepo.On("ListReported").Return([]*domain.Listing{testListing()}, nil)

	resps, err := svc.ListReportedListings()

	assert.NoError(t, err)
	assert.Len(t, resps, 1)
	assert.Equal(t, "listing-1", resps[0].ID)
}

func TestListForListing_ReturnsReports(t *testing.T) {
	reportRepo := new(MockReportRepository)
	listingRepo := new(MockListingRepository)
	svc := NewReportService(reportRepo, listingRepo, new(MockUserRepository), newCaptureDispatcher(), "")

	listingRepo.On("FindByID", "listing-1").Return(testListing(), nil)
	reportRepo.On("ListByListing", "listing-1").Return([]*domain.Report{
		{ID: 1, ListingID: "listing-1", ReporterID: "buyer-1", Reason: "counterfeit tickets"},
	}, nil)

	reports, err := svc.ListForListing("listing-1")

	assert.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, "counterfeit tickets", reports[0].Reason)
}

func TestListForListing_ListingNotFound(t *testing.T) {
	reportRepo := new(MockReportRepository)
	listingRepo := new(MockListingRepository)
	svc := NewReportService(reportRepo, listingRepo, new(MockUserRepository), newCaptureDispatcher(), "")

	listingRepo.On("FindByID", "missing").Return(nil, gorm.ErrRecordNotFound)

	reports, err := svc.ListForListing("missing")

	assert.Nil(t, reports)
	assert.ErrorIs(t, err, common.ErrListingNotFound)
	reportRepo.AssertNotCalled(t, "ListByListing", mock.Anything)
}
