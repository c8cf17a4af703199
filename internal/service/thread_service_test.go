package service

import (
	"errors"
	"testing"
	"time"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func testListing() *domain.Listing {
	return &domain.Listing{
		ID:       "listing-1",
		Title:    "Calc III textbook",
		Price:    40,
		Category: domain.CategoryTextbooks,
		OwnerID:  "seller-1",
	}
}

func testThread() *domain.Thread {
	return &domain.Thread{
		ID:        "thread-1",
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
		SellerID:  "seller-1",
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now(),
		Buyer:     &domain.User{ID: "buyer-1", Name: "Blake", Email: "blake@bc.edu"},
		Seller:    &domain.User{ID: "seller-1", Name: "Sam", Email: "sam@bc.edu"},
	}
}

func TestGetOrCreate_ReturnsExistingThread(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	existing := testThread()
	listingRepo.On("FindByID", "listing-1").Return(testListing(), nil)
	threadRepo.On("FindByListingAndBuyer", "listing-1", "buyer-1").Return(existing, nil)

	resp, err := svc.GetOrCreate("listing-1", "buyer-1")

	assert.NoError(t, err)
	assert.Equal(t, "thread-1", resp.ID)
	threadRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestGetOrCreate_CreatesOnFirstContact(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	listingRepo.On("FindByID", "listing-1").Return(testListing(), nil)
	threadRepo.On("FindByListingAndBuyer", "listing-1", "buyer-1").Return(nil, gorm.ErrRecordNotFound)
	threadRepo.On("Create", mock.AnythingOfType("*domain.Thread")).Run(func(args mock.Arguments) {
		args.Get(0).(*domain.Thread).ID = "thread-new"
	}).Return(nil)
	threadRepo.On("FindByID", "thread-new").Return(testThread(), nil)

	resp, err := svc.GetOrCreate("listing-1", "buyer-1")

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	threadRepo.AssertCalled(t, "Create", mock.MatchedBy(func(th *domain.Thread) bool {
		return th.ListingID == "listing-1" && th.BuyerID == "buyer-1" && th.SellerID == "seller-1"
	}))
}

func TestGetOrCreate_ListingNotFound(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	listingRepo.On("FindByID", "missing").Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.GetOrCreate("missing", "buyer-1")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, common.ErrListingNotFound)
}

func TestGetOrCreate_SellerCannotOpenOwnThread(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	listingRepo.On("FindByID", "listing-1").Return(testListing(), nil)

	resp, err := svc.GetOrCreate("listing-1", "seller-1")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, common.ErrSelfMessage)
	threadRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestGetOrCreate_LostRaceRefetchesWinner(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	winner := testThread()
	listingRepo.On("FindByID", "listing-1").Return(testListing(), nil)
	threadRepo.On("FindByListingAndBuyer", "listing-1", "buyer-1").
		Return(nil, gorm.ErrRecordNotFound).Once()
	threadRepo.On("Create", mock.Anything).Return(common.ErrConflict)
	threadRepo.On("FindByListingAndBuyer", "listing-1", "buyer-1").Return(winner, nil)

	resp, err := svc.GetOrCreate("listing-1", "buyer-1")

	assert.NoError(t, err)
	assert.Equal(t, winner.ID, resp.ID)
}

func TestGetOrCreate_RepoFailure(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	listingRepo.On("FindByID", "listing-1").Return(testListing(), nil)
	threadRepo.On("FindByListingAndBuyer", "listing-1", "buyer-1").
		Return(nil, errors.New("connection refused"))

	resp, err := svc.GetOrCreate("listing-1", "buyer-1")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestListForUser_MasksCounterpartName(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	threadRepo.On("ListByUser", "buyer-1").Return([]*domain.Thread{testThread()}, nil)

	resps, err := svc.ListForUser("buyer-1")

	assert.NoError(t, err)
	assert.Len(t, resps, 1)
	assert.Equal(t, "Seller", resps[0].Seller.Name)
	assert.Equal(t, "Blake", resps[0].Buyer.Name)
}

func TestListForUser_MasksBuyerForSeller(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	threadRepo.On("ListByUser", "seller-1").Return([]*domain.Thread{testThread()}, nil)

	resps, err := svc.ListForUser("seller-1")

	assert.NoError(t, err)
	assert.Len(t, resps, 1)
	assert.Equal(t, "Buyer", resps[0].Buyer.Name)
	assert.Equal(t, "Sam", resps[0].Seller.Name)
}

func TestGetForParticipant_HidesThreadFromOutsider(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	threadRepo.On("FindByID", "thread-1").Return(testThread(), nil)

	thread, err := svc.GetForParticipant("thread-1", "someone-else")

	assert.Nil(t, thread)
	assert.ErrorIs(t, err, common.ErrThreadNotFound)
}

func TestGetForParticipant_AllowsBothSides(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	threadRepo.On("FindByID", "thread-1").Return(testThread(), nil)

	for _, userID := range []string{"buyer-1", "seller-1"} {
		thread, err := svc.GetForParticipant("thread-1", userID)
		assert.NoError(t, err)
		assert.Equal(t, "thread-1", thread.ID)
	}
}

func TestGetForParticipant_MissingThread(t *testing.T) {
	threadRepo := new(MockThreadRepository)
	listingRepo := new(MockListingRepository)
	svc := NewThreadService(threadRepo, listingRepo)

	threadRepo.On("FindByID", "missing").Return(nil, gorm.ErrRecordNotFound)

	thread, err := svc.GetForParticipant("missing", "buyer-1")

	assert.Nil(t, thread)
	assert.ErrorIs(t, err, common.ErrThreadNotFound)
}
