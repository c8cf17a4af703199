package service

import (
	"errors"
	"fmt"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/repository"
	"gorm.io/gorm"
)

// ThreadService resolves and lists conversations. One thread exists per
// (listing, buyer) pair; the seller is the listing owner at creation time.
type ThreadService interface {
	GetOrCreate(listingID, userID string) (*domain.ThreadResponse, error)
	ListForUser(userID string) ([]*domain.ThreadResponse, error)
	GetForParticipant(threadID, userID string) (*domain.Thread, error)
}

type threadService struct {
	repo        repository.ThreadRepository
	listingRepo repository.ListingRepository
}

// NewThreadService creates a new ThreadService
func NewThreadService(repo repository.ThreadRepository, listingRepo repository.ListingRepository) ThreadService {
	return &threadService{repo: repo, listingRepo: listingRepo}
}

// GetOrCreate returns the caller's thread for a listing, creating it on
// first contact. Lookup never bumps updated_at. Two racing first-contact
// requests resolve to the same row: the insert loser gets a uniqueness
// violation and re-fetches the winner.
func (s *threadService) GetOrCreate(listingID, userID string) (*domain.ThreadResponse, error) {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	if listing.OwnerID == userID {
		return nil, common.ErrSelfMessage
	}

	thread, err := s.repo.FindByListingAndBuyer(listingID, userID)
	if err == nil {
		return thread.ToResponse(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	created := &domain.Thread{
		ListingID: listingID,
		BuyerID:   userID,
		SellerID:  listing.OwnerID,
	}
	if err := s.repo.Create(created); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Lost the race; the winner's row is authoritative
			thread, err = s.repo.FindByListingAndBuyer(listingID, userID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
			}
			return thread.ToResponse(), nil
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	// Re-fetch to pick up relations for the response
	thread, err = s.repo.FindByID(created.ID)
	if err != nil {
		return created.ToResponse(), nil
	}
	return thread.ToResponse(), nil
}

// ListForUser returns threads the user participates in, most recently
// active first. The counterpart's display name is masked by role so the
// parties stay pseudonymous until they choose otherwise.
func (s *threadService) ListForUser(userID string) ([]*domain.ThreadResponse, error) {
	threads, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	responses := make([]*domain.ThreadResponse, len(threads))
	for i, t := range threads {
		resp := t.ToResponse()
		if t.BuyerID == userID {
			if resp.Seller != nil {
				resp.Seller.Name = "Seller"
			}
		} else if resp.Buyer != nil {
			resp.Buyer.Name = "Buyer"
		}
		responses[i] = resp
	}
	return responses, nil
}

// GetForParticipant loads a thread if and only if userID is its buyer or
// seller. Anyone else gets ErrThreadNotFound, indistinguishable from the
// thread not existing, so nothing leaks.
func (s *threadService) GetForParticipant(threadID, userID string) (*domain.Thread, error) {
	thread, err := s.repo.FindByID(threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrThreadNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if !thread.IsParticipant(userID) {
		return nil, common.ErrThreadNotFound
	}
	return thread, nil
}
