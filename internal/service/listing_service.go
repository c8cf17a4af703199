package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/repository"
	"github.com/campusmarket/campusmarket-backend/pkg/cache"
	pkglogger "github.com/campusmarket/campusmarket-backend/pkg/logger"
	"github.com/campusmarket/campusmarket-backend/pkg/storage"
	"gorm.io/gorm"
)

const maxListingImages = 4

// ImageUpload is one incoming multipart image file
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreateListingInput carries the parsed multipart create form
type CreateListingInput struct {
	Title          string
	Description    string
	Price          float64
	Category       domain.ListingCategory
	MainImageIndex int
	Images         []ImageUpload
}

// ListingService business logic for marketplace listings
type ListingService interface {
	Create(ctx context.Context, ownerID string, input *CreateListingInput) (*domain.ListingResponse, error)
	List(query, category string) ([]*domain.ListingResponse, error)
	Get(id string) (*domain.ListingResponse, error)
	ListByOwner(ownerID string) ([]*domain.ListingResponse, error)
	Delete(ctx context.Context, id, requesterID string, isAdmin bool) error
}

type listingService struct {
	repo   repository.ListingRepository
	images storage.ImageStore
	cache  cache.Service
}

// NewListingService creates a new ListingService
func NewListingService(repo repository.ListingRepository, images storage.ImageStore, cacheSvc cache.Service) ListingService {
	if cacheSvc == nil {
		cacheSvc = cache.NewService(nil)
	}
	return &listingService{repo: repo, images: images, cache: cacheSvc}
}

func (s *listingService) Create(ctx context.Context, ownerID string, input *CreateListingInput) (*domain.ListingResponse, error) {
	if strings.TrimSpace(input.Title) == "" || input.Price < 0 {
		return nil, common.ErrInvalidInput
	}
	if !input.Category.Valid() {
		return nil, common.ErrInvalidInput
	}
	if len(input.Images) == 0 || len(input.Images) > maxListingImages {
		return nil, common.ErrTooManyImages
	}
	for _, img := range input.Images {
		if img.ContentType != "image/jpeg" && img.ContentType != "image/png" {
			return nil, common.ErrBadImageType
		}
	}

	urls := make([]string, 0, len(input.Images))
	for _, img := range input.Images {
		key := storage.GenerateKey(img.Filename)
		url, err := s.images.Save(ctx, key, img.Reader, img.ContentType, img.Size)
		if err != nil {
			s.removeImages(ctx, urls)
			return nil, fmt.Errorf("save listing image: %w", err)
		}
		urls = append(urls, url)
	}

	listing := &domain.Listing{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		OwnerID:     ownerID,
	}
	slots := []*string{&listing.ImageURL1, &listing.ImageURL2, &listing.ImageURL3, &listing.ImageURL4}
	for i, url := range urls {
		*slots[i] = url
	}
	if input.MainImageIndex >= 0 && input.MainImageIndex < len(urls) {
		listing.MainImageURL = urls[input.MainImageIndex]
	}

	if err := s.repo.Create(listing); err != nil {
		s.removeImages(ctx, urls)
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	if err := s.cache.InvalidateListings(ctx); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("invalidate listings cache")
	}

	created, err := s.repo.FindByID(listing.ID)
	if err != nil {
		return listing.ToResponse(), nil
	}
	return created.ToResponse(), nil
}

func (s *listingService) List(query, category string) ([]*domain.ListingResponse, error) {
	ctx := context.Background()

	var cached []*domain.ListingResponse
	if err := s.cache.GetListings(ctx, query, category, &cached); err == nil {
		return cached, nil
	}

	listings, err := s.repo.List(&repository.ListingListParams{Query: query, Category: category})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	responses := toListingResponses(listings)
	if err := s.cache.SetListings(ctx, query, category, responses); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("cache listings")
	}
	return responses, nil
}

func (s *listingService) Get(id string) (*domain.ListingResponse, error) {
	listing, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return listing.ToResponse(), nil
}

func (s *listingService) ListByOwner(ownerID string) ([]*domain.ListingResponse, error) {
	listings, err := s.repo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return toListingResponses(listings), nil
}

// Delete removes a listing and its stored images. Only the owner may
// delete, unless the caller is a moderator. Threads and messages cascade
// with the listing row.
func (s *listingService) Delete(ctx context.Context, id, requesterID string, isAdmin bool) error {
	listing, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrListingNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if !isAdmin && listing.OwnerID != requesterID {
		return common.ErrForbidden
	}

	s.removeImages(ctx, listing.ImageURLs())

	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrListingNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	if err := s.cache.InvalidateListings(ctx); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("invalidate listings cache")
	}
	return nil
}

func (s *listingService) removeImages(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.images.Remove(ctx, url); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("url", url).Msg("remove listing image")
		}
	}
}

func toListingResponses(listings []*domain.Listing) []*domain.ListingResponse {
	responses := make([]*domain.ListingResponse, len(listings))
	for i, l := range listings {
		responses[i] = l.ToResponse()
	}
	return responses
}
