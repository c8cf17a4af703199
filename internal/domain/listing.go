package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingCategory enumerates the fixed marketplace categories
type ListingCategory string

const (
	CategoryTextbooks   ListingCategory = "Textbooks"
	CategoryFurniture   ListingCategory = "Furniture"
	CategoryElectronics ListingCategory = "Electronics"
	CategoryTickets     ListingCategory = "Tickets"
	CategoryOther       ListingCategory = "Other"
)

// Categories lists every valid category, in display order
func Categories() []ListingCategory {
	return []ListingCategory{
		CategoryTextbooks,
		CategoryFurniture,
		CategoryElectronics,
		CategoryTickets,
		CategoryOther,
	}
}

// Valid reports whether c is one of the known categories
func (c ListingCategory) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Listing is an item for sale. Up to four image slots; MainImageURL points
// at the one the seller picked as the cover.
type Listing struct {
	ID           string          `gorm:"column:id;primaryKey;size:36" json:"id"`
	Title        string          `gorm:"column:title;size:200;not null;index" json:"title"`
	Description  string          `gorm:"column:description;type:text" json:"description,omitempty"`
	Price        float64         `gorm:"column:price;not null" json:"price"`
	Category     ListingCategory `gorm:"column:category;size:30;not null;index" json:"category"`
	MainImageURL string          `gorm:"column:main_image_url;size:500" json:"main_image_url,omitempty"`
	ImageURL1    string          `gorm:"column:image_url_1;size:500" json:"image_url_1,omitempty"`
	ImageURL2    string          `gorm:"column:image_url_2;size:500" json:"image_url_2,omitempty"`
	ImageURL3    string          `gorm:"column:image_url_3;size:500" json:"image_url_3,omitempty"`
	ImageURL4    string          `gorm:"column:image_url_4;size:500" json:"image_url_4,omitempty"`
	OwnerID      string          `gorm:"column:owner_id;size:36;not null;index" json:"owner_id"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Relations
	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
}

func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate assigns a UUID primary key
func (l *Listing) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// ImageURLs returns the non-empty image slots in order
func (l *Listing) ImageURLs() []string {
	urls := make([]string, 0, 4)
	for _, u := range []string{l.ImageURL1, l.ImageURL2, l.ImageURL3, l.ImageURL4} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// ListingResponse is the listing shape in API responses
type ListingResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Price        float64         `json:"price"`
	Category     ListingCategory `json:"category"`
	MainImageURL string          `json:"main_image_url,omitempty"`
	ImageURLs    []string        `json:"image_urls"`
	OwnerID      string          `json:"owner_id"`
	CreatedAt    time.Time       `json:"created_at"`
	Owner        *UserResponse   `json:"owner,omitempty"`
}

// ToResponse converts Listing to ListingResponse
func (l *Listing) ToResponse() *ListingResponse {
	resp := &ListingResponse{
		ID:           l.ID,
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price,
		Category:     l.Category,
		MainImageURL: l.MainImageURL,
		ImageURLs:    l.ImageURLs(),
		OwnerID:      l.OwnerID,
		CreatedAt:    l.CreatedAt,
	}
	if l.Owner != nil {
		resp.Owner = l.Owner.ToResponse()
	}
	return resp
}
