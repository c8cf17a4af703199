package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread is a conversation about one listing between one buyer and the
// listing's seller. At most one thread exists per (listing, buyer) pair;
// the seller is fixed at creation time. UpdatedAt is bumped on every new
// message, never on lookup.
type Thread struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	ListingID string    `gorm:"column:listing_id;size:36;not null;uniqueIndex:uq_threads_listing_buyer" json:"listing_id"`
	BuyerID   string    `gorm:"column:buyer_id;size:36;not null;uniqueIndex:uq_threads_listing_buyer" json:"buyer_id"`
	SellerID  string    `gorm:"column:seller_id;size:36;not null;index" json:"seller_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoCreateTime" json:"updated_at"`

	// Relations
	Listing *Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	Buyer   *User    `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Seller  *User    `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (Thread) TableName() string {
	return "threads"
}

// BeforeCreate assigns a UUID primary key
func (t *Thread) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// IsParticipant reports whether userID is the thread's buyer or seller
func (t *Thread) IsParticipant(userID string) bool {
	return t.BuyerID == userID || t.SellerID == userID
}

// ThreadResponse is the thread shape in API responses. Counterpart is the
// other participant with the display name masked by role.
type ThreadResponse struct {
	ID        string           `json:"id"`
	ListingID string           `json:"listing_id"`
	BuyerID   string           `json:"buyer_id"`
	SellerID  string           `json:"seller_id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Listing   *ListingResponse `json:"listing,omitempty"`
	Buyer     *UserResponse    `json:"buyer,omitempty"`
	Seller    *UserResponse    `json:"seller,omitempty"`
}

// ToResponse converts Thread to ThreadResponse
func (t *Thread) ToResponse() *ThreadResponse {
	resp := &ThreadResponse{
		ID:        t.ID,
		ListingID: t.ListingID,
		BuyerID:   t.BuyerID,
		SellerID:  t.SellerID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Listing != nil {
		resp.Listing = t.Listing.ToResponse()
	}
	if t.Buyer != nil {
		resp.Buyer = t.Buyer.ToResponse()
	}
	if t.Seller != nil {
		resp.Seller = t.Seller.ToResponse()
	}
	return resp
}
