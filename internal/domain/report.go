package domain

import "time"

// Report is a user complaint about a listing, reviewed by moderators
type Report struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ListingID  string    `gorm:"column:listing_id;size:36;not null;index" json:"listing_id"`
	ReporterID string    `gorm:"column:reporter_id;size:36;not null" json:"reporter_id"`
	Reason     string    `gorm:"column:reason;type:text;not null" json:"reason"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Relations
	Listing  *Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	Reporter *User    `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}

// CreateReportRequest is the body of POST /listings/:id/report
type CreateReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}
