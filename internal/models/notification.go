package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an append-only ledger row owned by the system. Recipients
// may flip IsRead on their own rows and nothing else; content is written only
// by lifecycle side effects, never directly by a bidder for themselves.
type Notification struct {
	BaseModel
	UserID  string           `gorm:"not null;index" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(10);not null" json:"type"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `json:"message"`

	// Optional deep-link references.
	TenderID *string `gorm:"index" json:"tender_id,omitempty"`
	BidID    *string `gorm:"index" json:"bid_id,omitempty"`

	// Extra event payload, e.g. {"total_score": 87.5}.
	Data datatypes.JSON `json:"data,omitempty"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
