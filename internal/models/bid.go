package models

import "time"

// Bid is one bidder's offer against exactly one tender. TenderID and
// BidderID are fixed at creation; the composite unique index enforces the
// one-bid-per-(tender,bidder) invariant at the storage layer so concurrent
// creates cannot both succeed.
//
// Currency is not stored here: a bid inherits the currency of its tender.
type Bid struct {
	BaseModel
	TenderID string `gorm:"not null;uniqueIndex:idx_bids_tender_bidder" json:"tender_id"`
	BidderID string `gorm:"not null;uniqueIndex:idx_bids_tender_bidder;index" json:"bidder_id"`

	BidAmount float64   `gorm:"not null" json:"bid_amount"`
	Notes     string    `json:"notes"`
	Status    BidStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	// Scores are set by evaluator roles only. TotalScore is derived: present
	// iff both component scores are present, always their arithmetic mean.
	TechnicalScore *float64 `json:"technical_score,omitempty"`
	FinancialScore *float64 `json:"financial_score,omitempty"`
	TotalScore     *float64 `json:"total_score,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	Tender *Tender `gorm:"foreignKey:TenderID" json:"tender,omitempty"`
	Bidder *User   `gorm:"foreignKey:BidderID" json:"bidder,omitempty"`
}

// BidAttachment is a supporting document uploaded against a draft bid. The
// file body lives in the storage backend; this row carries its metadata.
type BidAttachment struct {
	BaseModel
	BidID       string `gorm:"not null;index" json:"bid_id"`
	FileName    string `gorm:"not null" json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StoragePath string `gorm:"not null" json:"-"`
	UploadedBy  string `gorm:"not null" json:"uploaded_by"`
}
