package models

import "time"

// Tender is a published contracting opportunity. Records are created by
// procurement staff or synced from the SECOP II open data API; from the bid
// engine's point of view the registry is read-only.
type Tender struct {
	BaseModel
	SecopID     string       `gorm:"uniqueIndex" json:"secop_id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	BuyerName   string       `gorm:"not null" json:"buyer_name"`
	BuyerID     string       `gorm:"index" json:"buyer_id"`
	TenderValue float64      `json:"tender_value"`
	Currency    string       `gorm:"type:varchar(3);default:'COP'" json:"currency"`
	Status      TenderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Category    string       `json:"category"`
	Location    string       `json:"location"`
	PublishedAt time.Time    `json:"published_at"`
	ClosingAt   time.Time    `gorm:"index" json:"closing_at"`
}

// OpenForBids reports whether a bid may be created against this tender.
func (t *Tender) OpenForBids(now time.Time) bool {
	return t.Status == TenderStatusOpen && now.Before(t.ClosingAt)
}
