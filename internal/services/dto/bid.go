package dto

import "procura_backend/internal/models"

type CreateBidRequest struct {
	TenderID  string  `json:"tender_id" binding:"required" validate:"required"`
	BidAmount float64 `json:"bid_amount" binding:"required"`
	Notes     string  `json:"notes" validate:"max=5000"`
}

// UpdateBidRequest is a patch. Which fields are honored depends on the
// actor: a bidder-owner may touch amount, notes and request the transition
// to submitted while the bid is a draft; evaluators set scores and decide
// status. Everything else is rejected.
type UpdateBidRequest struct {
	BidAmount      *float64 `json:"bid_amount,omitempty"`
	Notes          *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Status         *string  `json:"status,omitempty" validate:"omitempty,is-bid-status"`
	TechnicalScore *float64 `json:"technical_score,omitempty"`
	FinancialScore *float64 `json:"financial_score,omitempty"`
}

type BidCriteria struct {
	Status   string `form:"status" validate:"omitempty,is-bid-status"`
	TenderID string `form:"tender_id"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type BidListResponse struct {
	Bids       []models.Bid `json:"bids"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}
