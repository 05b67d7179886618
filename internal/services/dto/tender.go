package dto

import (
	"time"

	"procura_backend/internal/models"
)

type CreateTenderRequest struct {
	Title       string    `json:"title" binding:"required" validate:"required,max=300"`
	Description string    `json:"description" validate:"max=5000"`
	BuyerName   string    `json:"buyer_name" binding:"required" validate:"required,max=300"`
	BuyerID     string    `json:"buyer_id" validate:"max=120"`
	TenderValue float64   `json:"tender_value" validate:"gte=0"`
	Currency    string    `json:"currency" validate:"omitempty,is-currency"`
	Category    string    `json:"category" validate:"max=120"`
	Location    string    `json:"location" validate:"max=200"`
	PublishedAt time.Time `json:"published_at"`
	ClosingAt   time.Time `json:"closing_at" binding:"required" validate:"required"`
}

type UpdateTenderRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=300"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,is-tender-status"`
	ClosingAt   *time.Time `json:"closing_at,omitempty"`
}

type TenderCriteria struct {
	Status   string `form:"status" validate:"omitempty,is-tender-status"`
	Query    string `form:"q" validate:"max=200"`
	Category string `form:"category" validate:"max=120"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type TenderListResponse struct {
	Tenders    []models.Tender `json:"tenders"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

type SyncResult struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}
