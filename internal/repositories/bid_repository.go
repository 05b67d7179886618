package repositories

import (
	"procura_backend/internal/models"

	"gorm.io/gorm"
)

// BidCriteria narrows bid listings. BidderID is set by the service layer for
// bidder actors so a bidder can never list someone else's bids.
type BidCriteria struct {
	Status   models.BidStatus
	TenderID string
	BidderID string
	Page     int
	PageSize int
}

type BidRepository interface {
	Create(bid *models.Bid) error
	FindByID(id string) (*models.Bid, error)
	List(criteria BidCriteria) ([]models.Bid, int64, error)

	// UpdateWhereStatus applies updates only if the bid is still in the
	// expected status; reports whether a row was written. This is the
	// at-most-one-writer-wins primitive: a mutation racing a transition
	// loses and surfaces as a lock conflict, never as a hybrid row.
	UpdateWhereStatus(bidID string, expected models.BidStatus, updates map[string]interface{}) (bool, error)

	// Update applies updates unconditionally (evaluator path; the service
	// enforces terminal-state protection before calling).
	Update(bidID string, updates map[string]interface{}) error

	// DeleteWhereStatus removes the bid only while it is in the expected
	// status.
	DeleteWhereStatus(bidID string, expected models.BidStatus) (bool, error)

	FindDraftsByTenderIDs(tenderIDs []string) ([]models.Bid, error)
}

type bidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &bidRepository{db: db}
}

func (r *bidRepository) Create(bid *models.Bid) error {
	// The composite unique index on (tender_id, bidder_id) rejects a
	// concurrent duplicate; gorm translates it to ErrDuplicatedKey.
	return r.db.Create(bid).Error
}

func (r *bidRepository) FindByID(id string) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.
		Preload("Tender").
		Preload("Bidder").
		First(&bid, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *bidRepository) List(criteria BidCriteria) ([]models.Bid, int64, error) {
	query := r.db.Model(&models.Bid{})

	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.TenderID != "" {
		query = query.Where("tender_id = ?", criteria.TenderID)
	}
	if criteria.BidderID != "" {
		query = query.Where("bidder_id = ?", criteria.BidderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bids []models.Bid
	err := query.
		Preload("Tender").
		Order("created_at DESC").
		Offset((criteria.Page - 1) * criteria.PageSize).
		Limit(criteria.PageSize).
		Find(&bids).Error
	return bids, total, err
}

func (r *bidRepository) UpdateWhereStatus(bidID string, expected models.BidStatus, updates map[string]interface{}) (bool, error) {
	result := r.db.Model(&models.Bid{}).
		Where("id = ? AND status = ?", bidID, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *bidRepository) Update(bidID string, updates map[string]interface{}) error {
	result := r.db.Model(&models.Bid{}).
		Where("id = ?", bidID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bidRepository) DeleteWhereStatus(bidID string, expected models.BidStatus) (bool, error) {
	result := r.db.
		Where("id = ? AND status = ?", bidID, expected).
		Delete(&models.Bid{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *bidRepository) FindDraftsByTenderIDs(tenderIDs []string) ([]models.Bid, error) {
	if len(tenderIDs) == 0 {
		return nil, nil
	}
	var bids []models.Bid
	err := r.db.
		Where("tender_id IN ? AND status = ?", tenderIDs, models.BidStatusDraft).
		Find(&bids).Error
	return bids, err
}
