package repositories

import (
	"procura_backend/internal/models"

	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(attachment *models.BidAttachment) error
	FindByID(id string) (*models.BidAttachment, error)
	ListByBid(bidID string) ([]models.BidAttachment, error)
	Delete(id string) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(attachment *models.BidAttachment) error {
	return r.db.Create(attachment).Error
}

func (r *attachmentRepository) FindByID(id string) (*models.BidAttachment, error) {
	var attachment models.BidAttachment
	if err := r.db.First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByBid(bidID string) ([]models.BidAttachment, error) {
	var attachments []models.BidAttachment
	err := r.db.
		Where("bid_id = ?", bidID).
		Order("created_at ASC").
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) Delete(id string) error {
	return r.db.Delete(&models.BidAttachment{}, "id = ?", id).Error
}
