package repositories

import (
	"time"

	"procura_backend/internal/models"

	"gorm.io/gorm"
)

// TenderCriteria narrows tender listings. Query matches title, description
// and buyer name.
type TenderCriteria struct {
	Status   models.TenderStatus
	Query    string
	Category string
	Page     int
	PageSize int
}

type TenderRepository interface {
	Create(tender *models.Tender) error
	Update(tender *models.Tender) error
	FindByID(id string) (*models.Tender, error)
	FindBySecopID(secopID string) (*models.Tender, error)
	List(criteria TenderCriteria) ([]models.Tender, int64, error)
	UpsertBySecopID(tender *models.Tender) (created bool, err error)

	// Worker support
	CloseExpired(now time.Time) (int64, error)
	FindClosingSoon(now time.Time, window time.Duration) ([]models.Tender, error)
}

type tenderRepository struct {
	db *gorm.DB
}

func NewTenderRepository(db *gorm.DB) TenderRepository {
	return &tenderRepository{db: db}
}

func (r *tenderRepository) Create(tender *models.Tender) error {
	return r.db.Create(tender).Error
}

func (r *tenderRepository) Update(tender *models.Tender) error {
	return r.db.Save(tender).Error
}

func (r *tenderRepository) FindByID(id string) (*models.Tender, error) {
	var tender models.Tender
	if err := r.db.First(&tender, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tender, nil
}

func (r *tenderRepository) FindBySecopID(secopID string) (*models.Tender, error) {
	var tender models.Tender
	if err := r.db.First(&tender, "secop_id = ?", secopID).Error; err != nil {
		return nil, err
	}
	return &tender, nil
}

func (r *tenderRepository) List(criteria TenderCriteria) ([]models.Tender, int64, error) {
	query := r.db.Model(&models.Tender{})

	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.Query != "" {
		like := "%" + criteria.Query + "%"
		query = query.Where(
			"title LIKE ? OR description LIKE ? OR buyer_name LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tenders []models.Tender
	err := query.
		Order("published_at DESC").
		Offset((criteria.Page - 1) * criteria.PageSize).
		Limit(criteria.PageSize).
		Find(&tenders).Error
	return tenders, total, err
}

// UpsertBySecopID inserts a synced record or refreshes the mutable fields of
// an existing one, keyed on the external process id.
func (r *tenderRepository) UpsertBySecopID(tender *models.Tender) (bool, error) {
	var existing models.Tender
	err := r.db.First(&existing, "secop_id = ?", tender.SecopID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return true, r.db.Create(tender).Error
		}
		return false, err
	}

	updates := map[string]interface{}{
		"title":        tender.Title,
		"description":  tender.Description,
		"buyer_name":   tender.BuyerName,
		"buyer_id":     tender.BuyerID,
		"tender_value": tender.TenderValue,
		"currency":     tender.Currency,
		"status":       tender.Status,
		"category":     tender.Category,
		"location":     tender.Location,
		"published_at": tender.PublishedAt,
		"closing_at":   tender.ClosingAt,
	}
	return false, r.db.Model(&existing).Updates(updates).Error
}

// CloseExpired flips open tenders whose closing date passed. Runs from the
// tender worker.
func (r *tenderRepository) CloseExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.Tender{}).
		Where("status = ? AND closing_at < ?", models.TenderStatusOpen, now).
		Update("status", models.TenderStatusClosed)
	return result.RowsAffected, result.Error
}

func (r *tenderRepository) FindClosingSoon(now time.Time, window time.Duration) ([]models.Tender, error) {
	var tenders []models.Tender
	err := r.db.
		Where("status = ? AND closing_at > ? AND closing_at <= ?",
			models.TenderStatusOpen, now, now.Add(window)).
		Find(&tenders).Error
	return tenders, err
}
