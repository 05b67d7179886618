package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"procura_backend/internal/logger"
	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/services/dto"
	"procura_backend/pkg/apperrors"
)

// SecopFetcher pulls the current page set of contracting processes from the
// SECOP II open data API, already mapped to local tender records.
type SecopFetcher interface {
	FetchTenders(ctx context.Context) ([]models.Tender, error)
}

type TenderService interface {
	GetTender(id string) (*models.Tender, error)
	ListTenders(criteria dto.TenderCriteria) (*dto.TenderListResponse, error)
	CreateTender(actor models.Actor, req *dto.CreateTenderRequest) (*models.Tender, error)
	UpdateTender(actor models.Actor, id string, req *dto.UpdateTenderRequest) (*models.Tender, error)
	SyncFromSecop(ctx context.Context, actor models.Actor) (*dto.SyncResult, error)
}

type tenderService struct {
	tenders repositories.TenderRepository
	secop   SecopFetcher
}

func NewTenderService(tenders repositories.TenderRepository, secop SecopFetcher) TenderService {
	return &tenderService{tenders: tenders, secop: secop}
}

func (s *tenderService) GetTender(id string) (*models.Tender, error) {
	tender, err := s.tenders.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "tenders")
		}
		return nil, apperrors.InternalError(err)
	}
	return tender, nil
}

func (s *tenderService) ListTenders(criteria dto.TenderCriteria) (*dto.TenderListResponse, error) {
	repoCriteria := repositories.TenderCriteria{
		Status:   models.TenderStatus(criteria.Status),
		Query:    criteria.Query,
		Category: criteria.Category,
		Page:     normalizePage(criteria.Page),
		PageSize: normalizePageSize(criteria.PageSize),
	}

	tenders, total, err := s.tenders.List(repoCriteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.TenderListResponse{
		Tenders:    tenders,
		Total:      total,
		Page:       repoCriteria.Page,
		PageSize:   repoCriteria.PageSize,
		TotalPages: totalPages(total, repoCriteria.PageSize),
	}, nil
}

// CreateTender registers a locally authored tender. Manual records get a
// synthetic process id so they share the registry (and its unique index) with
// synced SECOP records.
func (s *tenderService) CreateTender(actor models.Actor, req *dto.CreateTenderRequest) (*models.Tender, error) {
	if !actor.CanEvaluate() {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if !req.ClosingAt.After(time.Now()) {
		return nil, apperrors.ErrInvalidOperation("tenders", "Closing date must be in the future")
	}

	publishedAt := req.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}
	currency := req.Currency
	if currency == "" {
		currency = "COP"
	}

	tender := &models.Tender{
		SecopID:     "LOCAL-" + uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		BuyerName:   req.BuyerName,
		BuyerID:     req.BuyerID,
		TenderValue: req.TenderValue,
		Currency:    currency,
		Status:      models.TenderStatusOpen,
		Category:    req.Category,
		Location:    req.Location,
		PublishedAt: publishedAt,
		ClosingAt:   req.ClosingAt,
	}

	if err := s.tenders.Create(tender); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("tender created", "tender_id", tender.ID, "created_by", actor.UserID)
	return tender, nil
}

func (s *tenderService) UpdateTender(actor models.Actor, id string, req *dto.UpdateTenderRequest) (*models.Tender, error) {
	if !actor.CanEvaluate() {
		return nil, apperrors.ErrInsufficientPermissions
	}

	tender, err := s.tenders.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "tenders")
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Title != nil {
		tender.Title = *req.Title
	}
	if req.Description != nil {
		tender.Description = *req.Description
	}
	if req.ClosingAt != nil {
		tender.ClosingAt = *req.ClosingAt
	}
	if req.Status != nil {
		status := models.TenderStatus(*req.Status)
		if !status.Valid() {
			return nil, apperrors.ErrInvalidStatus("tenders", "Unknown tender status")
		}
		tender.Status = status
	}

	if err := s.tenders.Update(tender); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return tender, nil
}

// SyncFromSecop pulls the open data feed and upserts every record keyed on
// its SECOP process id. Admin only; a feed outage surfaces as 503, never as
// partial corruption (each upsert is independent).
func (s *tenderService) SyncFromSecop(ctx context.Context, actor models.Actor) (*dto.SyncResult, error) {
	if actor.Role != models.UserRoleAdministrator {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if s.secop == nil {
		return nil, apperrors.ErrInvalidOperation("secop", "SECOP sync is not configured")
	}

	records, err := s.secop.FetchTenders(ctx)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "secop")
	}

	result := &dto.SyncResult{Fetched: len(records)}
	for i := range records {
		created, err := s.tenders.UpsertBySecopID(&records[i])
		if err != nil {
			return nil, apperrors.InternalError(fmt.Errorf("upsert %s: %w", records[i].SecopID, err))
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	logger.Info("secop sync finished",
		"fetched", result.Fetched, "created", result.Created, "updated", result.Updated)
	return result, nil
}
