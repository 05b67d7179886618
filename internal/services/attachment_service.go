package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"procura_backend/internal/logger"
	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/storage"
	"procura_backend/pkg/apperrors"
)

// UploadLimits bounds a single attachment. Populated from configuration at
// wiring time.
type UploadLimits struct {
	MaxSize      int64
	AllowedTypes []string
}

func (l UploadLimits) typeAllowed(contentType string) bool {
	for _, t := range l.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

type AttachmentService interface {
	Upload(ctx context.Context, actor models.Actor, bidID, fileName, contentType string, size int64, body io.Reader) (*models.BidAttachment, error)
	List(actor models.Actor, bidID string) ([]models.BidAttachment, error)
	Download(ctx context.Context, actor models.Actor, attachmentID string) (*models.BidAttachment, io.ReadCloser, error)
	Delete(ctx context.Context, actor models.Actor, attachmentID string) error
}

type attachmentService struct {
	attachments repositories.AttachmentRepository
	bids        repositories.BidRepository
	store       storage.Storage
	limits      UploadLimits
}

func NewAttachmentService(
	attachments repositories.AttachmentRepository,
	bids repositories.BidRepository,
	store storage.Storage,
	limits UploadLimits,
) AttachmentService {
	return &attachmentService{
		attachments: attachments,
		bids:        bids,
		store:       store,
		limits:      limits,
	}
}

// Upload attaches a document to a draft bid. Only the bid owner may upload,
// and only while the bid is still editable.
func (s *attachmentService) Upload(ctx context.Context, actor models.Actor, bidID, fileName, contentType string, size int64, body io.Reader) (*models.BidAttachment, error) {
	bid, err := s.ownBid(actor, bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status != models.BidStatusDraft {
		return nil, apperrors.ErrBidLocked
	}

	if size > s.limits.MaxSize {
		return nil, apperrors.NewBadRequestError(
			fmt.Sprintf("File exceeds the %d byte limit", s.limits.MaxSize))
	}
	if !s.limits.typeAllowed(contentType) {
		return nil, apperrors.NewBadRequestError("File type is not allowed")
	}

	storagePath := filepath.Join("bids", bidID, uuid.NewString()+filepath.Ext(fileName))
	if err := s.store.Save(ctx, storagePath, body, contentType); err != nil {
		return nil, apperrors.UpstreamError(err, "storage")
	}

	attachment := &models.BidAttachment{
		BidID:       bidID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   size,
		StoragePath: storagePath,
		UploadedBy:  actor.UserID,
	}
	if err := s.attachments.Create(attachment); err != nil {
		// Orphaned blobs are cheaper than dangling metadata.
		if cleanupErr := s.store.Delete(ctx, storagePath); cleanupErr != nil {
			logger.Warn("orphaned attachment blob", "path", storagePath, "error", cleanupErr)
		}
		return nil, apperrors.InternalError(err)
	}

	return attachment, nil
}

func (s *attachmentService) List(actor models.Actor, bidID string) ([]models.BidAttachment, error) {
	if _, err := s.visibleBid(actor, bidID); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByBid(bidID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return attachments, nil
}

func (s *attachmentService) Download(ctx context.Context, actor models.Actor, attachmentID string) (*models.BidAttachment, io.ReadCloser, error) {
	attachment, err := s.attachments.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrNotFound(err, "attachments")
		}
		return nil, nil, apperrors.InternalError(err)
	}

	if _, err := s.visibleBid(actor, attachment.BidID); err != nil {
		return nil, nil, apperrors.ErrNotFound(gorm.ErrRecordNotFound, "attachments")
	}

	body, err := s.store.Get(ctx, attachment.StoragePath)
	if err != nil {
		return nil, nil, apperrors.UpstreamError(err, "storage")
	}
	return attachment, body, nil
}

// Delete removes an attachment from a draft bid. Owner only.
func (s *attachmentService) Delete(ctx context.Context, actor models.Actor, attachmentID string) error {
	attachment, err := s.attachments.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound(err, "attachments")
		}
		return apperrors.InternalError(err)
	}

	bid, err := s.ownBid(actor, attachment.BidID)
	if err != nil {
		return apperrors.ErrNotFound(gorm.ErrRecordNotFound, "attachments")
	}
	if bid.Status != models.BidStatusDraft {
		return apperrors.ErrBidLocked
	}

	if err := s.attachments.Delete(attachmentID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.store.Delete(ctx, attachment.StoragePath); err != nil {
		logger.Warn("attachment blob not removed", "path", attachment.StoragePath, "error", err)
	}
	return nil
}

// ownBid loads the bid and requires the actor to be its bidder-owner.
func (s *attachmentService) ownBid(actor models.Actor, bidID string) (*models.Bid, error) {
	bid, err := s.bids.FindByID(bidID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "bids")
		}
		return nil, apperrors.InternalError(err)
	}
	if bid.BidderID != actor.UserID {
		return nil, apperrors.ErrNotFound(gorm.ErrRecordNotFound, "bids")
	}
	return bid, nil
}

// visibleBid loads the bid and requires owner or evaluator visibility.
func (s *attachmentService) visibleBid(actor models.Actor, bidID string) (*models.Bid, error) {
	bid, err := s.bids.FindByID(bidID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "bids")
		}
		return nil, apperrors.InternalError(err)
	}
	if !actor.CanEvaluate() && bid.BidderID != actor.UserID {
		return nil, apperrors.ErrNotFound(gorm.ErrRecordNotFound, "bids")
	}
	return bid, nil
}
