package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"procura_backend/internal/logger"
	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/services/dto"
	"procura_backend/pkg/apperrors"
)

// DecisionMailer sends the out-of-band email for a terminal bid decision.
// Delivery is best effort; the notification ledger row is authoritative.
type DecisionMailer interface {
	SendBidDecision(toEmail, fullName, tenderTitle string, status models.BidStatus, totalScore *float64) error
}

type BidService interface {
	CreateBid(actor models.Actor, req *dto.CreateBidRequest) (*models.Bid, error)
	GetBid(actor models.Actor, id string) (*models.Bid, error)
	ListBids(actor models.Actor, criteria dto.BidCriteria) (*dto.BidListResponse, error)
	UpdateBid(actor models.Actor, id string, req *dto.UpdateBidRequest) (*models.Bid, error)
	DeleteBid(actor models.Actor, id string) error
}

type bidService struct {
	bids          repositories.BidRepository
	tenders       repositories.TenderRepository
	users         repositories.UserRepository
	notifications NotificationService
	mailer        DecisionMailer
	now           func() time.Time
}

func NewBidService(
	bids repositories.BidRepository,
	tenders repositories.TenderRepository,
	users repositories.UserRepository,
	notifications NotificationService,
	mailer DecisionMailer,
) BidService {
	return &bidService{
		bids:          bids,
		tenders:       tenders,
		users:         users,
		notifications: notifications,
		mailer:        mailer,
		now:           time.Now,
	}
}

// CreateBid opens a draft. The checks run in a fixed order so a request that
// fails several of them always reports the same error: actor role, tender
// existence, tender open, no duplicate, then amount.
func (s *bidService) CreateBid(actor models.Actor, req *dto.CreateBidRequest) (*models.Bid, error) {
	if actor.Role != models.UserRoleBidder {
		return nil, apperrors.ErrInsufficientPermissions
	}

	tender, err := s.tenders.FindByID(req.TenderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "tenders")
		}
		return nil, apperrors.InternalError(err)
	}

	if !tender.OpenForBids(s.now()) {
		return nil, apperrors.ErrTenderClosed
	}

	_, existing, err := s.bids.List(repositories.BidCriteria{
		TenderID: req.TenderID,
		BidderID: actor.UserID,
		Page:     1,
		PageSize: 1,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if existing > 0 {
		return nil, apperrors.ErrDuplicateBid
	}

	if req.BidAmount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	bid := &models.Bid{
		TenderID:  req.TenderID,
		BidderID:  actor.UserID,
		BidAmount: req.BidAmount,
		Notes:     req.Notes,
		Status:    models.BidStatusDraft,
	}

	if err := s.bids.Create(bid); err != nil {
		// Lost a race against a concurrent create by the same bidder.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateBid
		}
		return nil, apperrors.InternalError(err)
	}

	logger.Info("bid created", "bid_id", bid.ID, "tender_id", bid.TenderID, "bidder_id", bid.BidderID)
	bid.Tender = tender
	return bid, nil
}

// GetBid returns the bid to its owner or to an evaluator. Anyone else gets a
// 404, not a 403, so bid ids reveal nothing.
func (s *bidService) GetBid(actor models.Actor, id string) (*models.Bid, error) {
	bid, err := s.bids.FindByID(id)
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

// ListBids scopes the listing by role: bidders always see only their own
// bids, whatever filters the request carries.
func (s *bidService) ListBids(actor models.Actor, criteria dto.BidCriteria) (*dto.BidListResponse, error) {
	repoCriteria := repositories.BidCriteria{
		Status:   models.BidStatus(criteria.Status),
		TenderID: criteria.TenderID,
		Page:     normalizePage(criteria.Page),
		PageSize: normalizePageSize(criteria.PageSize),
	}
	if !actor.CanEvaluate() {
		repoCriteria.BidderID = actor.UserID
	}

	bids, total, err := s.bids.List(repoCriteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.BidListResponse{
		Bids:       bids,
		Total:      total,
		Page:       repoCriteria.Page,
		PageSize:   repoCriteria.PageSize,
		TotalPages: totalPages(total, repoCriteria.PageSize),
	}, nil
}

// UpdateBid dispatches on the actor. A bidder-owner edits amount/notes and
// submits while the bid is a draft; evaluators score and move the bid through
// review to a decision. Both paths write through a status-conditioned update
// so a mutation racing a transition loses cleanly.
func (s *bidService) UpdateBid(actor models.Actor, id string, req *dto.UpdateBidRequest) (*models.Bid, error) {
	bid, err := s.bids.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "bids")
		}
		return nil, apperrors.InternalError(err)
	}

	if actor.CanEvaluate() {
		return s.evaluatorUpdate(actor, bid, req)
	}
	if bid.BidderID != actor.UserID {
		return nil, apperrors.ErrNotFound(gorm.ErrRecordNotFound, "bids")
	}
	return s.bidderUpdate(actor, bid, req)
}

func (s *bidService) bidderUpdate(actor models.Actor, bid *models.Bid, req *dto.UpdateBidRequest) (*models.Bid, error) {
	if req.TechnicalScore != nil || req.FinancialScore != nil {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if bid.Status != models.BidStatusDraft {
		return nil, apperrors.ErrBidLocked
	}

	updates := map[string]interface{}{}
	if req.BidAmount != nil {
		if *req.BidAmount <= 0 {
			return nil, apperrors.ErrInvalidAmount
		}
		updates["bid_amount"] = *req.BidAmount
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	submitting := false
	if req.Status != nil {
		if models.BidStatus(*req.Status) != models.BidStatusSubmitted {
			return nil, apperrors.ErrInvalidStatus("bids", "A bidder may only move a draft to submitted")
		}
		tender := bid.Tender
		if tender == nil {
			loaded, err := s.tenders.FindByID(bid.TenderID)
			if err != nil {
				return nil, apperrors.InternalError(err)
			}
			tender = loaded
		}
		if !tender.OpenForBids(s.now()) {
			return nil, apperrors.ErrTenderClosed
		}
		submitting = true
		updates["status"] = models.BidStatusSubmitted
		updates["submitted_at"] = s.now()
	}

	if len(updates) == 0 {
		return bid, nil
	}

	written, err := s.bids.UpdateWhereStatus(bid.ID, models.BidStatusDraft, updates)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !written {
		return nil, apperrors.ErrBidLocked
	}

	if submitting {
		s.notifyEvaluatorsOfSubmission(bid)
	}

	return s.reload(bid.ID)
}

func (s *bidService) evaluatorUpdate(actor models.Actor, bid *models.Bid, req *dto.UpdateBidRequest) (*models.Bid, error) {
	if req.BidAmount != nil || req.Notes != nil {
		return nil, apperrors.ErrInsufficientPermissions
	}
	if bid.Status.Terminal() {
		return nil, apperrors.ErrBidLocked
	}

	updates := map[string]interface{}{}

	technical := bid.TechnicalScore
	financial := bid.FinancialScore
	if req.TechnicalScore != nil {
		if !scoreInRange(*req.TechnicalScore) {
			return nil, apperrors.ErrScoreOutOfRange
		}
		technical = req.TechnicalScore
		updates["technical_score"] = *req.TechnicalScore
	}
	if req.FinancialScore != nil {
		if !scoreInRange(*req.FinancialScore) {
			return nil, apperrors.ErrScoreOutOfRange
		}
		financial = req.FinancialScore
		updates["financial_score"] = *req.FinancialScore
	}

	if req.TechnicalScore != nil || req.FinancialScore != nil {
		// total_score is derived: the mean when both components are present,
		// NULL otherwise. Always written, never stale.
		if technical != nil && financial != nil {
			updates["total_score"] = (*technical + *financial) / 2
		} else {
			updates["total_score"] = nil
		}
	}

	var target models.BidStatus
	if req.Status != nil {
		target = models.BidStatus(*req.Status)
		if !validTransition(bid.Status, target) {
			return nil, apperrors.ErrInvalidStatus("bids",
				fmt.Sprintf("Cannot move a bid from %s to %s", bid.Status, target))
		}
		updates["status"] = target
	}

	if len(updates) == 0 {
		return bid, nil
	}

	written, err := s.bids.UpdateWhereStatus(bid.ID, bid.Status, updates)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !written {
		return nil, apperrors.ErrBidLocked
	}

	updated, err := s.reload(bid.ID)
	if err != nil {
		return nil, err
	}

	if target.Terminal() {
		s.notifyBidderOfDecision(updated)
		logger.Info("bid decided",
			"bid_id", updated.ID, "status", updated.Status, "decided_by", actor.UserID)
	}

	return updated, nil
}

// DeleteBid removes a draft. Only the owner may delete, and only while the
// bid has not been submitted.
func (s *bidService) DeleteBid(actor models.Actor, id string) error {
	bid, err := s.bids.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound(err, "bids")
		}
		return apperrors.InternalError(err)
	}

	if actor.CanEvaluate() {
		return apperrors.ErrInsufficientPermissions
	}
	if bid.BidderID != actor.UserID {
		return apperrors.ErrNotFound(gorm.ErrRecordNotFound, "bids")
	}
	if bid.Status != models.BidStatusDraft {
		return apperrors.ErrBidLocked
	}

	deleted, err := s.bids.DeleteWhereStatus(id, models.BidStatusDraft)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !deleted {
		return apperrors.ErrBidLocked
	}
	return nil
}

func (s *bidService) reload(id string) (*models.Bid, error) {
	bid, err := s.bids.FindByID(id)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return bid, nil
}

func (s *bidService) notifyEvaluatorsOfSubmission(bid *models.Bid) {
	evaluators, err := s.users.FindByRoles(models.UserRoleOfficer, models.UserRoleAdministrator)
	if err != nil {
		logger.Warn("submission fan-out skipped", "bid_id", bid.ID, "error", err)
		return
	}
	ids := make([]string, 0, len(evaluators))
	for _, u := range evaluators {
		ids = append(ids, u.ID)
	}

	title := "New bid submitted"
	message := fmt.Sprintf("A bid of %.2f was submitted", bid.BidAmount)
	if bid.Tender != nil {
		message = fmt.Sprintf("A bid of %.2f %s was submitted for %q",
			bid.BidAmount, bid.Tender.Currency, bid.Tender.Title)
	}

	if err := s.notifications.AppendBulk(ids, models.NotificationTypeInfo, title, message,
		WithTender(bid.TenderID), WithBid(bid.ID)); err != nil {
		logger.Warn("submission notifications failed", "bid_id", bid.ID, "error", err)
	}
}

func (s *bidService) notifyBidderOfDecision(bid *models.Bid) {
	typ := models.NotificationTypeSuccess
	title := "Bid accepted"
	if bid.Status == models.BidStatusRejected {
		typ = models.NotificationTypeError
		title = "Bid rejected"
	}

	tenderTitle := bid.TenderID
	if bid.Tender != nil {
		tenderTitle = bid.Tender.Title
	}
	message := fmt.Sprintf("Your bid for %q was %s", tenderTitle, bid.Status)
	if bid.TotalScore != nil {
		message = fmt.Sprintf("%s with a total score of %.1f", message, *bid.TotalScore)
	}

	if err := s.notifications.Append(bid.BidderID, typ, title, message,
		WithTender(bid.TenderID), WithBid(bid.ID),
		WithData(map[string]interface{}{
			"status":      bid.Status,
			"total_score": bid.TotalScore,
		})); err != nil {
		logger.Warn("decision notification failed", "bid_id", bid.ID, "error", err)
	}

	if s.mailer != nil && bid.Bidder != nil {
		if err := s.mailer.SendBidDecision(
			bid.Bidder.Email, bid.Bidder.FullName, tenderTitle, bid.Status, bid.TotalScore,
		); err != nil {
			logger.Warn("decision email failed", "bid_id", bid.ID, "error", err)
		}
	}
}

func scoreInRange(v float64) bool {
	return v >= 0 && v <= 100
}

// validTransition encodes the evaluator half of the lifecycle:
// submitted -> under_review -> accepted | rejected. Decisions straight from
// submitted are allowed; drafts and terminal bids never move here.
func validTransition(from, to models.BidStatus) bool {
	switch from {
	case models.BidStatusSubmitted:
		return to == models.BidStatusUnderReview ||
			to == models.BidStatusAccepted ||
			to == models.BidStatusRejected
	case models.BidStatusUnderReview:
		return to == models.BidStatusAccepted || to == models.BidStatusRejected
	}
	return false
}
