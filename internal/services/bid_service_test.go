package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura_backend/internal/models"
	"procura_backend/internal/services/dto"
	"procura_backend/pkg/apperrors"
)

func TestCreateBid(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID:  tender.ID,
		BidAmount: 950_000,
		Notes:     "Includes delivery",
	})
	require.NoError(t, err)

	assert.Equal(t, models.BidStatusDraft, bid.Status)
	assert.Equal(t, bidder.ID, bid.BidderID)
	assert.Equal(t, 950_000.0, bid.BidAmount)
	assert.Nil(t, bid.SubmittedAt)
	assert.Nil(t, bid.TotalScore)
}

func TestCreateBid_EvaluatorForbidden(t *testing.T) {
	env := newTestEnv(t)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	_, err := env.bids.CreateBid(actorFor(officer), &dto.CreateBidRequest{
		TenderID:  tender.ID,
		BidAmount: 100,
	})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestCreateBid_TenderNotFound(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)

	_, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID:  "no-such-tender",
		BidAmount: 100,
	})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestCreateBid_TenderClosed(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)

	t.Run("closed status", func(t *testing.T) {
		tender := env.createTender(t, func(tn *models.Tender) {
			tn.Status = models.TenderStatusClosed
		})
		_, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
			TenderID: tender.ID, BidAmount: 100,
		})
		requireCode(t, err, apperrors.CodeTenderClosed)
	})

	t.Run("open but past closing date", func(t *testing.T) {
		tender := env.createTender(t, func(tn *models.Tender) {
			tn.ClosingAt = time.Now().Add(-time.Hour)
		})
		_, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
			TenderID: tender.ID, BidAmount: 100,
		})
		requireCode(t, err, apperrors.CodeTenderClosed)
	})
}

func TestCreateBid_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	_, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	_, err = env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 200,
	})
	requireCode(t, err, apperrors.CodeDuplicateBid)

	// A second bidder on the same tender is fine.
	other := env.createUser(t, "other@example.com", models.UserRoleBidder)
	_, err = env.bids.CreateBid(actorFor(other), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 300,
	})
	require.NoError(t, err)
}

func TestCreateBid_InvalidAmount(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	for _, amount := range []float64{0, -5} {
		_, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
			TenderID: tender.ID, BidAmount: amount,
		})
		requireCode(t, err, apperrors.CodeInvalidAmount)
	}
}

// A closed tender wins over every later check: the same request fails with
// TENDER_CLOSED even when it is also a duplicate with a bad amount.
func TestCreateBid_CheckOrder(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	_, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	tender.Status = models.TenderStatusClosed
	require.NoError(t, env.tenderRepo.Update(tender))

	_, err = env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: -1,
	})
	requireCode(t, err, apperrors.CodeTenderClosed)
}

func TestSubmitBid(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	admin := env.createUser(t, "admin@example.com", models.UserRoleAdministrator)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	submitted := string(models.BidStatusSubmitted)
	updated, err := env.bids.UpdateBid(actorFor(bidder), bid.ID, &dto.UpdateBidRequest{
		Status: &submitted,
	})
	require.NoError(t, err)

	assert.Equal(t, models.BidStatusSubmitted, updated.Status)
	require.NotNil(t, updated.SubmittedAt)

	// Both evaluator roles get a ledger entry; the bidder gets none.
	for _, evaluator := range []*models.User{officer, admin} {
		count, err := env.notifications.UnreadCount(actorFor(evaluator))
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "evaluator %s", evaluator.Email)
	}
	count, err := env.notifications.UnreadCount(actorFor(bidder))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSubmitBid_TenderClosedMeanwhile(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	tender.Status = models.TenderStatusClosed
	require.NoError(t, env.tenderRepo.Update(tender))

	submitted := string(models.BidStatusSubmitted)
	_, err = env.bids.UpdateBid(actorFor(bidder), bid.ID, &dto.UpdateBidRequest{Status: &submitted})
	requireCode(t, err, apperrors.CodeTenderClosed)
}

func TestBidderUpdate_LockedAfterSubmit(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	bid := env.submitBid(t, bidder, tender)

	_, err := env.bids.UpdateBid(actorFor(bidder), bid.ID, &dto.UpdateBidRequest{
		BidAmount: f64(999),
	})
	requireCode(t, err, apperrors.CodeBidLocked)
}

func TestBidderCannotScore(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	_, err = env.bids.UpdateBid(actorFor(bidder), bid.ID, &dto.UpdateBidRequest{
		TechnicalScore: f64(100),
	})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestEvaluatorScoring(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	bid := env.submitBid(t, bidder, tender)

	// One score alone leaves the total unset.
	updated, err := env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{
		TechnicalScore: f64(85),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.TechnicalScore)
	assert.Nil(t, updated.TotalScore)

	// The second score completes the pair: total is the mean.
	updated, err = env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{
		FinancialScore: f64(90),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.TotalScore)
	assert.Equal(t, 87.5, *updated.TotalScore)

	// Re-scoring recomputes, it never accumulates.
	updated, err = env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{
		TechnicalScore: f64(70),
		FinancialScore: f64(80),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.TotalScore)
	assert.Equal(t, 75.0, *updated.TotalScore)
}

func TestEvaluatorScoring_OutOfRange(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	bid := env.submitBid(t, bidder, tender)

	for _, score := range []float64{-1, 100.5} {
		_, err := env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{
			TechnicalScore: f64(score),
		})
		requireCode(t, err, apperrors.CodeValidationFailed)
	}
}

func TestEvaluatorCannotEditOffer(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	bid := env.submitBid(t, bidder, tender)

	_, err := env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{
		BidAmount: f64(1),
	})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{
		Notes: str("changed"),
	})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestDecision_NotifiesBidder(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	bid := env.submitBid(t, bidder, tender)

	underReview := string(models.BidStatusUnderReview)
	_, err := env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{
		Status:         &underReview,
		TechnicalScore: f64(85),
		FinancialScore: f64(90),
	})
	require.NoError(t, err)

	accepted := string(models.BidStatusAccepted)
	decided, err := env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{
		Status: &accepted,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusAccepted, decided.Status)

	list, err := env.notifications.ListForUser(actorFor(bidder), dto.NotificationCriteria{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)

	n := list.Notifications[0]
	assert.Equal(t, models.NotificationTypeSuccess, n.Type)
	assert.Contains(t, n.Message, "accepted")
	assert.Contains(t, n.Message, "87.5")
	require.NotNil(t, n.BidID)
	assert.Equal(t, bid.ID, *n.BidID)

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, bidder.Email, env.mailer.sent[0].To)
	assert.Equal(t, models.BidStatusAccepted, env.mailer.sent[0].Status)
}

func TestDecision_RejectedUsesErrorType(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	bid := env.submitBid(t, bidder, tender)

	rejected := string(models.BidStatusRejected)
	_, err := env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{Status: &rejected})
	require.NoError(t, err)

	list, err := env.notifications.ListForUser(actorFor(bidder), dto.NotificationCriteria{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, models.NotificationTypeError, list.Notifications[0].Type)
}

func TestDecision_TerminalBidLocked(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	bid := env.submitBid(t, bidder, tender)

	accepted := string(models.BidStatusAccepted)
	_, err := env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{Status: &accepted})
	require.NoError(t, err)

	// No further mutation of any kind once decided.
	_, err = env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{
		TechnicalScore: f64(10),
	})
	requireCode(t, err, apperrors.CodeBidLocked)

	rejected := string(models.BidStatusRejected)
	_, err = env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{Status: &rejected})
	requireCode(t, err, apperrors.CodeBidLocked)
}

func TestEvaluatorTransitions(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	// Drafts are not the evaluator's to move.
	draft, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	underReview := string(models.BidStatusUnderReview)
	_, err = env.bids.UpdateBid(actorFor(officer), draft.ID, &dto.UpdateBidRequest{Status: &underReview})
	requireCode(t, err, apperrors.CodeInvalidStatus)

	// submitted -> under_review -> accepted walks the machine.
	bid := env.submitBid(t, env.createUser(t, "b2@example.com", models.UserRoleBidder), tender)
	_, err = env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{Status: &underReview})
	require.NoError(t, err)

	back := string(models.BidStatusSubmitted)
	_, err = env.bids.UpdateBid(actorFor(officer), bid.ID, &dto.UpdateBidRequest{Status: &back})
	requireCode(t, err, apperrors.CodeInvalidStatus)
}

func TestGetBid_CrossBidderHidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", models.UserRoleBidder)
	stranger := env.createUser(t, "stranger@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(owner), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	// Owner and evaluator see it.
	_, err = env.bids.GetBid(actorFor(owner), bid.ID)
	require.NoError(t, err)
	_, err = env.bids.GetBid(actorFor(officer), bid.ID)
	require.NoError(t, err)

	// Another bidder gets 404, not 403.
	_, err = env.bids.GetBid(actorFor(stranger), bid.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestListBids_ScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", models.UserRoleBidder)
	bob := env.createUser(t, "bob@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	_, err := env.bids.CreateBid(actorFor(alice), &dto.CreateBidRequest{TenderID: tender.ID, BidAmount: 100})
	require.NoError(t, err)
	_, err = env.bids.CreateBid(actorFor(bob), &dto.CreateBidRequest{TenderID: tender.ID, BidAmount: 200})
	require.NoError(t, err)

	aliceList, err := env.bids.ListBids(actorFor(alice), dto.BidCriteria{})
	require.NoError(t, err)
	require.Len(t, aliceList.Bids, 1)
	assert.Equal(t, alice.ID, aliceList.Bids[0].BidderID)

	officerList, err := env.bids.ListBids(actorFor(officer), dto.BidCriteria{TenderID: tender.ID})
	require.NoError(t, err)
	assert.Len(t, officerList.Bids, 2)
	assert.Equal(t, int64(2), officerList.Total)
}

func TestDeleteBid(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	stranger := env.createUser(t, "stranger@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	requireCode(t, env.bids.DeleteBid(actorFor(stranger), bid.ID), apperrors.CodeNotFound)
	requireCode(t, env.bids.DeleteBid(actorFor(officer), bid.ID), apperrors.CodeForbidden)

	require.NoError(t, env.bids.DeleteBid(actorFor(bidder), bid.ID))
	_, err = env.bids.GetBid(actorFor(bidder), bid.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestDeleteBid_LockedAfterSubmit(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	bid := env.submitBid(t, bidder, tender)
	requireCode(t, env.bids.DeleteBid(actorFor(bidder), bid.ID), apperrors.CodeBidLocked)

	// The row is untouched.
	var count int64
	require.NoError(t, env.db.Model(&models.Bid{}).Where("id = ?", bid.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// A stale writer whose expected status no longer matches writes nothing.
func TestConditionalWrite_RaceLosesCleanly(t *testing.T) {
	env := newTestEnv(t)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	written, err := env.bidRepo.UpdateWhereStatus(bid.ID, models.BidStatusSubmitted,
		map[string]interface{}{"notes": "stale"})
	require.NoError(t, err)
	assert.False(t, written)

	fresh, err := env.bidRepo.FindByID(bid.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Notes)
	assert.Equal(t, models.BidStatusDraft, fresh.Status)
}

func (e *testEnv) submitBid(t *testing.T, bidder *models.User, tender *models.Tender) *models.Bid {
	t.Helper()

	bid, err := e.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID:  tender.ID,
		BidAmount: 100,
	})
	require.NoError(t, err)

	submitted := string(models.BidStatusSubmitted)
	updated, err := e.bids.UpdateBid(actorFor(bidder), bid.ID, &dto.UpdateBidRequest{
		Status: &submitted,
	})
	require.NoError(t, err)
	require.Equal(t, models.BidStatusSubmitted, updated.Status)
	return updated
}
