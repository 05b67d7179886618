package services_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/services"
	"procura_backend/internal/services/dto"
	"procura_backend/internal/storage"
	"procura_backend/pkg/apperrors"
)

func newAttachmentService(t *testing.T, env *testEnv) services.AttachmentService {
	t.Helper()

	store, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	return services.NewAttachmentService(
		repositories.NewAttachmentRepository(env.db),
		env.bidRepo,
		store,
		services.UploadLimits{
			MaxSize:      1024,
			AllowedTypes: []string{"application/pdf"},
		},
	)
}

func TestAttachmentUploadAndDownload(t *testing.T) {
	env := newTestEnv(t)
	svc := newAttachmentService(t, env)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	body := strings.NewReader("%PDF-1.4 technical proposal")
	attachment, err := svc.Upload(context.Background(), actorFor(bidder),
		bid.ID, "proposal.pdf", "application/pdf", int64(body.Len()), body)
	require.NoError(t, err)
	assert.Equal(t, "proposal.pdf", attachment.FileName)

	// Evaluators can read but not the stranger.
	list, err := svc.List(actorFor(officer), bid.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	stranger := env.createUser(t, "stranger@example.com", models.UserRoleBidder)
	_, err = svc.List(actorFor(stranger), bid.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	got, reader, err := svc.Download(context.Background(), actorFor(bidder), attachment.ID)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(content), "technical proposal")
	assert.Equal(t, attachment.ID, got.ID)
}

func TestAttachmentUpload_Limits(t *testing.T) {
	env := newTestEnv(t)
	svc := newAttachmentService(t, env)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), actorFor(bidder),
		bid.ID, "big.pdf", "application/pdf", 2048, strings.NewReader("x"))
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = svc.Upload(context.Background(), actorFor(bidder),
		bid.ID, "script.sh", "application/x-sh", 10, strings.NewReader("x"))
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestAttachmentUpload_LockedAfterSubmit(t *testing.T) {
	env := newTestEnv(t)
	svc := newAttachmentService(t, env)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	bid := env.submitBid(t, bidder, tender)

	_, err := svc.Upload(context.Background(), actorFor(bidder),
		bid.ID, "late.pdf", "application/pdf", 10, strings.NewReader("x"))
	requireCode(t, err, apperrors.CodeBidLocked)
}

func TestAttachmentDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := newAttachmentService(t, env)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)
	tender := env.createTender(t)

	bid, err := env.bids.CreateBid(actorFor(bidder), &dto.CreateBidRequest{
		TenderID: tender.ID, BidAmount: 100,
	})
	require.NoError(t, err)

	attachment, err := svc.Upload(context.Background(), actorFor(bidder),
		bid.ID, "doc.pdf", "application/pdf", 10, strings.NewReader("0123456789"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), actorFor(bidder), attachment.ID))

	list, err := svc.List(actorFor(bidder), bid.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
