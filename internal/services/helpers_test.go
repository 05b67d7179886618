package services_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/services"
	"procura_backend/pkg/apperrors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Tender{},
		&models.Bid{},
		&models.BidAttachment{},
		&models.Notification{},
	))
	return db
}

// captureMailer records decision emails instead of sending them.
type captureMailer struct {
	sent []capturedMail
}

type capturedMail struct {
	To         string
	Status     models.BidStatus
	TotalScore *float64
}

func (m *captureMailer) SendBidDecision(toEmail, fullName, tenderTitle string, status models.BidStatus, totalScore *float64) error {
	m.sent = append(m.sent, capturedMail{To: toEmail, Status: status, TotalScore: totalScore})
	return nil
}

type testEnv struct {
	db *gorm.DB

	userRepo         repositories.UserRepository
	tenderRepo       repositories.TenderRepository
	bidRepo          repositories.BidRepository
	notificationRepo repositories.NotificationRepository

	notifications services.NotificationService
	bids          services.BidService
	tenders       services.TenderService
	auth          services.AuthService
	users         services.UserService

	mailer *captureMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)

	env := &testEnv{
		db:               db,
		userRepo:         repositories.NewUserRepository(db),
		tenderRepo:       repositories.NewTenderRepository(db),
		bidRepo:          repositories.NewBidRepository(db),
		notificationRepo: repositories.NewNotificationRepository(db),
		mailer:           &captureMailer{},
	}

	env.notifications = services.NewNotificationService(env.notificationRepo, nil)
	env.bids = services.NewBidService(env.bidRepo, env.tenderRepo, env.userRepo, env.notifications, env.mailer)
	env.auth = services.NewAuthService(env.userRepo, env.notifications)
	env.users = services.NewUserService(env.userRepo)
	return env
}

func (e *testEnv) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		FullName:     "Test " + string(role),
	}
	require.NoError(t, e.userRepo.Create(user))
	return user
}

func (e *testEnv) createTender(t *testing.T, mutate ...func(*models.Tender)) *models.Tender {
	t.Helper()
	tender := &models.Tender{
		SecopID:     "SECOP-" + strings.ReplaceAll(t.Name(), "/", "_") + fmt.Sprint(time.Now().UnixNano()),
		Title:       "Road maintenance",
		BuyerName:   "Instituto Nacional de Vías",
		TenderValue: 1_000_000,
		Currency:    "COP",
		Status:      models.TenderStatusOpen,
		PublishedAt: time.Now().Add(-24 * time.Hour),
		ClosingAt:   time.Now().Add(48 * time.Hour),
	}
	for _, m := range mutate {
		m(tender)
	}
	require.NoError(t, e.tenderRepo.Create(tender))
	return tender
}

func actorFor(u *models.User) models.Actor {
	return models.Actor{UserID: u.ID, Role: u.Role}
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code, "unexpected error code: %v", appErr)
}

func f64(v float64) *float64 { return &v }

func str(v string) *string { return &v }
