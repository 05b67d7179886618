package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura_backend/internal/models"
	"procura_backend/internal/services/dto"
	"procura_backend/pkg/apperrors"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.Register(&dto.RegisterRequest{
		Email:    "new@example.com",
		Password: "correct-horse",
		FullName: "New Bidder",
		Role:     "bidder",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.UserRoleBidder, resp.User.Role)

	// Registration writes a welcome entry to the ledger.
	count, err := env.notifications.UnreadCount(actorFor(resp.User))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(&dto.RegisterRequest{
		Email:    "sneaky@example.com",
		Password: "correct-horse",
		FullName: "Sneaky",
		Role:     "administrator",
	})
	requireCode(t, err, apperrors.CodeInvalidOperation)
}

func TestRegister_EmailTaken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "taken@example.com", models.UserRoleBidder)

	_, err := env.auth.Register(&dto.RegisterRequest{
		Email:    "taken@example.com",
		Password: "correct-horse",
		FullName: "Dup",
		Role:     "bidder",
	})
	requireCode(t, err, apperrors.CodeAlreadyExists)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(&dto.RegisterRequest{
		Email:    "login@example.com",
		Password: "correct-horse",
		FullName: "Login User",
		Role:     "procurement_officer",
	})
	require.NoError(t, err)

	resp, err := env.auth.Login(&dto.LoginRequest{
		Email:    "login@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.UserRoleOfficer, resp.User.Role)
}

// Wrong password and unknown email answer identically.
func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(&dto.RegisterRequest{
		Email:    "login@example.com",
		Password: "correct-horse",
		FullName: "Login User",
		Role:     "bidder",
	})
	require.NoError(t, err)

	_, wrongPass := env.auth.Login(&dto.LoginRequest{Email: "login@example.com", Password: "nope"})
	requireCode(t, wrongPass, apperrors.CodeInvalidCredentials)

	_, unknown := env.auth.Login(&dto.LoginRequest{Email: "ghost@example.com", Password: "nope"})
	requireCode(t, unknown, apperrors.CodeInvalidCredentials)

	var a, b *apperrors.AppError
	require.ErrorAs(t, wrongPass, &a)
	require.ErrorAs(t, unknown, &b)
	assert.Equal(t, a.Message, b.Message)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "me@example.com", models.UserRoleBidder)

	got, err := env.auth.Me(actorFor(user))
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}
