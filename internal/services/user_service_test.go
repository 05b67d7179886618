package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura_backend/internal/models"
	"procura_backend/internal/services/dto"
	"procura_backend/pkg/apperrors"
)

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@example.com", models.UserRoleBidder)

	updated, err := env.users.UpdateProfile(actorFor(user), &dto.UpdateProfileRequest{
		FullName:    str("Renamed"),
		CompanyName: str("ACME Ltda"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FullName)
	require.NotNil(t, updated.CompanyName)
	assert.Equal(t, "ACME Ltda", *updated.CompanyName)
	assert.Equal(t, models.UserRoleBidder, updated.Role)
}

func TestChangeRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.UserRoleAdministrator)
	officer := env.createUser(t, "officer@example.com", models.UserRoleOfficer)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)

	// Only administrators.
	_, err := env.users.ChangeRole(actorFor(officer), bidder.ID, &dto.ChangeRoleRequest{Role: "procurement_officer"})
	requireCode(t, err, apperrors.CodeForbidden)

	// Not on themselves.
	_, err = env.users.ChangeRole(actorFor(admin), admin.ID, &dto.ChangeRoleRequest{Role: "bidder"})
	requireCode(t, err, apperrors.CodeInvalidOperation)

	updated, err := env.users.ChangeRole(actorFor(admin), bidder.ID, &dto.ChangeRoleRequest{Role: "procurement_officer"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleOfficer, updated.Role)

	_, err = env.users.ChangeRole(actorFor(admin), "missing-id", &dto.ChangeRoleRequest{Role: "bidder"})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestListUsers_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.UserRoleAdministrator)
	bidder := env.createUser(t, "bidder@example.com", models.UserRoleBidder)

	_, err := env.users.ListUsers(actorFor(bidder), 1, 20)
	requireCode(t, err, apperrors.CodeForbidden)

	list, err := env.users.ListUsers(actorFor(admin), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
}
