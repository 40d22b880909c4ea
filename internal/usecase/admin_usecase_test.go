package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelmarket/internal/domain/entity"
	"channelmarket/pkg/errors"
)

func TestSetUserRole(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminUseCase(env.userRepo, env.alertRepo)

	require.NoError(t, env.userRepo.Create(context.Background(), &entity.User{ID: "user-1", Username: "sam"}))

	user, err := admin.SetUserRole(context.Background(), "user-1", "agent")
	require.NoError(t, err)
	assert.True(t, user.IsAgent())

	// Demote back to a regular user.
	user, err = admin.SetUserRole(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.False(t, user.IsAgent())
}

func TestSetUserRoleUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminUseCase(env.userRepo, env.alertRepo)

	_, err := admin.SetUserRole(context.Background(), "user-1", "superuser")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}
