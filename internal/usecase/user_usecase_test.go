package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"royalchat/internal/domain/entity"
	"royalchat/pkg/errors"
)

func TestGetProfile(t *testing.T) {
	userRepo := newMemUserRepo(&entity.User{
		ID: "user-1", Name: "Alice", Email: "alice@example.com",
		Referrals: []string{"a", "b"},
	})
	uc := NewUserUseCase(userRepo, newMemMessageRepo())

	profile, err := uc.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, 2, profile.ReferralsCount)

	_, err = uc.GetProfile(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestUpdateProfileOnlyTouchesProvidedFields(t *testing.T) {
	userRepo := newMemUserRepo(&entity.User{
		ID: "user-1", Name: "Alice", Photo: "https://cdn.example.com/old.png",
	})
	uc := NewUserUseCase(userRepo, newMemMessageRepo())

	user, err := uc.UpdateProfile(context.Background(), "user-1", UpdateProfileInput{Name: "Alicia"})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.Name)
	assert.Equal(t, "https://cdn.example.com/old.png", user.Photo, "an omitted field keeps its value")
}
