package usecase

import (
	"context"

	"royalchat/internal/domain/entity"
	"royalchat/internal/domain/repository"
	"royalchat/pkg/errors"
)

type UserUseCase struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
}

func NewUserUseCase(userRepo repository.UserRepository, messageRepo repository.MessageRepository) *UserUseCase {
	return &UserUseCase{
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

type UpdateProfileInput struct {
	Name  string
	Photo string
}

type ProfileResponse struct {
	*entity.User
	ReferralsCount int `json:"referralsCount"`
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	return &ProfileResponse{
		User:           user,
		ReferralsCount: len(user.Referrals),
	}, nil
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Photo != "" {
		user.Photo = input.Photo
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Internal("Failed to update user profile", err)
	}

	return user, nil
}

func (uc *UserUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return uc.messageRepo.CountUnread(ctx, userID)
}
