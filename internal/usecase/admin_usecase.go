package usecase

import (
	"context"

	"royalchat/internal/domain/entity"
	"royalchat/internal/domain/repository"
	ws "royalchat/internal/infrastructure/websocket"
	"royalchat/pkg/errors"
	"royalchat/pkg/logger"
)

type AdminUseCase struct {
	userRepo     repository.UserRepository
	messageRepo  repository.MessageRepository
	firebaseAuth FirebaseAuthClient
	publisher    Publisher
}

func NewAdminUseCase(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	firebaseAuth FirebaseAuthClient,
	publisher Publisher,
) *AdminUseCase {
	return &AdminUseCase{
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		firebaseAuth: firebaseAuth,
		publisher:    publisher,
	}
}

type UserListEntry struct {
	*entity.User
	Unread int64 `json:"unread"`
}

type AdminStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalReferrals int64 `json:"referrals"`
}

func (uc *AdminUseCase) GetAllUsers(ctx context.Context) ([]*entity.User, error) {
	return uc.userRepo.ListUsers(ctx)
}

// Me returns the profile of the admin making the request.
func (uc *AdminUseCase) Me(ctx context.Context, adminID string) (*entity.User, error) {
	admin, err := uc.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, errors.NotFound("Admin", err)
	}
	return admin, nil
}

// GetUsersList is the dashboard view: every regular user with the number
// of their messages the admin has not read yet.
func (uc *AdminUseCase) GetUsersList(ctx context.Context) ([]*UserListEntry, error) {
	users, err := uc.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*UserListEntry, 0, len(users))
	for _, user := range users {
		unread, err := uc.messageRepo.CountUnread(ctx, user.ID)
		if err != nil {
			logger.Warn("GetUsersList: failed to count unread for %s: %v", user.ID, err)
			unread = 0
		}
		entries = append(entries, &UserListEntry{
			User:   user,
			Unread: unread,
		})
	}

	return entries, nil
}

func (uc *AdminUseCase) GetStats(ctx context.Context) (*AdminStats, error) {
	total, err := uc.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	users, err := uc.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var referrals int64
	for _, user := range users {
		referrals += int64(len(user.Referrals))
	}

	return &AdminStats{
		TotalUsers:     total,
		TotalReferrals: referrals,
	}, nil
}

// RemoveUser revokes an account: credential store entry, user record and
// message history go away, then the participant's room gets an advisory
// removed event. The registry does not force-close their connections.
func (uc *AdminUseCase) RemoveUser(ctx context.Context, userID string) error {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return errors.NotFound("User", err)
	}

	if err := uc.firebaseAuth.DeleteUser(ctx, userID); err != nil {
		logger.Warn("RemoveUser: failed to delete auth record for %s: %v", userID, err)
	}

	if err := uc.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	if err := uc.messageRepo.DeleteAllForUser(ctx, userID); err != nil {
		logger.Warn("RemoveUser: failed to purge messages for %s: %v", userID, err)
	}

	uc.publisher.Publish(userID, ws.EventRemoved, nil)

	return nil
}
