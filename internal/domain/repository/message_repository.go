package repository

import (
	"context"

	"royalchat/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)

	// ListBetween returns every message exchanged between the unordered
	// pair {a, b}, ascending by creation time.
	ListBetween(ctx context.Context, a, b string) ([]*entity.Message, error)

	// MarkAllRead flags every unread message with sender=from and
	// receiver=to as read. Direction-specific and idempotent.
	MarkAllRead(ctx context.Context, from, to string) error

	// SoftDelete atomically moves a message into its terminal deleted
	// state and returns the updated record. A no-op on an already
	// deleted message.
	SoftDelete(ctx context.Context, id string) (*entity.Message, error)

	CountUnread(ctx context.Context, receiverID string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}
