package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"royalchat/internal/domain/entity"
	"royalchat/internal/domain/repository"
	"royalchat/pkg/errors"
	"royalchat/pkg/logger"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	message.CreatedAt = time.Now()
	message.Read = false

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	doc, err := r.client.Collection("messages").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}

	return &message, nil
}

// ListBetween runs one query per direction and merges in memory: Firestore
// cannot express the OR over the unordered sender/receiver pair.
func (r *firestoreMessageRepository) ListBetween(ctx context.Context, a, b string) ([]*entity.Message, error) {
	var messages []*entity.Message

	for _, pair := range [][2]string{{a, b}, {b, a}} {
		query := r.client.Collection("messages").
			Where("senderId", "==", pair[0]).
			Where("receiverId", "==", pair[1])

		iter := query.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				logger.Error("Firestore error while listing messages between %s and %s: %v", a, b, err)
				return nil, errors.Internal("Failed to list messages", err)
			}

			var message entity.Message
			if err := doc.DataTo(&message); err != nil {
				return nil, errors.Internal("Failed to parse message data", err)
			}
			messages = append(messages, &message)
		}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

func (r *firestoreMessageRepository) MarkAllRead(ctx context.Context, from, to string) error {
	query := r.client.Collection("messages").
		Where("senderId", "==", from).
		Where("receiverId", "==", to).
		Where("read", "==", false)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return errors.Internal("Failed to query unread messages", err)
	}

	for _, doc := range docs {
		if _, err := doc.Ref.Update(ctx, []firestore.Update{
			{Path: "read", Value: true},
		}); err != nil {
			return errors.Internal("Failed to mark message as read", err)
		}
	}

	return nil
}

// SoftDelete runs in a transaction so a concurrent read-ack or a second
// delete cannot race the terminal state transition.
func (r *firestoreMessageRepository) SoftDelete(ctx context.Context, id string) (*entity.Message, error) {
	docRef := r.client.Collection("messages").Doc(id)
	var updated entity.Message

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return err
		}

		if message.Deleted() {
			updated = message
			return nil
		}

		message.Body = entity.DeletedBody
		message.FileURL = ""
		message.Type = entity.MessageTypeDeleted
		updated = message

		return tx.Set(docRef, &message)
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to delete message", err)
	}

	return &updated, nil
}

func (r *firestoreMessageRepository) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	query := r.client.Collection("messages").
		Where("receiverId", "==", receiverID).
		Where("read", "==", false)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}

	return int64(len(docs)), nil
}

func (r *firestoreMessageRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	for _, field := range []string{"senderId", "receiverId"} {
		query := r.client.Collection("messages").Where(field, "==", userID)

		docs, err := query.Documents(ctx).GetAll()
		if err != nil {
			return errors.Internal("Failed to query user messages", err)
		}

		for _, doc := range docs {
			if _, err := doc.Ref.Delete(ctx); err != nil {
				return errors.Internal("Failed to delete user message", err)
			}
		}
	}

	return nil
}
