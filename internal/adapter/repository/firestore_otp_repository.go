package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"royalchat/internal/domain/entity"
	"royalchat/internal/domain/repository"
	"royalchat/pkg/errors"
)

type firestoreOTPRepository struct {
	client *firestore.Client
}

func NewFirestoreOTPRepository(client *firestore.Client) repository.OTPRepository {
	return &firestoreOTPRepository{
		client: client,
	}
}

func (r *firestoreOTPRepository) Upsert(ctx context.Context, otp *entity.OTP) error {
	// Drop any previous code for this email+purpose first so only the
	// newest one is accepted.
	query := r.client.Collection("otps").
		Where("email", "==", otp.Email).
		Where("purpose", "==", otp.Purpose)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return errors.Internal("Failed to query existing OTP", err)
	}
	for _, doc := range docs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return errors.Internal("Failed to replace existing OTP", err)
		}
	}

	if otp.ID == "" {
		otp.ID = uuid.New().String()
	}
	otp.CreatedAt = time.Now()

	if _, err := r.client.Collection("otps").Doc(otp.ID).Set(ctx, otp); err != nil {
		return errors.Internal("Failed to store OTP", err)
	}

	return nil
}

func (r *firestoreOTPRepository) GetByEmailAndCode(ctx context.Context, email, code string) (*entity.OTP, error) {
	query := r.client.Collection("otps").
		Where("email", "==", email).
		Where("code", "==", code).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("OTP", nil)
		}
		return nil, errors.Internal("Failed to query OTP", err)
	}

	var otp entity.OTP
	if err := doc.DataTo(&otp); err != nil {
		return nil, errors.Internal("Failed to parse OTP data", err)
	}

	return &otp, nil
}

func (r *firestoreOTPRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("otps").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete OTP", err)
	}

	return nil
}

func (r *firestoreOTPRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.client.Collection("otps").Where("expiresAt", "<", cutoff)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to query expired OTPs", err)
	}

	var removed int64
	for _, doc := range docs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return removed, errors.Internal("Failed to delete expired OTP", err)
		}
		removed++
	}

	return removed, nil
}
