package repository

import (
	"context"
	"time"

	"royalchat/internal/domain/entity"
)

type OTPRepository interface {
	// Upsert replaces any existing code for the same email+purpose so a
	// resend invalidates the previous one.
	Upsert(ctx context.Context, otp *entity.OTP) error
	GetByEmailAndCode(ctx context.Context, email, code string) (*entity.OTP, error)
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every code that expired before the cutoff
	// and returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
