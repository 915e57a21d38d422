package entity

import "time"

// OTP purposes. A register OTP verifies a fresh account; a password reset
// OTP authorizes a password change.
const (
	OTPPurposeRegister      = "register"
	OTPPurposePasswordReset = "password_reset"
)

type OTP struct {
	ID        string    `json:"id" firestore:"id"`
	Email     string    `json:"email" firestore:"email"`
	Code      string    `json:"code" firestore:"code"`
	Purpose   string    `json:"purpose" firestore:"purpose"`
	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

func (o *OTP) Expired(now time.Time) bool {
	return o.ExpiresAt.Before(now)
}
