package entity

import "time"

type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	Name     string `json:"name" firestore:"name"`
	Photo    string `json:"photo,omitempty" firestore:"photo,omitempty"`
	Role     string `json:"role" firestore:"role"` // "user" or "admin"
	Verified bool   `json:"is_verified" firestore:"isVerified"`

	ReferralCode string   `json:"referral_code,omitempty" firestore:"referralCode,omitempty"`
	ReferredBy   string   `json:"referred_by,omitempty" firestore:"referredBy,omitempty"`
	Referrals    []string `json:"referrals,omitempty" firestore:"referrals,omitempty"`
	Balance      int64    `json:"balance" firestore:"balance"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// DisplayUser is the minimal participant view embedded in conversation
// responses: display name plus avatar reference, never the full record.
type DisplayUser struct {
	ID    string `json:"id" firestore:"id"`
	Name  string `json:"name" firestore:"name"`
	Photo string `json:"photo,omitempty" firestore:"photo,omitempty"`
}

func (u *User) Display() *DisplayUser {
	return &DisplayUser{
		ID:    u.ID,
		Name:  u.Name,
		Photo: u.Photo,
	}
}
