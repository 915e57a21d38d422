package usecase

import "context"

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	SignInWithEmailPassword(email, password string) (string, error)
	UpdateUserPassword(ctx context.Context, uid, newPassword string) error
	DeleteUser(ctx context.Context, uid string) error
}

// Publisher is the push side of the presence registry. Publishing to a
// participant with no joined connections is a silent no-op (offline), so
// callers never treat it as a failure.
type Publisher interface {
	Publish(participantID, event string, data interface{})
}
