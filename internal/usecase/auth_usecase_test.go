package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"royalchat/internal/domain/entity"
	"royalchat/internal/infrastructure/ratelimit"
	"royalchat/pkg/errors"
)

func newAuthFixture(t *testing.T) (*AuthUseCase, *memUserRepo, *memOTPRepo, *fakeAuthClient, *fakeMailer) {
	t.Helper()

	userRepo := newMemUserRepo()
	otpRepo := newMemOTPRepo()
	authClient := newFakeAuthClient()
	mailer := &fakeMailer{}

	uc := NewAuthUseCase(userRepo, otpRepo, authClient, mailer, ratelimit.NewRateLimiter(), 10*time.Minute)
	return uc, userRepo, otpRepo, authClient, mailer
}

func registeredCode(t *testing.T, otpRepo *memOTPRepo, email string) string {
	t.Helper()

	otpRepo.mu.Lock()
	defer otpRepo.mu.Unlock()
	for _, otp := range otpRepo.otps {
		if otp.Email == email {
			return otp.Code
		}
	}
	t.Fatalf("no OTP issued for %s", email)
	return ""
}

func TestRegisterCreatesUnverifiedUserAndMailsOTP(t *testing.T) {
	uc, _, otpRepo, authClient, mailer := newAuthFixture(t)
	authClient.nextUID = "firebase-uid-abc123"

	user, err := uc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "firebase-uid-abc123", user.ID)
	assert.False(t, user.Verified)
	assert.Equal(t, "user", user.Role)
	assert.Equal(t, "ABC123", user.ReferralCode, "last six characters of the id, uppercased")

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].To)
	code := registeredCode(t, otpRepo, "alice@example.com")
	assert.Len(t, code, 6)
	assert.Contains(t, mailer.sent[0].HTML, code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	uc, userRepo, _, _, _ := newAuthFixture(t)
	require.NoError(t, userRepo.Create(context.Background(), &entity.User{ID: "u1", Email: "taken@example.com"}))

	_, err := uc.Register(context.Background(), RegisterInput{
		Name:     "Copycat",
		Email:    "taken@example.com",
		Password: "secret123",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestRegisterCreditsReferrer(t *testing.T) {
	uc, userRepo, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	referrer := &entity.User{ID: "referrer-1", Email: "ref@example.com", ReferralCode: "REF001"}
	require.NoError(t, userRepo.Create(ctx, referrer))

	user, err := uc.Register(ctx, RegisterInput{
		Name:         "Newbie",
		Email:        "new@example.com",
		Password:     "secret123",
		ReferralCode: "REF001",
	})
	require.NoError(t, err)

	assert.Equal(t, "referrer-1", user.ReferredBy)

	updated, err := userRepo.GetByID(ctx, "referrer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(referralReward), updated.Balance)
	assert.Contains(t, updated.Referrals, user.ID)
}

func TestRegisterStoreFailureLeavesReferrerUntouched(t *testing.T) {
	uc, userRepo, _, authClient, _ := newAuthFixture(t)
	ctx := context.Background()

	referrer := &entity.User{ID: "referrer-1", Email: "ref@example.com", ReferralCode: "REF001"}
	require.NoError(t, userRepo.Create(ctx, referrer))

	authClient.nextUID = "doomed-uid"
	userRepo.createErr = fmt.Errorf("firestore unavailable")

	_, err := uc.Register(ctx, RegisterInput{
		Name:         "Newbie",
		Email:        "new@example.com",
		Password:     "secret123",
		ReferralCode: "REF001",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "INTERNAL_ERROR"))

	assert.Zero(t, referrer.Balance, "no reward until the account is durable")
	assert.Empty(t, referrer.Referrals)
	assert.Contains(t, authClient.deleted, "doomed-uid", "the orphaned auth account is removed")
}

func TestRegisterIgnoresUnknownReferralCode(t *testing.T) {
	uc, _, _, _, _ := newAuthFixture(t)

	user, err := uc.Register(context.Background(), RegisterInput{
		Name:         "Solo",
		Email:        "solo@example.com",
		Password:     "secret123",
		ReferralCode: "NOSUCH",
	})

	require.NoError(t, err, "a bad referral code never blocks registration")
	assert.Empty(t, user.ReferredBy)
}

func TestVerifyOTPMarksAccountVerified(t *testing.T) {
	uc, userRepo, otpRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := uc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	code := registeredCode(t, otpRepo, "alice@example.com")
	require.NoError(t, uc.VerifyOTP(ctx, "alice@example.com", code))

	verified, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	err = uc.VerifyOTP(ctx, "alice@example.com", code)
	assert.Error(t, err, "a consumed code cannot be replayed")
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	uc, _, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	err = uc.VerifyOTP(ctx, "alice@example.com", "000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestVerifyOTPRejectsExpiredCode(t *testing.T) {
	userRepo := newMemUserRepo(&entity.User{ID: "u1", Email: "slow@example.com"})
	otpRepo := newMemOTPRepo()
	uc := NewAuthUseCase(userRepo, otpRepo, newFakeAuthClient(), &fakeMailer{}, ratelimit.NewRateLimiter(), 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, otpRepo.Upsert(ctx, &entity.OTP{
		Email:     "slow@example.com",
		Code:      "123456",
		Purpose:   entity.OTPPurposeRegister,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	err := uc.VerifyOTP(ctx, "slow@example.com", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestLoginRejectsUnverifiedAccount(t *testing.T) {
	uc, _, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, "alice@example.com", "secret123")
	require.Error(t, err, "correct credentials are not enough before verification")
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestLoginAfterVerification(t *testing.T) {
	uc, _, otpRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := uc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, uc.VerifyOTP(ctx, "alice@example.com", registeredCode(t, otpRepo, "alice@example.com")))

	result, err := uc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	_, err = uc.Login(ctx, "alice@example.com", "wrongpass")
	assert.Error(t, err)
}

func TestResendOTPInvalidatesPreviousCode(t *testing.T) {
	uc, _, otpRepo, _, mailer := newAuthFixture(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	firstCode := registeredCode(t, otpRepo, "alice@example.com")

	require.NoError(t, uc.ResendOTP(ctx, "alice@example.com", entity.OTPPurposeRegister))
	require.Len(t, mailer.sent, 2)

	otpRepo.mu.Lock()
	count := len(otpRepo.otps)
	otpRepo.mu.Unlock()
	assert.Equal(t, 1, count, "a resend replaces the previous code")

	secondCode := registeredCode(t, otpRepo, "alice@example.com")
	if firstCode == secondCode {
		t.Skip("codes collided; nothing to assert about invalidation")
	}
	assert.Error(t, uc.VerifyOTP(ctx, "alice@example.com", firstCode))
}

func TestResendOTPRejectsVerifiedAccount(t *testing.T) {
	uc, userRepo, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, userRepo.Create(ctx, &entity.User{ID: "u1", Email: "done@example.com", Verified: true}))

	err := uc.ResendOTP(ctx, "done@example.com", entity.OTPPurposeRegister)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestPasswordResetFlow(t *testing.T) {
	uc, _, otpRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "oldpass1"})
	require.NoError(t, err)
	require.NoError(t, uc.VerifyOTP(ctx, "alice@example.com", registeredCode(t, otpRepo, "alice@example.com")))

	require.NoError(t, uc.ForgotPassword(ctx, "alice@example.com"))
	resetCode := registeredCode(t, otpRepo, "alice@example.com")

	require.NoError(t, uc.ResetPassword(ctx, "alice@example.com", resetCode, "newpass1"))

	_, err = uc.Login(ctx, "alice@example.com", "oldpass1")
	assert.Error(t, err)
	_, err = uc.Login(ctx, "alice@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	uc, _, _, _, _ := newAuthFixture(t)

	err := uc.ForgotPassword(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestChangePasswordChecksOldPassword(t *testing.T) {
	uc, _, otpRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := uc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "oldpass1"})
	require.NoError(t, err)
	require.NoError(t, uc.VerifyOTP(ctx, "alice@example.com", registeredCode(t, otpRepo, "alice@example.com")))

	err = uc.ChangePassword(ctx, user.ID, "wrongold", "newpass1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))

	require.NoError(t, uc.ChangePassword(ctx, user.ID, "oldpass1", "newpass1"))

	_, err = uc.Login(ctx, "alice@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestOTPMailFailureSurfaces(t *testing.T) {
	uc, _, _, _, mailer := newAuthFixture(t)
	mailer.fail = true

	_, err := uc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, "INTERNAL_ERROR"))
}

func TestGenerateOTPCodeShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}
