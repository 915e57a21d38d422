package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"royalchat/internal/domain/entity"
	"royalchat/internal/domain/repository"
	"royalchat/internal/domain/service"
	"royalchat/internal/infrastructure/ratelimit"
	"royalchat/pkg/errors"
	"royalchat/pkg/logger"
)

const referralReward = 10

type AuthUseCase struct {
	userRepo     repository.UserRepository
	otpRepo      repository.OTPRepository
	firebaseAuth FirebaseAuthClient
	mailer       service.MailService
	rateLimiter  *ratelimit.RateLimiter
	otpExpiry    time.Duration
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	firebaseAuth FirebaseAuthClient,
	mailer service.MailService,
	rateLimiter *ratelimit.RateLimiter,
	otpExpiry time.Duration,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		otpRepo:      otpRepo,
		firebaseAuth: firebaseAuth,
		mailer:       mailer,
		rateLimiter:  rateLimiter,
		otpExpiry:    otpExpiry,
	}
}

type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Photo        string
	ReferralCode string
}

type AuthResult struct {
	User  *entity.User
	Token string
}

// Register creates an unverified account and mails a one-time code. No
// token is issued until the account is verified.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	existing, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, errors.BadRequest("User already exists", nil)
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		return nil, errors.Internal("Failed to create user in authentication provider", err)
	}

	user := &entity.User{
		ID:       uid,
		Email:    input.Email,
		Name:     input.Name,
		Photo:    input.Photo,
		Role:     "user",
		Verified: false,
		// Last six characters of the id, matching what users already
		// share as their invite code.
		ReferralCode: referralCodeFor(uid),
	}

	var referrer *entity.User
	if input.ReferralCode != "" {
		referrer, err = uc.userRepo.GetByReferralCode(ctx, input.ReferralCode)
		if err == nil && referrer != nil {
			user.ReferredBy = referrer.ID
		} else {
			referrer = nil
		}
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		// Remove the auth account so the email can register again.
		if delErr := uc.firebaseAuth.DeleteUser(ctx, uid); delErr != nil {
			logger.Warn("Register: failed to delete auth account %s after store failure: %v", uid, delErr)
		}
		return nil, errors.Internal("Failed to create user record", err)
	}

	// Credit the referrer only once the account is durable.
	if referrer != nil {
		referrer.Referrals = append(referrer.Referrals, uid)
		referrer.Balance += referralReward
		if err := uc.userRepo.Update(ctx, referrer); err != nil {
			logger.Warn("Register: failed to credit referrer %s: %v", referrer.ID, err)
		}
	}

	if err := uc.issueOTP(ctx, user.Email, entity.OTPPurposeRegister); err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyOTP consumes a registration code and marks the account verified.
func (uc *AuthUseCase) VerifyOTP(ctx context.Context, email, code string) error {
	otp, err := uc.consumeOTP(ctx, email, code, entity.OTPPurposeRegister)
	if err != nil {
		return err
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return errors.NotFound("User", err)
	}

	user.Verified = true
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return errors.Internal("Failed to mark account verified", err)
	}

	if err := uc.otpRepo.Delete(ctx, otp.ID); err != nil {
		logger.Warn("VerifyOTP: failed to delete consumed OTP: %v", err)
	}

	return nil
}

// Login rejects unverified accounts even when the credentials are right.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	token, err := uc.firebaseAuth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	uid, err := uc.firebaseAuth.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Internal("Failed to verify token", err)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	if !user.Verified {
		return nil, errors.Unauthorized("Please verify your account first", nil)
	}

	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}

// ResendOTP issues a fresh code, invalidating the previous one.
func (uc *AuthUseCase) ResendOTP(ctx context.Context, email, purpose string) error {
	if purpose != entity.OTPPurposeRegister && purpose != entity.OTPPurposePasswordReset {
		return errors.BadRequest("Unknown OTP purpose", nil)
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return errors.NotFound("User", err)
	}

	if purpose == entity.OTPPurposeRegister && user.Verified {
		return errors.BadRequest("User already verified", nil)
	}

	return uc.issueOTP(ctx, email, purpose)
}

// ForgotPassword starts the OTP-based reset flow.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, email string) error {
	if _, err := uc.userRepo.GetByEmail(ctx, email); err != nil {
		return errors.NotFound("User", err)
	}

	return uc.issueOTP(ctx, email, entity.OTPPurposePasswordReset)
}

// ResetPassword consumes a reset code and updates the credential store.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	otp, err := uc.consumeOTP(ctx, email, code, entity.OTPPurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return errors.NotFound("User", err)
	}

	if err := uc.firebaseAuth.UpdateUserPassword(ctx, user.ID, newPassword); err != nil {
		return errors.Internal("Failed to update password", err)
	}

	if err := uc.otpRepo.Delete(ctx, otp.ID); err != nil {
		logger.Warn("ResetPassword: failed to delete consumed OTP: %v", err)
	}

	return nil
}

// ChangePassword re-checks the old password against the credential store
// before updating.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.NotFound("User", err)
	}

	if _, err := uc.firebaseAuth.SignInWithEmailPassword(user.Email, oldPassword); err != nil {
		return errors.Unauthorized("Old password is incorrect", err)
	}

	if err := uc.firebaseAuth.UpdateUserPassword(ctx, userID, newPassword); err != nil {
		return errors.Internal("Failed to update password", err)
	}

	return nil
}

func (uc *AuthUseCase) issueOTP(ctx context.Context, email, purpose string) error {
	allowed, _ := uc.rateLimiter.Allow(email, "send_otp")
	if !allowed {
		return errors.TooManyRequests("Too many OTP requests. Please wait before requesting another code.")
	}

	code, err := generateOTPCode()
	if err != nil {
		return errors.Internal("Failed to generate OTP", err)
	}

	otp := &entity.OTP{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(uc.otpExpiry),
	}

	if err := uc.otpRepo.Upsert(ctx, otp); err != nil {
		return err
	}

	subject := "Verify your account"
	if purpose == entity.OTPPurposePasswordReset {
		subject = "Your OTP for Password Reset"
	}

	if err := uc.mailer.Send(email, subject, otpEmailHTML(code, purpose)); err != nil {
		return errors.Internal("Failed to send OTP email", err)
	}

	return nil
}

func (uc *AuthUseCase) consumeOTP(ctx context.Context, email, code, purpose string) (*entity.OTP, error) {
	otp, err := uc.otpRepo.GetByEmailAndCode(ctx, email, code)
	if err != nil {
		return nil, errors.BadRequest("Invalid OTP", nil)
	}

	if otp.Purpose != purpose {
		return nil, errors.BadRequest("Invalid OTP", nil)
	}

	if otp.Expired(time.Now()) {
		if err := uc.otpRepo.Delete(ctx, otp.ID); err != nil {
			logger.Warn("consumeOTP: failed to delete expired OTP: %v", err)
		}
		return nil, errors.BadRequest("OTP expired", nil)
	}

	return otp, nil
}

func generateOTPCode() (string, error) {
	// 6-digit code, uniformly drawn from [100000, 999999].
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func referralCodeFor(uid string) string {
	if len(uid) <= 6 {
		return strings.ToUpper(uid)
	}
	return strings.ToUpper(uid[len(uid)-6:])
}

func otpEmailHTML(code, purpose string) string {
	heading := "Crypto Royal - OTP"
	line := "Your OTP code is:"
	if purpose == entity.OTPPurposePasswordReset {
		heading = "Crypto Royal - Password Reset"
		line = "Your OTP to reset your password is:"
	}

	return fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; text-align: center; padding: 20px;">
        <h2 style="color:#4b0082;">%s</h2>
        <p>%s</p>
        <h1 style="color:#ff6600;">%s</h1>
        <p>It will expire in 10 minutes.</p>
      </div>
    `, heading, line, code)
}
