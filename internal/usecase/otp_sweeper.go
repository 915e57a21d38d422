package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"royalchat/internal/domain/repository"
	"royalchat/pkg/logger"
)

// OTPSweeper periodically removes expired one-time codes on a cron
// schedule. Codes are also rejected at verification time when expired, so
// the sweep is hygiene, not correctness.
type OTPSweeper struct {
	otpRepo  repository.OTPRepository
	cronExpr string
}

func NewOTPSweeper(otpRepo repository.OTPRepository, cronExpr string) (*OTPSweeper, error) {
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid OTP sweep cron expression: %s", cronExpr)
	}

	return &OTPSweeper{
		otpRepo:  otpRepo,
		cronExpr: cronExpr,
	}, nil
}

// Run sleeps until each next cron tick and sweeps. Blocks until ctx is
// cancelled; call in a goroutine.
func (s *OTPSweeper) Run(ctx context.Context) {
	for {
		next, err := gronx.NextTickAfter(s.cronExpr, time.Now(), false)
		if err != nil {
			logger.Error("OTP sweeper: failed to compute next tick: %v", err)
			next = time.Now().Add(10 * time.Minute)
		}

		select {
		case <-time.After(time.Until(next)):
		case <-ctx.Done():
			return
		}

		removed, err := s.otpRepo.DeleteExpired(ctx, time.Now())
		if err != nil {
			logger.Error("OTP sweeper: sweep failed: %v", err)
			continue
		}
		if removed > 0 {
			logger.Info("OTP sweeper: cleaned up %d expired code(s)", removed)
		}
	}
}
