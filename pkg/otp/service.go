package otp

import (
	"context"
	"time"

	apperrors "akoben/pkg/errors"
	"akoben/pkg/logger"
	"akoben/pkg/sanitizer"
)

type Service struct {
	provider Provider
	cooldown Cooldown
	interval time.Duration
	region   string
	log      *logger.Logger
}

func NewService(provider Provider, cooldown Cooldown, interval time.Duration, region string, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		cooldown: cooldown,
		interval: interval,
		region:   region,
		log:      log,
	}
}

func (s *Service) Send(ctx context.Context, phone string) error {
	normalized := sanitizer.NormalizePhone(phone, s.region)
	if normalized == "" {
		return apperrors.InvalidInput("Invalid phone number format")
	}

	ok, err := s.cooldown.Acquire(ctx, normalized, s.interval)
	if err != nil {
		// cooldown store down: send anyway
		s.log.Warn("OTP cooldown check failed", "error", err)
	} else if !ok {
		return apperrors.TooManyRequests()
	}

	if err := s.provider.Send(ctx, normalized); err != nil {
		s.log.Error("Failed to send OTP", "phone", normalized, "error", err)
		return err
	}

	s.log.Info("OTP sent", "phone", normalized)
	return nil
}

func (s *Service) Verify(ctx context.Context, phone string, code string) (bool, error) {
	normalized := sanitizer.NormalizePhone(phone, s.region)
	if normalized == "" {
		return false, apperrors.InvalidInput("Invalid phone number format")
	}
	if len(code) != codeLength {
		return false, apperrors.InvalidInput("OTP code must be 6 digits")
	}

	verified, err := s.provider.Verify(ctx, normalized, code)
	if err != nil {
		s.log.Error("Failed to verify OTP", "phone", normalized, "error", err)
		return false, err
	}

	s.log.Info("OTP verification completed", "phone", normalized, "verified", verified)
	return verified, nil
}
