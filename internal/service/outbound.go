package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MailSender delivers plain-text email.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers OTP codes by SMS.
type SMSSender interface {
	SendOTP(ctx context.Context, mobile, otp string) error
}

// AdminAlerter posts a short message to the admin channel.
type AdminAlerter interface {
	Alert(ctx context.Context, text string) error
}

const sideEffectTimeout = 15 * time.Second

// fireAndForget runs fn on its own goroutine with a detached, timed context.
// Failures are logged and never reach the caller.
func fireAndForget(log *zap.Logger, what string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Warn(what+" failed", zap.Error(err))
		}
	}()
}
