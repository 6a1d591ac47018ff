package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fwf/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

var highValue = decimal.NewFromInt(75000)

func sendOTP(h *harness, email string) (*SendOTPResult, error) {
	return h.otp.Send(context.Background(), SendOTPInput{
		Email: email, Mobile: "9876543210", Name: "Donor", Amount: highValue,
	})
}

// issuedCode reads the live code for email from the store.
func issuedCode(t *testing.T, h *harness, email string) string {
	t.Helper()
	var rec models.DonationOTP
	require.NoError(t, h.db.Where("email = ?", email).Order("id DESC").First(&rec).Error)
	return rec.OTP
}

func TestOTPSendValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.otp.Send(ctx, SendOTPInput{Email: "d@example.org", Mobile: "9876543210", Amount: highValue})
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = h.otp.Send(ctx, SendOTPInput{Email: "d@example.org", Mobile: "9876543210", Name: "D", Amount: decimal.NewFromInt(49999)})
	assert.ErrorIs(t, err, ErrOTPBelowThreshold)

	res, err := sendOTP(h, "Donor@Example.org")
	require.NoError(t, err)
	assert.Equal(t, "do***@example.org", res.MaskedEmail)
	assert.Equal(t, "98******10", res.MaskedMobile)
	assert.Len(t, issuedCode(t, h, "donor@example.org"), 6)
}

func TestOTPSendRateLimit(t *testing.T) {
	h := newHarness(t)
	c := newClock()
	h.otp.now = c.now

	for i := 0; i < 3; i++ {
		_, err := sendOTP(h, "d@example.org")
		require.NoError(t, err)
		c.advance(time.Minute)
	}
	_, err := sendOTP(h, "d@example.org")
	assert.ErrorIs(t, err, ErrOTPRateLimited)

	// Only the newest code stays pending.
	var pending int64
	require.NoError(t, h.db.Model(&models.DonationOTP{}).Where("email = ?", "d@example.org").Count(&pending).Error)
	assert.Equal(t, int64(1), pending)

	c.advance(10 * time.Minute)
	_, err = sendOTP(h, "d@example.org")
	assert.NoError(t, err)
}

func TestOTPVerifyAttempts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := newClock()
	h.otp.now = c.now

	_, err := sendOTP(h, "d@example.org")
	require.NoError(t, err)
	code := issuedCode(t, h, "d@example.org")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for remaining := 4; remaining >= 0; remaining-- {
		_, err := h.otp.Verify(ctx, "d@example.org", wrong)
		require.ErrorIs(t, err, ErrOTPMismatch)
		var mismatch *OTPMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, remaining, mismatch.Remaining)
	}

	_, err = h.otp.Verify(ctx, "d@example.org", code)
	assert.ErrorIs(t, err, ErrOTPTooManyAttempts)
	_, err = h.otp.Verify(ctx, "d@example.org", code)
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := newClock()
	h.otp.now = c.now

	_, err := sendOTP(h, "d@example.org")
	require.NoError(t, err)
	code := issuedCode(t, h, "d@example.org")

	c.advance(11 * time.Minute)
	_, err = h.otp.Verify(ctx, "d@example.org", code)
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPVerifiedTokenWindow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := newClock()
	h.otp.now = c.now

	_, err := sendOTP(h, "d@example.org")
	require.NoError(t, err)
	token, err := h.otp.Verify(ctx, "d@example.org", issuedCode(t, h, "d@example.org"))
	require.NoError(t, err)
	assert.Len(t, token, 64)

	c.advance(29 * time.Minute)
	rec, err := h.otp.Resolve(ctx, token, nil)
	require.NoError(t, err)
	assert.True(t, rec.Amount.Equal(highValue))

	c.advance(2 * time.Minute)
	_, err = h.otp.Resolve(ctx, token, nil)
	assert.ErrorIs(t, err, ErrKYCNotVerified)
}
