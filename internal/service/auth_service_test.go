package service

import (
	"context"
	"strings"
	"testing"

	"fwf/internal/auth"
	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, h *harness, email, mobile, code string) *models.User {
	t.Helper()
	u, token, err := h.auth.Register(context.Background(), RegisterInput{
		Name: "Asha " + mobile, Email: email, Mobile: mobile, Password: "secret1", ReferralCode: code,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return u
}

func TestRegisterAssignsSequentialMemberIDs(t *testing.T) {
	h := newHarness(t)

	first := register(t, h, "asha@example.org", "9000000001", "")
	second := register(t, h, "Meera@Example.org", "9000000002", "")

	assert.Equal(t, "FWF-000001", first.MemberID)
	assert.Equal(t, "FWF-000002", second.MemberID)
	assert.Equal(t, "meera@example.org", second.DisplayEmail())
	require.NotNil(t, first.ReferralCode)
	assert.True(t, strings.HasPrefix(*first.ReferralCode, "FWF000001"))
	assert.Len(t, *first.ReferralCode, len("FWF000001")+4)
	assert.Equal(t, domain.RoleMember, first.Role)
	assert.False(t, first.MembershipActive)
}

func TestRegisterWithReferralCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	referrer := register(t, h, "asha@example.org", "9000000001", "")

	joiner := register(t, h, "meera@example.org", "9000000002", *referrer.ReferralCode)
	require.NotNil(t, joiner.ReferredBy)
	assert.Equal(t, referrer.ID, *joiner.ReferredBy)

	overview, err := h.referral.ForReferrer(ctx, referrer.ID)
	require.NoError(t, err)
	require.Len(t, overview.Referrals, 1)
	assert.Equal(t, domain.ReferralPending, overview.Referrals[0].Status)

	// An unknown code aborts the whole registration.
	_, _, err = h.auth.Register(ctx, RegisterInput{Name: "X", Email: "x@example.org", Mobile: "9000000003", Password: "secret1", ReferralCode: "NOPE"})
	assert.ErrorIs(t, err, ErrInvalidReferralCode)
	var n int64
	require.NoError(t, h.db.Model(&models.User{}).Where("email = ?", "x@example.org").Count(&n).Error)
	assert.Zero(t, n)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	register(t, h, "asha@example.org", "9000000001", "")

	_, _, err := h.auth.Register(ctx, RegisterInput{Name: "A", Email: "ASHA@example.org", Mobile: "9000000009", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailExists)
	_, _, err = h.auth.Register(ctx, RegisterInput{Name: "A", Email: "new@example.org", Mobile: "9000000001", Password: "secret1"})
	assert.ErrorIs(t, err, ErrMobileExists)
	_, _, err = h.auth.Register(ctx, RegisterInput{Name: "A", Email: "new@example.org", Mobile: "9000000005", Password: "short"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := register(t, h, "asha@example.org", "9000000001", "")

	for _, ident := range []string{"FWF-000001", "fwf-000001", "ASHA@example.org", "9000000001"} {
		got, token, err := h.auth.Login(ctx, ident, "secret1")
		require.NoError(t, err, ident)
		assert.Equal(t, u.ID, got.ID)

		claims, err := auth.ParseToken(&h.cfg.JWT, token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.Equal(t, "FWF-000001", claims.MemberID)
	}
	assert.True(t, testutil.Reload(t, h.db, u.ID).FirstLoginDone)

	_, _, err := h.auth.Login(ctx, "FWF-000001", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, err = h.auth.Login(ctx, "FWF-000404", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, err = h.auth.AdminLogin(ctx, "FWF-000001", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestChangeAndResetPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := register(t, h, "asha@example.org", "9000000001", "")

	assert.ErrorIs(t, h.auth.ChangePassword(ctx, u.ID, "wrong-pass", "newsecret"), ErrInvalidCreds)
	require.NoError(t, h.auth.ChangePassword(ctx, u.ID, "secret1", "newsecret"))
	_, _, err := h.auth.Login(ctx, u.MemberID, "newsecret")
	require.NoError(t, err)

	require.NoError(t, h.auth.ResetPassword(ctx, u.MemberID, "adminset"))
	_, _, err = h.auth.Login(ctx, u.MemberID, "adminset")
	require.NoError(t, err)
	assert.ErrorIs(t, h.auth.ResetPassword(ctx, "FWF-000404", "adminset"), ErrMemberNotFound)
}
