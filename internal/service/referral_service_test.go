package service

import (
	"context"
	"testing"

	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralRegisterGuards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	referrer := testutil.CreateMember(t, h.db, "FWF-000001", "FWF000001ABCD")
	other := testutil.CreateMember(t, h.db, "FWF-000002", "FWF000002WXYZ")
	joiner := testutil.CreateMember(t, h.db, "FWF-000003", "")

	_, err := h.referral.Register(ctx, "NOPE", joiner.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidReferralCode)
	_, err = h.referral.Register(ctx, "FWF000001ABCD", referrer.ID, nil)
	assert.ErrorIs(t, err, ErrSelfReferral)

	ref, err := h.referral.Register(ctx, "fwf000001abcd", joiner.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralPending, ref.Status)
	assert.Equal(t, referrer.ID, ref.ReferrerID)

	_, err = h.referral.Register(ctx, "FWF000002WXYZ", joiner.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyReferred)

	joiner = testutil.Reload(t, h.db, joiner.ID)
	require.NotNil(t, joiner.ReferredBy)
	assert.Equal(t, referrer.ID, *joiner.ReferredBy)
	assert.Nil(t, testutil.Reload(t, h.db, other.ID).ReferredBy)
}

func TestReferralActivatesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	referrer := testutil.CreateMember(t, h.db, "FWF-000001", "FWF000001ABCD")
	joiner := testutil.CreateMember(t, h.db, "FWF-000002", "")
	_, err := h.referral.Register(ctx, "FWF000001ABCD", joiner.ID, nil)
	require.NoError(t, err)

	// ₹500 at 50% is ₹250, which is 25 points at ₹10 a point.
	act, err := h.referral.Activate(ctx, joiner.MemberID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, act.Points.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, referrer.ID, act.ReferrerID)

	_, err = h.referral.Activate(ctx, joiner.MemberID, decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrReferralAlreadyActive)

	w, err := h.wallet.Get(ctx, referrer.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsFromReferrals.Equal(decimal.NewFromInt(25)))
	assert.True(t, w.PointsBalance.Equal(decimal.NewFromInt(25)))

	rows := testutil.LedgerRows(t, h.db, referrer.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.LedgerReferral, rows[0].Type)

	var stored models.Referral
	require.NoError(t, h.db.First(&stored, act.ReferralID).Error)
	assert.Equal(t, domain.ReferralActive, stored.Status)
	assert.NotNil(t, stored.ActivatedAt)
	assert.True(t, stored.PaymentAmount.Equal(decimal.NewFromInt(500)))

	overview, err := h.referral.ForReferrer(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, "FWF000001ABCD", overview.ReferralCode)
	assert.Len(t, overview.Referrals, 1)
}

func TestReferralActivateDefaultsFee(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	testutil.CreateMember(t, h.db, "FWF-000001", "FWF000001ABCD")
	joiner := testutil.CreateMember(t, h.db, "FWF-000002", "")
	_, err := h.referral.Register(ctx, "FWF000001ABCD", joiner.ID, nil)
	require.NoError(t, err)

	act, err := h.referral.Activate(ctx, joiner.MemberID, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, act.PaymentAmount.Equal(decimal.NewFromInt(500)))
}

func TestReferralActivateWithoutReferral(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	loner := testutil.CreateMember(t, h.db, "FWF-000001", "")

	_, err := h.referral.Activate(ctx, loner.MemberID, decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrNoReferral)
	_, err = h.referral.Activate(ctx, "FWF-999999", decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrNoReferral)
}

func TestReferralExpiredIsNotPaid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	referrer := testutil.CreateMember(t, h.db, "FWF-000001", "FWF000001ABCD")
	joiner := testutil.CreateMember(t, h.db, "FWF-000002", "")
	ref, err := h.referral.Register(ctx, "FWF000001ABCD", joiner.ID, nil)
	require.NoError(t, err)
	require.NoError(t, h.db.Model(&models.Referral{}).Where("id = ?", ref.ID).Update("status", domain.ReferralExpired).Error)

	_, err = h.referral.Activate(ctx, joiner.MemberID, decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, testutil.LedgerRows(t, h.db, referrer.ID))

	// Paying the fee still activates the member, without the referral bonus.
	require.NoError(t, h.db.Model(joiner).Update("membership_active", false).Error)
	order, err := h.membership.CreateOrder(ctx, joiner.ID, decimal.Zero)
	require.NoError(t, err)
	res, err := h.membership.Pay(ctx, joiner.ID, MembershipPayment{Checkout: Checkout{OrderID: order.ID, PaymentID: "pay_1", Signature: "sig"}})
	require.NoError(t, err)
	assert.Nil(t, res.Referral)
	assert.True(t, testutil.Reload(t, h.db, joiner.ID).MembershipActive)
	assert.Empty(t, testutil.LedgerRows(t, h.db, referrer.ID))

	var stored models.Referral
	require.NoError(t, h.db.First(&stored, ref.ID).Error)
	assert.Equal(t, domain.ReferralExpired, stored.Status)
}
