package service

import (
	"context"
	"strings"
	"testing"

	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"
	"fwf/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func membershipCheckout(t *testing.T, h *harness, userID uint, amount int64, paymentID string) Checkout {
	t.Helper()
	order, err := h.membership.CreateOrder(context.Background(), userID, decimal.NewFromInt(amount))
	require.NoError(t, err)
	return Checkout{OrderID: order.ID, PaymentID: paymentID, Signature: "sig"}
}

func TestMembershipPayActivatesReferral(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	referrer := testutil.CreateMember(t, h.db, "FWF-000001", "FWF000001ABCD")
	joiner := testutil.CreateMember(t, h.db, "FWF-000002", "")
	require.NoError(t, h.db.Model(joiner).Update("membership_active", false).Error)
	_, err := h.referral.Register(ctx, "FWF000001ABCD", joiner.ID, nil)
	require.NoError(t, err)

	res, err := h.membership.Pay(ctx, joiner.ID, MembershipPayment{Checkout: membershipCheckout(t, h, joiner.ID, 500, "pay_1")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Fee.TxnID, "MF-"))
	assert.Equal(t, domain.FeeJoining, res.Fee.FeeType)
	assert.Equal(t, domain.FeeStatusVerified, res.Fee.Status)
	assert.Equal(t, "stub", res.Fee.VerifiedBy)
	require.NotNil(t, res.Referral)
	assert.True(t, res.Referral.Points.Equal(decimal.NewFromInt(25)))
	assert.True(t, testutil.Reload(t, h.db, joiner.ID).MembershipActive)

	// A renewal records the fee without paying the referrer again.
	res, err = h.membership.Pay(ctx, joiner.ID, MembershipPayment{
		FeeType:  domain.FeeRenewal,
		Checkout: membershipCheckout(t, h, joiner.ID, 500, "pay_2"),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Referral)
	assert.Equal(t, domain.FeeRenewal, res.Fee.FeeType)

	w, err := h.wallet.Get(ctx, referrer.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsFromReferrals.Equal(decimal.NewFromInt(25)))

	fees, err := h.membership.Fees(ctx, joiner.ID)
	require.NoError(t, err)
	assert.Len(t, fees, 2)
}

func TestMembershipPayUsesOrderAmount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	referrer := testutil.CreateMember(t, h.db, "FWF-000001", "FWF000001ABCD")
	joiner := testutil.CreateMember(t, h.db, "FWF-000002", "")
	_, err := h.referral.Register(ctx, "FWF000001ABCD", joiner.ID, nil)
	require.NoError(t, err)

	// The referral is paid on the ₹100 the order was opened for.
	res, err := h.membership.Pay(ctx, joiner.ID, MembershipPayment{Checkout: membershipCheckout(t, h, joiner.ID, 100, "pay_1")})
	require.NoError(t, err)
	assert.True(t, res.Fee.Amount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, res.Referral)
	assert.True(t, res.Referral.PaymentAmount.Equal(decimal.NewFromInt(100)))

	w, err := h.wallet.Get(ctx, referrer.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsFromReferrals.Equal(res.Referral.Points))
}

func TestMembershipPayRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")
	other := testutil.CreateMember(t, h.db, "FWF-000002", "")

	c := membershipCheckout(t, h, u.ID, 0, "pay_1")
	unsigned := c
	unsigned.Signature = ""
	_, err := h.membership.Pay(ctx, u.ID, MembershipPayment{Checkout: unsigned})
	assert.ErrorIs(t, err, ErrPaymentSignature)

	_, err = h.membership.Pay(ctx, other.ID, MembershipPayment{Checkout: c})
	assert.ErrorIs(t, err, ErrPaymentMismatch, "order belongs to another member")

	donation := h.paid(t, OrderInput{Purpose: domain.PaymentDonation, Amount: decimal.NewFromInt(500)}, "pay_d")
	_, err = h.membership.Pay(ctx, u.ID, MembershipPayment{Checkout: donation})
	assert.ErrorIs(t, err, ErrPaymentMismatch, "donation order cannot pay a membership")

	_, err = h.membership.Pay(ctx, u.ID, MembershipPayment{Checkout: Checkout{OrderID: "order_unknown", PaymentID: "pay_x", Signature: "sig"}})
	assert.ErrorIs(t, err, ErrPaymentOrderNotFound)

	res, err := h.membership.Pay(ctx, u.ID, MembershipPayment{Checkout: c})
	require.NoError(t, err)
	assert.True(t, res.Fee.Amount.Equal(decimal.NewFromInt(500)), "default fee applies")
	assert.Nil(t, res.Referral)

	_, err = h.membership.Pay(ctx, u.ID, MembershipPayment{Checkout: c})
	assert.ErrorIs(t, err, ErrPaymentReused)

	// A fresh order cannot settle with a payment id that was already used.
	again := membershipCheckout(t, h, u.ID, 500, "pay_1")
	_, err = h.membership.Pay(ctx, u.ID, MembershipPayment{Checkout: again})
	assert.ErrorIs(t, err, ErrPaymentReused)

	ghost := membershipCheckout(t, h, 9999, 500, "pay_9")
	_, err = h.membership.Pay(ctx, 9999, MembershipPayment{Checkout: ghost})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	fees, err := h.membership.Fees(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, fees, 1)
}

func TestMembershipCreateOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")

	order, err := h.membership.CreateOrder(ctx, u.ID, decimal.NewFromInt(750))
	require.NoError(t, err)
	assert.Equal(t, int64(75000), order.Amount)
	assert.Equal(t, "INR", order.Currency)

	order, err = h.membership.CreateOrder(ctx, u.ID, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), order.Amount)

	var row models.PaymentOrder
	require.NoError(t, h.db.Where("provider_ref = ?", order.ID).First(&row).Error)
	assert.Equal(t, domain.PaymentMembership, row.Purpose)
	assert.Equal(t, domain.PaymentCreated, row.Status)
	require.NotNil(t, row.UserID)
	assert.Equal(t, u.ID, *row.UserID)
}

func TestMembershipFeeAdminFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	referrer := testutil.CreateMember(t, h.db, "FWF-000001", "FWF000001ABCD")
	joiner := testutil.CreateMember(t, h.db, "FWF-000002", "")
	require.NoError(t, h.db.Model(joiner).Update("membership_active", false).Error)
	_, err := h.referral.Register(ctx, "FWF000001ABCD", joiner.ID, nil)
	require.NoError(t, err)

	res, err := h.membership.Record(ctx, FeeInput{
		MemberID: "FWF-000002", Amount: decimal.NewFromInt(500), PaymentRef: "UTR123", Notes: "paid at camp", RecordedBy: "FWF-000000",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FeeStatusPending, res.Fee.Status)
	assert.Equal(t, "cash", res.Fee.PaymentMode)
	assert.Nil(t, res.Referral)
	assert.False(t, testutil.Reload(t, h.db, joiner.ID).MembershipActive)

	list, err := h.membership.List(ctx, repository.Page{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, int64(1), list.Stats.Pending)
	assert.True(t, list.Stats.PendingAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, list.Stats.TotalAmount.IsZero())

	notes := "cheque cleared"
	res, err = h.membership.UpdateStatus(ctx, res.Fee.TxnID, FeeUpdate{Status: domain.FeeStatusVerified, Notes: &notes, VerifiedBy: "FWF-000000"})
	require.NoError(t, err)
	assert.Equal(t, domain.FeeStatusVerified, res.Fee.Status)
	assert.Equal(t, "FWF-000000", res.Fee.VerifiedBy)
	require.NotNil(t, res.Fee.VerifiedAt)
	require.NotNil(t, res.Fee.Notes)
	assert.Equal(t, notes, *res.Fee.Notes)
	require.NotNil(t, res.Referral)
	assert.True(t, testutil.Reload(t, h.db, joiner.ID).MembershipActive)

	// Verifying again does not pay the referrer twice.
	res, err = h.membership.UpdateStatus(ctx, res.Fee.TxnID, FeeUpdate{Status: domain.FeeStatusVerified})
	require.NoError(t, err)
	assert.Nil(t, res.Referral)
	w, err := h.wallet.Get(ctx, referrer.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsFromReferrals.Equal(decimal.NewFromInt(25)))

	_, err = h.membership.UpdateStatus(ctx, res.Fee.TxnID, FeeUpdate{Status: domain.FeeStatusRefunded})
	require.NoError(t, err)
	assert.False(t, testutil.Reload(t, h.db, joiner.ID).MembershipActive)

	fees, err := h.membership.MemberFees(ctx, "FWF-000002")
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, domain.FeeStatusRefunded, fees[0].Status)
	require.NotNil(t, fees[0].PaymentRef)
	assert.Equal(t, "UTR123", *fees[0].PaymentRef)
}

func TestMembershipFeeRecordVerifiedActivates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")
	require.NoError(t, h.db.Model(u).Update("membership_active", false).Error)

	res, err := h.membership.Record(ctx, FeeInput{
		MemberID: "FWF-000001", Amount: decimal.NewFromInt(500), Status: domain.FeeStatusVerified, PaymentRef: "UTR9", RecordedBy: "FWF-000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "FWF-000000", res.Fee.VerifiedBy)
	assert.True(t, testutil.Reload(t, h.db, u.ID).MembershipActive)

	// A renewal that is rejected leaves the membership alone.
	res, err = h.membership.Record(ctx, FeeInput{MemberID: "FWF-000001", Amount: decimal.NewFromInt(500), FeeType: domain.FeeRenewal})
	require.NoError(t, err)
	_, err = h.membership.UpdateStatus(ctx, res.Fee.TxnID, FeeUpdate{Status: domain.FeeStatusRejected})
	require.NoError(t, err)
	assert.True(t, testutil.Reload(t, h.db, u.ID).MembershipActive)

	_, err = h.membership.Record(ctx, FeeInput{MemberID: "FWF-000001", Amount: decimal.NewFromInt(500), PaymentRef: "UTR9"})
	assert.ErrorIs(t, err, ErrPaymentReused)
	_, err = h.membership.Record(ctx, FeeInput{MemberID: "FWF-000404", Amount: decimal.NewFromInt(500)})
	assert.ErrorIs(t, err, ErrMemberNotFound)
	_, err = h.membership.Record(ctx, FeeInput{MemberID: "FWF-000001", Amount: decimal.NewFromInt(500), Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidFeeStatus)
	_, err = h.membership.Record(ctx, FeeInput{MemberID: "FWF-000001"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = h.membership.UpdateStatus(ctx, "MF-NOPE", FeeUpdate{Status: domain.FeeStatusVerified})
	assert.ErrorIs(t, err, ErrFeeNotFound)
	_, err = h.membership.UpdateStatus(ctx, res.Fee.TxnID, FeeUpdate{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidFeeStatus)
}
