package service

import (
	"context"
	"testing"

	"fwf/internal/domain"
	"fwf/internal/repository"
	"fwf/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonationCreditsCollectingMember(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")

	res, err := h.donation.Record(ctx, DonationInput{
		Amount: decimal.NewFromInt(1000), MemberID: &u.ID, DonorName: "Ravi", DonorEmail: "Ravi@Example.org",
		DonorPAN: "abcde1234f", Source: domain.DonationSourceCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "DON-000001", res.Donation.Ref())
	assert.True(t, res.Points.Equal(decimal.NewFromInt(10)))
	assert.True(t, res.PointsRupees.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "ABCDE1234F", *res.Donation.DonorPAN)
	assert.Equal(t, "ravi@example.org", *res.Donation.DonorEmail)
	assert.Equal(t, domain.KYCNotRequired, res.Donation.KYCStatus)
	assert.False(t, res.Receipt80G, "no mailer configured")

	w, err := h.wallet.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsFromDonations.Equal(decimal.NewFromInt(10)))
	assert.True(t, w.BalanceINR.Equal(decimal.NewFromInt(100)))

	rows := testutil.LedgerRows(t, h.db, u.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.LedgerDonation, rows[0].Type)
	require.NotNil(t, rows[0].ReferenceID)
	assert.Equal(t, res.Donation.ID, *rows[0].ReferenceID)

	next, err := h.donation.Record(ctx, DonationInput{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "DON-000002", next.Donation.Ref())
}

func TestAnonymousDonationEarnsNothing(t *testing.T) {
	h := newHarness(t)

	res, err := h.donation.Record(context.Background(), DonationInput{Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	assert.True(t, res.Points.IsZero())
	assert.Equal(t, "Anonymous", res.Donation.DonorName)
	assert.Equal(t, domain.DonationSourceRazorpay, res.Donation.Source)

	_, err = h.donation.Record(context.Background(), DonationInput{Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDonationKYCThreshold(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")

	res, err := h.donation.Record(ctx, DonationInput{Amount: decimal.NewFromInt(49999), MemberID: &u.ID})
	require.NoError(t, err)
	assert.False(t, res.Donation.KYCRequired)

	_, err = h.donation.Record(ctx, DonationInput{Amount: decimal.NewFromInt(50000), MemberID: &u.ID})
	assert.ErrorIs(t, err, ErrKYCNotVerified)
	_, err = h.donation.Record(ctx, DonationInput{Amount: decimal.NewFromInt(50000), MemberID: &u.ID, VerifiedToken: "forged"})
	assert.ErrorIs(t, err, ErrKYCNotVerified)

	_, err = h.otp.Send(ctx, SendOTPInput{Email: "d@example.org", Mobile: "9876543210", Name: "D", Amount: decimal.NewFromInt(50000)})
	require.NoError(t, err)
	token, err := h.otp.Verify(ctx, "d@example.org", issuedCode(t, h, "d@example.org"))
	require.NoError(t, err)

	in := DonationInput{Amount: decimal.NewFromInt(50000), MemberID: &u.ID, VerifiedToken: token}
	res, err = h.donation.Record(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Donation.KYCRequired)
	assert.True(t, res.Donation.OTPVerified)
	assert.Equal(t, domain.KYCOTPVerified, res.Donation.KYCStatus)

	// The token is single-use.
	_, err = h.donation.Record(ctx, in)
	assert.ErrorIs(t, err, ErrKYCNotVerified)
}

func TestDonationPaymentIDIsSingleUse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")
	in := DonationInput{Amount: decimal.NewFromInt(100), MemberID: &u.ID, PaymentID: "pay_1", OrderID: "order_1"}

	_, err := h.donation.Record(ctx, in)
	require.NoError(t, err)
	in.OrderID = "order_2"
	_, err = h.donation.Record(ctx, in)
	assert.ErrorIs(t, err, ErrPaymentReused)
	assert.Len(t, testutil.LedgerRows(t, h.db, u.ID), 1)
	w, err := h.wallet.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, w.PointsFromDonations.Equal(decimal.NewFromInt(1)))
}

func TestDonationPayUsesOrderAmount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")

	c := h.paid(t, OrderInput{Purpose: domain.PaymentDonation, Amount: decimal.NewFromInt(100)}, "pay_1")
	res, err := h.donation.Pay(ctx, c, DonationInput{Amount: decimal.NewFromInt(500000), MemberID: &u.ID, DonorName: "Ravi"})
	require.NoError(t, err)
	assert.True(t, res.Donation.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.Points.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, domain.DonationSourceRazorpay, res.Donation.Source)
	require.NotNil(t, res.Donation.OrderID)
	assert.Equal(t, c.OrderID, *res.Donation.OrderID)

	_, err = h.donation.Pay(ctx, c, DonationInput{MemberID: &u.ID})
	assert.ErrorIs(t, err, ErrPaymentReused)

	membership := h.paid(t, OrderInput{Purpose: domain.PaymentMembership, UserID: &u.ID, Amount: decimal.NewFromInt(500)}, "pay_2")
	_, err = h.donation.Pay(ctx, membership, DonationInput{MemberID: &u.ID})
	assert.ErrorIs(t, err, ErrPaymentMismatch)

	forged := h.paid(t, OrderInput{Purpose: domain.PaymentDonation, Amount: decimal.NewFromInt(100)}, "pay_3")
	forged.Signature = ""
	_, err = h.donation.Pay(ctx, forged, DonationInput{MemberID: &u.ID})
	assert.ErrorIs(t, err, ErrPaymentSignature)

	assert.Len(t, testutil.LedgerRows(t, h.db, u.ID), 1)
}

func TestDonationKYCTokenIsBoundToSentDetails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := testutil.CreateMember(t, h.db, "FWF-000001", "")

	_, err := h.otp.Send(ctx, SendOTPInput{Email: "d@example.org", Mobile: "9876543210", Name: "D", Amount: highValue})
	require.NoError(t, err)
	token, err := h.otp.Verify(ctx, "d@example.org", issuedCode(t, h, "d@example.org"))
	require.NoError(t, err)
	rec, err := h.otp.Resolve(ctx, token, nil)
	require.NoError(t, err)

	_, err = h.donation.Record(ctx, DonationInput{Amount: highValue.Add(decimal.NewFromInt(1)), MemberID: &u.ID, VerifiedToken: token})
	assert.ErrorIs(t, err, ErrKYCMismatch)
	_, err = h.donation.Record(ctx, DonationInput{Amount: highValue, MemberID: &u.ID, DonorEmail: "other@example.org", VerifiedToken: token})
	assert.ErrorIs(t, err, ErrKYCMismatch)
	assert.Empty(t, testutil.LedgerRows(t, h.db, u.ID))

	res, err := h.donation.Record(ctx, DonationInput{Amount: highValue, MemberID: &u.ID, VerifiedToken: token})
	require.NoError(t, err)
	require.NotNil(t, res.Donation.DonorEmail)
	assert.Equal(t, "d@example.org", *res.Donation.DonorEmail)

	assert.ErrorIs(t, h.otp.Consume(ctx, rec.ID, nil), ErrKYCNotVerified)
}

func TestDonationKYCReview(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.otp.Send(ctx, SendOTPInput{Email: "d@example.org", Mobile: "9876543210", Name: "D", Amount: highValue})
	require.NoError(t, err)
	token, err := h.otp.Verify(ctx, "d@example.org", issuedCode(t, h, "d@example.org"))
	require.NoError(t, err)
	res, err := h.donation.Record(ctx, DonationInput{Amount: highValue, VerifiedToken: token})
	require.NoError(t, err)
	ref := res.Donation.Ref()

	notes := "PAN copy requested"
	d, err := h.donation.UpdateKYC(ctx, ref, domain.KYCPendingDocs, &notes)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCPendingDocs, d.KYCStatus)

	_, err = h.donation.UpdateKYC(ctx, ref, domain.KYCOTPVerified, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	d, err = h.donation.UpdateKYC(ctx, ref, domain.KYCDocVerified, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCDocVerified, d.KYCStatus)

	_, err = h.donation.UpdateKYC(ctx, "DON-999999", domain.KYCDocVerified, nil)
	assert.ErrorIs(t, err, ErrDonationNotFound)

	list, total, err := h.donation.List(ctx, repository.DonationFilter{KYCStatus: domain.KYCDocVerified}, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}
