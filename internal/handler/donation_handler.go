package handler

import (
	"fmt"
	"net/http"
	"strings"

	"fwf/internal/domain"
	"fwf/internal/middleware"
	"fwf/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DonationHandler struct {
	donations *service.DonationService
	otp       *service.OTPService
	members   *service.MemberService
	payments  *service.PaymentService
	log       *zap.Logger
}

func NewDonationHandler(donations *service.DonationService, otp *service.OTPService, members *service.MemberService, payments *service.PaymentService, log *zap.Logger) *DonationHandler {
	return &DonationHandler{donations: donations, otp: otp, members: members, payments: payments, log: log}
}

type RecordDonationRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	DonorName     string          `json:"donorName"`
	DonorContact  string          `json:"donorContact"`
	DonorEmail    string          `json:"donorEmail"`
	DonorPAN      string          `json:"donorPan"`
	DonorAddress  string          `json:"donorAddress"`
	Source        string          `json:"source"`
	VerifiedToken string          `json:"verifiedToken"`
}

// POST /api/member/record-donation: a member records a donation they collected.
func (h *DonationHandler) RecordDonation(c *gin.Context) {
	var req RecordDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	uid := middleware.GetUserID(c)
	source := req.Source
	switch source {
	case domain.DonationSourceCash, domain.DonationSourceBank, domain.DonationSourceUPI:
	default:
		source = domain.DonationSourceCollected
	}
	res, err := h.donations.Record(c.Request.Context(), service.DonationInput{
		Amount:        req.Amount,
		MemberID:      &uid,
		DonorName:     req.DonorName,
		DonorEmail:    req.DonorEmail,
		DonorMobile:   req.DonorContact,
		DonorPAN:      req.DonorPAN,
		DonorAddress:  req.DonorAddress,
		Source:        source,
		VerifiedToken: req.VerifiedToken,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"points":     res.Points,
		"message":    fmt.Sprintf("Donation recorded! You earned %s points.", res.Points.String()),
		"donationId": res.Donation.Ref(),
	})
}

type DonationOTPRequest struct {
	Action string          `json:"action"`
	Email  string          `json:"email"`
	Mobile string          `json:"mobile"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	OTP    string          `json:"otp"`
}

// POST /api/donation-otp with action "send" or "verify".
func (h *DonationHandler) DonationOTP(c *gin.Context) {
	var req DonationOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	switch req.Action {
	case "send":
		res, err := h.otp.Send(ctx, service.SendOTPInput{Email: req.Email, Mobile: req.Mobile, Name: req.Name, Amount: req.Amount})
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": res.Message, "maskedEmail": res.MaskedEmail, "maskedMobile": res.MaskedMobile})
	case "verify":
		token, err := h.otp.Verify(ctx, req.Email, req.OTP)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "verified": true, "verifiedToken": token})
	default:
		respondError(c, h.log, service.ErrOTPInvalidAction)
	}
}

type PayDonationRequest struct {
	DonorName         string `json:"donorName"`
	DonorEmail        string `json:"donorEmail"`
	DonorMobile       string `json:"donorMobile"`
	DonorPAN          string `json:"donorPan"`
	DonorAddress      string `json:"donorAddress"`
	MemberID          string `json:"memberId"`
	VerifiedToken     string `json:"verifiedToken"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// POST /api/pay/donation: online donation after Razorpay checkout. The
// amount is the one the order was opened for.
func (h *DonationHandler) PayDonation(c *gin.Context) {
	var req PayDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := service.DonationInput{
		DonorName:     req.DonorName,
		DonorEmail:    req.DonorEmail,
		DonorMobile:   req.DonorMobile,
		DonorPAN:      req.DonorPAN,
		DonorAddress:  req.DonorAddress,
		VerifiedToken: req.VerifiedToken,
	}
	if mid := strings.TrimSpace(req.MemberID); mid != "" {
		uid, err := h.members.Resolve(c.Request.Context(), strings.ToUpper(mid))
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		in.MemberID = &uid
	}
	res, err := h.donations.Pay(c.Request.Context(), checkout(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"donationId":     res.Donation.Ref(),
		"pointsEarned":   res.Points,
		"receipt80GSent": res.Receipt80G,
	})
}

// POST /api/pay/order opens a donation order for checkout.
func (h *DonationHandler) CreateOrder(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.payments.CreateOrder(c.Request.Context(), service.OrderInput{
		Purpose: domain.PaymentDonation,
		Amount:  req.Amount,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "order": order})
}

func checkout(orderID, paymentID, signature string) service.Checkout {
	return service.Checkout{OrderID: orderID, PaymentID: paymentID, Signature: signature}
}
