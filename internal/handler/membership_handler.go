package handler

import (
	"net/http"
	"strings"

	"fwf/internal/middleware"
	"fwf/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type MembershipHandler struct {
	svc *service.MembershipService
	log *zap.Logger
}

func NewMembershipHandler(svc *service.MembershipService, log *zap.Logger) *MembershipHandler {
	return &MembershipHandler{svc: svc, log: log}
}

type PayMembershipRequest struct {
	FeeType           string `json:"fee_type"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// POST /api/pay/membership/order opens a membership order. Without an
// amount the configured fee is used.
func (h *MembershipHandler) CreateOrder(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	order, err := h.svc.CreateOrder(c.Request.Context(), middleware.GetUserID(c), req.Amount)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "order": order})
}

// POST /api/pay/membership
func (h *MembershipHandler) Pay(c *gin.Context) {
	var req PayMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.Pay(c.Request.Context(), middleware.GetUserID(c), service.MembershipPayment{
		FeeType:  req.FeeType,
		Checkout: checkout(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "fee": res.Fee, "referral": res.Referral, "membershipActive": true})
}

// GET /api/member/fees
func (h *MembershipHandler) Mine(c *gin.Context) {
	fees, err := h.svc.Fees(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "fees": fees})
}

// GET /api/admin/membership-fees
func (h *MembershipHandler) AdminList(c *gin.Context) {
	p := pageFrom(c)
	res, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "fees": res.Fees, "stats": res.Stats, "total": res.Total, "page": p.Page, "limit": p.Limit})
}

// GET /api/admin/membership-fees/:memberId
func (h *MembershipHandler) AdminMemberFees(c *gin.Context) {
	fees, err := h.svc.MemberFees(c.Request.Context(), strings.ToUpper(c.Param("memberId")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "fees": fees})
}

type RecordFeeRequest struct {
	MemberID    string          `json:"memberId" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	FeeType     string          `json:"feeType"`
	PaymentMode string          `json:"paymentMode"`
	PaymentRef  string          `json:"paymentRef"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes"`
}

// POST /api/admin/membership-fee records an offline fee.
func (h *MembershipHandler) AdminRecord(c *gin.Context) {
	var req RecordFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.Record(c.Request.Context(), service.FeeInput{
		MemberID:    strings.ToUpper(strings.TrimSpace(req.MemberID)),
		Amount:      req.Amount,
		FeeType:     req.FeeType,
		PaymentMode: req.PaymentMode,
		PaymentRef:  req.PaymentRef,
		Status:      req.Status,
		Notes:       req.Notes,
		RecordedBy:  middleware.GetMemberID(c),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "fee": res.Fee, "referral": res.Referral})
}

type UpdateFeeRequest struct {
	Status     string  `json:"status" binding:"required"`
	Notes      *string `json:"notes"`
	PaymentRef *string `json:"paymentRef"`
}

// POST /api/admin/membership-fee/:txnId
func (h *MembershipHandler) AdminUpdate(c *gin.Context) {
	var req UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("txnId"), service.FeeUpdate{
		Status:     req.Status,
		Notes:      req.Notes,
		PaymentRef: req.PaymentRef,
		VerifiedBy: middleware.GetMemberID(c),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "fee": res.Fee, "referral": res.Referral})
}
