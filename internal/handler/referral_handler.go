package handler

import (
	"net/http"

	"fwf/internal/middleware"
	"fwf/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ReferralHandler struct {
	svc *service.ReferralService
	log *zap.Logger
}

func NewReferralHandler(svc *service.ReferralService, log *zap.Logger) *ReferralHandler {
	return &ReferralHandler{svc: svc, log: log}
}

// GET /api/member/referrals
func (h *ReferralHandler) MyReferrals(c *gin.Context) {
	ov, err := h.svc.ForReferrer(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "referralCode": ov.ReferralCode, "stats": ov.Stats, "referrals": ov.Referrals})
}

// POST /api/member/register-referral: attach the caller to a referrer's code.
func (h *ReferralHandler) RegisterReferral(c *gin.Context) {
	var req struct {
		ReferralCode string `json:"referralCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := h.svc.Register(c.Request.Context(), req.ReferralCode, middleware.GetUserID(c), nil); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/member/activate-referral (admin)
func (h *ReferralHandler) ActivateReferral(c *gin.Context) {
	var req struct {
		ReferredMemberID string          `json:"referredMemberId" binding:"required"`
		PaymentAmount    decimal.Decimal `json:"paymentAmount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	act, err := h.svc.Activate(c.Request.Context(), req.ReferredMemberID, req.PaymentAmount)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "points": act.Points})
}
