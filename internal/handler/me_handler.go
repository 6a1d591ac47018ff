package handler

import (
	"net/http"
	"strconv"

	"fwf/internal/middleware"
	"fwf/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MeHandler serves the authenticated member's dashboard and wallet.
type MeHandler struct {
	members *service.MemberService
	wallet  *service.WalletService
	log     *zap.Logger
}

func NewMeHandler(members *service.MemberService, wallet *service.WalletService, log *zap.Logger) *MeHandler {
	return &MeHandler{members: members, wallet: wallet, log: log}
}

// GET /api/member/me
func (h *MeHandler) Me(c *gin.Context) {
	d, err := h.members.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		OK bool `json:"ok"`
		*service.Dashboard
	}{true, d})
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// PUT /api/member/profile
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.members.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req.Name, req.Bio, req.AvatarURL)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

// POST /api/member/device
func (h *MeHandler) RegisterDevice(c *gin.Context) {
	var req struct {
		FCMToken string `json:"fcm_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.members.RegisterDevice(c.Request.Context(), middleware.GetUserID(c), req.FCMToken); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/member/points-history?limit=50
func (h *MeHandler) PointsHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	ledger, err := h.wallet.History(c.Request.Context(), middleware.GetUserID(c), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ledger": ledger})
}

// POST /api/member/apply-wallet
func (h *MeHandler) ApplyWallet(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	applied, err := h.wallet.ApplyBalance(c.Request.Context(), middleware.GetUserID(c), req.Amount)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "applied": applied})
}

// POST /api/member/redeem-points
func (h *MeHandler) RedeemPoints(c *gin.Context) {
	var req struct {
		Points      decimal.Decimal `json:"points"`
		Description string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := h.wallet.Redeem(c.Request.Context(), middleware.GetUserID(c), req.Points, req.Description)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "wallet": w})
}
