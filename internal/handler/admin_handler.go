package handler

import (
	"net/http"
	"strings"

	"fwf/internal/domain"
	"fwf/internal/repository"
	"fwf/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	admin     *service.AdminService
	donations *service.DonationService
	referrals *service.ReferralService
	tickets   *service.TicketService
	members   *service.MemberService
	auth      *service.AuthService
	log       *zap.Logger
}

func NewAdminHandler(
	admin *service.AdminService,
	donations *service.DonationService,
	referrals *service.ReferralService,
	tickets *service.TicketService,
	members *service.MemberService,
	auth *service.AuthService,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		donations: donations,
		referrals: referrals,
		tickets:   tickets,
		members:   members,
		auth:      auth,
		log:       log,
	}
}

// GET /api/admin/overview
func (h *AdminHandler) Overview(c *gin.Context) {
	ov, err := h.admin.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": ov.Stats, "latestMembers": ov.LatestMembers})
}

// GET /api/admin/members?search=&page=&limit=
func (h *AdminHandler) Members(c *gin.Context) {
	p := pageFrom(c)
	list, total, err := h.admin.Members(c.Request.Context(), strings.TrimSpace(c.Query("search")), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paged(c, "members", list, total, p)
}

// GET /api/admin/member/:memberId
func (h *AdminHandler) Member(c *gin.Context) {
	d, err := h.admin.Member(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "member": d})
}

// GET /api/admin/member/:memberId/reconcile
func (h *AdminHandler) Reconcile(c *gin.Context) {
	rec, err := h.admin.Reconcile(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reconciliation": rec})
}

// POST /api/admin/toggle-member
func (h *AdminHandler) ToggleMember(c *gin.Context) {
	var req struct {
		MemberID string `json:"memberId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	active, err := h.admin.ToggleMember(c.Request.Context(), req.MemberID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "membershipActive": active})
}

// DELETE /api/admin/member/:memberId
func (h *AdminHandler) DeleteMember(c *gin.Context) {
	if err := h.admin.DeleteMember(c.Request.Context(), c.Param("memberId")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/admin/member/:memberId/reset-password
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var req struct {
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), c.Param("memberId"), req.NewPassword); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/admin/donations?kyc_status=&source=
func (h *AdminHandler) Donations(c *gin.Context) {
	p := pageFrom(c)
	list, total, err := h.donations.List(c.Request.Context(), repository.DonationFilter{
		KYCStatus: domain.KYCStatus(c.Query("kyc_status")),
		Source:    c.Query("source"),
	}, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paged(c, "donations", list, total, p)
}

// POST /api/admin/donation/:donationId/kyc
func (h *AdminHandler) UpdateKYC(c *gin.Context) {
	var req struct {
		Status domain.KYCStatus `json:"status" binding:"required"`
		Notes  *string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.donations.UpdateKYC(c.Request.Context(), c.Param("donationId"), req.Status, req.Notes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "donation": d})
}

// GET /api/admin/referrals?status=
func (h *AdminHandler) Referrals(c *gin.Context) {
	p := pageFrom(c)
	list, total, err := h.referrals.List(c.Request.Context(), domain.ReferralStatus(c.Query("status")), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paged(c, "referrals", list, total, p)
}

// GET /api/admin/tickets?memberId=
func (h *AdminHandler) Tickets(c *gin.Context) {
	ctx := c.Request.Context()
	var sellerID uint
	if mid := c.Query("memberId"); mid != "" {
		id, err := h.members.Resolve(ctx, mid)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		sellerID = id
	}
	p := pageFrom(c)
	list, total, err := h.tickets.List(ctx, sellerID, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paged(c, "tickets", list, total, p)
}

// GET /api/admin/settings
func (h *AdminHandler) Settings(c *gin.Context) {
	list, err := h.admin.Settings(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": list})
}

// PUT /api/admin/settings with {"points.donation_percent": "12", ...}
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.admin.UpdateSettings(c.Request.Context(), req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
