package handler

import (
	"net/http"

	"fwf/config"
	"fwf/internal/middleware"
	"fwf/internal/models"
	"fwf/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *service.AuthService
	cfg *config.Config
	log *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg, log: log}
}

type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Mobile       string `json:"mobile" binding:"required,min=10,max=15"`
	Password     string `json:"password" binding:"required,min=6"`
	ReferralCode string `json:"referralCode"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	MemberID   string `json:"memberId"` // older clients
	Password   string `json:"password" binding:"required"`
}

func (r LoginRequest) ident() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.MemberID
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func (h *AuthHandler) setSession(c *gin.Context, token string) {
	maxAge := int(h.cfg.JWT.Expiry.Seconds())
	secure := h.cfg.Server.Env == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.JWT.CookieName, token, maxAge, "/", "", secure, true)
}

func (h *AuthHandler) session(c *gin.Context, status int, u *models.User, token string) {
	h.setSession(c, token)
	c.JSON(status, gin.H{
		"ok":    true,
		"token": token,
		"user": gin.H{
			"id":               u.ID,
			"memberId":         u.MemberID,
			"name":             u.Name,
			"role":             u.Role,
			"membershipActive": u.MembershipActive,
			"referralCode":     u.ReferralCode,
		},
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, token, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.session(c, http.StatusCreated, u, token)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, token, err := h.svc.Login(c.Request.Context(), req.ident(), req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.session(c, http.StatusOK, u, token)
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, token, err := h.svc.AdminLogin(c.Request.Context(), req.ident(), req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.session(c, http.StatusOK, u, token)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.cfg.JWT.CookieName, "", -1, "/", "", h.cfg.Server.Env == "production", true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Password updated"})
}
