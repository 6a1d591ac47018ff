package handler

import (
	"errors"
	"net/http"
	"strconv"

	"fwf/internal/repository"
	"fwf/internal/service"
	"fwf/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{service.ErrInvalidAmount, http.StatusBadRequest},
	{service.ErrMissingFields, http.StatusBadRequest},
	{service.ErrPhotoRequired, http.StatusBadRequest},
	{service.ErrInvalidQuizInput, http.StatusBadRequest},
	{service.ErrKYCNotVerified, http.StatusBadRequest},
	{service.ErrKYCMismatch, http.StatusBadRequest},
	{service.ErrPaymentSignature, http.StatusBadRequest},
	{service.ErrPaymentMismatch, http.StatusBadRequest},
	{service.ErrInvalidFeeStatus, http.StatusBadRequest},
	{service.ErrInsufficientFunds, http.StatusBadRequest},
	{service.ErrNoReferral, http.StatusBadRequest},
	{service.ErrOTPBelowThreshold, http.StatusBadRequest},
	{service.ErrOTPNotFound, http.StatusBadRequest},
	{service.ErrOTPTooManyAttempts, http.StatusBadRequest},
	{service.ErrOTPMismatch, http.StatusBadRequest},
	{service.ErrOTPInvalidAction, http.StatusBadRequest},
	{service.ErrSelfReferral, http.StatusBadRequest},

	{service.ErrMemberNotFound, http.StatusNotFound},
	{service.ErrTaskNotFound, http.StatusNotFound},
	{service.ErrQuizNotFound, http.StatusNotFound},
	{service.ErrDonationNotFound, http.StatusNotFound},
	{service.ErrNotificationNotFound, http.StatusNotFound},
	{service.ErrInvalidReferralCode, http.StatusNotFound},
	{service.ErrPaymentOrderNotFound, http.StatusNotFound},
	{service.ErrFeeNotFound, http.StatusNotFound},

	{service.ErrReferralAlreadyActive, http.StatusConflict},
	{service.ErrAlreadyReferred, http.StatusConflict},
	{service.ErrTaskAlreadyCompleted, http.StatusConflict},
	{service.ErrAlreadyEnrolled, http.StatusConflict},
	{service.ErrNotEnrolled, http.StatusConflict},
	{service.ErrAlreadySubmitted, http.StatusConflict},
	{service.ErrQuizNotActive, http.StatusConflict},
	{service.ErrEnrollmentClosed, http.StatusConflict},
	{service.ErrQuizNotClosed, http.StatusConflict},
	{service.ErrInvalidTransition, http.StatusConflict},
	{service.ErrQuizExists, http.StatusConflict},
	{service.ErrPaymentReused, http.StatusConflict},
	{service.ErrEmailExists, http.StatusConflict},
	{service.ErrMobileExists, http.StatusConflict},

	{service.ErrOTPRateLimited, http.StatusTooManyRequests},

	{service.ErrInvalidCreds, http.StatusUnauthorized},

	{cloudinary.ErrNotConfigured, http.StatusServiceUnavailable},
}

// StatusFor maps a service error to its HTTP status; unknown errors are 500.
func StatusFor(err error) int {
	for _, e := range statusByErr {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": msg}. 500s are logged with the request and
// answered with a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pageFrom(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return repository.Page{Page: page, Limit: limit}
}

func paged(c *gin.Context, key string, list interface{}, total int64, p repository.Page) {
	c.JSON(http.StatusOK, gin.H{"ok": true, key: list, "total": total, "page": p.Page, "limit": p.Limit})
}
