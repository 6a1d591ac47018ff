package handler

import (
	"net/http"
	"strings"
	"time"

	"fwf/internal/domain"
	"fwf/internal/middleware"
	"fwf/internal/models"
	"fwf/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type QuizHandler struct {
	svc *service.QuizService
	log *zap.Logger
}

func NewQuizHandler(svc *service.QuizService, log *zap.Logger) *QuizHandler {
	return &QuizHandler{svc: svc, log: log}
}

type publicQuestion struct {
	QNo      int      `json:"q_no"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
}

// withoutAnswers hides correct answers from members.
func withoutAnswers(qs []models.QuizQuestion) []publicQuestion {
	out := make([]publicQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, publicQuestion{QNo: q.QNo, Question: q.Question, Options: q.Options, Points: q.Points})
	}
	return out
}

// GET /api/quizzes?status=active
func (h *QuizHandler) List(c *gin.Context) {
	var statuses []domain.QuizStatus
	if s := c.Query("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			statuses = append(statuses, domain.QuizStatus(strings.TrimSpace(part)))
		}
	}
	list, err := h.svc.List(c.Request.Context(), statuses...)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "quizzes": list})
}

// GET /api/quiz/:quizId
func (h *QuizHandler) Get(c *gin.Context) {
	q, err := h.svc.Get(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	questions := withoutAnswers(q.Questions)
	if q.Status != domain.QuizActive {
		questions = nil
	}
	q.Questions = nil
	c.JSON(http.StatusOK, gin.H{"ok": true, "quiz": q, "questions": questions})
}

type EnrollRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	ReferralCode      string `json:"referralCode"`
}

// POST /api/quiz/:quizId/order opens the entry fee order.
func (h *QuizHandler) CreateOrder(c *gin.Context) {
	order, err := h.svc.CreateOrder(c.Request.Context(), c.Param("quizId"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "order": order})
}

// POST /api/quiz/:quizId/enroll
func (h *QuizHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Enroll(c.Request.Context(), c.Param("quizId"), middleware.GetUserID(c),
		checkout(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature), req.ReferralCode)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "enrollmentNumber": p.EnrollmentNumber, "points": p.PointsEarned, "participation": p})
}

// POST /api/quiz/:quizId/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	var req struct {
		Answers []service.AnswerInput `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Submit(c.Request.Context(), c.Param("quizId"), middleware.GetUserID(c), req.Answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "score": p.Score, "participation": p})
}

// GET /api/member/quizzes
func (h *QuizHandler) Mine(c *gin.Context) {
	list, err := h.svc.MyParticipations(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "participations": list})
}

type CreateQuizRequest struct {
	QuizID      string                `json:"quiz_id" binding:"required"`
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Type        domain.QuizType       `json:"type"`
	EntryFee    decimal.Decimal       `json:"entry_fee"`
	Questions   []models.QuizQuestion `json:"questions"`
	Prizes      models.QuizPrizes     `json:"prizes"`
	StartDate   time.Time             `json:"start_date" binding:"required"`
	EndDate     time.Time             `json:"end_date" binding:"required"`
	ResultDate  time.Time             `json:"result_date"`
}

// POST /api/admin/quiz
func (h *QuizHandler) Create(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	switch req.Type {
	case "", domain.QuizMonthly, domain.QuizHalfYearly, domain.QuizYearly:
	default:
		respondError(c, h.log, service.ErrInvalidQuizInput)
		return
	}
	q, err := h.svc.Create(c.Request.Context(), service.QuizInput{
		QuizID:      req.QuizID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		EntryFee:    req.EntryFee,
		Questions:   req.Questions,
		Prizes:      req.Prizes,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ResultDate:  req.ResultDate,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "quiz": q})
}

// POST /api/admin/quiz/:quizId/status
func (h *QuizHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status domain.QuizStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	q, err := h.svc.SetStatus(c.Request.Context(), c.Param("quizId"), req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "quiz": q})
}

// POST /api/admin/quiz/:quizId/declare
func (h *QuizHandler) Declare(c *gin.Context) {
	q, err := h.svc.DeclareResults(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "quiz": q, "winners": q.Winners})
}
