package handler

import (
	"fmt"
	"net/http"

	"fwf/internal/middleware"
	"fwf/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TicketHandler struct {
	svc *service.TicketService
	log *zap.Logger
}

func NewTicketHandler(svc *service.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{svc: svc, log: log}
}

type SellTicketRequest struct {
	BuyerName    string          `json:"buyerName"`
	BuyerContact string          `json:"buyerContact"`
	BuyerEmail   string          `json:"buyerEmail"`
	TicketPrice  decimal.Decimal `json:"ticketPrice"`
	QuizRef      string          `json:"quizRef"`
}

// POST /api/member/sell-ticket
func (h *TicketHandler) Sell(c *gin.Context) {
	var req SellTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.svc.Sell(c.Request.Context(), middleware.GetUserID(c), service.TicketSale{
		BuyerName:    req.BuyerName,
		BuyerContact: req.BuyerContact,
		BuyerEmail:   req.BuyerEmail,
		TicketPrice:  req.TicketPrice,
		QuizRef:      req.QuizRef,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"points":  t.PointsEarned,
		"message": fmt.Sprintf("Ticket sold! You earned %s points.", t.PointsEarned.String()),
		"token":   t.Token,
	})
}

// GET /api/member/tickets
func (h *TicketHandler) Mine(c *gin.Context) {
	p := pageFrom(c)
	list, total, err := h.svc.List(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	paged(c, "tickets", list, total, p)
}
