package service

import (
	"context"
	"fmt"
	"strings"

	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TicketSale struct {
	BuyerName    string
	BuyerContact string
	BuyerEmail   string
	TicketPrice  decimal.Decimal
	QuizRef      string
}

type TicketService struct {
	tx         *repository.Transactor
	ticketRepo *repository.TicketRepository
	wallet     *WalletService
	rules      *RulesProvider
	notifier   Notifier
	log        *zap.Logger
}

func NewTicketService(tx *repository.Transactor, ticketRepo *repository.TicketRepository, wallet *WalletService, rules *RulesProvider, notifier Notifier, log *zap.Logger) *TicketService {
	return &TicketService{tx: tx, ticketRepo: ticketRepo, wallet: wallet, rules: rules, notifier: notifier, log: log}
}

// Sell records a quiz ticket sold by sellerID and credits the seller's quiz
// points. Identical sales are all recorded.
func (s *TicketService) Sell(ctx context.Context, sellerID uint, in TicketSale) (*models.QuizTicket, error) {
	rules := s.rules.Current(ctx)
	price := in.TicketPrice
	if !price.IsPositive() {
		price = rules.QuizTicketPrice
	}
	_, points := rules.Reward(price, rules.QuizTicketPercent)

	buyer := strings.TrimSpace(in.BuyerName)
	t := &models.QuizTicket{
		SellerID:     sellerID,
		QuizRef:      in.QuizRef,
		Token:        uuid.NewString(),
		BuyerName:    buyer,
		BuyerContact: strings.TrimSpace(in.BuyerContact),
		BuyerEmail:   strings.ToLower(strings.TrimSpace(in.BuyerEmail)),
		TicketPrice:  price,
		PointsEarned: points,
	}
	if buyer == "" {
		buyer = "buyer"
	}
	err := s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		if err := s.ticketRepo.Create(ctx, t, tx); err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
		return s.wallet.Credit(ctx, CreditRequest{
			UserID:      sellerID,
			Points:      points,
			Source:      domain.LedgerQuiz,
			Description: fmt.Sprintf("Quiz ticket sold to %s (₹%s) → %s points", buyer, price.String(), points.String()),
			ReferenceID: &t.ID,
		}, tx)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("quiz ticket sold", zap.Uint("seller_id", sellerID), zap.String("price", price.String()), zap.String("points", points.String()))
	pointsEarned(s.notifier, sellerID, points, domain.LedgerQuiz, fmt.Sprintf("Ticket sold! You earned %s points.", points.String()))
	return t, nil
}

func (s *TicketService) List(ctx context.Context, sellerID uint, p repository.Page) ([]models.QuizTicket, int64, error) {
	return s.ticketRepo.List(ctx, sellerID, p)
}
