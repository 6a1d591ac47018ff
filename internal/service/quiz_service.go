package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fwf/config"
	"fwf/internal/domain"
	"fwf/internal/models"
	"fwf/internal/repository"
	"fwf/pkg/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var defaultPrizeSplit = []decimal.Decimal{
	decimal.NewFromInt(50),
	decimal.NewFromInt(30),
	decimal.NewFromInt(20),
}

type QuizInput struct {
	QuizID      string
	Title       string
	Description string
	Type        domain.QuizType
	EntryFee    decimal.Decimal
	Questions   []models.QuizQuestion
	Prizes      models.QuizPrizes
	StartDate   time.Time
	EndDate     time.Time
	ResultDate  time.Time
}

type AnswerInput struct {
	QNo      int `json:"q_no"`
	Selected int `json:"selected"`
}

type QuizService struct {
	tx       *repository.Transactor
	quizRepo *repository.QuizRepository
	userRepo *repository.UserRepository
	wallet   *WalletService
	payments *PaymentService
	rules    *RulesProvider
	cfg      config.QuizConfig
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewQuizService(
	tx *repository.Transactor,
	quizRepo *repository.QuizRepository,
	userRepo *repository.UserRepository,
	wallet *WalletService,
	payments *PaymentService,
	rules *RulesProvider,
	cfg config.QuizConfig,
	notifier Notifier,
	log *zap.Logger,
) *QuizService {
	return &QuizService{
		tx:       tx,
		quizRepo: quizRepo,
		userRepo: userRepo,
		wallet:   wallet,
		payments: payments,
		rules:    rules,
		cfg:      cfg,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *QuizService) Create(ctx context.Context, in QuizInput) (*models.Quiz, error) {
	in.QuizID = strings.ToUpper(strings.TrimSpace(in.QuizID))
	if in.QuizID == "" || strings.TrimSpace(in.Title) == "" || !in.EntryFee.IsPositive() ||
		in.StartDate.IsZero() || in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		return nil, ErrInvalidQuizInput
	}
	if in.Type == "" {
		in.Type = domain.QuizMonthly
	}
	for i := range in.Questions {
		if in.Questions[i].Points <= 0 {
			in.Questions[i].Points = 1
		}
	}
	q := &models.Quiz{
		QuizID:          in.QuizID,
		Title:           in.Title,
		Description:     in.Description,
		Type:            in.Type,
		EntryFee:        in.EntryFee,
		PrizePool:       decimal.Zero,
		Questions:       in.Questions,
		Prizes:          in.Prizes,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		ResultDate:      in.ResultDate,
		Status:          domain.QuizUpcoming,
		TotalCollection: decimal.Zero,
		Winners:         []models.QuizWinner{},
	}
	if err := s.quizRepo.Create(ctx, q); err != nil {
		if isDuplicate(err) {
			return nil, ErrQuizExists
		}
		return nil, err
	}
	s.log.Info("quiz created", zap.String("quiz_id", q.QuizID), zap.String("entry_fee", q.EntryFee.String()))
	return q, nil
}

func (s *QuizService) Get(ctx context.Context, quizID string) (*models.Quiz, error) {
	q, err := s.quizRepo.GetByQuizID(ctx, quizID, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuizService) List(ctx context.Context, statuses ...domain.QuizStatus) ([]models.Quiz, error) {
	return s.quizRepo.List(ctx, statuses...)
}

func (s *QuizService) MyParticipations(ctx context.Context, userID uint) ([]models.QuizParticipation, error) {
	return s.quizRepo.ListByUser(ctx, userID)
}

// SetStatus moves a quiz along upcoming → active → closed. Results are
// declared through DeclareResults only.
func (s *QuizService) SetStatus(ctx context.Context, quizID string, to domain.QuizStatus) (*models.Quiz, error) {
	q, err := s.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if to == domain.QuizResultDeclared || !q.Status.CanTransition(to) {
		return nil, ErrInvalidTransition
	}
	n, err := s.quizRepo.SetStatus(ctx, q.ID, q.Status, to, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrInvalidTransition
	}
	s.log.Info("quiz status changed", zap.String("quiz_id", q.QuizID), zap.String("from", string(q.Status)), zap.String("to", string(to)))
	q.Status = to
	return q, nil
}

// CreateOrder opens an entry fee order for userID on an active quiz.
func (s *QuizService) CreateOrder(ctx context.Context, quizID string, userID uint) (*payment.Order, error) {
	q, err := s.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q.Status != domain.QuizActive {
		return nil, ErrQuizNotActive
	}
	return s.payments.CreateOrder(ctx, OrderInput{
		Purpose:   domain.PaymentQuiz,
		UserID:    &userID,
		Reference: q.QuizID,
		Amount:    q.EntryFee,
	})
}

// Enroll registers userID in an active quiz against a paid entry order for
// that quiz. The participant earns quiz points on the fee; a referral code
// of another member earns that member referral points on the same fee.
func (s *QuizService) Enroll(ctx context.Context, quizID string, userID uint, c Checkout, referralCode string) (*models.QuizParticipation, error) {
	quizID = strings.ToUpper(strings.TrimSpace(quizID))
	order, err := s.payments.Authorize(ctx, c, domain.PaymentQuiz, quizID, &userID)
	if err != nil {
		return nil, err
	}
	rules := s.rules.Current(ctx)
	var (
		p          *models.QuizParticipation
		referrerID uint
	)
	err = s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		q, err := s.quizRepo.GetByQuizID(ctx, quizID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrQuizNotFound
			}
			return err
		}
		if q.Status != domain.QuizActive {
			return ErrQuizNotActive
		}
		if !q.EndDate.IsZero() && s.now().After(q.EndDate) {
			return ErrEnrollmentClosed
		}
		user, err := s.userRepo.GetByID(ctx, userID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrMemberNotFound
			}
			return err
		}
		if _, err := s.quizRepo.GetParticipation(ctx, q.ID, user.ID, tx); err == nil {
			return ErrAlreadyEnrolled
		} else if !isNotFound(err) {
			return err
		}

		if code := strings.TrimSpace(referralCode); code != "" {
			ref, err := s.userRepo.GetByReferralCode(ctx, code, tx)
			switch {
			case err == nil && ref.ID != user.ID:
				referrerID = ref.ID
			case err != nil && !isNotFound(err):
				return err
			default:
				s.log.Debug("quiz referral code ignored", zap.String("code", code), zap.Uint("user_id", user.ID))
			}
		}

		fee := q.EntryFee
		if !order.Amount.Equal(fee) {
			return ErrPaymentMismatch
		}
		if err := s.payments.Settle(ctx, order, c.PaymentID, tx); err != nil {
			return err
		}
		_, points := rules.Reward(fee, rules.QuizTicketPercent)
		poolShare := fee.Mul(decimal.NewFromFloat(s.cfg.PrizePoolPercent)).Div(decimal.NewFromInt(100))
		seq, err := s.quizRepo.AddEnrollment(ctx, q.ID, fee, poolShare, tx)
		if err != nil {
			return err
		}
		p = &models.QuizParticipation{
			QuizID:           q.ID,
			QuizRef:          q.QuizID,
			UserID:           user.ID,
			MemberID:         user.MemberID,
			Name:             user.Name,
			EnrollmentNumber: fmt.Sprintf("FWF-%s-%05d", q.QuizID, seq),
			PaymentID:        c.PaymentID,
			AmountPaid:       fee,
			PointsEarned:     points,
			Answers:          []models.QuizAnswer{},
			Status:           domain.ParticipationEnrolled,
			PrizeWon:         decimal.Zero,
		}
		if referrerID != 0 {
			p.ReferredBy = strings.ToUpper(strings.TrimSpace(referralCode))
			p.ReferrerID = &referrerID
		}
		if err := s.quizRepo.CreateParticipation(ctx, p, tx); err != nil {
			if isDuplicate(err) {
				return ErrAlreadyEnrolled
			}
			return fmt.Errorf("create participation: %w", err)
		}
		err = s.wallet.Credit(ctx, CreditRequest{
			UserID:      user.ID,
			Points:      points,
			Source:      domain.LedgerQuiz,
			Description: fmt.Sprintf("Enrolled in quiz %s (₹%s) → %s points", q.QuizID, fee.String(), points.String()),
			ReferenceID: &p.ID,
		}, tx)
		if err != nil {
			return err
		}
		if referrerID != 0 {
			return s.wallet.Credit(ctx, CreditRequest{
				UserID:      referrerID,
				Points:      points,
				Source:      domain.LedgerReferral,
				Description: fmt.Sprintf("Quiz referral: %s enrolled in %s → %s points", user.MemberID, q.QuizID, points.String()),
				ReferenceID: &p.ID,
			}, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("quiz enrollment", zap.String("quiz_id", p.QuizRef), zap.String("enrollment", p.EnrollmentNumber), zap.Uint("referrer_id", referrerID))
	pointsEarned(s.notifier, userID, p.PointsEarned, domain.LedgerQuiz,
		fmt.Sprintf("Enrolled in %s. You earned %s points.", p.QuizRef, p.PointsEarned.String()))
	if referrerID != 0 {
		pointsEarned(s.notifier, referrerID, p.PointsEarned, domain.LedgerReferral,
			fmt.Sprintf("%s joined quiz %s with your code.", p.MemberID, p.QuizRef))
	}
	return p, nil
}

// Submit scores the answers of an enrolled participant.
func (s *QuizService) Submit(ctx context.Context, quizID string, userID uint, answers []AnswerInput) (*models.QuizParticipation, error) {
	q, err := s.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q.Status != domain.QuizActive {
		return nil, ErrQuizNotActive
	}
	p, err := s.quizRepo.GetParticipation(ctx, q.ID, userID, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	if p.Status != domain.ParticipationEnrolled {
		return nil, ErrAlreadySubmitted
	}

	p.Answers, p.Score = score(q.Questions, answers)
	now := s.now()
	p.QuizSubmitted = true
	p.SubmittedAt = &now
	p.Status = domain.ParticipationSubmitted
	n, err := s.quizRepo.SaveSubmission(ctx, p)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrAlreadySubmitted
	}
	return p, nil
}

// score grades answers; each question counts once and unknown numbers are
// ignored.
func score(questions []models.QuizQuestion, answers []AnswerInput) ([]models.QuizAnswer, int) {
	byNo := make(map[int]models.QuizQuestion, len(questions))
	for _, q := range questions {
		byNo[q.QNo] = q
	}
	seen := make(map[int]bool, len(answers))
	graded := make([]models.QuizAnswer, 0, len(answers))
	total := 0
	for _, a := range answers {
		q, ok := byNo[a.QNo]
		if !ok || seen[a.QNo] {
			continue
		}
		seen[a.QNo] = true
		correct := a.Selected == q.CorrectAnswer
		if correct {
			total += q.Points
		}
		graded = append(graded, models.QuizAnswer{QNo: a.QNo, Selected: a.Selected, IsCorrect: correct})
	}
	return graded, total
}

// prizeFor returns the configured prize for rank (0-based), or the default
// share of the pool when none is set.
func prizeFor(q *models.Quiz, rank int) decimal.Decimal {
	set := []decimal.Decimal{q.Prizes.First, q.Prizes.Second, q.Prizes.Third}
	if set[rank].IsPositive() {
		return set[rank]
	}
	return q.PrizePool.Mul(defaultPrizeSplit[rank]).Div(decimal.NewFromInt(100))
}

// DeclareResults ranks a closed quiz, pays the top three in cash and marks
// the quiz result_declared.
func (s *QuizService) DeclareResults(ctx context.Context, quizID string) (*models.Quiz, error) {
	var (
		quiz    *models.Quiz
		winners []models.QuizWinner
	)
	err := s.tx.InTx(ctx, nil, func(tx *gorm.DB) error {
		q, err := s.quizRepo.GetByQuizID(ctx, quizID, tx)
		if err != nil {
			if isNotFound(err) {
				return ErrQuizNotFound
			}
			return err
		}
		if q.Status != domain.QuizClosed {
			return ErrQuizNotClosed
		}
		ranked, err := s.quizRepo.Ranked(ctx, q.ID, tx)
		if err != nil {
			return err
		}
		winners = make([]models.QuizWinner, 0, len(defaultPrizeSplit))
		for i := 0; i < len(ranked) && i < len(defaultPrizeSplit); i++ {
			p := ranked[i]
			prize := prizeFor(q, i)
			if err := s.quizRepo.SetResult(ctx, p.ID, domain.ParticipationWon, prize, tx); err != nil {
				return err
			}
			err := s.wallet.Credit(ctx, CreditRequest{
				UserID:      p.UserID,
				INR:         prize,
				Source:      domain.LedgerQuiz,
				ReferenceID: &p.ID,
			}, tx)
			if err != nil {
				return err
			}
			winners = append(winners, models.QuizWinner{
				Rank:             i + 1,
				UserID:           p.UserID,
				MemberID:         p.MemberID,
				Name:             p.Name,
				EnrollmentNumber: p.EnrollmentNumber,
				PrizeAmount:      prize,
				Score:            p.Score,
			})
		}
		if err := s.quizRepo.MarkLost(ctx, q.ID, tx); err != nil {
			return err
		}
		if err := s.quizRepo.SaveWinners(ctx, q.ID, winners, tx); err != nil {
			return err
		}
		n, err := s.quizRepo.SetStatus(ctx, q.ID, domain.QuizClosed, domain.QuizResultDeclared, tx)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInvalidTransition
		}
		q.Status = domain.QuizResultDeclared
		q.Winners = winners
		quiz = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("quiz results declared", zap.String("quiz_id", quiz.QuizID), zap.Int("winners", len(winners)))
	if s.notifier != nil {
		for _, w := range winners {
			s.notifier.Notify(w.UserID, domain.NotifQuizPrize, "You won!",
				fmt.Sprintf("Rank %d in %s. ₹%s has been added to your wallet.", w.Rank, quiz.Title, w.PrizeAmount.StringFixed(2)),
				map[string]interface{}{"quiz_id": quiz.QuizID, "rank": w.Rank, "prize": w.PrizeAmount.String()})
		}
	}
	return quiz, nil
}
