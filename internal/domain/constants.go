package domain

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// LedgerType tags a points ledger entry with the event that produced it.
type LedgerType string

const (
	LedgerDonation   LedgerType = "donation"
	LedgerReferral   LedgerType = "referral"
	LedgerQuiz       LedgerType = "quiz"
	LedgerSocialTask LedgerType = "social_task"
	LedgerRedeem     LedgerType = "redeem"
	LedgerAdjustment LedgerType = "adjustment"
	LedgerSupporter  LedgerType = "supporter"
)

func (t LedgerType) Valid() bool {
	switch t {
	case LedgerDonation, LedgerReferral, LedgerQuiz, LedgerSocialTask,
		LedgerRedeem, LedgerAdjustment, LedgerSupporter:
		return true
	}
	return false
}

// ReferralStatus: pending -> active, pending -> expired.
type ReferralStatus string

const (
	ReferralPending ReferralStatus = "pending"
	ReferralActive  ReferralStatus = "active"
	ReferralExpired ReferralStatus = "expired"
)

func (s ReferralStatus) CanTransition(to ReferralStatus) bool {
	return s == ReferralPending && (to == ReferralActive || to == ReferralExpired)
}

// QuizStatus: upcoming -> active -> closed -> result_declared.
type QuizStatus string

const (
	QuizUpcoming       QuizStatus = "upcoming"
	QuizActive         QuizStatus = "active"
	QuizClosed         QuizStatus = "closed"
	QuizResultDeclared QuizStatus = "result_declared"
)

func (s QuizStatus) CanTransition(to QuizStatus) bool {
	switch s {
	case QuizUpcoming:
		return to == QuizActive
	case QuizActive:
		return to == QuizClosed
	case QuizClosed:
		return to == QuizResultDeclared
	}
	return false
}

type QuizType string

const (
	QuizMonthly    QuizType = "monthly"
	QuizHalfYearly QuizType = "half_yearly"
	QuizYearly     QuizType = "yearly"
)

type ParticipationStatus string

const (
	ParticipationEnrolled  ParticipationStatus = "enrolled"
	ParticipationSubmitted ParticipationStatus = "submitted"
	ParticipationWon       ParticipationStatus = "won"
	ParticipationLost      ParticipationStatus = "lost"
)

// KYCStatus of a donation. not_required and doc_verified are terminal.
type KYCStatus string

const (
	KYCNotRequired KYCStatus = "not_required"
	KYCOTPVerified KYCStatus = "otp_verified"
	KYCPendingDocs KYCStatus = "pending_docs"
	KYCDocVerified KYCStatus = "doc_verified"
)

func (s KYCStatus) CanTransition(to KYCStatus) bool {
	switch s {
	case KYCOTPVerified:
		return to == KYCPendingDocs || to == KYCDocVerified
	case KYCPendingDocs:
		return to == KYCDocVerified
	}
	return false
}

const (
	DonationSourceRazorpay  = "razorpay"
	DonationSourceCash      = "cash"
	DonationSourceBank      = "bank_transfer"
	DonationSourceUPI       = "upi"
	DonationSourceCollected = "member_collected"
)

const TaskCompleted = "completed"

const (
	PostTypeTaskCompletion = "task_completion"
	PostStatusActive       = "active"
)

const (
	FeeJoining = "joining"
	FeeRenewal = "renewal"

	FeeStatusPending  = "pending"
	FeeStatusVerified = "verified"
	FeeStatusRejected = "rejected"
	FeeStatusRefunded = "refunded"
)

// ValidFeeStatus reports whether s is a membership fee status.
func ValidFeeStatus(s string) bool {
	switch s {
	case FeeStatusPending, FeeStatusVerified, FeeStatusRejected, FeeStatusRefunded:
		return true
	}
	return false
}

// PaymentPurpose says what a gateway order pays for. The amount credited is
// always the stored order amount.
type PaymentPurpose string

const (
	PaymentDonation   PaymentPurpose = "donation"
	PaymentMembership PaymentPurpose = "membership"
	PaymentQuiz       PaymentPurpose = "quiz"
)

func (p PaymentPurpose) Valid() bool {
	return p == PaymentDonation || p == PaymentMembership || p == PaymentQuiz
}

const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
)

// Notification types.
const (
	NotifPointsEarned     = "POINTS_EARNED"
	NotifReferralActive   = "REFERRAL_ACTIVATED"
	NotifQuizPrize        = "QUIZ_PRIZE"
	NotifDonationReceived = "DONATION_RECEIVED"
)

// System setting keys that override PointsConfig at runtime.
const (
	SettingPointValue         = "points.point_value"
	SettingDonationPercent    = "points.donation_percent"
	SettingReferralPercent    = "points.referral_percent"
	SettingQuizTicketPercent  = "points.quiz_ticket_percent"
	SettingQuizTicketPrice    = "points.quiz_ticket_price"
	SettingHighValueThreshold = "points.high_value_threshold"
)
