package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Rules are the point-earning constants in effect for a request.
type Rules struct {
	PointValue         decimal.Decimal
	DonationPercent    decimal.Decimal
	ReferralPercent    decimal.Decimal
	QuizTicketPercent  decimal.Decimal
	QuizTicketPrice    decimal.Decimal
	HighValueThreshold decimal.Decimal
}

// DefaultRules: 1 point = ₹10; donation 10%, referral 50%, quiz ticket 10%.
func DefaultRules() Rules {
	return Rules{
		PointValue:         decimal.NewFromInt(10),
		DonationPercent:    decimal.NewFromInt(10),
		ReferralPercent:    decimal.NewFromInt(50),
		QuizTicketPercent:  decimal.NewFromInt(10),
		QuizTicketPrice:    decimal.NewFromInt(100),
		HighValueThreshold: decimal.NewFromInt(50000),
	}
}

// Reward returns the rupee reward (amount * percent / 100) and its value in
// points (rupees / PointValue).
func (r Rules) Reward(amount, percent decimal.Decimal) (rupees, points decimal.Decimal) {
	rupees = amount.Mul(percent).Div(hundred)
	return rupees, r.ToPoints(rupees)
}

func (r Rules) ToPoints(rupees decimal.Decimal) decimal.Decimal {
	if r.PointValue.IsZero() {
		return decimal.Zero
	}
	return rupees.Div(r.PointValue)
}

// KYCRequired reports whether a donation of amount needs OTP verification.
func (r Rules) KYCRequired(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(r.HighValueThreshold)
}
