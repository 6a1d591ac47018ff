package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Validation
var (
	ErrInvalidAmount     = errors.New("Valid amount required")
	ErrMissingFields     = errors.New("missing required fields")
	ErrPhotoRequired     = errors.New("task_id and photo_url are required")
	ErrInvalidQuizInput  = errors.New("quiz_id, title, entry_fee and dates are required")
	ErrKYCNotVerified    = errors.New("OTP verification is required for donations of ₹50,000 or more")
	ErrKYCMismatch       = errors.New("verified OTP does not match this donation's amount or email")
	ErrPaymentSignature  = errors.New("payment verification failed")
	ErrPaymentMismatch   = errors.New("payment does not match this order")
	ErrInvalidFeeStatus  = errors.New("status must be pending, verified, rejected or refunded")
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// Not found
var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrTaskNotFound         = errors.New("task not found or inactive")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrDonationNotFound     = errors.New("donation not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidReferralCode  = errors.New("invalid referral code")
	ErrPaymentOrderNotFound = errors.New("payment order not found")
	ErrFeeNotFound          = errors.New("Transaction not found")
)

// Conflict
var (
	ErrNoReferral            = errors.New("No referral found")
	ErrReferralAlreadyActive = errors.New("referral already activated")
	ErrSelfReferral          = errors.New("you cannot use your own referral code")
	ErrAlreadyReferred       = errors.New("member already has a referrer")
	ErrTaskAlreadyCompleted  = errors.New("You have already completed this task")
	ErrAlreadyEnrolled       = errors.New("already enrolled in this quiz")
	ErrNotEnrolled           = errors.New("not enrolled in this quiz")
	ErrAlreadySubmitted      = errors.New("quiz already submitted")
	ErrQuizNotActive         = errors.New("quiz is not open")
	ErrEnrollmentClosed      = errors.New("enrollment for this quiz has closed")
	ErrQuizNotClosed         = errors.New("quiz must be closed before results are declared")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrQuizExists            = errors.New("quiz id already exists")
	ErrPaymentReused         = errors.New("payment already recorded")
)

// Auth
var (
	ErrEmailExists  = errors.New("email already registered")
	ErrMobileExists = errors.New("mobile already registered")
	ErrInvalidCreds = errors.New("Invalid Member ID or password")
)

// OTP
var (
	ErrOTPBelowThreshold  = errors.New("OTP verification is only required for donations ≥ ₹50,000")
	ErrOTPRateLimited     = errors.New("Too many OTP requests. Please wait 10 minutes before trying again.")
	ErrOTPNotFound        = errors.New("OTP has expired or was not found. Please request a new OTP.")
	ErrOTPTooManyAttempts = errors.New("Too many incorrect attempts. Please request a new OTP.")
	ErrOTPMismatch        = errors.New("incorrect OTP")
	ErrOTPInvalidAction   = errors.New("Invalid action. Use 'send' or 'verify'.")
)

// OTPMismatchError carries the attempts left; errors.Is(err, ErrOTPMismatch) holds.
type OTPMismatchError struct {
	Remaining int
}

func (e *OTPMismatchError) Error() string {
	return fmt.Sprintf("Incorrect OTP. %d attempt(s) remaining.", e.Remaining)
}

func (e *OTPMismatchError) Is(target error) bool { return target == ErrOTPMismatch }

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
