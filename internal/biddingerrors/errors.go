package biddingerrors

import (
	"errors"
	"fmt"
)

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrDuplicateAmount = errors.New("amount already taken on auction")
)

// Code is the stable, machine-readable rejection vocabulary sent to clients
type Code string

const (
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeAuctionNotFound     Code = "AUCTION_NOT_FOUND"
	CodeAuctionNotApproved  Code = "AUCTION_NOT_APPROVED"
	CodeAuctionEnded        Code = "AUCTION_ENDED"
	CodeCannotBidOwnAuction Code = "CANNOT_BID_OWN_AUCTION"
	CodeVerificationNeeded  Code = "VERIFICATION_REQUIRED"
	CodeProfileIncomplete   Code = "PROFILE_INCOMPLETE"
	CodeDepositRequired     Code = "DEPOSIT_REQUIRED"
	CodeBelowMinimum        Code = "BELOW_MINIMUM"
	CodeAboveMaximum        Code = "ABOVE_MAXIMUM"
	CodePriceExists         Code = "PRICE_EXISTS"
	CodeCommitFailed        Code = "COMMIT_FAILED"
	CodeServerError         Code = "SERVER_ERROR"
)

// business logic errors, one per code
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidAmount       = errors.New("invalid bid amount")
	ErrAuctionNotApproved  = errors.New("auction not approved")
	ErrAuctionEnded        = errors.New("auction ended")
	ErrCannotBidOwnAuction = errors.New("cannot bid on own auction")
	ErrVerificationNeeded  = errors.New("verification required")
	ErrProfileIncomplete   = errors.New("profile incomplete")
	ErrDepositRequired     = errors.New("deposit required")
	ErrBelowMinimum        = errors.New("bid amount below minimum")
	ErrAboveMaximum        = errors.New("bid amount above maximum")
	ErrPriceExists         = errors.New("price already taken")
	ErrCommitFailed        = errors.New("bid commit failed")
	ErrServerError         = errors.New("server error")
)

var sentinels = map[Code]error{
	CodeInvalidInput:        ErrInvalidInput,
	CodeInvalidAmount:       ErrInvalidAmount,
	CodeAuctionNotFound:     ErrAuctionNotFound,
	CodeAuctionNotApproved:  ErrAuctionNotApproved,
	CodeAuctionEnded:        ErrAuctionEnded,
	CodeCannotBidOwnAuction: ErrCannotBidOwnAuction,
	CodeVerificationNeeded:  ErrVerificationNeeded,
	CodeProfileIncomplete:   ErrProfileIncomplete,
	CodeDepositRequired:     ErrDepositRequired,
	CodeBelowMinimum:        ErrBelowMinimum,
	CodeAboveMaximum:        ErrAboveMaximum,
	CodePriceExists:         ErrPriceExists,
	CodeCommitFailed:        ErrCommitFailed,
	CodeServerError:         ErrServerError,
}

// Rejection is a bid or room failure carrying a code, a human-readable message
// and the structured context a client needs to self-correct.
type Rejection struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	Err     error          `json:"-"`
}

// Reject builds a Rejection for code
func Reject(code Code, message string, context map[string]any) *Rejection {
	return &Rejection{Code: code, Message: message, Context: context}
}

// Wrap builds a Rejection that keeps the underlying cause
func Wrap(code Code, message string, err error) *Rejection {
	return &Rejection{Code: code, Message: message, Err: err}
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s: %v", r.Code, r.Message, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Is matches the sentinel error registered for the rejection's code
func (r *Rejection) Is(target error) bool {
	sentinel, ok := sentinels[r.Code]
	return ok && sentinel == target
}

// AsRejection returns err as a Rejection. Anything that is not already a
// Rejection becomes SERVER_ERROR so raw causes never reach clients.
func AsRejection(err error) *Rejection {
	if err == nil {
		return nil
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej
	}
	return Wrap(CodeServerError, "internal server error, please try again", err)
}
