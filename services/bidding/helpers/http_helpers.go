package helpers

import (
	"fmt"
	"net/http"

	"bidding-room/internal/biddingerrors"
	"bidding-room/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps a rejection code to an HTTP status
func MapErrorToHTTP(err error) (int, *biddingerrors.Rejection) {
	rej := biddingerrors.AsRejection(err)

	switch rej.Code {
	case biddingerrors.CodeInvalidInput, biddingerrors.CodeInvalidAmount:
		return http.StatusBadRequest, rej
	case biddingerrors.CodeAuctionNotFound:
		return http.StatusNotFound, rej
	case biddingerrors.CodeAuctionNotApproved,
		biddingerrors.CodeAuctionEnded,
		biddingerrors.CodeCannotBidOwnAuction,
		biddingerrors.CodeVerificationNeeded,
		biddingerrors.CodeProfileIncomplete,
		biddingerrors.CodeDepositRequired:
		return http.StatusForbidden, rej
	case biddingerrors.CodeBelowMinimum, biddingerrors.CodeAboveMaximum:
		return http.StatusUnprocessableEntity, rej
	case biddingerrors.CodePriceExists:
		return http.StatusConflict, rej
	case biddingerrors.CodeCommitFailed:
		return http.StatusServiceUnavailable, rej
	default:
		return http.StatusInternalServerError, rej
	}
}

// WriteError maps err and sends it as a rejection body
func WriteError(c *gin.Context, err error) *biddingerrors.Rejection {
	status, rej := MapErrorToHTTP(err)
	utils.JSONRejection(c, status, string(rej.Code), rej.Message, rej.Context)
	return rej
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
