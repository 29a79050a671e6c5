package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"roombooking/middleware"
	"roombooking/services/booking"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// busyRetryAfter is the Retry-After hint, in seconds, sent with busy responses.
	busyRetryAfter = 1
	// statusClientClosedRequest is the nginx convention for a request the client abandoned.
	statusClientClosedRequest = 499
)

func statusFor(code booking.ErrorCode) int {
	switch code {
	case booking.CodeInvalidInterval, booking.CodeDurationOutOfRange, booking.CodeInsufficientNotice,
		booking.CodeInvalidAttendees, booking.CodeCapacityExceeded, booking.CodeInvalidInput:
		return http.StatusBadRequest
	case booking.CodeUnauthorized:
		return http.StatusUnauthorized
	case booking.CodeForbidden:
		return http.StatusForbidden
	case booking.CodeRoomNotFound, booking.CodeBookingNotFound:
		return http.StatusNotFound
	case booking.CodeRoomInactive, booking.CodeSchedulingConflict, booking.CodeDuplicateBookingID,
		booking.CodeModificationWindowClosed, booking.CodeAlreadyTerminal, booking.CodePastBooking:
		return http.StatusConflict
	case booking.CodeBusy:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes a BookingError with its mapped status. Cancelled requests get 499,
// timeouts 504 and anything else a 500.
func respondError(c *gin.Context, err error) {
	var be *booking.BookingError
	switch {
	case errors.As(err, &be):
	case errors.Is(err, context.Canceled):
		middleware.LoggerFrom(c).Debug("Request cancelled by client", zap.Error(err))
		c.AbortWithStatus(statusClientClosedRequest)
		return
	case errors.Is(err, context.DeadlineExceeded):
		utils.JSONError(c, http.StatusGatewayTimeout, "Request timed out", "")
		return
	default:
		middleware.LoggerFrom(c).Error("Booking operation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	status := statusFor(be.Code)
	if be.Code == booking.CodeBusy {
		c.Header("Retry-After", strconv.Itoa(busyRetryAfter))
	}
	var conflicts interface{}
	if len(be.Conflicts) > 0 {
		conflicts = be.Conflicts
	}
	utils.JSONCodedError(c, status, string(be.Code), be.Message, conflicts)
}
