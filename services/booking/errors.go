package booking

import (
	"errors"
	"fmt"

	"roombooking/models"
)

// ErrorCode is the stable, machine-readable reason of a BookingError.
type ErrorCode string

const (
	CodeInvalidInterval          ErrorCode = "invalid_interval"
	CodeDurationOutOfRange       ErrorCode = "duration_out_of_range"
	CodeInsufficientNotice       ErrorCode = "insufficient_notice"
	CodeInvalidAttendees         ErrorCode = "invalid_attendees"
	CodeCapacityExceeded         ErrorCode = "capacity_exceeded"
	CodeInvalidInput             ErrorCode = "invalid_input"
	CodeUnauthorized             ErrorCode = "unauthorized"
	CodeForbidden                ErrorCode = "forbidden"
	CodeRoomNotFound             ErrorCode = "room_not_found"
	CodeRoomInactive             ErrorCode = "room_inactive"
	CodeBookingNotFound          ErrorCode = "booking_not_found"
	CodeSchedulingConflict       ErrorCode = "scheduling_conflict"
	CodeDuplicateBookingID       ErrorCode = "duplicate_booking_id"
	CodeModificationWindowClosed ErrorCode = "modification_window_closed"
	CodeAlreadyTerminal          ErrorCode = "already_terminal"
	CodePastBooking              ErrorCode = "past_booking"
	CodeBusy                     ErrorCode = "busy"
)

// BookingError is returned for every rejected booking operation. Conflicts is
// only populated for scheduling conflicts.
type BookingError struct {
	Code      ErrorCode
	Message   string
	Conflicts []models.Interval
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on the code so errors.Is(err, ErrSchedulingConflict) works for any message.
func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidInterval          = &BookingError{Code: CodeInvalidInterval, Message: "start time must be before end time"}
	ErrDurationOutOfRange       = &BookingError{Code: CodeDurationOutOfRange, Message: "booking duration is out of range"}
	ErrInsufficientNotice       = &BookingError{Code: CodeInsufficientNotice, Message: "booking starts too soon"}
	ErrInvalidAttendees         = &BookingError{Code: CodeInvalidAttendees, Message: "attendees must be at least 1"}
	ErrCapacityExceeded         = &BookingError{Code: CodeCapacityExceeded, Message: "attendees exceed room capacity"}
	ErrInvalidInput             = &BookingError{Code: CodeInvalidInput, Message: "invalid input"}
	ErrUnauthorized             = &BookingError{Code: CodeUnauthorized, Message: "authentication required"}
	ErrForbidden                = &BookingError{Code: CodeForbidden, Message: "not allowed to access this booking"}
	ErrRoomNotFound             = &BookingError{Code: CodeRoomNotFound, Message: "room not found"}
	ErrRoomInactive             = &BookingError{Code: CodeRoomInactive, Message: "room is not available for booking"}
	ErrBookingNotFound          = &BookingError{Code: CodeBookingNotFound, Message: "booking not found"}
	ErrSchedulingConflict       = &BookingError{Code: CodeSchedulingConflict, Message: "room is already booked for this time"}
	ErrDuplicateBookingID       = &BookingError{Code: CodeDuplicateBookingID, Message: "booking id already exists"}
	ErrModificationWindowClosed = &BookingError{Code: CodeModificationWindowClosed, Message: "booking can no longer be modified"}
	ErrAlreadyTerminal          = &BookingError{Code: CodeAlreadyTerminal, Message: "booking is already cancelled or completed"}
	ErrPastBooking              = &BookingError{Code: CodePastBooking, Message: "booking has already started"}
	ErrBusy                     = &BookingError{Code: CodeBusy, Message: "room is busy, retry shortly"}
)

func newError(code ErrorCode, format string, args ...interface{}) *BookingError {
	return &BookingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func conflictError(conflicts []models.Interval) *BookingError {
	return &BookingError{
		Code:      CodeSchedulingConflict,
		Message:   fmt.Sprintf("room is already booked for this time (%d conflicting booking(s))", len(conflicts)),
		Conflicts: conflicts,
	}
}

// CodeOf extracts the code of a BookingError, or "" for any other error.
func CodeOf(err error) ErrorCode {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
