package booking

import (
	"context"
	"time"

	"roombooking/models"
)

// BookingService is the admission core: every mutating call for a room runs
// under that room's lock, reads are lock-free and advisory.
type BookingService interface {
	CreateBooking(ctx context.Context, requester models.Identity, in models.CreateBookingInput) (*models.Booking, error)
	UpdateBooking(ctx context.Context, requester models.Identity, bookingID string, in models.UpdateBookingInput) (*models.Booking, error)
	CancelBooking(ctx context.Context, requester models.Identity, bookingID, reason string) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, requester models.Identity, bookingID string) (*models.Booking, error)

	GetBooking(ctx context.Context, requester models.Identity, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, requester models.Identity, filter models.BookingFilter) (models.BookingPage, error)
	CheckAvailability(ctx context.Context, in models.AvailabilityInput) (models.AvailabilityResult, error)
	ListIntervals(ctx context.Context, roomID string, from, to time.Time) ([]models.Interval, error)
	AvailabilityMatrix(ctx context.Context, roomID string, day time.Time) (models.AvailabilityMatrix, error)

	// CompleteBooking persists confirmed -> completed once the booking has ended.
	CompleteBooking(ctx context.Context, bookingID string) error
	// CompleteElapsed completes every confirmed booking that has ended and returns how many were flipped.
	CompleteElapsed(ctx context.Context) (int, error)
}

// CompletionScheduler arranges for CompleteBooking to run when a booking ends.
type CompletionScheduler interface {
	ScheduleCompletion(ctx context.Context, bookingID string, end time.Time) error
}
