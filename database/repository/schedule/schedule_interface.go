package schedule

import (
	"context"
	"errors"
	"time"

	"roombooking/models"
)

var (
	ErrDuplicateBookingID = errors.New("duplicate booking id")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrStatusMismatch     = errors.New("booking status mismatch")
	// ErrOverlap is returned by stores that enforce non-overlap themselves.
	ErrOverlap = errors.New("slot_overlapped")
)

// Repository is the interval store: booking records plus the per-room set of
// active (pending or confirmed) intervals. Writes for one room are expected to
// be serialized by the caller.
type Repository interface {
	// IntervalsFor returns every active interval of the room ordered by start, then booking id.
	IntervalsFor(ctx context.Context, roomID string) ([]models.Interval, error)
	// IntervalsBetween returns the active intervals overlapping [from, to), same order.
	IntervalsBetween(ctx context.Context, roomID string, from, to time.Time) ([]models.Interval, error)
	Insert(ctx context.Context, b *models.Booking) error
	// Remove stores the cancellation (status and metadata carried by b); the record is kept.
	Remove(ctx context.Context, b *models.Booking) error
	// Replace swaps the interval and mutable fields of an active booking atomically.
	Replace(ctx context.Context, b *models.Booking) error
	SetStatus(ctx context.Context, bookingID string, from, to models.Status, at time.Time) error
	Get(ctx context.Context, bookingID string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) (models.BookingPage, error)
	// Elapsed returns up to limit confirmed bookings whose end is at or before now.
	Elapsed(ctx context.Context, now time.Time, limit int) ([]models.Booking, error)
}

func activeStatuses() []models.Status {
	return []models.Status{models.StatusPending, models.StatusConfirmed}
}
