package booking

import (
	"context"
	"fmt"
	"time"

	"roombooking/models"
)

const hoursPerDay = 24

// GetBooking returns the booking with its effective status. Owner or admin only.
func (s *DefaultBookingService) GetBooking(ctx context.Context, requester models.Identity, bookingID string) (*models.Booking, error) {
	if err := requireIdentity(requester); err != nil {
		return nil, err
	}
	b, err := s.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(b.UserID) {
		return nil, ErrForbidden
	}
	return withEffectiveStatus(b, s.now()), nil
}

// ListBookings pages through bookings. Non-admins only ever see their own.
func (s *DefaultBookingService) ListBookings(ctx context.Context, requester models.Identity, filter models.BookingFilter) (models.BookingPage, error) {
	if err := requireIdentity(requester); err != nil {
		return models.BookingPage{}, err
	}
	if !requester.IsAdmin() {
		filter.UserID = requester.UserID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return models.BookingPage{}, newError(CodeInvalidInput, "unknown status %q", filter.Status)
	}

	page, err := s.Repo.List(ctx, filter)
	if err != nil {
		return models.BookingPage{}, fmt.Errorf("failed to list bookings: %w", err)
	}
	now := s.now()
	for i := range page.Items {
		page.Items[i].Status = EffectiveStatus(&page.Items[i], now)
	}
	return page, nil
}

// CheckAvailability reports whether [Start, End) is free. The answer is
// advisory; only CreateBooking decides under the room lock.
func (s *DefaultBookingService) CheckAvailability(ctx context.Context, in models.AvailabilityInput) (models.AvailabilityResult, error) {
	start, end := in.Start.UTC(), in.End.UTC()
	if !start.Before(end) {
		return models.AvailabilityResult{}, ErrInvalidInterval
	}
	if _, err := s.fetchRoom(ctx, in.RoomID); err != nil {
		return models.AvailabilityResult{}, err
	}

	candidate := models.Interval{RoomID: in.RoomID, Start: start, End: end}
	conflicts, err := s.conflictsFor(ctx, candidate, in.ExcludeID)
	if err != nil {
		return models.AvailabilityResult{}, err
	}
	if conflicts == nil {
		conflicts = []models.Interval{}
	}
	return models.AvailabilityResult{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// ListIntervals returns the room's committed intervals overlapping [from, to).
func (s *DefaultBookingService) ListIntervals(ctx context.Context, roomID string, from, to time.Time) ([]models.Interval, error) {
	from, to = from.UTC(), to.UTC()
	if !from.Before(to) {
		return nil, ErrInvalidInterval
	}
	if _, err := s.fetchRoom(ctx, roomID); err != nil {
		return nil, err
	}
	intervals, err := s.Repo.IntervalsBetween(ctx, roomID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list intervals for room %s: %w", roomID, err)
	}
	if intervals == nil {
		intervals = []models.Interval{}
	}
	return intervals, nil
}

// AvailabilityMatrix splits the UTC day containing day into 24 hourly slots
// and marks each one free or taken.
func (s *DefaultBookingService) AvailabilityMatrix(ctx context.Context, roomID string, day time.Time) (models.AvailabilityMatrix, error) {
	day = day.UTC()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(hoursPerDay * time.Hour)

	intervals, err := s.ListIntervals(ctx, roomID, dayStart, dayEnd)
	if err != nil {
		return models.AvailabilityMatrix{}, err
	}

	matrix := models.AvailabilityMatrix{
		RoomID: roomID,
		Date:   dayStart.Format("2006-01-02"),
		Slots:  make([]models.HourSlot, 0, hoursPerDay),
	}
	for h := 0; h < hoursPerDay; h++ {
		slot := models.HourSlot{
			Hour:  h,
			Start: dayStart.Add(time.Duration(h) * time.Hour),
			End:   dayStart.Add(time.Duration(h+1) * time.Hour),
		}
		taken := HasConflict(models.Interval{Start: slot.Start, End: slot.End}, intervals, "")
		slot.Available = len(taken) == 0
		if !slot.Available {
			slot.BookingID = taken[0].BookingID
		}
		matrix.Slots = append(matrix.Slots, slot)
	}
	return matrix, nil
}
