package booking

import (
	"context"
	"fmt"
	"time"

	"roombooking/messaging"
	"roombooking/models"

	"go.uber.org/zap"
)

// CreateBooking admits a new booking for the requester.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, requester models.Identity, in models.CreateBookingInput) (*models.Booking, error) {
	if err := requireIdentity(requester); err != nil {
		return nil, err
	}
	now := s.now()
	start, end := in.Start.UTC(), in.End.UTC()

	// Step 1: shape checks, no lock needed.
	if err := s.Policy.ValidateInterval(start, end, now); err != nil {
		return nil, err
	}
	if err := validateAttendees(in.Attendees); err != nil {
		return nil, err
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(in.Description)
	if err != nil {
		return nil, err
	}

	// Step 2: room existence, state and capacity.
	room, err := s.fetchRoom(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		return nil, newError(CodeRoomInactive, "room %s is not active", room.ID)
	}
	if in.Attendees > room.Capacity {
		return nil, newError(CodeCapacityExceeded, "%d attendees exceed capacity %d of room %s", in.Attendees, room.Capacity, room.ID)
	}

	booking := &models.Booking{
		ID:          s.newID(),
		RoomID:      room.ID,
		UserID:      requester.UserID,
		Title:       title,
		Description: description,
		Start:       start,
		End:         end,
		Attendees:   in.Attendees,
		Status:      s.initialStatus(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	candidate := booking.Interval()

	// Step 3: check-then-commit under the room lock.
	release, err := s.lockRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	conflicts, err := s.conflictsFor(ctx, candidate, "")
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		s.log().Info("Booking rejected on conflict",
			zap.String("roomID", room.ID),
			zap.Time("start", start),
			zap.Int("conflicts", len(conflicts)))
		return nil, conflictError(conflicts)
	}

	if err := s.Repo.Insert(ctx, booking); err != nil {
		return nil, s.storeError(ctx, err, candidate, "")
	}
	release()

	s.log().Info("Booking created",
		zap.String("bookingID", booking.ID),
		zap.String("roomID", booking.RoomID),
		zap.String("userID", booking.UserID),
		zap.String("status", string(booking.Status)))
	s.afterCommit(messaging.EventBookingCreated, booking, requester.UserID, true)
	return booking, nil
}

// UpdateBooking changes the time, attendees or text of an active booking.
func (s *DefaultBookingService) UpdateBooking(ctx context.Context, requester models.Identity, bookingID string, in models.UpdateBookingInput) (*models.Booking, error) {
	if err := requireIdentity(requester); err != nil {
		return nil, err
	}
	current, err := s.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(current.UserID) {
		return nil, ErrForbidden
	}
	room, err := s.fetchRoom(ctx, current.RoomID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockRoom(ctx, current.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock; the record may have changed while waiting.
	current, err = s.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if EffectiveStatus(current, now).Terminal() {
		return nil, ErrAlreadyTerminal
	}
	if !s.Policy.ModifiableAt(current.Start, now) {
		return nil, newError(CodeModificationWindowClosed, "booking can only be modified until %s before it starts", s.Policy.ModificationCutoff)
	}

	updated, timeChanged, err := s.mergeUpdate(current, in, room, now)
	if err != nil {
		return nil, err
	}
	candidate := updated.Interval()

	if timeChanged {
		conflicts, err := s.conflictsFor(ctx, candidate, bookingID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, conflictError(conflicts)
		}
	}

	if err := s.Repo.Replace(ctx, updated); err != nil {
		return nil, s.storeError(ctx, err, candidate, bookingID)
	}
	release()

	s.log().Info("Booking updated",
		zap.String("bookingID", updated.ID),
		zap.Bool("rescheduled", timeChanged))
	s.afterCommit(messaging.EventBookingUpdated, updated, requester.UserID, timeChanged)
	return updated, nil
}

// mergeUpdate applies the optional fields to a copy of current and validates the result.
func (s *DefaultBookingService) mergeUpdate(current *models.Booking, in models.UpdateBookingInput, room *models.Room, now time.Time) (*models.Booking, bool, error) {
	updated := *current
	if in.Start != nil {
		updated.Start = in.Start.UTC()
	}
	if in.End != nil {
		updated.End = in.End.UTC()
	}
	if !updated.Start.Before(updated.End) {
		return nil, false, ErrInvalidInterval
	}

	timeChanged := in.TimeChanged(current)
	if timeChanged {
		if err := s.Policy.ValidateInterval(updated.Start, updated.End, now); err != nil {
			return nil, false, err
		}
		if !room.Active {
			return nil, false, newError(CodeRoomInactive, "room %s is not active", room.ID)
		}
	}

	if in.Attendees != nil {
		if err := validateAttendees(*in.Attendees); err != nil {
			return nil, false, err
		}
		updated.Attendees = *in.Attendees
	}
	if updated.Attendees > room.Capacity {
		return nil, false, newError(CodeCapacityExceeded, "%d attendees exceed capacity %d of room %s", updated.Attendees, room.Capacity, room.ID)
	}

	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, false, err
		}
		updated.Title = title
	}
	if in.Description != nil {
		desc, err := validateDescription(*in.Description)
		if err != nil {
			return nil, false, err
		}
		updated.Description = desc
	}

	updated.UpdatedAt = now
	return &updated, timeChanged, nil
}

// CancelBooking cancels a future booking; the record stays for auditing.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, requester models.Identity, bookingID, reason string) (*models.Booking, error) {
	if err := requireIdentity(requester); err != nil {
		return nil, err
	}
	current, err := s.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(current.UserID) {
		return nil, ErrForbidden
	}

	release, err := s.lockRoom(ctx, current.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err = s.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if EffectiveStatus(current, now).Terminal() {
		return nil, ErrAlreadyTerminal
	}
	if !current.Start.After(now) {
		return nil, ErrPastBooking
	}

	cancelled := *current
	cancelled.Status = models.StatusCancelled
	cancelled.CancelledBy = requester.UserID
	cancelled.CancellationReason = sanitizeReason(reason)
	cancelled.CancelledAt = &now
	cancelled.UpdatedAt = now

	if err := s.Repo.Remove(ctx, &cancelled); err != nil {
		return nil, s.storeError(ctx, err, cancelled.Interval(), bookingID)
	}
	release()

	s.log().Info("Booking cancelled",
		zap.String("bookingID", bookingID),
		zap.String("cancelledBy", requester.UserID))
	s.afterCommit(messaging.EventBookingCancelled, &cancelled, requester.UserID, false)
	return &cancelled, nil
}

// ConfirmBooking approves a pending booking. Admin only.
func (s *DefaultBookingService) ConfirmBooking(ctx context.Context, requester models.Identity, bookingID string) (*models.Booking, error) {
	if err := requireIdentity(requester); err != nil {
		return nil, err
	}
	if !requester.IsAdmin() {
		return nil, newError(CodeForbidden, "admin access required")
	}
	current, err := s.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockRoom(ctx, current.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err = s.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	switch status := EffectiveStatus(current, now); {
	case status.Terminal():
		return nil, ErrAlreadyTerminal
	case status == models.StatusConfirmed:
		return current, nil
	}
	if !current.Start.After(now) {
		return nil, ErrPastBooking
	}

	conflicts, err := s.conflictsFor(ctx, current.Interval(), bookingID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, conflictError(conflicts)
	}

	if !CanTransition(current.Status, models.StatusConfirmed) {
		return nil, fmt.Errorf("unexpected transition %s -> %s", current.Status, models.StatusConfirmed)
	}
	if err := s.Repo.SetStatus(ctx, bookingID, models.StatusPending, models.StatusConfirmed, now); err != nil {
		return nil, s.storeError(ctx, err, current.Interval(), bookingID)
	}
	release()

	confirmed := *current
	confirmed.Status = models.StatusConfirmed
	confirmed.UpdatedAt = now

	s.log().Info("Booking confirmed", zap.String("bookingID", bookingID), zap.String("admin", requester.UserID))
	s.afterCommit(messaging.EventBookingConfirmed, &confirmed, requester.UserID, true)
	return &confirmed, nil
}
