package booking

import (
	"context"
	"errors"

	"roombooking/database/repository/schedule"
	"roombooking/messaging"
	"roombooking/models"

	"go.uber.org/zap"
)

const sweepBatchSize = 100

// CompleteBooking flips a confirmed booking to completed once its end has
// passed. Calling it early, twice, or on any other status is a no-op.
func (s *DefaultBookingService) CompleteBooking(ctx context.Context, bookingID string) error {
	_, err := s.completeBooking(ctx, bookingID)
	return err
}

// completeBooking reports whether this call performed the transition.
func (s *DefaultBookingService) completeBooking(ctx context.Context, bookingID string) (bool, error) {
	current, err := s.fetchBooking(ctx, bookingID)
	if errors.Is(err, ErrBookingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if current.Status != models.StatusConfirmed || s.now().Before(current.End) {
		return false, nil
	}

	release, err := s.lockRoom(ctx, current.RoomID)
	if err != nil {
		return false, err
	}
	defer release()

	now := s.now()
	err = s.Repo.SetStatus(ctx, bookingID, models.StatusConfirmed, models.StatusCompleted, now)
	if errors.Is(err, schedule.ErrStatusMismatch) || errors.Is(err, schedule.ErrBookingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, s.storeError(ctx, err, current.Interval(), bookingID)
	}
	release()

	completed := *current
	completed.Status = models.StatusCompleted
	completed.UpdatedAt = now
	s.log().Debug("Booking completed", zap.String("bookingID", bookingID))
	s.afterCommit(messaging.EventBookingCompleted, &completed, "", false)
	return true, nil
}

// CompleteElapsed persists completion for every confirmed booking that has ended.
func (s *DefaultBookingService) CompleteElapsed(ctx context.Context) (int, error) {
	completed := 0
	for {
		batch, err := s.Repo.Elapsed(ctx, s.now(), sweepBatchSize)
		if err != nil {
			return completed, err
		}
		progressed := 0
		for i := range batch {
			done, err := s.completeBooking(ctx, batch[i].ID)
			if err != nil {
				s.log().Warn("Failed to complete booking", zap.String("bookingID", batch[i].ID), zap.Error(err))
				continue
			}
			if done {
				progressed++
			}
		}
		completed += progressed
		if len(batch) < sweepBatchSize || progressed == 0 {
			break
		}
	}
	if completed > 0 {
		s.log().Info("Completed elapsed bookings", zap.Int("count", completed))
	}
	return completed, nil
}
