package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomRepo "roombooking/database/repository/room"
	"roombooking/database/repository/schedule"
	"roombooking/messaging"
	"roombooking/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

var _ BookingService = (*DefaultBookingService)(nil)

// DefaultBookingService implements BookingService on an interval store and a room catalog.
// Publisher, Completion, Logger, Clock and NewID are optional.
type DefaultBookingService struct {
	Repo        schedule.Repository
	Rooms       roomRepo.Repository
	Locks       *RoomLocks
	Policy      Policy
	AutoConfirm bool
	Publisher   messaging.Publisher
	Completion  CompletionScheduler
	Logger      *zap.Logger
	Clock       func() time.Time
	NewID       func() string
}

func (s *DefaultBookingService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultBookingService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New().String()
}

func (s *DefaultBookingService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

func (s *DefaultBookingService) initialStatus() models.Status {
	if s.AutoConfirm {
		return models.StatusConfirmed
	}
	return models.StatusPending
}

// lockRoom takes the room's serialization token.
func (s *DefaultBookingService) lockRoom(ctx context.Context, roomID string) (func(), error) {
	release, err := s.Locks.Acquire(ctx, roomID)
	if err != nil {
		s.log().Warn("Room lock not acquired", zap.String("roomID", roomID), zap.Error(err))
		return nil, err
	}
	return release, nil
}

// fetchRoom loads a room and maps catalog errors onto booking errors.
func (s *DefaultBookingService) fetchRoom(ctx context.Context, roomID string) (*models.Room, error) {
	if roomID == "" {
		return nil, ErrRoomNotFound
	}
	room, err := s.Rooms.GetByID(ctx, roomID)
	if errors.Is(err, roomRepo.ErrRoomNotFound) {
		return nil, newError(CodeRoomNotFound, "room %s not found", roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room %s: %w", roomID, err)
	}
	return room, nil
}

// fetchBooking loads the stored record (not the effective view).
func (s *DefaultBookingService) fetchBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.Get(ctx, bookingID)
	if errors.Is(err, schedule.ErrBookingNotFound) {
		return nil, newError(CodeBookingNotFound, "booking %s not found", bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", bookingID, err)
	}
	return b, nil
}

// conflictsFor runs the conflict detector against the room's committed set.
func (s *DefaultBookingService) conflictsFor(ctx context.Context, candidate models.Interval, excludeID string) ([]models.Interval, error) {
	existing, err := s.Repo.IntervalsFor(ctx, candidate.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load intervals for room %s: %w", candidate.RoomID, err)
	}
	return HasConflict(candidate, existing, excludeID), nil
}

// storeError translates interval store sentinels into booking errors.
func (s *DefaultBookingService) storeError(ctx context.Context, err error, candidate models.Interval, excludeID string) error {
	switch {
	case errors.Is(err, schedule.ErrDuplicateBookingID):
		return newError(CodeDuplicateBookingID, "booking id %s already exists", candidate.BookingID)
	case errors.Is(err, schedule.ErrBookingNotFound):
		return newError(CodeBookingNotFound, "booking %s not found", candidate.BookingID)
	case errors.Is(err, schedule.ErrStatusMismatch):
		return ErrAlreadyTerminal
	case errors.Is(err, schedule.ErrOverlap):
		conflicts, cerr := s.conflictsFor(ctx, candidate, excludeID)
		if cerr != nil {
			s.log().Warn("Could not load conflicts after store overlap", zap.Error(cerr))
		}
		return conflictError(conflicts)
	}
	return fmt.Errorf("interval store: %w", err)
}

// afterCommit publishes the event and, for confirmed bookings, schedules completion.
// Failures are logged only; the commit already happened.
func (s *DefaultBookingService) afterCommit(eventType string, b *models.Booking, actorID string, scheduleCompletion bool) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	logger := s.log().With(zap.String("bookingID", b.ID), zap.String("event", eventType))
	if s.Publisher != nil {
		event := messaging.NewBookingEvent(eventType, b, actorID, s.now())
		if err := s.Publisher.Publish(ctx, event); err != nil {
			logger.Error("Failed to publish booking event", zap.Error(err))
		}
	}
	if scheduleCompletion && s.Completion != nil && b.Status == models.StatusConfirmed {
		if err := s.Completion.ScheduleCompletion(ctx, b.ID, b.End); err != nil {
			logger.Error("Failed to schedule booking completion", zap.Error(err))
		}
	}
}

func requireIdentity(requester models.Identity) error {
	if requester.UserID == "" {
		return ErrUnauthorized
	}
	return nil
}
