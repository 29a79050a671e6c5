package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"roombooking/messaging"
	"roombooking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBooking_ConflictAndTouchingSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateBooking(ctx, alice, createInput("room-a", at(9, 0), at(10, 0), 10))
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, first.Status)
	assert.Equal(t, "alice", first.UserID)

	_, err = f.svc.CreateBooking(ctx, bob, createInput("room-a", at(9, 30), at(10, 30), 10))
	require.ErrorIs(t, err, ErrSchedulingConflict)
	var be *BookingError
	require.True(t, errors.As(err, &be))
	require.Len(t, be.Conflicts, 1)
	assert.Equal(t, first.ID, be.Conflicts[0].BookingID)
	assert.True(t, be.Conflicts[0].Start.Equal(at(9, 0)))

	second, err := f.svc.CreateBooking(ctx, bob, createInput("room-a", at(10, 0), at(11, 0), 10))
	require.NoError(t, err)

	intervals, err := f.repo.IntervalsFor(ctx, "room-a")
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.Equal(t, first.ID, intervals[0].BookingID)
	assert.Equal(t, second.ID, intervals[1].BookingID)

	assert.Equal(t, []string{messaging.EventBookingCreated, messaging.EventBookingCreated}, f.events.Types())
	assert.Contains(t, f.scheduler.scheduled, first.ID)
}

func TestCreateBooking_CapacityExceededInsertsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), alice, createInput("room-a", at(9, 0), at(10, 0), 25))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	intervals, err := f.repo.IntervalsFor(context.Background(), "room-a")
	require.NoError(t, err)
	assert.Empty(t, intervals)
	assert.Empty(t, f.events.Types())
}

func TestCreateBooking_Validation(t *testing.T) {
	tests := []struct {
		description string
		input       models.CreateBookingInput
		expected    error
	}{
		{"start five minutes from now", createInput("room-a", at(8, 5), at(9, 5), 5), ErrInsufficientNotice},
		{"start in the past", createInput("room-a", at(7, 0), at(8, 0), 5), ErrInsufficientNotice},
		{"start equals end", createInput("room-a", at(9, 0), at(9, 0), 5), ErrInvalidInterval},
		{"start after end", createInput("room-a", at(10, 0), at(9, 0), 5), ErrInvalidInterval},
		{"too short", createInput("room-a", at(9, 0), at(9, 10), 5), ErrDurationOutOfRange},
		{"too long", createInput("room-a", at(9, 0), at(17, 1), 5), ErrDurationOutOfRange},
		{"zero attendees", createInput("room-a", at(9, 0), at(10, 0), 0), ErrInvalidAttendees},
		{"unknown room", createInput("room-x", at(9, 0), at(10, 0), 5), ErrRoomNotFound},
		{"inactive room", createInput("room-closed", at(9, 0), at(10, 0), 5), ErrRoomInactive},
		{"over capacity", createInput("room-b", at(9, 0), at(10, 0), 9), ErrCapacityExceeded},
	}

	for _, test := range tests {
		f := newFixture(t)
		_, err := f.svc.CreateBooking(context.Background(), alice, test.input)
		assert.ErrorIsf(t, err, test.expected, test.description)
	}
}

func TestCreateBooking_BoundaryDurationsAndNotice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, alice, createInput("room-a", at(8, 15), at(8, 30), 1))
	assert.NoError(t, err, "exactly the minimum notice and duration")

	_, err = f.svc.CreateBooking(ctx, alice, createInput("room-a", at(9, 0), at(17, 0), 1))
	assert.NoError(t, err, "exactly the maximum duration")
}

func TestCreateBooking_TitleIsSanitized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := createInput("room-a", at(9, 0), at(10, 0), 3)
	in.Title = "  Retro\x00 "
	b, err := f.svc.CreateBooking(ctx, alice, in)
	require.NoError(t, err)
	assert.Equal(t, "Retro", b.Title)

	in = createInput("room-a", at(11, 0), at(12, 0), 3)
	in.Title = " a "
	_, err = f.svc.CreateBooking(ctx, alice, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in.Title = strings.Repeat("x", 201)
	_, err = f.svc.CreateBooking(ctx, alice, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateBooking_RequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateBooking(context.Background(), models.Identity{}, createInput("room-a", at(9, 0), at(10, 0), 1))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateBooking_ConcurrentRequestsAdmitOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const racers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every candidate overlaps 09:00-10:00 by at least 30 minutes.
			start := at(9, 0).Add(time.Duration(i%4) * 10 * time.Minute)
			_, err := f.svc.CreateBooking(ctx, bob, createInput("room-a", start, start.Add(time.Hour), 2))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSchedulingConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, racers-1, conflicts)

	intervals, err := f.repo.IntervalsFor(ctx, "room-a")
	require.NoError(t, err)
	assert.Len(t, intervals, 1)
}

func TestCreateBooking_DifferentRoomsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, alice, createInput("room-a", at(9, 0), at(10, 0), 5))
	require.NoError(t, err)
	_, err = f.svc.CreateBooking(ctx, alice, createInput("room-b", at(9, 0), at(10, 0), 5))
	require.NoError(t, err)
}

func TestCreateBooking_BusyWhenRoomLockHeld(t *testing.T) {
	f := newFixture(t)
	f.svc.Locks = NewRoomLocks(20 * time.Millisecond)

	release, err := f.svc.Locks.Acquire(context.Background(), "room-a")
	require.NoError(t, err)
	defer release()

	_, err = f.svc.CreateBooking(context.Background(), alice, createInput("room-a", at(9, 0), at(10, 0), 5))
	assert.ErrorIs(t, err, ErrBusy)
}

func TestCancelBooking_ThenRebookSameSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))

	cancelled, err := f.svc.CancelBooking(ctx, alice, b.ID, "  plans changed ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "alice", cancelled.CancelledBy)
	assert.Equal(t, "plans changed", cancelled.CancellationReason)
	require.NotNil(t, cancelled.CancelledAt)

	rebooked, err := f.svc.CreateBooking(ctx, bob, createInput("room-a", at(9, 0), at(10, 0), 4))
	require.NoError(t, err)
	assert.NotEqual(t, b.ID, rebooked.ID)

	// The cancelled record is kept for auditing.
	stored, err := f.repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
}

func TestCancelBooking_TwiceIsAlreadyTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))
	_, err := f.svc.CancelBooking(ctx, alice, b.ID, "first")
	require.NoError(t, err)
	before, err := f.repo.Get(ctx, b.ID)
	require.NoError(t, err)

	f.clock.Set(at(8, 5))
	_, err = f.svc.CancelBooking(ctx, alice, b.ID, "second")
	assert.ErrorIs(t, err, ErrAlreadyTerminal)

	after, err := f.repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCancelBooking_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))

	_, err := f.svc.CancelBooking(ctx, bob, b.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.svc.CancelBooking(ctx, admin, b.ID, "room needed")
	require.NoError(t, err)
	assert.Equal(t, "root", cancelled.CancelledBy)

	_, err = f.svc.CancelBooking(ctx, alice, "missing", "")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBooking_StartedOrFinished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))

	f.clock.Set(at(9, 0))
	_, err := f.svc.CancelBooking(ctx, alice, b.ID, "")
	assert.ErrorIs(t, err, ErrPastBooking)

	f.clock.Set(at(10, 0))
	_, err = f.svc.CancelBooking(ctx, alice, b.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyTerminal, "ended bookings read as completed")
}

func TestUpdateBooking_SameTimesDoNotSelfConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))

	updated, err := f.svc.UpdateBooking(ctx, alice, b.ID, models.UpdateBookingInput{
		Start:     ptr(at(9, 0)),
		End:       ptr(at(10, 0)),
		Attendees: ptr(12),
		Title:     ptr("Quarterly planning"),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Attendees)
	assert.Equal(t, "Quarterly planning", updated.Title)
	types := f.events.Types()
	assert.Equal(t, messaging.EventBookingUpdated, types[len(types)-1])
}

func TestUpdateBooking_Reschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))
	other := f.mustCreate(t, bob, at(11, 0), at(12, 0))

	// Extending over its own slot is fine.
	updated, err := f.svc.UpdateBooking(ctx, alice, b.ID, models.UpdateBookingInput{End: ptr(at(10, 30))})
	require.NoError(t, err)
	assert.True(t, updated.End.Equal(at(10, 30)))

	// Moving into another booking is not.
	_, err = f.svc.UpdateBooking(ctx, alice, b.ID, models.UpdateBookingInput{End: ptr(at(11, 30))})
	require.ErrorIs(t, err, ErrSchedulingConflict)
	var be *BookingError
	require.True(t, errors.As(err, &be))
	require.Len(t, be.Conflicts, 1)
	assert.Equal(t, other.ID, be.Conflicts[0].BookingID)

	intervals, err := f.repo.IntervalsFor(ctx, "room-a")
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.True(t, intervals[0].End.Equal(at(10, 30)), "failed update leaves the stored interval untouched")

	assert.Equal(t, at(10, 30), f.scheduler.scheduled[b.ID])
}

func TestUpdateBooking_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))

	_, err := f.svc.UpdateBooking(ctx, bob, b.ID, models.UpdateBookingInput{Title: ptr("Hijack")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateBooking(ctx, alice, b.ID, models.UpdateBookingInput{Start: ptr(at(10, 0))})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = f.svc.UpdateBooking(ctx, alice, b.ID, models.UpdateBookingInput{Attendees: ptr(21)})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = f.svc.UpdateBooking(ctx, alice, b.ID, models.UpdateBookingInput{Attendees: ptr(0)})
	assert.ErrorIs(t, err, ErrInvalidAttendees)

	_, err = f.svc.UpdateBooking(ctx, alice, b.ID, models.UpdateBookingInput{End: ptr(at(9, 5))})
	assert.ErrorIs(t, err, ErrDurationOutOfRange)

	_, err = f.svc.UpdateBooking(ctx, admin, b.ID, models.UpdateBookingInput{Title: ptr("Admin edit")})
	assert.NoError(t, err)

	// 20 minutes before start is inside the 30 minute cutoff.
	f.clock.Set(at(8, 40))
	_, err = f.svc.UpdateBooking(ctx, alice, b.ID, models.UpdateBookingInput{Title: ptr("Too late")})
	assert.ErrorIs(t, err, ErrModificationWindowClosed)
}

func TestUpdateBooking_CancelledIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))
	_, err := f.svc.CancelBooking(ctx, alice, b.ID, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateBooking(ctx, alice, b.ID, models.UpdateBookingInput{Title: ptr("Revived")})
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
}

func TestApprovalWorkflow(t *testing.T) {
	f := newFixture(t)
	f.svc.AutoConfirm = false
	ctx := context.Background()

	pending := f.mustCreate(t, alice, at(9, 0), at(10, 0))
	assert.Equal(t, models.StatusPending, pending.Status)
	assert.NotContains(t, f.scheduler.scheduled, pending.ID)

	// A pending booking already reserves its slot.
	_, err := f.svc.CreateBooking(ctx, bob, createInput("room-a", at(9, 30), at(10, 30), 2))
	assert.ErrorIs(t, err, ErrSchedulingConflict)

	_, err = f.svc.ConfirmBooking(ctx, alice, pending.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := f.svc.ConfirmBooking(ctx, admin, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.Contains(t, f.scheduler.scheduled, pending.ID)

	again, err := f.svc.ConfirmBooking(ctx, admin, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, again.Status)

	assert.Equal(t, []string{messaging.EventBookingCreated, messaging.EventBookingConfirmed}, f.events.Types())
}

func TestConfirmBooking_RejectsStartedAndCancelled(t *testing.T) {
	f := newFixture(t)
	f.svc.AutoConfirm = false
	ctx := context.Background()

	late := f.mustCreate(t, alice, at(9, 0), at(10, 0))
	gone := f.mustCreate(t, alice, at(11, 0), at(12, 0))
	_, err := f.svc.CancelBooking(ctx, alice, gone.ID, "")
	require.NoError(t, err)

	_, err = f.svc.ConfirmBooking(ctx, admin, gone.ID)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)

	f.clock.Set(at(9, 1))
	_, err = f.svc.ConfirmBooking(ctx, admin, late.ID)
	assert.ErrorIs(t, err, ErrPastBooking)
}

func TestGetBooking_EffectiveStatusAndAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))

	_, err := f.svc.GetBooking(ctx, bob, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	f.clock.Set(at(10, 0))
	got, err := f.svc.GetBooking(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	stored, err := f.repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status, "completion is computed on read")
}

func TestListBookings_UsersSeeOnlyTheirOwn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustCreate(t, alice, at(9, 0), at(10, 0))
	f.mustCreate(t, bob, at(10, 0), at(11, 0))
	f.mustCreate(t, alice, at(11, 0), at(12, 0))

	page, err := f.svc.ListBookings(ctx, alice, models.BookingFilter{UserID: "bob"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, b := range page.Items {
		assert.Equal(t, "alice", b.UserID)
	}

	page, err = f.svc.ListBookings(ctx, admin, models.BookingFilter{RoomID: "room-a", Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Items, 2)

	_, err = f.svc.ListBookings(ctx, admin, models.BookingFilter{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.mustCreate(t, alice, at(9, 0), at(10, 0))

	res, err := f.svc.CheckAvailability(ctx, models.AvailabilityInput{RoomID: "room-a", Start: at(9, 30), End: at(10, 30)})
	require.NoError(t, err)
	assert.False(t, res.Available)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, b.ID, res.Conflicts[0].BookingID)

	res, err = f.svc.CheckAvailability(ctx, models.AvailabilityInput{RoomID: "room-a", Start: at(9, 30), End: at(10, 30), ExcludeID: b.ID})
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.NotNil(t, res.Conflicts)

	_, err = f.svc.CheckAvailability(ctx, models.AvailabilityInput{RoomID: "room-a", Start: at(10, 0), End: at(9, 0)})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = f.svc.CheckAvailability(ctx, models.AvailabilityInput{RoomID: "nope", Start: at(9, 0), End: at(10, 0)})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestListIntervalsAndAvailabilityMatrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.mustCreate(t, alice, at(9, 0), at(10, 0))
	second := f.mustCreate(t, bob, at(13, 30), at(14, 30))

	intervals, err := f.svc.ListIntervals(ctx, "room-a", at(0, 0), at(12, 0))
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.Equal(t, first.ID, intervals[0].BookingID)

	matrix, err := f.svc.AvailabilityMatrix(ctx, "room-a", at(15, 45))
	require.NoError(t, err)
	assert.Equal(t, "2030-01-14", matrix.Date)
	require.Len(t, matrix.Slots, 24)

	taken := map[int]string{}
	for _, slot := range matrix.Slots {
		if !slot.Available {
			taken[slot.Hour] = slot.BookingID
		}
	}
	assert.Equal(t, map[int]string{9: first.ID, 13: second.ID, 14: second.ID}, taken)
}

func TestCompleteElapsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done := f.mustCreate(t, alice, at(9, 0), at(10, 0))
	later := f.mustCreate(t, alice, at(15, 0), at(16, 0))

	f.clock.Set(at(12, 0))
	n, err := f.svc.CompleteElapsed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := f.repo.Get(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	stored, err = f.repo.Get(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)

	n, err = f.svc.CompleteElapsed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Completion is idempotent and early calls are ignored.
	require.NoError(t, f.svc.CompleteBooking(ctx, done.ID))
	require.NoError(t, f.svc.CompleteBooking(ctx, later.ID))
	stored, err = f.repo.Get(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)

	assert.Contains(t, f.events.Types(), messaging.EventBookingCompleted)
}
