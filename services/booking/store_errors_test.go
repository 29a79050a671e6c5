package booking

import (
	"context"
	"errors"
	"testing"

	"roombooking/database/repository/schedule"
	"roombooking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rivalRepository commits a competing booking inside Insert, the way another
// service instance sharing the database would, and reports the overlap.
type rivalRepository struct {
	*schedule.MemoryRepository
	rival models.Booking
}

func (r *rivalRepository) Insert(ctx context.Context, b *models.Booking) error {
	if b.ID == r.rival.ID {
		return r.MemoryRepository.Insert(ctx, b)
	}
	if err := r.MemoryRepository.Insert(ctx, &r.rival); err != nil {
		return err
	}
	return schedule.ErrOverlap
}

func TestCreateBooking_DuplicateIDIsReported(t *testing.T) {
	f := newFixture(t)
	f.svc.NewID = func() string { return "fixed-id" }
	ctx := context.Background()

	f.mustCreate(t, alice, at(9, 0), at(10, 0))

	_, err := f.svc.CreateBooking(ctx, bob, createInput("room-a", at(13, 0), at(14, 0), 2))
	require.ErrorIs(t, err, ErrDuplicateBookingID)
	assert.Equal(t, CodeDuplicateBookingID, CodeOf(err))

	intervals, err := f.repo.IntervalsFor(ctx, "room-a")
	require.NoError(t, err)
	assert.Len(t, intervals, 1)
}

func TestCreateBooking_StoreOverlapBecomesConflict(t *testing.T) {
	f := newFixture(t)
	repo := &rivalRepository{
		MemoryRepository: f.repo,
		rival: models.Booking{
			ID:        "rival",
			RoomID:    "room-a",
			UserID:    "carol",
			Title:     "Rival sync",
			Start:     at(9, 30),
			End:       at(10, 30),
			Attendees: 2,
			Status:    models.StatusConfirmed,
		},
	}
	f.svc.Repo = repo

	_, err := f.svc.CreateBooking(context.Background(), alice, createInput("room-a", at(9, 0), at(10, 0), 2))
	require.ErrorIs(t, err, ErrSchedulingConflict)

	var be *BookingError
	require.True(t, errors.As(err, &be))
	require.Len(t, be.Conflicts, 1)
	assert.Equal(t, "rival", be.Conflicts[0].BookingID)
	assert.Empty(t, f.events.Types())
}

func TestCreateBooking_DescriptionIsSanitized(t *testing.T) {
	f := newFixture(t)

	in := createInput("room-a", at(9, 0), at(10, 0), 3)
	in.Description = "<script>alert(document.cookie)</script><b>agenda</b>"
	b, err := f.svc.CreateBooking(context.Background(), alice, in)
	require.NoError(t, err)
	assert.Equal(t, "agenda", b.Description)

	stored, err := f.repo.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "agenda", stored.Description)
}
