package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"roombooking/models"
)

// MemoryRepository keeps bookings in process with a sorted interval slice per room.
type MemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
	rooms    map[string][]models.Interval
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		bookings: make(map[string]models.Booking),
		rooms:    make(map[string][]models.Interval),
	}
}

func (r *MemoryRepository) IntervalsFor(_ context.Context, roomID string) ([]models.Interval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.rooms[roomID]
	out := make([]models.Interval, len(src))
	copy(out, src)
	return out, nil
}

func (r *MemoryRepository) IntervalsBetween(_ context.Context, roomID string, from, to time.Time) ([]models.Interval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	window := models.Interval{Start: from, End: to}
	var out []models.Interval
	for _, iv := range r.rooms[roomID] {
		if !iv.Start.Before(to) {
			break
		}
		if iv.Overlaps(window) {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Insert(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[b.ID]; exists {
		return ErrDuplicateBookingID
	}
	r.bookings[b.ID] = *b
	if b.Status.Active() {
		r.addInterval(b.Interval())
	}
	return nil
}

func (r *MemoryRepository) Remove(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[b.ID]
	if !ok {
		return ErrBookingNotFound
	}
	if !stored.Status.Active() {
		return ErrStatusMismatch
	}
	stored.Status = models.StatusCancelled
	stored.CancelledBy = b.CancelledBy
	stored.CancellationReason = b.CancellationReason
	stored.CancelledAt = b.CancelledAt
	stored.UpdatedAt = b.UpdatedAt
	r.bookings[b.ID] = stored
	r.dropInterval(stored.RoomID, stored.ID)
	return nil
}

func (r *MemoryRepository) Replace(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[b.ID]
	if !ok {
		return ErrBookingNotFound
	}
	if !stored.Status.Active() {
		return ErrStatusMismatch
	}
	r.dropInterval(stored.RoomID, stored.ID)
	stored.Start = b.Start
	stored.End = b.End
	stored.Attendees = b.Attendees
	stored.Title = b.Title
	stored.Description = b.Description
	stored.UpdatedAt = b.UpdatedAt
	r.bookings[b.ID] = stored
	r.addInterval(stored.Interval())
	return nil
}

func (r *MemoryRepository) SetStatus(_ context.Context, bookingID string, from, to models.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	if stored.Status != from {
		return ErrStatusMismatch
	}
	stored.Status = to
	stored.UpdatedAt = at
	r.bookings[bookingID] = stored

	r.dropInterval(stored.RoomID, stored.ID)
	if to.Active() {
		r.addInterval(stored.Interval())
	}
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, bookingID string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &stored, nil
}

func (r *MemoryRepository) List(_ context.Context, filter models.BookingFilter) (models.BookingPage, error) {
	filter.Normalize()

	r.mu.RLock()
	matched := make([]models.Booking, 0)
	for _, b := range r.bookings {
		if matchesFilter(b, filter) {
			matched = append(matched, b)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return lessByStart(matched[i].Start, matched[i].ID, matched[j].Start, matched[j].ID)
	})

	page := models.BookingPage{Total: int64(len(matched)), Page: filter.Page, Size: filter.Size, Items: []models.Booking{}}
	offset := filter.Offset()
	if offset >= len(matched) {
		return page, nil
	}
	end := offset + filter.Size
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = matched[offset:end]
	return page, nil
}

func (r *MemoryRepository) Elapsed(_ context.Context, now time.Time, limit int) ([]models.Booking, error) {
	r.mu.RLock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.StatusConfirmed && !b.End.After(now) {
			out = append(out, b)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].End.Before(out[j].End) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// addInterval keeps the room slice ordered by (start, booking id). Caller holds mu.
func (r *MemoryRepository) addInterval(iv models.Interval) {
	list := r.rooms[iv.RoomID]
	idx := sort.Search(len(list), func(i int) bool {
		return !lessByStart(list[i].Start, list[i].BookingID, iv.Start, iv.BookingID)
	})
	list = append(list, models.Interval{})
	copy(list[idx+1:], list[idx:])
	list[idx] = iv
	r.rooms[iv.RoomID] = list
}

// dropInterval removes the booking's interval if present. Caller holds mu.
func (r *MemoryRepository) dropInterval(roomID, bookingID string) {
	list := r.rooms[roomID]
	for i := range list {
		if list[i].BookingID == bookingID {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.rooms, roomID)
		return
	}
	r.rooms[roomID] = list
}

func matchesFilter(b models.Booking, f models.BookingFilter) bool {
	if f.RoomID != "" && b.RoomID != f.RoomID {
		return false
	}
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && !b.End.After(f.From) {
		return false
	}
	if !f.To.IsZero() && !b.Start.Before(f.To) {
		return false
	}
	return true
}

func lessByStart(aStart time.Time, aID string, bStart time.Time, bID string) bool {
	if aStart.Equal(bStart) {
		return aID < bID
	}
	return aStart.Before(bStart)
}
