package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	roomRepo "roombooking/database/repository/room"
	"roombooking/database/repository/schedule"
	"roombooking/messaging"
	"roombooking/models"
)

var (
	alice = models.Identity{UserID: "alice", Role: models.RoleUser}
	bob   = models.Identity{UserID: "bob", Role: models.RoleUser}
	admin = models.Identity{UserID: "root", Role: models.RoleAdmin}
)

// at is a time on the fixture day; the test clock starts at 08:00.
func at(h, m int) time.Time {
	return time.Date(2030, 1, 14, h, m, 0, 0, time.UTC)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
}

func (s *recordingScheduler) ScheduleCompletion(_ context.Context, bookingID string, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduled == nil {
		s.scheduled = map[string]time.Time{}
	}
	s.scheduled[bookingID] = end
	return nil
}

type fixture struct {
	svc       *DefaultBookingService
	repo      *schedule.MemoryRepository
	clock     *testClock
	events    *recordingPublisher
	scheduler *recordingScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      schedule.NewMemoryRepository(),
		clock:     &testClock{now: at(8, 0)},
		events:    &recordingPublisher{},
		scheduler: &recordingScheduler{},
	}
	rooms := roomRepo.NewStaticRepository(
		models.Room{ID: "room-a", Name: "Aurora", Capacity: 20, Active: true},
		models.Room{ID: "room-b", Name: "Boardroom", Capacity: 8, Active: true},
		models.Room{ID: "room-closed", Name: "Closed", Capacity: 50, Active: false},
	)
	f.svc = &DefaultBookingService{
		Repo:        f.repo,
		Rooms:       rooms,
		Locks:       NewRoomLocks(2 * time.Second),
		Policy:      DefaultPolicy(),
		AutoConfirm: true,
		Publisher:   f.events,
		Completion:  f.scheduler,
		Clock:       f.clock.Now,
	}
	return f
}

func createInput(roomID string, start, end time.Time, attendees int) models.CreateBookingInput {
	return models.CreateBookingInput{
		RoomID:    roomID,
		Start:     start,
		End:       end,
		Attendees: attendees,
		Title:     "Planning sync",
	}
}

func (f *fixture) mustCreate(t *testing.T, who models.Identity, start, end time.Time) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), who, createInput("room-a", start, end, 5))
	if err != nil {
		t.Fatalf("create %s-%s: %v", start.Format("15:04"), end.Format("15:04"), err)
	}
	return b
}

func ptr[T any](v T) *T { return &v }
