package models

import "time"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// BookingFilter narrows a booking listing. Zero values mean "any".
type BookingFilter struct {
	RoomID string
	UserID string
	Status Status
	From   time.Time // bookings ending after From
	To     time.Time // bookings starting before To
	Page   int       // 1-based
	Size   int
}

// Normalize clamps paging to sane bounds.
func (f *BookingFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Size <= 0 {
		f.Size = DefaultPageSize
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}
}

func (f BookingFilter) Offset() int {
	return (f.Page - 1) * f.Size
}

// BookingPage is one page of a listing.
type BookingPage struct {
	Items []Booking `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
}

// HourSlot is one hour of a room's day.
type HourSlot struct {
	Hour      int       `json:"hour"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
	BookingID string    `json:"booking_id,omitempty"`
}

// AvailabilityMatrix lists the 24 hourly slots of a room for one UTC day.
type AvailabilityMatrix struct {
	RoomID string     `json:"room_id"`
	Date   string     `json:"date"`
	Slots  []HourSlot `json:"slots"`
}
