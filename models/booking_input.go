package models

import "time"

// CreateBookingInput is the request body for a new booking.
type CreateBookingInput struct {
	RoomID      string    `json:"room_id" binding:"required"`
	Start       time.Time `json:"start_time" binding:"required"`
	End         time.Time `json:"end_time" binding:"required"`
	Attendees   int       `json:"attendees"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// UpdateBookingInput carries optional changes; nil fields keep the stored value.
type UpdateBookingInput struct {
	Start       *time.Time `json:"start_time"`
	End         *time.Time `json:"end_time"`
	Attendees   *int       `json:"attendees"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
}

// TimeChanged reports whether the update moves either endpoint of the interval.
func (in UpdateBookingInput) TimeChanged(current *Booking) bool {
	if in.Start != nil && !in.Start.Equal(current.Start) {
		return true
	}
	return in.End != nil && !in.End.Equal(current.End)
}

// AvailabilityInput asks whether [Start, End) is free in a room.
type AvailabilityInput struct {
	RoomID    string    `json:"room_id" binding:"required"`
	Start     time.Time `json:"start_time" binding:"required"`
	End       time.Time `json:"end_time" binding:"required"`
	ExcludeID string    `json:"exclude_booking_id,omitempty"`
}

// AvailabilityResult is advisory: it reflects the committed set at read time only.
type AvailabilityResult struct {
	Available bool       `json:"available"`
	Conflicts []Interval `json:"conflicts"`
}
