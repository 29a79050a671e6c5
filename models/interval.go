package models

import "time"

// Interval is the projection of a booking used for overlap queries.
type Interval struct {
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    Status    `json:"status,omitempty"`
}

// Overlaps uses half-open semantics: intervals that only touch at an endpoint do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Valid reports whether start is strictly before end.
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}
