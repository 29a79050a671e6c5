package models

import "time"

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Active reports whether the status reserves the room (pending or confirmed).
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Booking represents a room reservation over the half-open interval [Start, End).
type Booking struct {
	ID          string    `bson:"id" json:"id" gorm:"primaryKey"`                                   // UUID assigned at creation
	RoomID      string    `bson:"room_id" json:"room_id" gorm:"index:idx_room_status_start,priority:1"` // Booked room
	UserID      string    `bson:"user_id" json:"user_id" gorm:"index"`                              // Owner
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Start       time.Time `bson:"start" json:"start" gorm:"column:start_time;index:idx_room_status_start,priority:3"`
	End         time.Time `bson:"end" json:"end" gorm:"column:end_time;index"`
	Attendees   int       `bson:"attendees" json:"attendees"`
	Status      Status    `bson:"status" json:"status" gorm:"type:varchar(16);index:idx_room_status_start,priority:2"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`

	// Cancellation metadata, set once the booking is cancelled.
	CancelledBy        string     `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	CancellationReason string     `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
}

// Interval projects the booking onto its interval-store entry.
func (b *Booking) Interval() Interval {
	return Interval{
		BookingID: b.ID,
		RoomID:    b.RoomID,
		Start:     b.Start,
		End:       b.End,
		Status:    b.Status,
	}
}

// Duration of the booked interval.
func (b *Booking) Duration() time.Duration {
	return b.End.Sub(b.Start)
}
