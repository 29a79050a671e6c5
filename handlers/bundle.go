// File: roombooking/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	CreateBooking      gin.HandlerFunc
	ListBookings       gin.HandlerFunc
	GetBooking         gin.HandlerFunc
	UpdateBooking      gin.HandlerFunc
	CancelBooking      gin.HandlerFunc
	ConfirmBooking     gin.HandlerFunc
	CheckAvailability  gin.HandlerFunc
	ListConflicts      gin.HandlerFunc
	AvailabilityMatrix gin.HandlerFunc

	// Room schedule endpoints
	ListIntervals gin.HandlerFunc

	Health gin.HandlerFunc
}

// NewHandlerBundle wires every booking endpoint to h.
func NewHandlerBundle(h *BookingHandler, health *HealthHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateBooking:      h.CreateBooking,
		ListBookings:       h.ListBookings,
		GetBooking:         h.GetBooking,
		UpdateBooking:      h.UpdateBooking,
		CancelBooking:      h.CancelBooking,
		ConfirmBooking:     h.ConfirmBooking,
		CheckAvailability:  h.CheckAvailability,
		ListConflicts:      h.ListConflicts,
		AvailabilityMatrix: h.AvailabilityMatrix,
		ListIntervals:      h.ListIntervals,
		Health:             health.Health,
	}
}
