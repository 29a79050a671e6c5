package handlers

import (
	"net/http"
	"strconv"
	"time"

	"roombooking/middleware"
	"roombooking/models"
	"roombooking/services/booking"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the booking service over HTTP.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(service booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: service}
}

func requester(c *gin.Context) models.Identity {
	identity, _ := middleware.GetIdentity(c)
	return identity
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "invalid input: "+err.Error(), nil)
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), requester(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully", "booking": b})
}

// UpdateBooking handles PUT /api/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var input models.UpdateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "invalid input: "+err.Error(), nil)
		return
	}

	b, err := h.Service.UpdateBooking(c.Request.Context(), requester(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking updated successfully", "booking": b})
}

// CancelBooking handles DELETE /api/bookings/:id. The body is optional.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var input struct {
		Reason string `json:"cancellation_reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "invalid input: "+err.Error(), nil)
			return
		}
	}

	b, err := h.Service.CancelBooking(c.Request.Context(), requester(c), c.Param("id"), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully", "booking": b})
}

// ConfirmBooking handles POST /api/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	b, err := h.Service.ConfirmBooking(c.Request.Context(), requester(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking confirmed successfully", "booking": b})
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), requester(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ListBookings handles GET /api/bookings?room_id&user_id&status&from&to&page&size.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	filter := models.BookingFilter{
		RoomID: c.Query("room_id"),
		UserID: c.Query("user_id"),
		Status: models.Status(c.Query("status")),
	}
	var err error
	if filter.From, err = optionalTime(c.Query("from")); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "from must be RFC3339", nil)
		return
	}
	if filter.To, err = optionalTime(c.Query("to")); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "to must be RFC3339", nil)
		return
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Size, _ = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(models.DefaultPageSize)))

	page, err := h.Service.ListBookings(c.Request.Context(), requester(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CheckAvailability handles POST /api/bookings/check-availability.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var input models.AvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "invalid input: "+err.Error(), nil)
		return
	}

	result, err := h.Service.CheckAvailability(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"available":  result.Available,
		"room_id":    input.RoomID,
		"start_time": input.Start.UTC(),
		"end_time":   input.End.UTC(),
		"conflicts":  result.Conflicts,
	})
}

// ListConflicts handles GET /api/bookings/conflicts?room_id&start_time&end_time. Admin only.
func (h *BookingHandler) ListConflicts(c *gin.Context) {
	roomID := c.Query("room_id")
	if roomID == "" || c.Query("start_time") == "" || c.Query("end_time") == "" {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "room_id, start_time, and end_time are required", nil)
		return
	}
	start, err := time.Parse(time.RFC3339, c.Query("start_time"))
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "start_time must be RFC3339", nil)
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end_time"))
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "end_time must be RFC3339", nil)
		return
	}

	result, err := h.Service.CheckAvailability(c.Request.Context(), models.AvailabilityInput{RoomID: roomID, Start: start, End: end})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room_id":        roomID,
		"conflicts":      result.Conflicts,
		"conflict_count": len(result.Conflicts),
	})
}

// AvailabilityMatrix handles GET /api/bookings/availability-matrix?room_id&date.
func (h *BookingHandler) AvailabilityMatrix(c *gin.Context) {
	roomID := c.Query("room_id")
	if roomID == "" {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "room_id is required", nil)
		return
	}
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "date must be YYYY-MM-DD", nil)
		return
	}

	matrix, err := h.Service.AvailabilityMatrix(c.Request.Context(), roomID, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

// ListIntervals handles GET /api/rooms/:roomID/intervals?from&to.
func (h *BookingHandler) ListIntervals(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "from must be RFC3339", nil)
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, string(booking.CodeInvalidInput), "to must be RFC3339", nil)
		return
	}

	intervals, err := h.Service.ListIntervals(c.Request.Context(), c.Param("roomID"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": c.Param("roomID"), "intervals": intervals})
}

func optionalTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
