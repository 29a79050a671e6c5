package routes

import (
	"time"

	"roombooking/handlers"
	"roombooking/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterBookingRoutes sets up the endpoints of the booking admission core.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware())
		bookingGroup.POST("", hb.CreateBooking)
		bookingGroup.GET("", hb.ListBookings)
		bookingGroup.POST("/check-availability", hb.CheckAvailability)
		bookingGroup.GET("/availability-matrix", hb.AvailabilityMatrix)
		bookingGroup.GET("/conflicts", middleware.RequireAdmin(), hb.ListConflicts)
		bookingGroup.GET("/:id", hb.GetBooking)
		bookingGroup.PUT("/:id", hb.UpdateBooking)
		bookingGroup.DELETE("/:id", hb.CancelBooking)
		bookingGroup.POST("/:id/confirm", middleware.RequireAdmin(), hb.ConfirmBooking)
	}
}

// RegisterRoomRoutes exposes the committed schedule of a room.
func RegisterRoomRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	roomGroup := r.Group("/api/rooms")
	{
		roomGroup.Use(middleware.JWTAuthMiddleware())
		roomGroup.GET("/:roomID/intervals", hb.ListIntervals)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Retry-After", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterRoomRoutes(r, hb)
}
