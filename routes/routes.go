package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tourly/config"
	"tourly/handlers"
	"tourly/middleware"
	"tourly/utils"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterPublicRoutes registers the catalog and booking endpoints. Authentication is
// optional; a valid token attaches the user to the booking.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(middleware.FirebaseAuthMiddleware(hb.Verifier, true))
	{
		api.GET("/tours", hb.Tours.ListToursHandler)
		api.GET("/tours/:id", hb.Tours.GetTourHandler)
		api.GET("/tours/:id/slots", hb.Schedule.ListTourSlotsHandler)
		api.POST("/slots/:slotId/bookings", hb.Booking.BookSlotHandler)
	}
}

// RegisterReservationRoutes registers the signed-in user's reservation endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(middleware.FirebaseAuthMiddleware(hb.Verifier, false))
	{
		api.GET("/me/reservations", hb.Booking.ListMyReservationsHandler)
		api.POST("/reservations/:id/cancel", hb.Booking.CancelReservationHandler)
	}
}

// RegisterGuideRoutes registers tour, schedule and reservation management for guides.
func RegisterGuideRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	guide := r.Group("/api/guide")
	guide.Use(middleware.FirebaseAuthMiddleware(hb.Verifier, false), middleware.RequireGuide())
	{
		guide.GET("/tours", hb.Tours.ListGuideToursHandler)
		guide.POST("/tours", hb.Tours.CreateTourHandler)
		guide.PUT("/tours/:id", hb.Tours.UpdateTourHandler)
		guide.PATCH("/tours/:id/active", hb.Tours.SetTourActiveHandler)
		guide.POST("/tours/:id/images", hb.Tours.AddTourImageHandler)
		guide.DELETE("/tours/:id/images", hb.Tours.RemoveTourImageHandler)
		guide.POST("/tours/:id/slots", hb.Schedule.CreateSlotsHandler)
		guide.GET("/tours/:id/reservations", hb.Booking.ListTourReservationsHandler)
		guide.PATCH("/slots/:id", hb.Schedule.UpdateSlotHandler)
		guide.POST("/reservations/:id/confirm", hb.Booking.ConfirmReservationHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, logger *zap.Logger) {
	r.Use(
		gin.Recovery(),
		utils.ErrorHandler(),
		middleware.ZapLogger(logger),
		middleware.CORS(config.AppConfig.CORSAllowedOrigins),
		middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin),
	)

	RegisterHealthRoute(r)
	RegisterPublicRoutes(r, hb)
	RegisterReservationRoutes(r, hb)
	RegisterGuideRoutes(r, hb)
}
