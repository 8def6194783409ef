package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/chatbot"
	"clinic-app-server/internal/config"
	"clinic-app-server/internal/handlers"
	"clinic-app-server/internal/insurance"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/scheduling"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, assistant *chatbot.Service) {
	// Initialize core components and handlers
	booker := scheduling.NewBooker(db)
	estimator := insurance.NewEstimator()

	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, booker)
	insuranceHandler := handlers.NewInsuranceHandler(db, estimator)
	chatHandler := handlers.NewChatHandler(db, assistant)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register/patient", authHandler.RegisterPatient)
			authRoutes.POST("/register/doctor", authHandler.RegisterDoctor)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}

		// Guests get an estimate without persistence
		public.POST("/insurance/estimate", insuranceHandler.Estimate)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Doctor directory - accessible by all authenticated users
		private.GET("/users/doctors", userHandler.GetDoctors)

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			// Patients book for themselves
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.BookAppointment)

			// All authenticated users can get their own appointments
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser) // Logic inside handler differentiates by role

			// Specific appointment access (involved patient or doctor)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID) // Authorization inside handler

			// Status updates (assigned doctor only, enforced in the scheduling core)
			appointmentRoutes.PATCH("/:id/status", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.UpdateAppointmentStatus)

			// Reschedule (involved patient or doctor)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment) // Authorization inside handler
		}

		// Insurance estimator routes
		insuranceRoutes := private.Group("/insurance")
		{
			insuranceRoutes.POST("/predict", middleware.RoleAuthMiddleware(models.RolePatient), insuranceHandler.Predict)
			insuranceRoutes.GET("/history", middleware.RoleAuthMiddleware(models.RolePatient), insuranceHandler.GetHistory)
			insuranceRoutes.GET("/model", insuranceHandler.AboutModel)
		}

		// Chat assistant routes
		chatRoutes := private.Group("/chat")
		{
			chatRoutes.GET("/history", chatHandler.GetChatHistory)
			chatRoutes.POST("/send", chatHandler.SendChatMessage)
			chatRoutes.POST("/clear", chatHandler.ClearChat)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
