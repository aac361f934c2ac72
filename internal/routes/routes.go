package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medverse-server/internal/booking"
	"medverse-server/internal/config"
	"medverse-server/internal/handlers"
	"medverse-server/internal/middleware"
	"medverse-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize the booking core and handlers
	store := booking.NewStore(db)
	service := booking.NewService(store)
	directory := handlers.NewDoctorDirectory(db)
	users := middleware.NewUserSource(db)

	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	doctorsHandler := handlers.NewDoctorsHandler(db)
	contactHandler := handlers.NewContactHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(service, directory)
	labTestHandler := handlers.NewLabTestHandler(db)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(db)
	privilegeHandler := handlers.NewPrivilegeHandler(db, cfg)
	doctorPortalHandler := handlers.NewDoctorPortalHandler(db, service, cfg)
	adminHandler := handlers.NewAdminHandler(db, service)

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
		}

		doctorRoutes := public.Group("/doctors")
		{
			doctorRoutes.GET("", doctorsHandler.GetDoctors)
			doctorRoutes.GET("/:id", doctorsHandler.GetDoctorByID)
			doctorRoutes.GET("/:id/availability", doctorsHandler.GetDoctorAvailability)
		}

		public.POST("/contact", contactHandler.SubmitFeedback)
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.BookAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/booked-slots", appointmentHandler.GetBookedSlots)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
		}

		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/me", userHandler.GetProfile)
			userRoutes.PUT("/me", userHandler.UpdateProfile)
			userRoutes.PUT("/change-password", userHandler.ChangePassword)
			userRoutes.DELETE("/me", userHandler.DeleteAccount)
		}

		labTestRoutes := private.Group("/lab-tests")
		{
			labTestRoutes.GET("", labTestHandler.GetLabTests)
			labTestRoutes.POST("", labTestHandler.CreateLabTest)
			labTestRoutes.GET("/:id", labTestHandler.GetLabTestByID)
			labTestRoutes.PUT("/:id", labTestHandler.UpdateLabTest)
			labTestRoutes.DELETE("/:id", labTestHandler.DeleteLabTest)
		}

		medicalRecordRoutes := private.Group("/medical-records")
		{
			medicalRecordRoutes.GET("", medicalRecordHandler.GetMedicalRecords)
			medicalRecordRoutes.POST("", medicalRecordHandler.CreateMedicalRecord)
			// Reading another patient's records needs the current role from
			// the database, not the token's claim.
			medicalRecordRoutes.GET("/patient/:patientId",
				middleware.RequireRole(users, models.RoleDoctor, models.RoleAdmin),
				medicalRecordHandler.GetRecordsForPatient)
			medicalRecordRoutes.GET("/:id", medicalRecordHandler.GetMedicalRecordByID)
			medicalRecordRoutes.PUT("/:id", medicalRecordHandler.UpdateMedicalRecord)
			medicalRecordRoutes.DELETE("/:id", medicalRecordHandler.DeleteMedicalRecord)
		}

		privilegeRoutes := private.Group("/privilege-card")
		{
			privilegeRoutes.GET("/me", privilegeHandler.GetMyApplication)
			privilegeRoutes.POST("", privilegeHandler.Apply)
		}

		// Doctor portal, role re-checked against the database
		doctorPortal := private.Group("/doctor")
		doctorPortal.Use(middleware.RequireRole(users, models.RoleDoctor))
		{
			doctorPortal.GET("/appointments", doctorPortalHandler.GetSchedule)
			doctorPortal.PATCH("/appointments/:id/confirm", doctorPortalHandler.ConfirmAppointment)
			doctorPortal.PATCH("/appointments/:id/reject", doctorPortalHandler.RejectAppointment)
			doctorPortal.PATCH("/appointments/:id/status", doctorPortalHandler.UpdateAppointmentStatus)
			doctorPortal.POST("/appointments/:id/report", doctorPortalHandler.UploadReport)
			doctorPortal.PATCH("/lab-tests/:id", doctorPortalHandler.UpdateLabTest)
			doctorPortal.GET("/user/:id/details", doctorPortalHandler.GetPatientDetails)
			doctorPortal.GET("/user/:id/privilege", doctorPortalHandler.GetPatientPrivilege)
		}

		// Admin routes
		admin := private.Group("/admin")
		admin.Use(middleware.RequireRole(users, models.RoleAdmin))
		{
			admin.GET("/users", adminHandler.GetUsers)
			admin.POST("/users", adminHandler.CreateUser)
			admin.GET("/users/:id", adminHandler.GetUserByID)
			admin.PUT("/users/:id", adminHandler.UpdateUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)

			admin.GET("/appointments", adminHandler.GetAppointments)
			admin.GET("/appointments/export", adminHandler.ExportAppointments)
			admin.PATCH("/appointments/:id/cancel", adminHandler.CancelAppointment)
			admin.PATCH("/appointments/:id/reschedule", adminHandler.RescheduleAppointment)

			admin.GET("/privilege-applications", adminHandler.GetPrivilegeApplications)
			admin.PATCH("/privilege-applications/:id", adminHandler.DecidePrivilegeApplication)

			admin.GET("/audits", adminHandler.GetAudits)
		}
	}

	// Uploaded files are served as-is; URLs stored on records point here.
	router.Static("/uploads", cfg.UploadDir)

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
