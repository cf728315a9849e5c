package routes

import (
	"github.com/gin-gonic/gin"

	"sigca-api/controllers"
	"sigca-api/middleware"
	"sigca-api/models"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication and onboarding
			public.POST("/login", controllers.Login)
			public.POST("/register", controllers.Register)
			public.POST("/verify-email", controllers.VerifyEmail)
			public.POST("/forgot-password", controllers.ForgotPassword)
			public.POST("/reset-password", controllers.ResetPassword)
			public.POST("/invitations/accept", controllers.AcceptInvitation)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "SIGCA API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Reviewer onboarding
			protected.POST("/invitations",
				middleware.RequireRole(models.RolComite, models.RolAdmin),
				controllers.InviteReviewer)

			// Convocatorias
			convocatorias := protected.Group("/convocatorias")
			{
				convocatorias.GET("", controllers.GetConvocatorias)
				convocatorias.GET("/:id", controllers.GetConvocatoria)

				convocatorias.POST("",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.CreateConvocatoria)
				convocatorias.PUT("/:id",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.UpdateConvocatoria)
				convocatorias.DELETE("/:id",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.DeleteConvocatoria)
			}

			// Trabajos
			trabajos := protected.Group("/trabajos")
			{
				trabajos.GET("", controllers.GetTrabajos)
				trabajos.GET("/:id", controllers.GetTrabajo)
				trabajos.GET("/:id/archivo", controllers.DownloadArchivo)
				trabajos.GET("/:id/comentarios", controllers.GetComentarios)

				// Authors submit and resubmit
				trabajos.POST("",
					middleware.RequireRole(models.RolAutor),
					controllers.CreateTrabajo)
				trabajos.POST("/:id/reenviar",
					middleware.RequireRole(models.RolAutor),
					controllers.ResubmitTrabajo)
				trabajos.GET("/:id/referencia-pago",
					middleware.RequireRole(models.RolAutor),
					controllers.GenerarReferenciaPago)

				// Reviewers evaluate
				trabajos.GET("/:id/criterios",
					middleware.RequireRole(models.RolRevisor),
					controllers.GetCriteriosParaTrabajo)
				trabajos.POST("/:id/evaluacion",
					middleware.RequireRole(models.RolRevisor),
					controllers.SubmitEvaluacion)
				trabajos.POST("/:id/rubrica",
					middleware.RequireRole(models.RolRevisor),
					controllers.CalificarRubrica)

				// Committee decides
				trabajos.PUT("/:id/screening",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.RegistrarScreening)
				trabajos.POST("/:id/aceptar",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.AceptarTrabajo)
				trabajos.POST("/:id/rechazar",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.RechazarTrabajo)
				trabajos.GET("/:id/asignaciones",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.GetAsignacionesDeTrabajo)
			}

			// Asignaciones
			asignaciones := protected.Group("/asignaciones")
			{
				asignaciones.GET("/mias",
					middleware.RequireRole(models.RolRevisor),
					controllers.GetMisAsignaciones)

				asignaciones.POST("",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.CreateAsignaciones)
				asignaciones.DELETE("/:id",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.DeleteAsignacion)
				asignaciones.GET("/trabajos-sin-asignar",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.GetTrabajosSinAsignar)
				asignaciones.GET("/revisores-disponibles",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.GetRevisoresDisponibles)
			}

			// Criterios de evaluación
			criterios := protected.Group("/criterios")
			{
				criterios.GET("", controllers.GetCriterios)

				criterios.POST("",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.CreateCriterio)
				criterios.PUT("/:id/desactivar",
					middleware.RequireRole(models.RolComite, models.RolAdmin),
					controllers.DeactivateCriterio)
			}
		}
	}
}
