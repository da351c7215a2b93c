package api

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/metrics"
	"alcyxob/marathon-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the handlers depend on.
type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Plans    service.PlanService
	Progress service.ProgressService
	Export   service.ExportService
}

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	services Services,
	limiter *RateLimiter,
	metricsManager *metrics.Manager,
	gatherer prometheus.Gatherer,
) {
	authHandler := NewAuthHandler(services.Auth)
	userHandler := NewUserHandler(services.Users)
	workoutHandler := NewWorkoutHandler(services.Plans, services.Progress)
	adminHandler := NewAdminHandler(services.Users, services.Plans, services.Progress, services.Export)

	router.Use(RequestLogger(), RequestMetrics(metricsManager))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		authGroup.Use(limiter.Middleware())
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PATCH("/me", userHandler.UpdateMe)
		protected.POST("/me/weight", userHandler.RecordWeight)
		protected.DELETE("/me/weight/:month", userHandler.DeleteWeight)

		protected.GET("/plans", workoutHandler.ListPlans)
		protected.GET("/plans/:planId/workouts", workoutHandler.GetPlanWorkouts)
		protected.GET("/plans/:planId/weeks", workoutHandler.GetPlanWeeks)

		// Admins only inspect and edit, they do not track workouts.
		workoutGroup := protected.Group("/workouts")
		workoutGroup.Use(RoleMiddleware(domain.RoleUser))
		{
			workoutGroup.POST("/:workoutId/toggle", workoutHandler.ToggleComplete)
			workoutGroup.POST("/:workoutId/complete", workoutHandler.CompleteWorkout)
			workoutGroup.POST("/:workoutId/skip", workoutHandler.SkipWorkout)
		}

		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.DELETE("/users/:userId", adminHandler.DeleteUser)
			adminGroup.GET("/users/:userId/plans/:planId/workouts", adminHandler.GetUserWorkouts)
			adminGroup.DELETE("/users/:userId/workouts/:workoutId/progress", adminHandler.ResetProgress)
			adminGroup.POST("/users/:userId/plans/:planId/export", adminHandler.ExportProgress)
			adminGroup.PATCH("/workouts/:workoutId", adminHandler.EditWorkout)
		}
	}
}
