package api

import (
	"net/http"

	"gymapp/internal/domain"
	"gymapp/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all HTTP routes onto the router.
//
// Admin routes live under /api/v1 and require the admin role; the
// student session view lives under /api/v1/student and requires the
// student role.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	studentService service.StudentService,
	exerciseService service.ExerciseService,
	workoutService service.WorkoutService,
	sessionService service.SessionService,
	historyService service.HistoryService,
) {
	authHandler := NewAuthHandler(authService)
	studentHandler := NewStudentHandler(studentService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	workoutHandler := NewWorkoutHandler(workoutService)
	sessionHandler := NewSessionHandler(sessionService, historyService, authService)
	historyHandler := NewHistoryHandler(historyService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.RegisterAdmin)
			authGroup.POST("/login", authHandler.LoginAdmin)
			authGroup.POST("/student/login", authHandler.LoginStudent)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role})
		})

		// --- Admin Routes ---
		adminGroup := protected.Group("")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			studentGroup := adminGroup.Group("/students")
			{
				studentGroup.GET("", studentHandler.ListStudents)
				studentGroup.POST("", studentHandler.CreateStudent)
				studentGroup.GET("/:id", studentHandler.GetStudent)
				studentGroup.PUT("/:id", studentHandler.UpdateStudent)
				studentGroup.DELETE("/:id", studentHandler.DeleteStudent)
				studentGroup.POST("/:id/toggle-status", studentHandler.ToggleStudentStatus)
				studentGroup.POST("/:id/photo/upload-url", studentHandler.RequestPhotoUploadURL)
				studentGroup.POST("/:id/photo/confirm", studentHandler.ConfirmPhotoUpload)
				studentGroup.GET("/:id/photo", studentHandler.GetPhotoDownloadURL)
			}

			exerciseGroup := adminGroup.Group("/exercises")
			{
				exerciseGroup.GET("", exerciseHandler.ListExercises)
				exerciseGroup.POST("", exerciseHandler.CreateExercise)
				exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
				exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
				exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
			}

			workoutGroup := adminGroup.Group("/workouts")
			{
				workoutGroup.GET("", workoutHandler.ListWorkouts)
				workoutGroup.POST("", workoutHandler.CreateWorkout)
				workoutGroup.GET("/:id", workoutHandler.GetWorkout)
				workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
				workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
				workoutGroup.POST("/:id/exercises", workoutHandler.AddExercise)
			}
			adminGroup.DELETE("/workout-exercises/:assignmentId", workoutHandler.RemoveExercise)

			adminGroup.GET("/history", historyHandler.ListHistory)
		}

		// --- Student Session Routes ---
		sessionGroup := protected.Group("/student")
		sessionGroup.Use(RoleMiddleware(domain.RoleStudent))
		{
			sessionGroup.GET("/session", sessionHandler.LoadSession)
			sessionGroup.POST("/session/workouts/:workoutId/exercises/:exerciseId/toggle", sessionHandler.ToggleExercise)
			sessionGroup.POST("/session/workouts/:workoutId/complete", sessionHandler.CompleteWorkout)
			sessionGroup.GET("/history", sessionHandler.ListOwnHistory)
		}
	}
}
