package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/handlers"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/middleware"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// RegisterAPIRoutes registers every route that requires authentication.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		apiGroup.POST("/change-password", handlers.ChangePasswordHandler)

		// WebSocket endpoint for realtime notifications and messaging.
		apiGroup.GET("/ws", handlers.WSEndpoint)

		// --- NOTIFICATIONS ---
		notifications := apiGroup.Group("/notifications")
		{
			notifications.GET("", handlers.ListNotificationsHandler)
			notifications.GET("/unread-count", handlers.UnreadCountHandler)
			notifications.PUT("/:id/read", handlers.MarkReadHandler)
			notifications.PUT("/read-all", handlers.MarkAllReadHandler)
		}

		// --- BATCH REMARKS ---
		// All three roles may read, so authorization is checked in the
		// service instead of a role middleware.
		remarks := apiGroup.Group("/batches/:batchId/remarks")
		{
			remarks.GET("", handlers.ListRemarksHandler)
			remarks.POST("", handlers.AddRemarkHandler)
			remarks.DELETE("/:remarkId", handlers.DeleteRemarkHandler)
		}

		// --- SUPERVISOR ---
		supervisor := apiGroup.Group("/supervisor")
		supervisor.Use(middleware.RequireRole(models.RoleSupervisor))
		{
			supervisor.GET("/dashboard", handlers.SupervisorDashboardHandler)

			supervisor.POST("/batches", handlers.CreateBatchHandler)
			supervisor.PUT("/batches/:batchId/students", handlers.AssignStudentsHandler)
			supervisor.PUT("/batches/:batchId/faculty", handlers.ReassignFacultyHandler)
			supervisor.DELETE("/batches/:batchId", handlers.DeleteBatchHandler)
			supervisor.GET("/batches/:batchId/reviews", handlers.BatchReviewsHandler)

			// One payload fans out a panel review to every listed batch.
			supervisor.POST("/reviews/global", handlers.ScheduleGlobalReviewHandler)
			supervisor.POST("/batches/:batchId/reviews/:reviewId/score", handlers.SubmitSupervisorScoreHandler)
			supervisor.PUT("/batches/:batchId/reviews/:reviewId", handlers.UpdateReviewHandler)
			supervisor.DELETE("/batches/:batchId/reviews/:reviewId", handlers.DeleteReviewHandler)

			supervisor.POST("/upload-students", handlers.UploadStudentsHandler)
			supervisor.POST("/reconcile", handlers.ReconcileHandler)

			supervisor.GET("/students", handlers.ListStudentsHandler)
			supervisor.GET("/students/:studentId", handlers.GetStudentHandler)
		}

		// --- FACULTY ---
		faculty := apiGroup.Group("/faculty")
		faculty.Use(middleware.RequireRole(models.RoleFaculty))
		{
			faculty.GET("/dashboard", handlers.FacultyDashboardHandler)
			faculty.GET("/batches/:batchId", handlers.FacultyBatchHandler)

			faculty.POST("/batches/:batchId/reviews", handlers.ScheduleLocalReviewHandler)
			faculty.PUT("/batches/:batchId/reviews/:reviewId/complete", handlers.CompleteLocalReviewHandler)
			faculty.POST("/batches/:batchId/reviews/:reviewId/panel-score", handlers.SubmitPanelScoreHandler)

			faculty.POST("/students/:studentId/submissions/:submissionId/feedback", handlers.SubmissionFeedbackHandler)
		}

		// --- STUDENT ---
		student := apiGroup.Group("/student")
		student.Use(middleware.RequireRole(models.RoleStudent))
		{
			student.GET("/dashboard", handlers.StudentDashboardHandler)

			student.POST("/submissions", handlers.SubmitFileHandler)
			student.GET("/submissions", handlers.ListSubmissionsHandler)

			student.POST("/milestones", handlers.AddMilestoneHandler)
			student.PUT("/milestones/:id", handlers.UpdateMilestoneHandler)
			student.PUT("/milestones/:id/complete", handlers.CompleteMilestoneHandler)
		}
	}
}
