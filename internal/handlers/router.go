package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kfc-academy/learning-service/internal/services"
	"github.com/kfc-academy/learning-service/internal/utils"
)

type HandlerManager struct {
	courseHandler     *CourseHandler
	progressHandler   *ProgressHandler
	submissionHandler *SubmissionHandler
	enrollmentHandler *EnrollmentHandler
	discussionHandler *DiscussionHandler
	reportHandler     *ReportHandler
}

func NewHandlerManager(serviceManager *services.Manager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		courseHandler:     NewCourseHandler(serviceManager.Course, logger),
		progressHandler:   NewProgressHandler(serviceManager.Progress, logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission, logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment, logger),
		discussionHandler: NewDiscussionHandler(serviceManager.Discussion, logger),
		reportHandler:     NewReportHandler(serviceManager.Report, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Course routes
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id", hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.courseHandler.DeleteCourse)

			// Module management
			courses.POST("/:id/modules", hm.courseHandler.CreateModule)
			courses.GET("/:id/modules", hm.courseHandler.ListModules)

			// Course-level progress and duration
			courses.GET("/:id/duration", hm.progressHandler.GetCourseDuration)
			courses.GET("/:id/progress/:user_id", hm.progressHandler.GetCourseProgress)

			// Enrollment management
			courses.POST("/:id/enrollments", hm.enrollmentHandler.Enroll)
			courses.GET("/:id/enrollments", hm.enrollmentHandler.ListCourseEnrollments)
			courses.DELETE("/:id/enrollments/:user_id", hm.enrollmentHandler.Unenroll)

			// Discussions
			courses.POST("/:id/discussions", hm.discussionHandler.PostComment)
			courses.GET("/:id/discussions", hm.discussionHandler.ListComments)

			// Reports
			courses.GET("/:id/reports/progress", hm.reportHandler.ExportCourseProgress)
		}

		// Module routes
		modules := v1.Group("/modules")
		{
			modules.PUT("/:id", hm.courseHandler.UpdateModule)
			modules.DELETE("/:id", hm.courseHandler.DeleteModule)
			modules.POST("/:id/topics", hm.courseHandler.CreateTopic)
			modules.POST("/:id/quizzes", hm.courseHandler.CreateQuiz)
			modules.GET("/:id/progress/:user_id", hm.progressHandler.GetModuleProgress)
		}

		// Topic routes
		topics := v1.Group("/topics")
		{
			topics.PUT("/:id", hm.courseHandler.UpdateTopic)
			topics.DELETE("/:id", hm.courseHandler.DeleteTopic)
			topics.POST("/:id/complete", hm.progressHandler.MarkTopicComplete)
		}

		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.GET("/:id", hm.courseHandler.GetQuiz)
			quizzes.DELETE("/:id", hm.courseHandler.DeleteQuiz)
			quizzes.POST("/:id/questions", hm.courseHandler.CreateQuestion)
			quizzes.GET("/:id/results/:user_id", hm.submissionHandler.GetQuizResults)
		}

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.PUT("/:id", hm.courseHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.courseHandler.DeleteQuestion)
			questions.POST("/:id/submissions", hm.submissionHandler.SubmitAnswer)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:user_id/enrollments", hm.enrollmentHandler.ListUserEnrollments)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "learning-service",
		})
	})
}
