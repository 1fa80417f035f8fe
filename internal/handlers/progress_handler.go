package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kfc-academy/learning-service/internal/services"
	"github.com/kfc-academy/learning-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

type MarkTopicCompleteRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// MarkTopicComplete records a topic as finished for a user. Repeated
// calls return the same state without error.
func (h *ProgressHandler) MarkTopicComplete(c *gin.Context) {
	topicID := h.parseIDParam(c, "id")
	if topicID == 0 {
		return
	}

	var req MarkTopicCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Marking topic complete", "topic_id", topicID, "user_id", req.UserID)

	result, err := h.progressService.MarkTopicComplete(c.Request.Context(), req.UserID, topicID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ProgressHandler) GetModuleProgress(c *gin.Context) {
	moduleID := h.parseIDParam(c, "id")
	if moduleID == 0 {
		return
	}
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	result, err := h.progressService.GetModuleProgress(c.Request.Context(), userID, moduleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	result, err := h.progressService.GetCourseProgress(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ProgressHandler) GetCourseDuration(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	label, err := h.progressService.GetCourseDuration(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course_id":      courseID,
		"total_duration": label,
	})
}
