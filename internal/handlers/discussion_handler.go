package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kfc-academy/learning-service/internal/services"
	"github.com/kfc-academy/learning-service/internal/utils"
)

type DiscussionHandler struct {
	BaseHandler
	discussionService services.DiscussionService
}

func NewDiscussionHandler(discussionService services.DiscussionService, logger utils.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		BaseHandler:       NewBaseHandler(logger),
		discussionService: discussionService,
	}
}

func (h *DiscussionHandler) PostComment(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req services.PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.CourseID = courseID

	comment, err := h.discussionService.PostComment(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *DiscussionHandler) ListComments(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	limit := h.parseIntQuery(c, "limit", 20)
	offset := h.parseIntQuery(c, "offset", 0)

	comments, total, err := h.discussionService.ListComments(c.Request.Context(), courseID, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:   comments,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *DiscussionHandler) DeleteComment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.discussionService.DeleteComment(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Comment deleted"})
}
