package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kfc-academy/learning-service/internal/services"
	"github.com/kfc-academy/learning-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// ExportCourseProgress streams a progress report; ?format=csv selects
// CSV, anything else gets an xlsx workbook.
func (h *ReportHandler) ExportCourseProgress(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	h.LogRequest(c, "Exporting course progress report", "course_id", courseID)

	format := c.DefaultQuery("format", "xlsx")
	var (
		data        []byte
		err         error
		contentType string
		filename    string
	)

	switch format {
	case "csv":
		data, err = h.reportService.ExportCourseProgressToCSV(c.Request.Context(), courseID)
		contentType = "text/csv"
		filename = fmt.Sprintf("course_%d_progress.csv", courseID)
	default:
		data, err = h.reportService.ExportCourseProgressToExcel(c.Request.Context(), courseID)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = fmt.Sprintf("course_%d_progress.xlsx", courseID)
	}

	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
