package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kfc-academy/learning-service/internal/repositories"
)

// ReportService exports per-course progress reports for instructors.
type ReportService interface {
	// ExportCourseProgressToExcel renders one row per enrolled learner
	// with their per-module and overall completion percentages.
	ExportCourseProgressToExcel(ctx context.Context, courseID uint) ([]byte, error)
	ExportCourseProgressToCSV(ctx context.Context, courseID uint) ([]byte, error)
}

type reportService struct {
	repo     repositories.Repository
	progress ProgressService
	logger   *slog.Logger
}

func NewReportService(repo repositories.Repository, progress ProgressService, logger *slog.Logger) ReportService {
	return &reportService{
		repo:     repo,
		progress: progress,
		logger:   logger,
	}
}

type progressReportRow struct {
	UserID   uint
	FullName string
	Email    string
	Modules  []float64
	Overall  float64
}

func (s *reportService) buildReport(ctx context.Context, courseID uint) ([]string, []progressReportRow, error) {
	modules, err := s.repo.Module().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list modules: %w", err)
	}

	enrollments, err := s.repo.Enrollment().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	headers := []string{"Student ID", "Student Name", "Email"}
	for _, module := range modules {
		headers = append(headers, module.Name+" (%)")
	}
	headers = append(headers, "Overall (%)")

	rows := make([]progressReportRow, 0, len(enrollments))
	for _, enrollment := range enrollments {
		row := progressReportRow{UserID: enrollment.UserID}
		if enrollment.User != nil {
			row.FullName = enrollment.User.FullName
			row.Email = enrollment.User.Email
		}

		result, err := s.progress.GetCourseProgress(ctx, enrollment.UserID, courseID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get progress for user %d: %w", enrollment.UserID, err)
		}

		percentByModule := make(map[uint]float64, len(result.Modules))
		for _, m := range result.Modules {
			percentByModule[m.ModuleID] = m.ProgressPercent
		}
		for _, module := range modules {
			row.Modules = append(row.Modules, percentByModule[module.ID])
		}
		row.Overall = result.ProgressPercent

		rows = append(rows, row)
	}

	return headers, rows, nil
}

func (s *reportService) ExportCourseProgressToExcel(ctx context.Context, courseID uint) ([]byte, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	headers, rows, err := s.buildReport(ctx, courseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Progress"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, row := range rows {
		values := []interface{}{row.UserID, row.FullName, row.Email}
		for _, percent := range row.Modules {
			values = append(values, percent)
		}
		values = append(values, row.Overall)

		for colIndex, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell name: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Course progress report exported",
		"course_id", courseID,
		"course_title", course.Title,
		"rows", len(rows))

	return buf.Bytes(), nil
}

func (s *reportService) ExportCourseProgressToCSV(ctx context.Context, courseID uint) ([]byte, error) {
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	headers, rows, err := s.buildReport(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.UserID), 10),
			row.FullName,
			row.Email,
		}
		for _, percent := range row.Modules {
			record = append(record, strconv.FormatFloat(percent, 'f', 2, 64))
		}
		record = append(record, strconv.FormatFloat(row.Overall, 'f', 2, 64))

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return []byte(buf.String()), nil
}
