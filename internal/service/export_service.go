package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/interaction-dashboard-api/internal/dto"
	appErrors "github.com/noah-isme/interaction-dashboard-api/pkg/errors"
	"github.com/noah-isme/interaction-dashboard-api/pkg/export"
)

var tableHeaders = []string{"Student", "Material", "Day", "Start", "End"}

type dashboardViewer interface {
	View(ctx context.Context, req dto.InteractionDashboardRequest) (*dto.InteractionDashboardResponse, bool, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders the filtered dashboard table as a downloadable file.
type ExportService struct {
	dashboard dashboardViewer
	validator *validator.Validate
	csv       tableRenderer
	pdf       tableRenderer
}

// NewExportService constructs an ExportService.
func NewExportService(dashboard dashboardViewer, validate *validator.Validate, csv, pdf tableRenderer) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	return &ExportService{dashboard: dashboard, validator: validate, csv: csv, pdf: pdf}
}

// Export builds the same rows the dashboard shows and renders them in the requested format.
func (s *ExportService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error) {
	req.Format = dto.ExportFormat(strings.ToLower(strings.TrimSpace(string(req.Format))))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, validationMessage(err))
	}
	view, _, err := s.dashboard.View(ctx, req.InteractionDashboardRequest)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:    "Material interactions",
		Subtitle: fmt.Sprintf("%s to %s", view.StartDate, view.EndDate),
		Headers:  tableHeaders,
		Rows:     make([][]string, 0, len(view.Rows)),
	}
	for _, row := range view.Rows {
		data.Rows = append(data.Rows, []string{row.Student, row.Material, row.Day, row.Start, row.End})
	}

	var (
		renderer    tableRenderer
		contentType string
	)
	switch req.Format {
	case dto.ExportFormatCSV:
		renderer, contentType = s.csv, "text/csv"
	case dto.ExportFormatPDF:
		renderer, contentType = s.pdf, "application/pdf"
	}
	if renderer == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("export format %s is not available", req.Format))
	}
	payload, err := renderer.Render(data)
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", req.Format, err)
	}
	return &dto.ExportFile{
		Filename:    exportFilename(view.StartDate, view.EndDate, req.Format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func exportFilename(startDate, endDate string, format dto.ExportFormat) string {
	if startDate == "" || endDate == "" {
		return fmt.Sprintf("interactions.%s", format)
	}
	start, errStart := ParseCalendarDate(startDate)
	end, errEnd := ParseCalendarDate(endDate)
	if errStart != nil || errEnd != nil {
		return fmt.Sprintf("interactions.%s", format)
	}
	return fmt.Sprintf("interactions_%s_%s.%s", start.Format("20060102"), end.Format("20060102"), format)
}
