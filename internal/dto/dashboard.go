package dto

import "github.com/noah-isme/interaction-dashboard-api/internal/models"

// InteractionDashboardRequest carries the dashboard inputs. Dates are ISO
// calendar dates; an empty date means the range is not selected yet.
type InteractionDashboardRequest struct {
	SessionID string   `validate:"required,max=128"`
	StartDate string   `validate:"omitempty,max=32"`
	EndDate   string   `validate:"omitempty,max=32"`
	Students  []string `validate:"omitempty,dive,max=256"`
	Materials []string `validate:"omitempty,dive,max=256"`
}

// Selection returns the filter selection carried by the request.
func (r InteractionDashboardRequest) Selection() models.FilterSelection {
	return models.FilterSelection{Students: r.Students, Materials: r.Materials}
}

// InteractionDashboardResponse is the table plus the filter choices for the window.
type InteractionDashboardResponse struct {
	StartDate       string              `json:"startDate"`
	EndDate         string              `json:"endDate"`
	Rows            []models.DisplayRow `json:"rows"`
	StudentOptions  []string            `json:"studentOptions"`
	MaterialOptions []string            `json:"materialOptions"`
	Total           int                 `json:"total"`
}

// EmptyDashboard is returned while the date range is incomplete.
func EmptyDashboard(req InteractionDashboardRequest) *InteractionDashboardResponse {
	return &InteractionDashboardResponse{
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Rows:            []models.DisplayRow{},
		StudentOptions:  []string{},
		MaterialOptions: []string{},
	}
}

// ExportFormat enumerates downloadable table formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportRequest extends the dashboard inputs with the file format.
type ExportRequest struct {
	InteractionDashboardRequest
	Format ExportFormat `validate:"required,oneof=csv pdf"`
}

// ExportFile is a rendered table download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
