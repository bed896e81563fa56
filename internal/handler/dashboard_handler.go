package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/interaction-dashboard-api/internal/dto"
	"github.com/noah-isme/interaction-dashboard-api/internal/middleware"
	appErrors "github.com/noah-isme/interaction-dashboard-api/pkg/errors"
	"github.com/noah-isme/interaction-dashboard-api/pkg/response"
)

type dashboardService interface {
	View(ctx context.Context, req dto.InteractionDashboardRequest) (*dto.InteractionDashboardResponse, bool, error)
}

type exportService interface {
	Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error)
}

// DashboardHandler wires the interaction dashboard to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
	exports exportService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, exports exportService) *DashboardHandler {
	return &DashboardHandler{service: service, exports: exports}
}

// Interactions godoc
// @Summary Material interaction table with filter options
// @Tags Dashboard
// @Produce json
// @Param X-Session-ID header string false "Dashboard session ID"
// @Param sessionId query string false "Dashboard session ID when the header is not set"
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Param students query []string false "Selected students"
// @Param materials query []string false "Selected materials"
// @Success 200 {object} response.Envelope
// @Router /dashboard/interactions [get]
func (h *DashboardHandler) Interactions(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := parseDashboardRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	view, cacheHit, err := h.service.View(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, view, middleware.ResponseMeta(c, start))
}

// Export godoc
// @Summary Download the filtered interaction table
// @Tags Dashboard
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Router /dashboard/interactions/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := parseDashboardRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Export(c.Request.Context(), dto.ExportRequest{
		InteractionDashboardRequest: req,
		Format:                      dto.ExportFormat(c.Query("format")),
	})
	if err != nil {
		_ = c.Error(err)
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

func parseDashboardRequest(c *gin.Context) (dto.InteractionDashboardRequest, error) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		return dto.InteractionDashboardRequest{}, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	return dto.InteractionDashboardRequest{
		SessionID: sessionID,
		StartDate: strings.TrimSpace(c.Query("startDate")),
		EndDate:   strings.TrimSpace(c.Query("endDate")),
		Students:  queryList(c, "students"),
		Materials: queryList(c, "materials"),
	}, nil
}

// queryList accepts repeated parameters and the bracketed form some
// front-end serialisers emit (students[]=a&students[]=b). An empty value is
// kept: it selects the blank option, while an absent parameter selects nothing.
func queryList(c *gin.Context, name string) []string {
	var values []string
	values = append(values, c.QueryArray(name)...)
	values = append(values, c.QueryArray(name+"[]")...)
	return values
}
