package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/interaction-dashboard-api/internal/dto"
	"github.com/noah-isme/interaction-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/interaction-dashboard-api/pkg/errors"
)

type interactionRowsProvider interface {
	Get(ctx context.Context, sessionID, startDate, endDate string) ([]models.DisplayRow, bool, error)
}

// DashboardServiceConfig bounds the selectable calendar window. Empty bounds
// leave that side open.
type DashboardServiceConfig struct {
	DateMin string
	DateMax string
}

// DashboardService composes the table and filter options for one set of inputs.
type DashboardService struct {
	rows      interactionRowsProvider
	validator *validator.Validate
	minDate   time.Time
	maxDate   time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(rows interactionRowsProvider, validate *validator.Validate, cfg DashboardServiceConfig) (*DashboardService, error) {
	if validate == nil {
		validate = validator.New()
	}
	svc := &DashboardService{rows: rows, validator: validate}
	if cfg.DateMin != "" {
		parsed, err := ParseCalendarDate(cfg.DateMin)
		if err != nil {
			return nil, fmt.Errorf("parse minimum date %q: %w", cfg.DateMin, err)
		}
		svc.minDate = parsed
	}
	if cfg.DateMax != "" {
		parsed, err := ParseCalendarDate(cfg.DateMax)
		if err != nil {
			return nil, fmt.Errorf("parse maximum date %q: %w", cfg.DateMax, err)
		}
		svc.maxDate = parsed
	}
	if !svc.minDate.IsZero() && !svc.maxDate.IsZero() && svc.maxDate.Before(svc.minDate) {
		return nil, fmt.Errorf("maximum date %s is before minimum date %s", cfg.DateMax, cfg.DateMin)
	}
	return svc, nil
}

// View returns the filtered rows plus the options available in the whole
// window. The boolean reports whether the rows came from cache. An incomplete
// range yields an empty dashboard rather than an error.
func (s *DashboardService) View(ctx context.Context, req dto.InteractionDashboardRequest) (*dto.InteractionDashboardResponse, bool, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, validationMessage(err))
	}
	if err := s.checkBounds(req.StartDate, "start"); err != nil {
		return nil, false, err
	}
	if err := s.checkBounds(req.EndDate, "end"); err != nil {
		return nil, false, err
	}

	rows, hit, err := s.rows.Get(ctx, req.SessionID, req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, appErrors.ErrMissingRange) {
			return dto.EmptyDashboard(req), false, nil
		}
		return nil, false, err
	}

	options := DeriveFilterOptions(rows)
	return &dto.InteractionDashboardResponse{
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Rows:            ApplyFilters(rows, req.Selection()),
		StudentOptions:  options.Students,
		MaterialOptions: options.Materials,
		Total:           len(rows),
	}, hit, nil
}

func (s *DashboardService) checkBounds(raw, label string) error {
	if raw == "" {
		return nil
	}
	day, err := ParseCalendarDate(raw)
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("invalid %s date %q", label, raw))
	}
	if !s.minDate.IsZero() && day.Before(s.minDate) {
		return appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("%s date is before %s", label, s.minDate.Format("2006-01-02")))
	}
	if !s.maxDate.IsZero() && day.After(s.maxDate) {
		return appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("%s date is after %s", label, s.maxDate.Format("2006-01-02")))
	}
	return nil
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
	return err.Error()
}
