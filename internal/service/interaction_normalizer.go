package service

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // display zone must resolve on hosts without zoneinfo

	"github.com/noah-isme/interaction-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/interaction-dashboard-api/pkg/errors"
)

const (
	displayDayLayout  = "Mon"
	displayTimeLayout = "03:04 PM"
)

// LoadDisplayLocation resolves the fixed timezone used for all table formatting.
func LoadDisplayLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("display timezone is empty")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load display timezone %q: %w", name, err)
	}
	return loc, nil
}

// NormalizeInteractions projects source records onto display rows, one row per
// record in input order. Callers pass records sorted by start.
func NormalizeInteractions(records []models.InteractionRecord, loc *time.Location) ([]models.DisplayRow, error) {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]models.DisplayRow, 0, len(records))
	for i, record := range records {
		row, err := normalizeInteraction(record, loc)
		if err != nil {
			return nil, fmt.Errorf("normalize record %d (%s): %w", i, record.ID, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeInteraction(record models.InteractionRecord, loc *time.Location) (models.DisplayRow, error) {
	if record.Start.IsZero() {
		return models.DisplayRow{}, appErrors.Clone(appErrors.ErrFormat, "interaction start is missing")
	}
	start := record.Start.In(loc)
	row := models.DisplayRow{
		Student:  stringOrEmpty(record.StudentName),
		Material: stringOrEmpty(record.MaterialName),
		Day:      start.Format(displayDayLayout),
		Start:    start.Format(displayTimeLayout),
	}
	if record.End != nil {
		if record.End.IsZero() {
			return models.DisplayRow{}, appErrors.Clone(appErrors.ErrFormat, "interaction end is not a valid instant")
		}
		row.End = record.End.In(loc).Format(displayTimeLayout)
	}
	return row, nil
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
