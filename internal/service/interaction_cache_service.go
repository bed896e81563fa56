package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/interaction-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/interaction-dashboard-api/pkg/errors"
)

const (
	windowStartHour = 0
	windowEndHour   = 23
)

// InteractionSource fetches raw interaction records for a time window.
type InteractionSource interface {
	FetchInteractions(ctx context.Context, query models.InteractionQuery) ([]models.InteractionRecord, error)
}

// InteractionCacheConfig tunes the interaction fetch cache.
type InteractionCacheConfig struct {
	Location     *time.Location
	TTL          time.Duration
	KeyPrefix    string
	SourceName   string
	FetchTimeout time.Duration
}

// InteractionCacheService memoises normalized display rows per session and
// date range. Concurrent misses on one key may both fetch; the later write
// wins with an equivalent payload.
type InteractionCacheService struct {
	source  InteractionSource
	cache   *CacheService
	metrics *MetricsService
	cfg     InteractionCacheConfig
}

// NewInteractionCacheService constructs the fetch cache.
func NewInteractionCacheService(source InteractionSource, cache *CacheService, metrics *MetricsService, cfg InteractionCacheConfig) *InteractionCacheService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "dashboard"
	}
	if cfg.SourceName == "" {
		cfg.SourceName = "interactions"
	}
	return &InteractionCacheService{source: source, cache: cache, metrics: metrics, cfg: cfg}
}

// Location returns the display timezone.
func (s *InteractionCacheService) Location() *time.Location {
	return s.cfg.Location
}

// Get returns the display rows for the window, fetching from the source on a
// miss. The boolean reports a cache hit. A missing endpoint yields
// ErrMissingRange and nothing is fetched or stored.
func (s *InteractionCacheService) Get(ctx context.Context, sessionID, startDate, endDate string) ([]models.DisplayRow, bool, error) {
	if strings.TrimSpace(startDate) == "" || strings.TrimSpace(endDate) == "" {
		return nil, false, appErrors.ErrMissingRange
	}

	key := InteractionCacheKey(s.cfg.KeyPrefix, sessionID, startDate, endDate)
	var cached []models.DisplayRow
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		return nil, false, fmt.Errorf("get interaction cache: %w", err)
	} else if hit {
		if cached == nil {
			cached = []models.DisplayRow{}
		}
		return cached, true, nil
	}

	windowStart, windowEnd, err := ResolveWindow(startDate, endDate, s.cfg.Location)
	if err != nil {
		return nil, false, err
	}

	records, err := s.fetch(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, false, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Start.Before(records[j].Start)
	})

	rows, err := NormalizeInteractions(records, s.cfg.Location)
	if err != nil {
		return nil, false, err
	}

	// Store failures are logged by the cache service; the fetched rows are still valid.
	_ = s.cache.Set(ctx, key, rows, s.cfg.TTL)
	return rows, false, nil
}

func (s *InteractionCacheService) fetch(ctx context.Context, start, end time.Time) ([]models.InteractionRecord, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	began := time.Now()
	records, err := s.source.FetchInteractions(ctx, models.InteractionQuery{Start: start, End: end})
	s.metrics.ObserveSourceFetch(s.cfg.SourceName, time.Since(began), err)
	if err != nil {
		if errors.Is(err, appErrors.ErrFormat) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrExternalSource.Code, appErrors.ErrExternalSource.Status, appErrors.ErrExternalSource.Message)
	}
	return records, nil
}

// ResolveWindow turns inclusive calendar dates into the fetch window: the
// start date at 00:00 and the end date at 23:00, both in loc.
func ResolveWindow(startDate, endDate string, loc *time.Location) (time.Time, time.Time, error) {
	startDay, err := ParseCalendarDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("invalid start date %q", startDate))
	}
	endDay, err := ParseCalendarDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("invalid end date %q", endDate))
	}
	if endDay.Before(startDay) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidRange, "end date is before start date")
	}
	start := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), windowStartHour, 0, 0, 0, loc)
	end := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), windowEndHour, 0, 0, 0, loc)
	return start, end, nil
}

var calendarDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// ParseCalendarDate reads an ISO date, tolerating a trailing time component
// from date pickers. Only the calendar date is kept.
func ParseCalendarDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range calendarDateLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

var cacheKeyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// InteractionCacheKey builds the store key for a session and date range. Each
// part is escaped so distinct tuples never share a key.
func InteractionCacheKey(prefix, sessionID, startDate, endDate string) string {
	var builder strings.Builder
	builder.Grow(len(prefix) + len(sessionID) + len(startDate) + len(endDate) + 16)
	builder.WriteString(prefix)
	builder.WriteString(":interactions")
	for _, part := range []string{sessionID, startDate, endDate} {
		builder.WriteByte(':')
		builder.WriteString(cacheKeyEscaper.Replace(part))
	}
	return builder.String()
}
