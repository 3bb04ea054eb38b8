package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/models"
	"github.com/hyukudan/enroltimer/pkg/config"
	"github.com/hyukudan/enroltimer/pkg/timeunit"
)

var unitLabels = map[string]string{
	"years":   "Years",
	"months":  "Months",
	"weeks":   "Weeks",
	"days":    "Days",
	"hours":   "Hours",
	"minutes": "Minutes",
	"seconds": "Seconds",
}

// WidgetService builds the countdown payload for the render path.
type WidgetService struct {
	lookup *LookupService
	cfg    config.WidgetConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewWidgetService constructs the widget service.
func NewWidgetService(lookup *LookupService, cfg config.WidgetConfig, logger *zap.Logger) *WidgetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WidgetService{lookup: lookup, cfg: cfg, logger: logger, now: time.Now}
}

// Build resolves the viewer's governing enrolment and assembles the widget
// payload. A nil payload with a nil error means "nothing to display": the
// feature is off, the viewer is privileged, the user is not enrolled, or no
// expiry is set.
func (s *WidgetService) Build(ctx context.Context, cache *RequestCache, userID, courseID int64, privilegedViewer bool) (*models.WidgetPayload, error) {
	if !s.cfg.Enabled || privilegedViewer {
		return nil, nil
	}

	records, err := s.lookup.Records(ctx, cache, userID, courseID)
	if err != nil {
		return nil, err
	}
	best := PickBestRecord(records)
	if best == nil {
		return nil, nil
	}

	endTime, err := s.lookup.ResolveEndTime(ctx, *best)
	if err != nil {
		return nil, err
	}
	if endTime <= 0 {
		return nil, nil
	}

	now := s.now().Unix()
	remaining := endTime - now
	if remaining < 0 {
		remaining = 0
	}

	units := timeunit.SelectDisplayUnits(s.cfg.ActiveUnits)
	counts := timeunit.Decompose(remaining, timeunit.Keys(units))

	widgetUnits := make([]models.WidgetUnit, len(counts))
	for i, c := range counts {
		widgetUnits[i] = models.WidgetUnit{Unit: c.Unit, Label: unitLabels[c.Unit], Value: c.Value}
	}

	daysRemaining := daysUntil(endTime, now)
	progress := timeunit.Progress(best.TimeStart, endTime, now)

	return &models.WidgetPayload{
		CourseID:         courseID,
		StartTime:        best.TimeStart,
		EndTime:          endTime,
		RemainingSeconds: remaining,
		DaysRemaining:    daysRemaining,
		Progress:         math.Round(progress*10) / 10,
		Urgency:          timeunit.ClassifyUrgency(daysRemaining, s.cfg.DangerDays, s.cfg.WarningDays),
		ForceTwoDigits:   s.cfg.ForceTwoDigits,
		Units:            widgetUnits,
	}, nil
}
