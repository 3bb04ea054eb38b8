package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/models"
)

type privacyAlertStore interface {
	ListByUser(ctx context.Context, userID int64) ([]models.AlertRecord, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

type privacyPreferenceStore interface {
	ListByPrefix(ctx context.Context, userID int64, prefix string) ([]models.UserPreference, error)
	DeleteByPrefix(ctx context.Context, userID int64, prefix string) (int64, error)
}

// PrivacyService implements subject-access export and erasure for the data
// this service owns: alert rows and completion markers.
type PrivacyService struct {
	alerts privacyAlertStore
	prefs  privacyPreferenceStore
	audit  auditWriter
	logger *zap.Logger
}

// NewPrivacyService constructs the privacy service.
func NewPrivacyService(alerts privacyAlertStore, prefs privacyPreferenceStore, audit auditWriter, logger *zap.Logger) *PrivacyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrivacyService{alerts: alerts, prefs: prefs, audit: audit, logger: logger}
}

// Export gathers everything stored about the user.
func (s *PrivacyService) Export(ctx context.Context, userID int64) (*models.PrivacyExport, error) {
	alerts, err := s.alerts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	markers, err := s.prefs.ListByPrefix(ctx, userID, models.CompletionMarkerPrefix)
	if err != nil {
		return nil, err
	}

	s.writeAudit(ctx, userID, models.AuditActionPrivacyExport, len(alerts), len(markers))

	return &models.PrivacyExport{
		UserID:            userID,
		Alerts:            alerts,
		CompletionMarkers: markers,
	}, nil
}

// Erase removes the user's alert rows and completion markers.
func (s *PrivacyService) Erase(ctx context.Context, userID int64) error {
	deletedAlerts, err := s.alerts.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	deletedMarkers, err := s.prefs.DeleteByPrefix(ctx, userID, models.CompletionMarkerPrefix)
	if err != nil {
		return err
	}

	s.logger.Sugar().Infow("privacy erasure",
		"user_id", userID, "alerts_deleted", deletedAlerts, "markers_deleted", deletedMarkers)
	s.writeAudit(ctx, userID, models.AuditActionPrivacyErase, int(deletedAlerts), int(deletedMarkers))
	return nil
}

func (s *PrivacyService) writeAudit(ctx context.Context, userID int64, action string, alerts, markers int) {
	if s.audit == nil {
		return
	}
	payload := []byte(fmt.Sprintf(`{"alerts":%d,"markers":%d}`, alerts, markers))
	log := &models.AuditLog{
		UserID:   &userID,
		Action:   action,
		Resource: fmt.Sprintf("user:%d", userID),
		Payload:  payload,
	}
	if err := s.audit.Create(ctx, log); err != nil {
		s.logger.Sugar().Warnw("audit write failed", "action", action, "error", err)
	}
}
