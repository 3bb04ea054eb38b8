package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/models"
	"github.com/hyukudan/enroltimer/internal/notify"
	"github.com/hyukudan/enroltimer/pkg/config"
	appErrors "github.com/hyukudan/enroltimer/pkg/errors"
)

const secondsPerDay = 86400

type alertStore interface {
	Create(ctx context.Context, alert *models.AlertRecord) error
	ListDue(ctx context.Context, now int64) ([]models.AlertRecord, error)
	MarkSent(ctx context.Context, id string) error
	DeleteOrphans(ctx context.Context) (int64, error)
}

type userReader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// FlushStats summarises one due-alert flush pass.
type FlushStats struct {
	Sent    int
	Skipped int
	Failed  int
}

// AlertService schedules expiry warnings and walks each enrolment from
// no-alert through scheduled to the terminal sent state.
type AlertService struct {
	alerts     alertStore
	enrolments enrolmentReader
	users      userReader
	courses    courseReader
	lookup     *LookupService
	audit      auditWriter
	mailer     notify.Sender
	cfg        config.AlertsConfig
	mail       config.MailConfig
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewAlertService constructs the alert service.
func NewAlertService(
	alerts alertStore,
	enrolments enrolmentReader,
	users userReader,
	courses courseReader,
	lookup *LookupService,
	audit auditWriter,
	mailer notify.Sender,
	cfg config.AlertsConfig,
	mail config.MailConfig,
	metrics *MetricsService,
	logger *zap.Logger,
) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		alerts:     alerts,
		enrolments: enrolments,
		users:      users,
		courses:    courses,
		lookup:     lookup,
		audit:      audit,
		mailer:     mailer,
		cfg:        cfg,
		mail:       mail,
		metrics:    metrics,
		logger:     logger,
	}
}

// TemplatesConfigured reports whether the alert subject and body are set.
func (s *AlertService) TemplatesConfigured() bool {
	return s.cfg.Subject != "" && s.cfg.Body != ""
}

// PurgeOrphans deletes alert rows whose enrolment is gone and reports how
// many were removed.
func (s *AlertService) PurgeOrphans(ctx context.Context) (int64, error) {
	purged, err := s.alerts.DeleteOrphans(ctx)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Sugar().Infow("purged orphan alerts", "count", purged)
	}
	if s.metrics != nil {
		s.metrics.AddOrphansPurged(purged)
	}
	return purged, nil
}

// ScheduleUser creates missing alert rows for every enrolment the user holds
// in the course whose effective end time is set. Duplicate inserts are
// resolved by the enrol_id uniqueness constraint: a conflict means another
// run got there first and is not an error.
func (s *AlertService) ScheduleUser(ctx context.Context, cache *RequestCache, userID, courseID int64) (int, error) {
	records, err := s.lookup.Records(ctx, cache, userID, courseID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, record := range records {
		endTime, err := s.lookup.ResolveEndTime(ctx, record)
		if err != nil {
			return created, err
		}
		if endTime <= 0 {
			continue
		}

		alert := &models.AlertRecord{
			EnrolID:   record.ID,
			AlertTime: endTime - int64(s.cfg.DaysToAlert)*secondsPerDay,
		}
		if err := s.alerts.Create(ctx, alert); err != nil {
			if isConflict(err) {
				continue
			}
			return created, err
		}
		created++
	}

	if created > 0 && s.metrics != nil {
		s.metrics.AddAlertsScheduled(created)
	}
	return created, nil
}

// FlushDue sends every due, unsent alert. Rows pointing at vanished or
// inactive data are marked sent without a delivery so they are never retried;
// transport failures leave the row unsent for the next run. A missing
// template aborts the whole pass.
func (s *AlertService) FlushDue(ctx context.Context, now int64) (FlushStats, error) {
	var stats FlushStats

	if !s.TemplatesConfigured() {
		return stats, appErrors.ErrTemplateMissing
	}

	due, err := s.alerts.ListDue(ctx, now)
	if err != nil {
		return stats, err
	}

	for _, alert := range due {
		if err := s.flushOne(ctx, alert, now, &stats); err != nil {
			s.logger.Sugar().Errorw("alert flush failed", "alert_id", alert.ID, "enrol_id", alert.EnrolID, "error", err)
		}
	}

	return stats, nil
}

func (s *AlertService) flushOne(ctx context.Context, alert models.AlertRecord, now int64, stats *FlushStats) error {
	record, err := s.enrolments.FindByID(ctx, alert.EnrolID)
	if err != nil {
		return err
	}
	if record == nil {
		return s.retire(ctx, alert, stats, "enrolment gone")
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		return err
	}
	if user == nil || !user.Active() {
		return s.retire(ctx, alert, stats, "user missing or inactive")
	}

	method, err := s.enrolments.FindMethod(ctx, record.EnrolMethodID)
	if err != nil {
		return err
	}
	if method == nil {
		return s.retire(ctx, alert, stats, "enrol method gone")
	}

	course, err := s.courses.FindByID(ctx, method.CourseID)
	if err != nil {
		return err
	}
	if course == nil {
		return s.retire(ctx, alert, stats, "course gone")
	}

	endTime := record.TimeEnd
	if endTime <= 0 {
		endTime = method.EnrolEndDate
	}

	tc := notify.TemplateContext{
		UserName:        user.FullName(),
		UserFirstName:   user.FirstName,
		CourseName:      course.FullName,
		CourseShortName: course.ShortName,
		CourseURL:       fmt.Sprintf("%s/course/%d", s.mail.SiteURL, course.ID),
		SiteName:        s.mail.SiteName,
		DaysToAlert:     s.cfg.DaysToAlert,
		DaysRemaining:   daysUntil(endTime, now),
		ExpiryDate:      formatDate(endTime),
	}

	msg := &notify.Message{
		ToName:      user.FullName(),
		ToAddress:   user.Email,
		FromName:    s.mail.FromName,
		FromAddress: s.mail.FromAddress,
		Subject:     notify.RenderPlain(s.cfg.Subject, tc),
		PlainBody:   notify.RenderPlain(s.cfg.Body, tc),
		HTMLBody:    notify.RenderHTML(s.cfg.Body, tc),
	}

	messageID, err := s.mailer.Send(ctx, msg)
	if err != nil {
		stats.Failed++
		if s.metrics != nil {
			s.metrics.IncAlertSendFailure()
		}
		s.logger.Sugar().Warnw("expiry alert send failed, will retry",
			"alert_id", alert.ID, "user_id", user.ID, "course_id", course.ID, "error", err)
		return nil
	}

	if err := s.alerts.MarkSent(ctx, alert.ID); err != nil {
		return err
	}
	stats.Sent++
	if s.metrics != nil {
		s.metrics.IncAlertSent()
	}
	s.logger.Sugar().Infow("expiry alert sent",
		"alert_id", alert.ID, "user_id", user.ID, "course_id", course.ID, "message_id", messageID)

	s.writeAudit(ctx, user.ID, course.ID, models.AuditActionAlertSent, map[string]interface{}{
		"enrol_id":   alert.EnrolID,
		"alert_time": alert.AlertTime,
		"message_id": messageID,
	})
	return nil
}

// retire marks an alert sent without a delivery so dead data stops being
// retried forever.
func (s *AlertService) retire(ctx context.Context, alert models.AlertRecord, stats *FlushStats, reason string) error {
	if err := s.alerts.MarkSent(ctx, alert.ID); err != nil {
		return err
	}
	stats.Skipped++
	s.logger.Sugar().Infow("alert retired", "alert_id", alert.ID, "enrol_id", alert.EnrolID, "reason", reason)
	return nil
}

func (s *AlertService) writeAudit(ctx context.Context, userID, courseID int64, action string, payload map[string]interface{}) {
	if s.audit == nil {
		return
	}
	body, _ := json.Marshal(payload)
	log := &models.AuditLog{
		UserID:   &userID,
		Action:   action,
		Resource: fmt.Sprintf("course:%d", courseID),
		Payload:  body,
	}
	if err := s.audit.Create(ctx, log); err != nil {
		s.logger.Sugar().Warnw("audit write failed", "action", action, "error", err)
	}
}

func isConflict(err error) bool {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Code == appErrors.ErrConflict.Code
	}
	return false
}

func daysUntil(endTime, now int64) int {
	diff := endTime - now
	if diff <= 0 {
		return 0
	}
	return int((diff + secondsPerDay - 1) / secondsPerDay)
}

func formatDate(epoch int64) string {
	if epoch <= 0 {
		return ""
	}
	return time.Unix(epoch, 0).UTC().Format("2 January 2006")
}
