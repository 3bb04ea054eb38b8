package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/models"
	"github.com/hyukudan/enroltimer/internal/notify"
	"github.com/hyukudan/enroltimer/pkg/config"
	appErrors "github.com/hyukudan/enroltimer/pkg/errors"
)

type preferenceStore interface {
	Get(ctx context.Context, userID int64, name string) (*models.UserPreference, error)
	Set(ctx context.Context, userID int64, name, value string) error
}

type completionReader interface {
	FindCompletion(ctx context.Context, userID, courseID int64) (*models.CourseCompletion, error)
	FindGrade(ctx context.Context, userID, courseID int64) (*models.GradeResult, error)
}

// CompletionService sends the one-off congratulation email once a user
// completes a course. The per-user marker preference is the only gate: once
// written after a confirmed send it is never rewritten, so a second
// qualifying run stays silent.
type CompletionService struct {
	prefs       preferenceStore
	completions completionReader
	audit       auditWriter
	mailer      notify.Sender
	cfg         config.CompletionConfig
	mail        config.MailConfig
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewCompletionService constructs the completion service.
func NewCompletionService(
	prefs preferenceStore,
	completions completionReader,
	audit auditWriter,
	mailer notify.Sender,
	cfg config.CompletionConfig,
	mail config.MailConfig,
	metrics *MetricsService,
	logger *zap.Logger,
) *CompletionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionService{
		prefs:       prefs,
		completions: completions,
		audit:       audit,
		mailer:      mailer,
		cfg:         cfg,
		mail:        mail,
		metrics:     metrics,
		logger:      logger,
	}
}

// TemplatesConfigured reports whether the completion subject and body are set.
func (s *CompletionService) TemplatesConfigured() bool {
	return s.cfg.Subject != "" && s.cfg.Body != ""
}

func markerName(courseID int64) string {
	return models.CompletionMarkerPrefix + strconv.FormatInt(courseID, 10)
}

// ProcessUser checks whether the user qualifies for the completion email and
// sends it at most once. Returns true when a message went out this call.
func (s *CompletionService) ProcessUser(ctx context.Context, user models.User, course models.Course, now int64) (bool, error) {
	if !s.TemplatesConfigured() {
		return false, appErrors.ErrTemplateMissing
	}

	marker, err := s.prefs.Get(ctx, user.ID, markerName(course.ID))
	if err != nil {
		return false, err
	}
	if marker != nil {
		return false, nil
	}

	threshold := s.cfg.Threshold
	if threshold <= 0 {
		threshold = 100
	}

	// The percentage feeds the template in both branches, defaulting to a
	// full score when no grade is obtainable.
	percentage := 100.0

	if threshold >= 100 {
		completion, err := s.completions.FindCompletion(ctx, user.ID, course.ID)
		if err != nil {
			return false, err
		}
		if completion == nil || !completion.Completed() {
			return false, nil
		}
		grade, err := s.completions.FindGrade(ctx, user.ID, course.ID)
		if err != nil {
			return false, err
		}
		if grade != nil {
			if pct, ok := grade.Percentage(); ok {
				percentage = pct
			}
		}
	} else {
		grade, err := s.completions.FindGrade(ctx, user.ID, course.ID)
		if err != nil {
			return false, err
		}
		if grade == nil {
			return false, nil
		}
		pct, ok := grade.Percentage()
		if !ok || pct < threshold {
			return false, nil
		}
		percentage = pct
	}

	tc := notify.TemplateContext{
		UserName:        user.FullName(),
		UserFirstName:   user.FirstName,
		CourseName:      course.FullName,
		CourseShortName: course.ShortName,
		CourseURL:       fmt.Sprintf("%s/course/%d", s.mail.SiteURL, course.ID),
		SiteName:        s.mail.SiteName,
		Percentage:      percentage,
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
		// No marker on failure: retried next run, still gated only by the
		// marker that does not exist yet.
		return false, fmt.Errorf("send completion email: %w", err)
	}

	if err := s.prefs.Set(ctx, user.ID, markerName(course.ID), strconv.FormatInt(now, 10)); err != nil {
		return true, err
	}

	if s.metrics != nil {
		s.metrics.IncCompletionSent()
	}
	s.logger.Sugar().Infow("completion email sent",
		"user_id", user.ID, "course_id", course.ID, "message_id", messageID)

	s.writeAudit(ctx, user.ID, course.ID, messageID, percentage)
	return true, nil
}

func (s *CompletionService) writeAudit(ctx context.Context, userID, courseID int64, messageID string, percentage float64) {
	if s.audit == nil {
		return
	}
	payload := []byte(fmt.Sprintf(`{"message_id":%q,"percentage":%.1f}`, messageID, percentage))
	log := &models.AuditLog{
		UserID:   &userID,
		Action:   models.AuditActionCompletionSent,
		Resource: fmt.Sprintf("course:%d", courseID),
		Payload:  payload,
	}
	if err := s.audit.Create(ctx, log); err != nil {
		s.logger.Sugar().Warnw("audit write failed", "action", models.AuditActionCompletionSent, "error", err)
	}
}
