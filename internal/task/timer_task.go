// Package task holds the scheduled batch run that keeps alerts and
// completion emails flowing without any user visiting a course page.
package task

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/models"
	"github.com/hyukudan/enroltimer/internal/service"
	"github.com/hyukudan/enroltimer/pkg/config"
)

type courseLister interface {
	ListTimerCourses(ctx context.Context) ([]models.Course, error)
	ListEnrolledUsers(ctx context.Context, courseID int64) ([]models.User, error)
}

// RunStats summarises one pass of the timer task.
type RunStats struct {
	Courses         int
	Users           int
	AlertsScheduled int
	AlertsSent      int
	AlertsSkipped   int
	AlertsFailed    int
	CompletionsSent int
	OrphansPurged   int64
	Errors          int
}

// TimerTask is the periodic batch pass. It walks every course carrying a
// timer, schedules missing alerts, processes completions and finally flushes
// everything due. One pass is single-threaded; concurrent passes are safe
// because scheduling is guarded by the alert table's uniqueness constraint
// and sending by the update of the sent flag.
type TimerTask struct {
	courses    courseLister
	alerts     *service.AlertService
	completion *service.CompletionService
	alertsCfg  config.AlertsConfig
	complCfg   config.CompletionConfig
	metrics    *service.MetricsService
	logger     *zap.Logger
	now        func() int64
}

// NewTimerTask constructs the task.
func NewTimerTask(
	courses courseLister,
	alerts *service.AlertService,
	completion *service.CompletionService,
	alertsCfg config.AlertsConfig,
	complCfg config.CompletionConfig,
	metrics *service.MetricsService,
	logger *zap.Logger,
) *TimerTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimerTask{
		courses:    courses,
		alerts:     alerts,
		completion: completion,
		alertsCfg:  alertsCfg,
		complCfg:   complCfg,
		metrics:    metrics,
		logger:     logger,
		now:        func() int64 { return time.Now().Unix() },
	}
}

// Run executes one full pass and reports what it did. Per-user failures are
// contained and counted so one bad row never starves the rest of the batch.
func (t *TimerTask) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats

	alertsActive := t.alertsCfg.Enabled && t.alerts.TemplatesConfigured()
	if t.alertsCfg.Enabled && !t.alerts.TemplatesConfigured() {
		t.logger.Sugar().Warnw("alerts enabled but templates unset, skipping alert work")
	}
	complActive := t.complCfg.Enabled && t.completion.TemplatesConfigured()
	if t.complCfg.Enabled && !t.completion.TemplatesConfigured() {
		t.logger.Sugar().Warnw("completion enabled but templates unset, skipping completion work")
	}
	if !alertsActive && !complActive {
		t.logger.Sugar().Infow("timer task idle, both features off")
		return stats, nil
	}

	started := time.Now()
	defer func() {
		if t.metrics != nil {
			t.metrics.ObserveJobRun(time.Since(started))
		}
	}()

	if alertsActive {
		purged, err := t.alerts.PurgeOrphans(ctx)
		if err != nil {
			t.logger.Sugar().Errorw("orphan purge failed", "error", err)
			stats.Errors++
		}
		stats.OrphansPurged = purged
	}

	courses, err := t.courses.ListTimerCourses(ctx)
	if err != nil {
		return stats, fmt.Errorf("list timer courses: %w", err)
	}
	stats.Courses = len(courses)

	now := t.now()
	for _, course := range courses {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		t.runCourse(ctx, course, now, alertsActive, complActive, &stats)
	}

	if alertsActive {
		flush, err := t.alerts.FlushDue(ctx, now)
		if err != nil {
			t.logger.Sugar().Errorw("alert flush failed", "error", err)
			stats.Errors++
		}
		stats.AlertsSent = flush.Sent
		stats.AlertsSkipped = flush.Skipped
		stats.AlertsFailed = flush.Failed
	}

	t.logger.Sugar().Infow("timer task finished",
		"courses", stats.Courses,
		"users", stats.Users,
		"alerts_scheduled", stats.AlertsScheduled,
		"alerts_sent", stats.AlertsSent,
		"alerts_skipped", stats.AlertsSkipped,
		"alerts_failed", stats.AlertsFailed,
		"completions_sent", stats.CompletionsSent,
		"orphans_purged", stats.OrphansPurged,
		"errors", stats.Errors,
		"duration", time.Since(started),
	)
	return stats, nil
}

func (t *TimerTask) runCourse(ctx context.Context, course models.Course, now int64, alertsActive, complActive bool, stats *RunStats) {
	users, err := t.courses.ListEnrolledUsers(ctx, course.ID)
	if err != nil {
		t.logger.Sugar().Errorw("list enrolled users failed", "course_id", course.ID, "error", err)
		stats.Errors++
		return
	}

	for _, user := range users {
		stats.Users++
		t.runUser(ctx, user, course, now, alertsActive, complActive, stats)
	}
}

func (t *TimerTask) runUser(ctx context.Context, user models.User, course models.Course, now int64, alertsActive, complActive bool, stats *RunStats) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Sugar().Errorw("timer task panic contained",
				"user_id", user.ID, "course_id", course.ID, "panic", r)
			stats.Errors++
		}
	}()

	cache := service.NewRequestCache()

	if alertsActive {
		created, err := t.alerts.ScheduleUser(ctx, cache, user.ID, course.ID)
		if err != nil {
			t.logger.Sugar().Errorw("alert scheduling failed",
				"user_id", user.ID, "course_id", course.ID, "error", err)
			stats.Errors++
		}
		stats.AlertsScheduled += created
	}

	if complActive {
		sent, err := t.completion.ProcessUser(ctx, user, course, now)
		if err != nil {
			t.logger.Sugar().Errorw("completion processing failed",
				"user_id", user.ID, "course_id", course.ID, "error", err)
			stats.Errors++
		}
		if sent {
			stats.CompletionsSent++
		}
	}
}
