package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/internal/notify"
	"github.com/hyukudan/enroltimer/internal/repository"
	"github.com/hyukudan/enroltimer/internal/service"
	"github.com/hyukudan/enroltimer/internal/task"
	"github.com/hyukudan/enroltimer/pkg/config"
	"github.com/hyukudan/enroltimer/pkg/database"
	"github.com/hyukudan/enroltimer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	mailer := newMailer(cfg, logr)

	enrolmentRepo := repository.NewEnrolmentRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	metricsSvc := service.NewMetricsService()
	lookupSvc := service.NewLookupService(enrolmentRepo, logr)
	alertSvc := service.NewAlertService(alertRepo, enrolmentRepo, userRepo, courseRepo, lookupSvc,
		auditRepo, mailer, cfg.Alerts, cfg.Mail, metricsSvc, logr)
	completionSvc := service.NewCompletionService(prefRepo, completionRepo, auditRepo, mailer,
		cfg.Completion, cfg.Mail, metricsSvc, logr)

	timerTask := task.NewTimerTask(courseRepo, alertSvc, completionSvc,
		cfg.Alerts, cfg.Completion, metricsSvc, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Worker.Cron, func() {
		stats, err := timerTask.Run(ctx)
		if err != nil {
			logr.Sugar().Errorw("timer task run failed", "error", err, "stats", stats)
		}
	})
	if err != nil {
		logr.Sugar().Fatalw("invalid cron spec", "spec", cfg.Worker.Cron, "error", err)
	}

	logr.Sugar().Infow("worker starting", "cron", cfg.Worker.Cron, "mail_provider", cfg.Mail.Provider)
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("worker draining")
	cancel()

	// Let an in-flight pass finish before exiting.
	drained := scheduler.Stop()
	select {
	case <-drained.Done():
	case <-time.After(30 * time.Second):
		logr.Sugar().Warnw("drain timed out")
	}
	logr.Sugar().Infow("worker stopped")
}

func newMailer(cfg *config.Config, logr *zap.Logger) notify.Sender {
	switch cfg.Mail.Provider {
	case "sendgrid":
		return notify.NewSendgridSender(cfg.Mail)
	default:
		return notify.NewConsoleSender(logr)
	}
}
