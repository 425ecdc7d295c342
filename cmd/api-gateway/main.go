package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-portal-api/api/swagger"
	"github.com/noah-isme/school-portal-api/internal/handler"
	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/repository"
	"github.com/noah-isme/school-portal-api/internal/router"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/cache"
	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/database"
	"github.com/noah-isme/school-portal-api/pkg/errreport"
	"github.com/noah-isme/school-portal-api/pkg/export"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
	"github.com/noah-isme/school-portal-api/pkg/logger"
	"github.com/noah-isme/school-portal-api/pkg/mailer"
	"github.com/noah-isme/school-portal-api/pkg/messaging"
	corsmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/school-portal-api/pkg/storage"
)

// @title School Portal API
// @version 1.0.0
// @description Role aware school portal backend for Kenyan CBC schools.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	natsConn, err := messaging.NewNATS(cfg.Events, logr)
	if err != nil {
		logr.Warn("nats unavailable, session events stay local", zap.Error(err))
		natsConn = nil
	}
	if natsConn != nil {
		defer natsConn.Drain() //nolint:errcheck
	}

	reporter := errreport.New(cfg.ErrorReporting, cfg.Env)
	defer reporter.Flush()

	metricsSvc := service.NewMetricsService()
	validate := service.NewValidator()
	view := service.NewViewComposer(nil)

	// repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	examRepo := repository.NewExamRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	reportRepo := repository.NewReportRepository(db)
	reportingRepo := repository.NewReportingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	// services
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)
	notifierOpts := service.SessionNotifierOptions{
		Redis:        cacheRepo,
		RedisChannel: cfg.Events.RedisChannel,
		Subject:      cfg.Events.NATSSubject,
		Metrics:      metricsSvc,
	}
	if natsConn != nil {
		notifierOpts.Bus = natsConn
	}
	notifier := service.NewSessionNotifier(notifierOpts, logr)
	notifier.Subscribe(func(event models.SessionEvent) {
		logr.Info("session changed", zap.String("type", event.Type), zap.String("user_id", event.UserID))
	})
	if redisClient != nil && cfg.Events.RedisChannel != "" {
		go func() {
			err := cacheRepo.Subscribe(ctx, cfg.Events.RedisChannel, func(payload []byte) {
				logr.Debug("session event received", zap.ByteString("payload", payload))
			})
			if err != nil {
				logr.Warn("session event subscription ended", zap.Error(err))
			}
		}()
	}

	sessionSvc := service.NewSessionService(profileRepo, studentRepo, logr)
	scopeSvc := service.NewScopeService(classRepo, logr)
	authSvc := service.NewAuthService(service.AuthDependencies{
		Users:    userRepo,
		Profiles: profileRepo,
		Sessions: sessionSvc,
		Notifier: notifier,
		Mailer:   mailer.New(cfg.Mail, cfg.AppName, logr),
	}, validate, logr, service.AuthConfig{
		AccessTokenSecret:        cfg.JWT.Secret,
		AccessTokenExpiry:        cfg.JWT.Expiration,
		RefreshTokenExpiry:       cfg.JWT.RefreshExpiration,
		Issuer:                   cfg.JWT.Issuer,
		SingleSession:            cfg.Auth.SingleSession,
		RequireEmailVerification: cfg.Auth.RequireEmailVerification,
		VerificationURL:          cfg.Mail.VerificationURL,
	})

	userSvc := service.NewUserService(profileRepo, classRepo, userRepo, validate, logr)
	meSvc := service.NewMeService(profileRepo, cacheSvc, cfg.Dashboard.NavigationCacheTTL, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, scopeSvc, userRepo, view, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, scopeSvc, userRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, profileRepo, scopeSvc, userRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, profileRepo, scopeSvc, userRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, classRepo, profileRepo, userRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, studentRepo, scopeSvc, userRepo, view, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, scopeSvc, userRepo, view, validate, logr)
	financeSvc := service.NewFinanceService(financeRepo, studentRepo, scopeSvc, userRepo, view, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, scopeSvc, userRepo, view, validate, logr)
	calendarSvc := service.NewCalendarService(calendarRepo, scopeSvc, userRepo, view, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:      studentRepo,
		Profiles:      profileRepo,
		Classes:       classRepo,
		Subjects:      subjectRepo,
		Announcements: announcementSvc,
		Cache:         cacheSvc,
		Logger:        logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:          cfg.Dashboard.CacheTTL,
			AnnouncementLimit: cfg.Dashboard.AnnouncementLimit,
		},
	})

	reportSvc, reportQueue := buildReports(cfg, reportRepo, reportingRepo, metricsSvc, userRepo, validate, logr)
	if cfg.Reports.Enabled {
		reportQueue.Start(ctx)
		defer reportQueue.Stop()
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	} else {
		logr.Info("report workers disabled")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics"))
	r.Use(reporter.Middleware(func(c *gin.Context) map[string]interface{} {
		session := middleware.CurrentSession(c)
		if session == nil {
			return nil
		}
		return map[string]interface{}{"id": session.ProfileID, "email": session.Email}
	}))

	router.Register(r, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Users:         handler.NewUserHandler(userSvc, meSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Timetable:     handler.NewTimetableHandler(timetableSvc),
		Classes:       handler.NewClassHandler(classSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Subjects:      handler.NewSubjectHandler(subjectSvc),
		Exams:         handler.NewExamHandler(examSvc),
		Assignments:   handler.NewAssignmentHandler(assignmentSvc),
		Finance:       handler.NewFinanceHandler(financeSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc),
		Calendar:      handler.NewCalendarHandler(calendarSvc),
		Reports:       handler.NewReportHandler(reportSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc, readinessChecks(db, redisClient, natsConn)),
	}, router.Options{
		APIPrefix: cfg.APIPrefix,
		Auth:      middleware.JWT(authSvc, sessionSvc),
		Swagger:   cfg.Env != config.EnvProduction,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func buildReports(cfg *config.Config, repo *repository.ReportRepository, reporting *repository.ReportingRepository, metrics *service.MetricsService, audit *repository.UserRepository, validate *validator.Validate, logr *zap.Logger) (*service.ReportService, *jobs.Queue) {
	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare report storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exporter := service.NewExportService(reporting, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	worker := service.NewReportWorker(repo, exporter, metrics, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportSvc := service.NewReportService(repo, queue, exporter, metrics, audit, validate, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	return reportSvc, queue
}

func readinessChecks(db *sqlx.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		checks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return errors.New("not connected")
			}
			return nil
		}
	}
	return checks
}
