package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/timepay/timepay-backend/internal/config"
	appHTTP "github.com/timepay/timepay-backend/internal/handler/http"
	"github.com/timepay/timepay-backend/internal/pkg/cron"
	"github.com/timepay/timepay-backend/internal/pkg/database"
	"github.com/timepay/timepay-backend/internal/pkg/email"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
	"github.com/timepay/timepay-backend/internal/pkg/oauth"
	"github.com/timepay/timepay-backend/internal/pkg/sse"
	"github.com/timepay/timepay-backend/internal/pkg/storage"
	"github.com/timepay/timepay-backend/internal/repository/postgresql"
	attendanceService "github.com/timepay/timepay-backend/internal/service/attendance"
	serviceAuth "github.com/timepay/timepay-backend/internal/service/auth"
	branchService "github.com/timepay/timepay-backend/internal/service/branch"
	employeeService "github.com/timepay/timepay-backend/internal/service/employee"
	"github.com/timepay/timepay-backend/internal/service/file"
	leaveService "github.com/timepay/timepay-backend/internal/service/leave"
	notificationService "github.com/timepay/timepay-backend/internal/service/notification"
	paymentService "github.com/timepay/timepay-backend/internal/service/payment"
	payrollService "github.com/timepay/timepay-backend/internal/service/payroll"
	reportService "github.com/timepay/timepay-backend/internal/service/report"
	userService "github.com/timepay/timepay-backend/internal/service/user"
)

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.App.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env == "development")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timepay"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	loc := cfg.Location()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	recipientDirectory := postgresql.NewRecipientDirectory(db)
	tokenRepo := postgresql.NewTokenRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRequestRepository(db)
	leaveConfigRepo := postgresql.NewLeaveConfigurationRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	paymentRepo := postgresql.NewPaymentRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	reportRepo := postgresql.NewReportRepository(db, loc)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}
	fileSvc := file.NewFileService(fileStorage)

	emailSvc, err := email.NewEmailService(cfg.SMTP, cfg.App.OrganizationName, cfg.App.FrontendURL)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}

	var googleSvc oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleSvc = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	hub := sse.NewHub()
	notificationSvc := notificationService.NewNotificationService(
		notificationRepo,
		recipientDirectory,
		emailSvc,
		hub,
		notificationService.Config{
			BatchSize:     cfg.Notification.BatchSize,
			FlushInterval: cfg.Notification.FlushInterval,
			WorkerCount:   cfg.Notification.WorkerCount,
			QueueSize:     cfg.Notification.QueueSize,
		},
	)

	authSvc := serviceAuth.NewAuthService(tx, userRepo, employeeRepo, tokenRepo, JWTService, googleSvc, emailSvc, cfg.App.FrontendURL)
	userSvc := userService.NewUserService(userRepo)
	branchSvc := branchService.NewBranchService(branchRepo, employeeRepo, loc)
	employeeSvc := employeeService.NewEmployeeService(tx, employeeRepo, fileSvc)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, branchRepo, loc)
	leaveSvc := leaveService.NewLeaveService(tx, leaveRepo, leaveConfigRepo, employeeRepo, userRepo, notificationSvc, loc)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, employeeRepo, attendanceRepo, notificationSvc, cfg.App.OrganizationName, loc)
	paymentSvc := paymentService.NewPaymentService(tx, paymentRepo, payrollRepo, notificationSvc)
	reportSvc := reportService.NewReportService(reportRepo, loc)

	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authSvc, cfg.App.FrontendURL),
		User:         appHTTP.NewUserHandler(userSvc),
		Branch:       appHTTP.NewBranchHandler(branchSvc, employeeSvc),
		Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:        appHTTP.NewLeaveHandler(leaveSvc, fileSvc),
		Payroll:      appHTTP.NewPayrollHandler(payrollSvc),
		Payment:      appHTTP.NewPaymentHandler(paymentSvc),
		Report:       appHTTP.NewReportHandler(reportSvc),
		Notification: appHTTP.NewNotificationHandler(notificationSvc, JWTService),
	}, appHTTP.RouterConfig{
		Logger:      logger,
		CORSOrigins: cfg.App.CORSOrigins,
		UploadsPath: cfg.Storage.BasePath,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.NewScheduler(ctx)
	cron.NewAttendanceJobs(attendanceRepo, employeeRepo, branchRepo, leaveRepo, loc).RegisterJobs(scheduler)
	cron.NewBirthdayJobs(employeeRepo, notificationSvc, loc).RegisterJobs(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	scheduler.Stop()
	notificationSvc.Stop()
	slog.Info("Shutdown complete")
}
