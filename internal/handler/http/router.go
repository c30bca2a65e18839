package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/handler/http/middleware"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         AuthHandler
	User         UserHandler
	Branch       BranchHandler
	Employee     EmployeeHandler
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Payroll      PayrollHandler
	Payment      PaymentHandler
	Report       ReportHandler
	Notification NotificationHandler
}

type RouterConfig struct {
	Logger      *slog.Logger
	CORSOrigins []string
	UploadsPath string
}

func NewRouter(JWTService jwt.Service, h Handlers, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	if cfg.UploadsPath != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsPath)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	can := middleware.RequirePermission

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password/{token}", h.Auth.ResetPassword)
			r.Get("/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService))
				r.Get("/me", h.Auth.Me)
				r.Post("/change-password", h.Auth.ChangePassword)
			})
		})

		// EventSource cannot send an Authorization header; the stream checks its own token.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/roles", func(r chi.Router) {
				r.Use(can(user.ActionUserManage))
				r.Get("/", h.User.Roles)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(can(user.ActionUserManage))
				r.Get("/", h.User.List)
				r.Post("/", h.User.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.User.Get)
					r.Put("/", h.User.Update)
					r.Delete("/", h.User.Delete)
					r.Put("/role", h.User.UpdateRole)
					r.Post("/activate", h.User.Activate)
					r.Post("/deactivate", h.User.Deactivate)
				})
			})

			r.Route("/branches", func(r chi.Router) {
				r.Get("/", h.Branch.List)
				r.Get("/{id}", h.Branch.Get)
				r.With(can(user.ActionEmployeeViewAll)).Get("/{id}/employees", h.Branch.Employees)
				r.With(can(user.ActionAttendanceViewAll)).Get("/{id}/stats", h.Branch.Stats)

				r.Group(func(r chi.Router) {
					r.Use(can(user.ActionBranchManage))
					r.Post("/", h.Branch.Create)
					r.Put("/{id}", h.Branch.Update)
					r.Delete("/{id}", h.Branch.Delete)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/me", h.Employee.Me)
				r.With(can(user.ActionEmployeeViewAll)).Get("/", h.Employee.List)
				r.With(can(user.ActionEmployeeManage)).Post("/", h.Employee.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Employee.Get)
					r.Get("/leave-history", h.Employee.LeaveHistory)
					r.Get("/documents", h.Employee.ListDocuments)
					r.Post("/avatar", h.Employee.UploadAvatar)
					r.Post("/documents", h.Employee.UploadDocument)
					r.With(can(user.ActionEmployeeManage)).Put("/", h.Employee.Update)
					r.With(can(user.ActionEmployeeDelete)).Delete("/", h.Employee.Delete)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", h.Attendance.ClockIn)
				r.Post("/clock-out", h.Attendance.ClockOut)
				r.Get("/today", h.Attendance.Today)
				r.Get("/my", h.Attendance.GetMyAttendance)

				r.With(can(user.ActionAttendanceViewAll)).Get("/", h.Attendance.List)
				r.With(can(user.ActionAttendanceViewAll)).Get("/{id}", h.Attendance.Get)
				r.With(can(user.ActionAttendanceMark)).Post("/mark", h.Attendance.Mark)
				r.With(can(user.ActionAttendanceMark)).Put("/{id}", h.Attendance.Update)
				r.With(can(user.ActionAttendanceReport)).Get("/report/{employeeId}", h.Attendance.Report)
				r.With(can(user.ActionAttendanceViewAll)).Get("/branch/{branchId}/stats", h.Attendance.BranchStats)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", h.Leave.Apply)
				r.Get("/my", h.Leave.GetMyLeaves)
				r.Get("/my/balance", h.Leave.GetMyBalance)

				r.Route("/configurations", func(r chi.Router) {
					r.With(can(user.ActionLeaveConfigView)).Get("/", h.Leave.ListConfigurations)
					r.With(can(user.ActionLeaveConfigManage)).Post("/", h.Leave.CreateConfiguration)
					r.With(can(user.ActionLeaveConfigManage)).Put("/{id}", h.Leave.UpdateConfiguration)
				})

				r.With(can(user.ActionLeaveViewAll)).Get("/", h.Leave.List)
				r.With(can(user.ActionLeaveApprove)).Get("/pending", h.Leave.ListPending)
				r.With(can(user.ActionLeaveStats)).Get("/stats", h.Leave.Stats)
				r.With(can(user.ActionLeaveViewAll)).Get("/employee/{employeeId}", h.Leave.GetEmployeeLeaves)
				r.With(can(user.ActionLeaveViewAll)).Get("/employee/{employeeId}/balance", h.Leave.GetEmployeeBalance)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Leave.Get)
					r.Post("/cancel", h.Leave.Cancel)
					r.With(can(user.ActionLeaveApprove)).Post("/approve", h.Leave.Approve)
					r.With(can(user.ActionLeaveApprove)).Post("/reject", h.Leave.Reject)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/my", h.Payroll.GetMyPayslips)

				r.Group(func(r chi.Router) {
					r.Use(can(user.ActionPayrollManage))
					r.Post("/generate", h.Payroll.Generate)
					r.Post("/bulk-generate", h.Payroll.BulkGenerate)
					r.Get("/", h.Payroll.List)
					r.Get("/stats", h.Payroll.Stats)
					r.Get("/employee/{employeeId}", h.Payroll.GetEmployeePayrolls)
					r.Put("/{id}", h.Payroll.Update)
					r.Post("/{id}/cancel", h.Payroll.Cancel)
				})

				r.Group(func(r chi.Router) {
					r.Use(can(user.ActionPayrollApprove))
					r.Post("/{id}/approve", h.Payroll.Approve)
					r.Post("/{id}/pay", h.Payroll.Pay)
				})

				r.Get("/{id}", h.Payroll.Get)
				r.Get("/{id}/download", h.Payroll.Download)
				r.Get("/download/{id}", h.Payroll.Download)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/my", h.Payment.GetMyPayments)

				r.Group(func(r chi.Router) {
					r.Use(can(user.ActionPaymentManage))
					r.Post("/", h.Payment.Initiate)
					r.Get("/", h.Payment.List)
					r.Get("/stats", h.Payment.Stats)
					r.Get("/export", h.Payment.Export)
					r.Post("/{id}/process", h.Payment.Process)
					r.Post("/{id}/complete", h.Payment.Complete)
					r.Post("/{id}/fail", h.Payment.Fail)
					r.Post("/{id}/retry", h.Payment.Retry)
					r.Post("/{id}/cancel", h.Payment.Cancel)
					r.Post("/{id}/refund", h.Payment.Refund)
				})

				r.Get("/{id}", h.Payment.Get)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(can(user.ActionReportView))
				r.Get("/employees", h.Report.EmployeeSummary)
				r.Get("/attendance", h.Report.AttendanceSummary)
				r.Get("/leaves", h.Report.LeaveSummary)
				r.Get("/payroll", h.Report.PayrollSummary)
				r.Get("/departments", h.Report.DepartmentSummary)
				r.Get("/export/{kind}", h.Report.Export)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Get("/preferences", h.Notification.GetPreferences)
				r.Put("/preferences", h.Notification.UpdatePreference)
				r.Get("/stream/token", h.Notification.GetSSEToken)
				r.With(can(user.ActionNotificationSend)).Post("/send", h.Notification.Send)
				r.With(can(user.ActionNotificationBroadcast)).Post("/broadcast", h.Notification.Broadcast)
				r.Delete("/{id}", h.Notification.Delete)
			})
		})
	})
	return r
}
