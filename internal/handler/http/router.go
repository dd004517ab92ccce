package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
)

type Handlers struct {
	Attendance   AttendanceHandler
	Balance      BalanceHandler
	Leave        LeaveHandler
	SiteVisit    SiteVisitHandler
	Calendar     CalendarHandler
	Notification NotificationHandler
	Bot          BotHandler
}

func NewRouter(logger *slog.Logger, allowedOrigins []string, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
		// Streams stay open for minutes; logging them only adds noise.
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/api/v1/notifications/stream"
		},
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Authenticated by their own tokens
		r.Get("/notifications/stream", h.Notification.Stream)
		r.Post("/bot/commands", h.Bot.Command)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.Attendance.List)
				r.Post("/", h.Attendance.Mark)
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/{id}", h.Attendance.Get)
				r.With(middleware.RequirePermission(user.PermissionAttendanceDelete)).Delete("/{id}", h.Attendance.Delete)
			})

			r.Route("/balances/{year}/{month}", func(r chi.Router) {
				r.Get("/", h.Balance.GetMonthly)
				r.With(middleware.RequirePermission(user.PermissionBalanceRecompute)).Post("/recompute", h.Balance.Recompute)
			})

			r.Route("/comp-offs", func(r chi.Router) {
				r.Get("/", h.Balance.ListCompOffs)
				r.Post("/{id}/use", h.Balance.UseCompOff)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.Get("/", h.Leave.ListRequests)
					r.Post("/", h.Leave.CreateRequest)
					r.Get("/{id}", h.Leave.GetRequest)
					r.Post("/{id}/cancel", h.Leave.CancelRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Post("/{id}/approve", h.Leave.ApproveRequest)
						r.Post("/{id}/reject", h.Leave.RejectRequest)
					})
				})

				r.Get("/quotas/{year}", h.Leave.GetQuota)
				r.With(middleware.RequirePermission(user.PermissionLeaveQuotaManage)).Put("/quotas", h.Leave.SetQuota)
			})

			r.Route("/site-visits", func(r chi.Router) {
				r.Get("/", h.SiteVisit.List)
				r.Post("/", h.SiteVisit.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.SiteVisit.Get)
					r.Put("/", h.SiteVisit.Update)
					r.Post("/expenses", h.SiteVisit.AddExpense)
					r.Put("/expenses/{expenseID}", h.SiteVisit.UpdateExpense)
					r.Delete("/expenses/{expenseID}", h.SiteVisit.DeleteExpense)
					r.Post("/submit", h.SiteVisit.Submit)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionSiteVisitApprove))
						r.Post("/approve", h.SiteVisit.Approve)
						r.Post("/reject", h.SiteVisit.Reject)
					})
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.Calendar.ListHolidays)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Calendar.CreateHoliday)
					r.Delete("/{date}", h.Calendar.DeleteHoliday)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Get("/sse-token", h.Notification.GetSSEToken)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.With(middleware.RequirePermission(user.PermissionNotificationRetry)).Post("/retry", h.Notification.Retry)
			})
		})
	})
	return r
}
