package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/sitevisit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/mattermost"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	balanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/balance"
	calendarService "github.com/cmlabs-hris/hris-attendance-go/internal/service/calendar"
	leaveService "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
	siteVisitService "github.com/cmlabs-hris/hris-attendance-go/internal/service/sitevisit"
)

type repositories struct {
	tx           database.Transactor
	employee     employee.EmployeeRepository
	holiday      calendar.HolidayRepository
	attendance   attendance.AttendanceRepository
	balance      balance.MonthlyBalanceRepository
	compOff      balance.CompOffRepository
	leaveQuota   leave.LeaveQuotaRepository
	leaveRequest leave.LeaveRequestRepository
	siteVisit    sitevisit.SiteVisitRepository
	expense      sitevisit.ExpenseRepository
	notification notification.EventRepository
	close        func()
}

func postgresRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, err
	}

	applied, err := database.NewMigrator(db).Up(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database ready", "migrations_applied", applied)

	return &repositories{
		tx:           postgresql.NewTransactor(db),
		employee:     postgresql.NewEmployeeRepository(db),
		holiday:      postgresql.NewHolidayRepository(db),
		attendance:   postgresql.NewAttendanceRepository(db),
		balance:      postgresql.NewMonthlyBalanceRepository(db),
		compOff:      postgresql.NewCompOffRepository(db),
		leaveQuota:   postgresql.NewLeaveQuotaRepository(db),
		leaveRequest: postgresql.NewLeaveRequestRepository(db),
		siteVisit:    postgresql.NewSiteVisitRepository(db),
		expense:      postgresql.NewExpenseRepository(db),
		notification: postgresql.NewNotificationRepository(db),
		close:        db.Close,
	}, nil
}

func memoryRepositories(ctx context.Context) (*repositories, error) {
	store := memory.NewStore()
	repos := &repositories{
		tx:           store,
		employee:     memory.NewEmployeeRepository(store),
		holiday:      memory.NewHolidayRepository(store),
		attendance:   memory.NewAttendanceRepository(store),
		balance:      memory.NewMonthlyBalanceRepository(store),
		compOff:      memory.NewCompOffRepository(store),
		leaveQuota:   memory.NewLeaveQuotaRepository(store),
		leaveRequest: memory.NewLeaveRequestRepository(store),
		siteVisit:    memory.NewSiteVisitRepository(store),
		expense:      memory.NewExpenseRepository(store),
		notification: memory.NewNotificationRepository(store),
		close:        func() {},
	}
	if err := fixtures.SeedDevelopment(ctx, store, repos.holiday, time.Now()); err != nil {
		return nil, err
	}
	slog.Warn("using in-memory store, data is lost on restart")
	return repos, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	if err := i18n.Init(cfg.Bot.Locale); err != nil {
		slog.Error("failed to load locales", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var repos *repositories
	switch cfg.Database.Driver {
	case "memory":
		repos, err = memoryRepositories(ctx)
	default:
		repos, err = postgresRepositories(ctx, cfg)
	}
	if err != nil {
		slog.Error("failed to initialise storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.SSEExpiration)

	// Delivery channels
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		slog.Error("failed to initialise email service", "error", err)
		os.Exit(1)
	}
	sinks := []notification.Sink{notificationService.NewEmailSink(emailService)}
	if cfg.Mattermost.Enabled() {
		sinks = append(sinks, notificationService.NewChatSink(mattermost.NewClient(cfg.Mattermost.URL, cfg.Mattermost.BotToken)))
	}
	hub := sse.NewHub(0)
	notifySvc := notificationService.NewNotificationService(repos.notification, repos.employee, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
		MaxAttempts:   cfg.Notification.MaxAttempts,
	}, sinks...)

	calendarSvc := calendarService.NewCalendarService(repos.holiday, cfg.Policy.WeeklyOffDays)
	balanceSvc := balanceService.NewBalanceService(
		repos.tx,
		repos.balance,
		repos.compOff,
		repos.attendance,
		repos.leaveRequest,
		repos.employee,
		calendarSvc,
		balance.Policy{
			StandardDayHours: cfg.Policy.StandardDayHours,
			NominalHours: map[attendance.Status]decimal.Decimal{
				attendance.StatusPresent: cfg.Policy.NominalPresent,
				attendance.StatusWFH:     cfg.Policy.NominalWFH,
				attendance.StatusHalfDay: cfg.Policy.NominalHalfDay,
			},
		},
		cfg.Policy.Location,
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		repos.attendance,
		repos.employee,
		repos.compOff,
		repos.siteVisit,
		calendarSvc,
		balanceSvc,
		notifySvc,
		attendanceService.Policy{
			Location:          cfg.Policy.Location,
			OnTimeCutoff:      cfg.Policy.OnTimeCutoff,
			CompOffExpiryDays: cfg.Policy.CompOffExpiryDays,
		},
	)
	quotaSvc := leaveService.NewQuotaService(repos.leaveQuota, repos.employee, cfg.Policy.DefaultAnnualQuota)
	leaveSvc := leaveService.NewLeaveService(repos.tx, repos.leaveRequest, quotaSvc, balanceSvc, notifySvc)
	siteVisitSvc := siteVisitService.NewSiteVisitService(repos.tx, repos.siteVisit, repos.expense, repos.attendance, repos.employee, notifySvc)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewJobs(balanceSvc, notifySvc, cfg.Policy.Location).RegisterJobs(scheduler, cfg.Cron.RecomputeInterval, cfg.Cron.RetryInterval)
	scheduler.Start()

	router := appHTTP.NewRouter(logger, cfg.App.AllowedOrigins, JWTService, appHTTP.Handlers{
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Balance:      appHTTP.NewBalanceHandler(balanceSvc),
		Leave:        appHTTP.NewLeaveHandler(leaveSvc),
		SiteVisit:    appHTTP.NewSiteVisitHandler(siteVisitSvc),
		Calendar:     appHTTP.NewCalendarHandler(calendarSvc),
		Notification: appHTTP.NewNotificationHandler(notifySvc, JWTService),
		Bot:          appHTTP.NewBotHandler(cfg.Bot.SlashToken, cfg.Bot.Locale, cfg.Policy.Location, repos.employee, attendanceSvc, balanceSvc, leaveSvc),
	})

	// No write timeout: notification streams stay open.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		slog.Info("server started", "addr", srv.Addr, "driver", cfg.Database.Driver, "jobs", scheduler.Jobs())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	scheduler.Stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	notifySvc.Stop()
}
