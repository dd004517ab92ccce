package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Policy       PolicyConfig
	Notification NotificationConfig
	Mattermost   MattermostConfig
	SMTP         SMTPConfig
	Bot          BotConfig
	Cron         CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
	// Driver is "postgres" or "memory"
	Driver string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
	SSEExpiration    time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// PolicyConfig holds the attendance and balance rules.
type PolicyConfig struct {
	Timezone           string
	Location           *time.Location
	StandardDayHours   decimal.Decimal
	NominalPresent     decimal.Decimal
	NominalWFH         decimal.Decimal
	NominalHalfDay     decimal.Decimal
	OnTimeCutoff       time.Duration
	WeeklyOffDays      []time.Weekday
	CompOffExpiryDays  int
	DefaultAnnualQuota int
}

type NotificationConfig struct {
	WorkerCount   int
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
	MaxAttempts   int
}

type MattermostConfig struct {
	URL      string
	BotToken string
}

func (m MattermostConfig) Enabled() bool {
	return m.URL != "" && m.BotToken != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type BotConfig struct {
	SlashToken string
	Locale     string
}

type CronConfig struct {
	RecomputeInterval time.Duration
	RetryInterval     time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	p := &parser{}
	config := &Config{}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     p.int("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(p.int("DB_MAX_CONNS", 25)),
		MinConns: int32(p.int("DB_MIN_CONNS", 5)),
		Driver:   getEnv("DB_DRIVER", "postgres"),
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "hris-attendance"),
		Version:        getEnv("APP_VERSION", "dev"),
		Port:           p.int("APP_PORT", 8080),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "*"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: p.duration("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		SSEExpiration:    p.duration("JWT_SSE_EXPIRATION_TIME", "5m"),
	}

	standard := p.decimal("STANDARD_DAY_HOURS", "8")
	config.Policy = PolicyConfig{
		Timezone:           getEnv("TIMEZONE", "Asia/Jakarta"),
		StandardDayHours:   standard,
		NominalPresent:     p.decimal("NOMINAL_HOURS_PRESENT", standard.String()),
		NominalWFH:         p.decimal("NOMINAL_HOURS_WFH", standard.String()),
		NominalHalfDay:     p.decimal("NOMINAL_HOURS_HALF_DAY", standard.Div(decimal.NewFromInt(2)).String()),
		OnTimeCutoff:       p.clock("ON_TIME_CUTOFF", "09:30"),
		CompOffExpiryDays:  p.int("COMP_OFF_EXPIRY_DAYS", 90),
		DefaultAnnualQuota: p.int("DEFAULT_ANNUAL_LEAVE_QUOTA", 12),
	}
	loc, err := time.LoadLocation(config.Policy.Timezone)
	if err != nil {
		p.fail("TIMEZONE", err)
	}
	config.Policy.Location = loc
	weeklyOff, err := calendar.ParseWeekdays(getEnvSlice("WEEKLY_OFF_DAYS", "saturday,sunday"))
	if err != nil {
		p.fail("WEEKLY_OFF_DAYS", err)
	}
	config.Policy.WeeklyOffDays = weeklyOff

	config.Notification = NotificationConfig{
		WorkerCount:   p.int("NOTIFY_WORKERS", 2),
		BatchSize:     p.int("NOTIFY_BATCH_SIZE", 100),
		FlushInterval: p.duration("NOTIFY_FLUSH_INTERVAL", "2s"),
		QueueSize:     p.int("NOTIFY_QUEUE_SIZE", 1000),
		MaxAttempts:   p.int("NOTIFY_MAX_ATTEMPTS", 5),
	}

	config.Mattermost = MattermostConfig{
		URL:      getEnv("MATTERMOST_URL", ""),
		BotToken: getEnv("MATTERMOST_BOT_TOKEN", ""),
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     p.int("SMTP_PORT", 587),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "HRIS Attendance"),
	}

	config.Bot = BotConfig{
		SlashToken: getEnv("BOT_SLASH_TOKEN", ""),
		Locale:     getEnv("BOT_LOCALE", "en"),
	}

	config.Cron = CronConfig{
		RecomputeInterval: p.duration("CRON_RECOMPUTE_INTERVAL", "1h"),
		RetryInterval:     p.duration("CRON_RETRY_INTERVAL", "5m"),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "memory" {
		return fmt.Errorf("DB_DRIVER must be postgres or memory")
	}
	if c.Database.Driver == "postgres" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if !c.Policy.StandardDayHours.IsPositive() {
		return fmt.Errorf("STANDARD_DAY_HOURS must be positive")
	}
	if c.Policy.CompOffExpiryDays < 0 {
		return fmt.Errorf("COMP_OFF_EXPIRY_DAYS must not be negative")
	}
	if c.Policy.DefaultAnnualQuota < 0 {
		return fmt.Errorf("DEFAULT_ANNUAL_LEAVE_QUOTA must not be negative")
	}
	if c.Notification.MaxAttempts < 1 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Bot.SlashToken == "" {
		slog.Warn("BOT_SLASH_TOKEN is empty, bot commands are disabled")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// LogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

// parser collects conversion errors so Load reports all of them at once.
type parser struct {
	errs []error
}

func (p *parser) fail(key string, err error) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
}

func (p *parser) int(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return v
}

func (p *parser) duration(key, fallback string) time.Duration {
	v, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) decimal(key, fallback string) decimal.Decimal {
	v, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) clock(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	v, ok := validator.IsValidClock(raw)
	if !ok {
		p.fail(key, fmt.Errorf("%q is not HH:MM", raw))
	}
	return v
}
