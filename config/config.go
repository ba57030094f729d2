package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/pkg/configparser"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
)

// Flags
var (
	modeFlag = flag.String("mode", string(types.ServerMode), "application mode: server | refresh")
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode types.ServiceMode

		App       AppConfig
		HTTP      HTTPConfig
		Scheduler SchedulerConfig
		History   HistoryConfig
		Database  DatabaseConfig
		RabbitMQ  RabbitMQConfig
		Auth      Auth
		Log       LogConfig
	}

	// AppConfig holds the locations every KPI component works with.
	AppConfig struct {
		DataDir           string        `env:"APP_DATA_DIR" default:"data"`
		MetricsDir        string        `env:"APP_METRICS_DIR" default:"data_json"`
		SourceURLTemplate string        `env:"APP_SOURCE_URL_TEMPLATE" default:"https://d37ci6vzurychx.cloudfront.net/trip-data/yellow_tripdata_{month}.parquet"`
		VendorID          int           `env:"APP_VENDOR_ID" default:"1"`
		FetchTimeout      time.Duration `env:"APP_FETCH_TIMEOUT" default:"10m"`
	}

	HTTPConfig struct {
		Port         string        `env:"HTTP_PORT" default:"8080"`
		ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" default:"15s"`
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" default:"15m"`
	}

	SchedulerConfig struct {
		Enabled  bool          `env:"SCHEDULER_ENABLED" default:"false"`
		Interval time.Duration `env:"SCHEDULER_INTERVAL" default:"24h"`
		Month    string        `env:"SCHEDULER_MONTH"` // empty means current month
	}

	HistoryConfig struct {
		Driver     string `env:"HISTORY_DRIVER" default:"none"` // none | sqlite | postgres
		SqlitePath string `env:"HISTORY_SQLITE_PATH" default:"kpis.db"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"kpis_user"`
		Password string `env:"DATABASE_PASSWORD" default:"kpis_pass"`
		Database string `env:"DATABASE_DATABASE" default:"kpis_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"10"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"1"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Exchange string `env:"RABBITMQ_EXCHANGE" default:"kpi_topic"`
	}

	Auth struct {
		Enabled   bool          `env:"AUTH_ENABLED" default:"false"`
		JWTSecret string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
		TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" default:"24h"`
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"INFO"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	// Parsing flags
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	var problems []string

	if c.App.DataDir == "" {
		problems = append(problems, "APP_DATA_DIR is empty")
	}
	if c.App.MetricsDir == "" {
		problems = append(problems, "APP_METRICS_DIR is empty")
	}
	if !strings.Contains(c.App.SourceURLTemplate, types.MonthPlaceholder) {
		problems = append(problems, fmt.Sprintf("APP_SOURCE_URL_TEMPLATE must contain %s", types.MonthPlaceholder))
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		problems = append(problems, "SCHEDULER_INTERVAL must be positive")
	}
	switch c.History.Driver {
	case types.HistoryNone, types.HistorySqlite, types.HistoryPostgres:
	default:
		problems = append(problems, fmt.Sprintf("unknown HISTORY_DRIVER %q", c.History.Driver))
	}
	if !logger.ValidateLogLevel(c.Log.Level) {
		problems = append(problems, fmt.Sprintf("unknown LOG_LEVEL %q", c.Log.Level))
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		problems = append(problems, "AUTH_JWT_SECRET is required when AUTH_ENABLED=true")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func parseFlags(cfg *Config) error {
	if modeFlag == nil || *modeFlag == "" {
		return ErrModeNotProvided
	}

	cfg.Mode = types.ServiceMode(*modeFlag)

	return nil
}
