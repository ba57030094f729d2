package config

import (
	"flag"
	"fmt"
	"strings"
)

const HelpMessage = `
Taxi KPI service

Usage:
  kpis [--mode=server|refresh] [--config-path=config.yaml] [--month=YYYY-MM]
  kpis --issue-token
  kpis --help

Modes:
  server    serve the dashboard, JSON API and /compute trigger (default)
  refresh   run one ingestion for --month (default: current month) and exit

Every setting can be given in the YAML file or as an environment variable,
e.g. APP_DATA_DIR, APP_METRICS_DIR, APP_SOURCE_URL_TEMPLATE, HTTP_PORT,
SCHEDULER_ENABLED, HISTORY_DRIVER, RABBITMQ_ENABLED, AUTH_ENABLED, LOG_LEVEL.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the effective configuration with secrets masked.
func PrintConfig(cfg *Config) {
	var b strings.Builder

	fmt.Fprintf(&b, "mode: %s\n", cfg.Mode)
	fmt.Fprintf(&b, "app: data_dir=%s metrics_dir=%s source=%s vendor_id=%d fetch_timeout=%s\n",
		cfg.App.DataDir, cfg.App.MetricsDir, cfg.App.SourceURLTemplate, cfg.App.VendorID, cfg.App.FetchTimeout)
	fmt.Fprintf(&b, "http: port=%s read_timeout=%s write_timeout=%s\n",
		cfg.HTTP.Port, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	fmt.Fprintf(&b, "scheduler: enabled=%t interval=%s month=%q\n",
		cfg.Scheduler.Enabled, cfg.Scheduler.Interval, cfg.Scheduler.Month)
	fmt.Fprintf(&b, "history: driver=%s sqlite_path=%s\n", cfg.History.Driver, cfg.History.SqlitePath)
	if cfg.History.Driver == "postgres" {
		fmt.Fprintf(&b, "database: %s@%s:%s/%s password=%s\n",
			cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database, mask(cfg.Database.Password))
	}
	fmt.Fprintf(&b, "rabbitmq: enabled=%t host=%s:%s exchange=%s password=%s\n",
		cfg.RabbitMQ.Enabled, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.Exchange, mask(cfg.RabbitMQ.Password))
	fmt.Fprintf(&b, "auth: enabled=%t token_ttl=%s secret=%s\n", cfg.Auth.Enabled, cfg.Auth.TokenTTL, mask(cfg.Auth.JWTSecret))
	fmt.Fprintf(&b, "log: level=%s\n", cfg.Log.Level)

	fmt.Print(b.String())
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
