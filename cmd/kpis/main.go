package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Temutjin2k/taxi-kpis/config"
	"github.com/Temutjin2k/taxi-kpis/internal/app"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/Temutjin2k/taxi-kpis/internal/service/auth"
	"github.com/Temutjin2k/taxi-kpis/pkg/logger"
)

var version = "dev"

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	monthFlag  = flag.String("month", "", "Dataset month YYYY-MM for refresh mode (default current month)")
	issueToken = flag.Bool("issue-token", false, "Print a signed admin token for /compute and exit")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger("taxi-kpis", logger.LevelDebug)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	if *issueToken {
		if err := printAdminToken(ctx, cfg); err != nil {
			log.Error(ctx, "failed to issue admin token", err)
			os.Exit(1)
		}
		return
	}

	// refresh mode keeps stdout for the run status
	out := os.Stdout
	if cfg.Mode == types.RefreshMode {
		out = os.Stderr
	} else {
		config.PrintConfig(cfg)
	}
	log = logger.New(out, "taxi-kpis-"+string(cfg.Mode), cfg.Log.Level)

	application, err := app.NewApplication(ctx, *cfg, log,
		app.WithMonth(*monthFlag),
		app.WithVersion(version),
	)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}

func printAdminToken(ctx context.Context, cfg *config.Config) error {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	token, exp, err := tokens.Issue(ctx, "cli")
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "admin token expires at %s\n", exp.Format("2006-01-02 15:04:05 MST"))
	fmt.Println(token)
	return nil
}
