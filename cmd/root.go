package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/angeloszaimis/pkghealth/config"
	"github.com/angeloszaimis/pkghealth/internal/circuitbreaker"
	"github.com/angeloszaimis/pkghealth/internal/healthcheck"
	"github.com/angeloszaimis/pkghealth/internal/httpclient"
	"github.com/angeloszaimis/pkghealth/internal/output"
	"github.com/angeloszaimis/pkghealth/internal/owners"
	"github.com/angeloszaimis/pkghealth/internal/report"
	"github.com/angeloszaimis/pkghealth/pkg/logger"
)

func newRootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "pkghealth",
		Short: "Show health-check findings for the packages you maintain",
		Long: `pkghealth looks up the packages you own in the owner-alias document,
fetches the health-check report of every supported release and prints each
health record found for one of your packages.`,
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default: ./config/config.yaml or ./config.yaml)")
	flags.StringP("user", "u", "", "user whose packages are reported (default: current user)")
	flags.StringP("format", "f", "", "output format: "+strings.Join(output.Formats, ", "))
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("network-policy", "", "on connection failures of a health report: fatal or degrade")
	flags.String("environment", "", "environment: dev, staging or prod")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	log := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		AddSource:   cfg.Logging.AddSource,
		Environment: cfg.Environment,
		Output:      stderr,
		File: logger.FileOptions{
			Path:       cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAge,
			Compress:   cfg.Logging.Compress,
		},
	}).With(slog.String("run_id", uuid.NewString()))

	set, err := cfg.ReleaseSet()
	if err != nil {
		return err
	}

	user := cfg.User
	if user == "" {
		if user, err = owners.CurrentUser(); err != nil {
			return fmt.Errorf("determine current user: %w", err)
		}
	}

	printer, err := output.NewPrinter(cfg.Output.Format, stdout)
	if err != nil {
		return err
	}

	client := httpclient.New(httpclient.Options{
		Timeout:           cfg.HTTPTimeout(),
		UserAgent:         cfg.HTTP.UserAgent,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Burst:             cfg.HTTP.Burst,
		Breakers: circuitbreaker.NewRegistry(circuitbreaker.Settings{
			Threshold:    cfg.Breaker.Threshold,
			Timeout:      cfg.BreakerTimeout(),
			IsSuccessful: httpclient.IsBreakerSuccess,
			Logger:       log,
		}),
		Logger: log,
	})

	resolver := owners.NewResolver(client, cfg.Owners.URL, cfg.Owners.Namespace, log)
	fetcher := healthcheck.NewFetcher(client, cfg.HealthCheck.URLTemplate,
		healthcheck.NetworkPolicy(cfg.HealthCheck.NetworkPolicy), log)
	driver := report.NewDriver(resolver, healthcheck.NewAggregator(fetcher, set, log), set, printer, log)

	log.Debug("Starting report",
		slog.String("user", user),
		slog.Any("releases", set.Releases()),
		slog.Int("reports", len(set.Targets())))

	summary, err := driver.Run(ctx, user)

	log.Debug("Fetch statistics",
		slog.Any("fetches", client.Metrics().Snapshot()),
		slog.Any("breakers", client.Breakers().Stats()))

	if err != nil {
		return err
	}

	log.Info("Report complete",
		slog.String("user", user),
		slog.Int("packages", summary.Packages),
		slog.Int("reports", summary.Reports),
		slog.Int("records", summary.Records))

	return nil
}
