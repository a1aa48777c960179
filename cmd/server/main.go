// Command server runs the wellbeing check-in backend.
//
//	server serve                  # HTTP API (default)
//	server rollup --date 2026-03-02
//	server migrate
//
// Configuration comes from the environment; a .env file in the working
// directory is loaded first when present.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jochenheirman09/broos-app-sub001/internal/app"
	"github.com/jochenheirman09/broos-app-sub001/internal/config"
	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfg        config.Config
	rollupDate string
)

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Youth athlete wellbeing check-in backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, os.Stderr)
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API until SIGINT or SIGTERM",
	RunE:  runServe,
}

var rollupCmd = &cobra.Command{
	Use:   "rollup",
	Short: "Run the team and club insight rollup once and print the report",
	RunE:  runRollup,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE:  runMigrate,
}

func init() {
	rollupCmd.Flags().StringVar(&rollupDate, "date", "", "Run date YYYY-MM-DD (default: today in TIMEZONE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rollupCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := app.New(ctx, cfg, version)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		a.Close(closeCtx)
	}()

	log.Info().Str("version", version).Msg("starting check-in service")
	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info().Msg("shutdown complete")
	return nil
}

func runRollup(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := app.New(ctx, cfg, version)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	date := rollupDate
	if date == "" {
		date = time.Now().In(a.Turns.Location).Format(domain.DateLayout)
	}
	report, err := a.Rollup.Run(ctx, date)
	log.Info().
		Str("date", date).
		Int("teams", report.Teams).
		Int("insights", report.Insights()).
		Int("skipped_teams", report.SkippedTeams).
		Int("failures", report.Failures).
		Msg("rollup finished")
	if err != nil {
		return fmt.Errorf("rollup: %w", err)
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("db", cfg.DBPath).Msg("schema up to date")
	return nil
}
