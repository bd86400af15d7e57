package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/cleancrew/crewboard/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path. Defaults and CREWBOARD_* variables apply when empty." env:"CONFIG_FILE"`

	Serve   ServeCmd   `cmd:"" help:"Run the calendar API server." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Apply database migrations and exit."`
	Window  WindowCmd  `cmd:"" help:"Print the calendar window for a mode and date."`
}

// runContext is passed to every command's Run method
type runContext struct {
	ctx        context.Context
	configPath string
	isDev      bool
}

func main() {
	// Determine if we're in development mode
	isDev := os.Getenv("ENV") != "production"
	logging.Initialize(isDev)
	logger := logging.GetLogger("main")

	kctx := kong.Parse(&CLI,
		kong.Name("crewboard"),
		kong.Description("Scheduling calendar backend for cleaning crews"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	logger.Debug().
		Str("version", version).
		Str("commit", commit).
		Str("build_date", date).
		Str("command", kctx.Command()).
		Msg("Starting crewboard")

	// Create context that's canceled on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received signal, initiating shutdown")
		cancel()
	}()

	if err := kctx.Run(&runContext{ctx: ctx, configPath: CLI.Config, isDev: isDev}); err != nil {
		logger.Fatal().Err(err).Msg("Command failed")
	}
}
