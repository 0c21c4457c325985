package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/app"
	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/internal/presenter"
	"github.com/valpere/pogoda/internal/version"
)

// surfaceCLI labels metrics and logs produced by a one-shot lookup.
const surfaceCLI = "cli"

func main() {
	// Command-line flags
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	cityFlag := flag.String("city", "", "Look up the weather for a city once and exit")
	langFlag := flag.String("lang", "", "Language for a one-shot lookup (default from config)")
	flag.Parse()

	// Handle version flag
	if *versionFlag {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *cityFlag != "" {
		// Keep stdout for the forecast.
		logger := app.NewLogger(cfg.Logging, os.Stderr)
		if err := lookup(cfg, logger, *cityFlag, *langFlag); err != nil {
			os.Exit(1)
		}
		return
	}

	logger := app.NewLogger(cfg.Logging, os.Stdout)
	if err := serve(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Pogoda failed")
	}
}

// serve runs the HTTP server (and the bot) until SIGINT or SIGTERM.
func serve(cfg *config.Config, logger *zerolog.Logger) error {
	logger.Info().
		Str("version", version.GetInfo().Short()).
		Msg("Starting Pogoda")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	startErr := application.Start(ctx)
	logger.Info().Msg("Shutting down Pogoda...")

	if err := application.Stop(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
	}
	return startErr
}

// lookup runs a single widget cycle and prints the result to stdout.
func lookup(cfg *config.Config, logger *zerolog.Logger, city, lang string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A one-shot lookup has no chat frontend.
	cfg.Bot.Token = ""

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create application")
		return err
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Error during cleanup")
		}
	}()

	lang = application.Localization().MatchLanguage(lang)
	w := application.Widget().ForSurface(surfaceCLI)
	sink := presenter.NewTextSink(os.Stdout, w.Labels(ctx, lang), logger)
	sink.SetQuery(city)
	return w.Submit(ctx, sink, city, lang)
}
