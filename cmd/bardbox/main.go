// Package main provides the bardbox entry point.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bardbox/internal/infra/config"
	"github.com/osa030/bardbox/internal/infra/logger"
	"github.com/osa030/bardbox/internal/infra/sound"
)

var (
	app        = kingpin.New("bardbox", "Background music console for tabletop sessions")
	configPath = app.Flag("config", "Path to config file").Envar("BARDBOX_CONFIG").Default("bardbox.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := logger.Init(flagLoggerConfig(logger.Config{})); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Error().Msgf("failed to load config: %v", err)
		os.Exit(1)
	}

	// Reapply with the config file's log section; flags win.
	if err := logger.Init(flagLoggerConfig(cfg.Log)); err != nil {
		zlog.Error().Msgf("failed to initialize logger: %v", err)
		os.Exit(1)
	}
	zlog.Info().Msgf("starting bardbox with config %s", *configPath)

	engine, err := sound.NewEngine(sound.DefaultSampleRate)
	if err != nil {
		zlog.Error().Msgf("failed to initialize sound engine: %v", err)
		os.Exit(1)
	}
	defer engine.Close()

	player, err := cfg.BuildPlayer(engine)
	if err != nil {
		zlog.Error().Msgf("failed to build player: %v", err)
		os.Exit(1)
	}

	if err := runREPL(player); err != nil {
		zlog.Error().Msgf("console error: %v", err)
		os.Exit(1)
	}
	zlog.Info().Msg("exiting")
}

func flagLoggerConfig(base logger.Config) logger.Config {
	if *verbose {
		base.Level = "debug"
	}
	if *logfile != "" {
		base.File = *logfile
	}
	return base
}
