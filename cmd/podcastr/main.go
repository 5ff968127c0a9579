// Package main provides the podcastr terminal player entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/csams/podcastr/internal/config"
	"github.com/csams/podcastr/internal/feed"
	"github.com/csams/podcastr/internal/header"
	"github.com/csams/podcastr/internal/logger"
	"github.com/csams/podcastr/internal/player"
	"github.com/csams/podcastr/internal/playerstate"
	"github.com/csams/podcastr/internal/ui"
)

var (
	app         = kingpin.New("podcastr", "Terminal podcast player")
	configPath  = app.Flag("config", "Path to config file").Default(config.DefaultPath()).String()
	feedPath    = app.Flag("feed", "RSS feed file to load").String()
	locale      = app.Flag("locale", "Locale for the header, e.g. pt-BR or en").String()
	indexPolicy = app.Flag("index-policy", "How a play list start index outside the list is handled").Enum("unchecked", "clamp", "wrap", "reject")
	logLevel    = app.Flag("log-level", "Log level").Enum("debug", "info", "warn", "error")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath, config.Overrides{
		Feed:        *feedPath,
		Locale:      *locale,
		IndexPolicy: *indexPolicy,
		LogLevel:    *logLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Init(logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg); err != nil {
		zlog.Error().Err(err).Msg("podcastr exited with an error")
		closer.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the components together. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	podcast, err := feed.ParseFile(cfg.Feed)
	switch {
	case errors.Is(err, feed.ErrNoEpisodes):
		zlog.Warn().Str("feed", cfg.Feed).Msg("feed has no playable episodes")
	case err != nil:
		return errors.Wrapf(err, "failed to load feed %s", cfg.Feed)
	}
	zlog.Info().Str("feed", cfg.Feed).Str("title", podcast.Title).Int("episodes", len(podcast.Episodes)).Msg("feed loaded")

	policy, err := playerstate.ParseIndexPolicy(cfg.Playback.IndexPolicy)
	if err != nil {
		return err
	}
	store := playerstate.NewStore(playerstate.WithIndexPolicy(policy))

	locale := header.LookupLocale(cfg.Locale)
	zlog.Info().Str("requested", cfg.Locale).Str("locale", locale.Tag.String()).Msg("header locale selected")

	mpv := player.NewMPV(cfg.Playback.MPVBinary, cfg.Playback.MPVSocket)
	if err := mpv.Start(); err != nil {
		return errors.Wrap(err, "failed to start audio backend")
	}
	defer mpv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := player.NewDriver(store, mpv)
	driverDone := make(chan struct{})
	driverCtx, cancelDriver := context.WithCancel(ctx)
	go func() {
		defer close(driverDone)
		driver.Run(driverCtx)
	}()
	defer func() {
		cancelDriver()
		<-driverDone
	}()

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "failed to create screen")
	}

	tui := ui.NewApp(screen, ui.Options{
		Store:    store,
		Header:   header.New(locale, nil),
		Podcast:  podcast,
		Progress: mpv.Progress(),
		Config:   cfg.UI,
	})
	zlog.Info().Msg("starting ui")
	return tui.Run(ctx)
}
