package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/moodmix/internal/services"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	configPath := os.Getenv("MOODMIX_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loadedConfig, err := shared.LoadConfig(configPath)
		if err != nil {
			logger.Fatalf("failed to load %s: %v", configPath, err)
		}
		config = loadedConfig
	}
	config.ApplyEnv()
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	if err := config.Validate(); err != nil {
		logger.Fatalf("%v", err)
	}

	opts := RunnerOpts{Config: config, Logger: logger}
	if config.HasSpotifyCredentials() {
		svc, err := services.NewSpotifyService(services.SpotifyOptsFromConfig(config.Credentials.Spotify))
		if err != nil {
			logger.Warn("spotify client unavailable", "error", err)
		} else {
			opts.Catalog = svc
			opts.Issuer = svc
		}
	} else {
		logger.Debug("spotify credentials not configured")
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "moodmix",
		Usage:    "Emotion-based playlists from the Spotify catalog",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrMissingCredentials) || services.IsAuthError(err) {
			logger.Error("catalog credentials rejected or missing", "hint", shared.AuthenticationHint)
		}
		logger.Fatalf("application error: %v", err)
	}
}
