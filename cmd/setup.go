package main

import (
	"context"
	"os"

	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates config.toml from the embedded template when missing and initializes profile storage.
//
// For the sqlite driver this runs the database migrations; for the file driver it creates the JSON document.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		loaded.ApplyEnv()
		config = loaded
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.logger.Info("config file created", "path", configPath)
	}

	if err := config.Validate(); err != nil {
		return err
	}
	r.config = config

	r.logger.Info("initializing profile storage", "driver", config.Storage.Driver)
	_, closer, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	closer.Close()

	r.writePlain("✓ Configuration: %s\n", configPath)
	switch config.Storage.Driver {
	case shared.StorageSQLite:
		r.writePlain("✓ Profiles: sqlite database %s\n", config.Database.Path)
	default:
		r.writePlain("✓ Profiles: %s\n", config.Storage.Path)
	}

	if !config.HasSpotifyCredentials() {
		r.writePlain("\nNext steps:\n")
		r.writePlain("1. Set client_id and client_secret in %s (or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET in .env)\n", configPath)
		r.writePlain("2. Run 'moodmix auth check' to verify them\n")
	}
	return nil
}
