package main

import (
	"context"

	"github.com/desertthunder/moodmix/internal/server"
	"github.com/urfave/cli/v3"
)

// AuthCheck obtains a catalog credential to verify the configured client id and secret.
func (r *Runner) AuthCheck(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	r.logger.Info("checking catalog credentials")

	cred, err := r.broker.Credential(ctx)
	if err != nil {
		if cmd.Bool("json") {
			_, code := server.StatusFor(err)
			r.writeJSON(server.ConnectionResponse{
				Message: "Spotify API connection failed",
				Error:   err.Error(),
				Code:    code,
			}, true)
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(server.ConnectionResponse{
			Success:       true,
			Message:       "Spotify API connection successful",
			TokenReceived: cred.Token != "",
		}, true)
	}

	r.writePlain("✓ Spotify API connection successful\n")
	return r.writePlain("Token valid until: %s\n", cred.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
}
