package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodmix/internal/formatter"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/urfave/cli/v3"
)

// SearchTracks searches the catalog for tracks.
func (r *Runner) SearchTracks(ctx context.Context, cmd *cli.Command) error {
	query, err := r.searchArgs(cmd)
	if err != nil {
		return err
	}

	tracks, err := r.search.Tracks(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"tracks": tracks}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Tracks matching %q (%d)", query, len(tracks)))
	for i, t := range tracks {
		r.writePlain("%2d. %s - %s [%s]\n", i+1, strings.Join(t.Artists, ", "), t.Name, formatter.FormatDuration(t.Duration()))
	}
	return nil
}

// SearchArtists searches the catalog for artists.
func (r *Runner) SearchArtists(ctx context.Context, cmd *cli.Command) error {
	query, err := r.searchArgs(cmd)
	if err != nil {
		return err
	}

	artists, err := r.search.Artists(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"artists": artists}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Artists matching %q (%d)", query, len(artists)))
	for i, a := range artists {
		if len(a.Genres) > 0 {
			r.writePlain("%2d. %s (%s) %s\n", i+1, a.Name, strings.Join(a.Genres, ", "), a.ID)
		} else {
			r.writePlain("%2d. %s %s\n", i+1, a.Name, a.ID)
		}
	}
	return nil
}

func (r *Runner) searchArgs(cmd *cli.Command) (string, error) {
	if err := r.requireCatalog(); err != nil {
		return "", err
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return "", fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	return query, nil
}
