package main

import (
	"context"
	"strings"

	"github.com/desertthunder/moodmix/internal/formatter"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Emotions prints the emotion to artist table.
func (r *Runner) Emotions(ctx context.Context, cmd *cli.Command) error {
	catalog := models.EmotionCatalog()
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"emotions": catalog}, true)
	}

	r.writePlainHeader("Emotions")
	for _, info := range catalog {
		r.writePlain("%-10s %s\n", info.Emotion, info.Artist)
	}
	return nil
}

// Playlist generates a playlist and renders it to stdout or --output.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	emotion := cmd.String("emotion")
	userID := strings.TrimSpace(cmd.String("user"))

	var profiles tasks.ProfileReader
	if userID != "" {
		store, closer, err := r.openStore(ctx)
		if err != nil {
			return err
		}
		defer closer.Close()
		profiles = store
	}

	r.logger.Info("generating playlist", "emotion", emotion, "user", userID)

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	pl, err := r.newEngine(profiles).Generate(ctx, progressCh, emotion, userID)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	output := cmd.String("output")
	switch {
	case output == "":
		return formatter.Write(r.output, pl, format)
	case format == formatter.FormatMarkdown:
		result, warnings, err := formatter.WriteMarkdownExport(pl, output, r.httpClient)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			r.logger.Warn("export warning", "error", w)
		}
		return r.writePlain("✓ Exported %d tracks to %s\n", pl.TotalTracks, result.Directory)
	default:
		if err := formatter.WriteFile(pl, format, output); err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d tracks to %s\n", pl.TotalTracks, output)
	}
}
