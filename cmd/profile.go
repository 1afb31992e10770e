package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProfileGet prints a stored profile.
func (r *Runner) ProfileGet(ctx context.Context, cmd *cli.Command) error {
	id, err := profileID(cmd)
	if err != nil {
		return err
	}

	store, closer, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	user, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(map[string]any{"user": user}, true)
}

// ProfileSave creates a profile with defaults or merges flags into an existing one.
func (r *Runner) ProfileSave(ctx context.Context, cmd *cli.Command) error {
	update, err := profileUpdate(cmd)
	if err != nil {
		return err
	}

	store, closer, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	user, err := store.Save(ctx, update)
	if err != nil {
		return err
	}
	return r.writeJSON(map[string]any{"user": user}, true)
}

// ProfilePrefs merges flags into an existing profile; unknown ids fail.
func (r *Runner) ProfilePrefs(ctx context.Context, cmd *cli.Command) error {
	update, err := profileUpdate(cmd)
	if err != nil {
		return err
	}

	store, closer, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	user, err := store.UpdatePreferences(ctx, update.ID, update)
	if err != nil {
		return err
	}
	return r.writeJSON(map[string]any{"user": user}, true)
}

// ProfileList prints every stored profile.
func (r *Runner) ProfileList(ctx context.Context, cmd *cli.Command) error {
	store, closer, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	users, err := store.List(ctx)
	if err != nil {
		return err
	}
	return r.writeJSON(map[string]any{"users": users}, true)
}

func profileID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: profile id", shared.ErrMissingArgument)
	}
	return id, nil
}

func profileUpdate(cmd *cli.Command) (models.ProfileUpdate, error) {
	id, err := profileID(cmd)
	if err != nil {
		return models.ProfileUpdate{}, err
	}

	prefs, err := parsePreferences(cmd.StringSlice("set"))
	if err != nil {
		return models.ProfileUpdate{}, err
	}

	update := models.ProfileUpdate{ID: id, Preferences: prefs}
	if cmd.IsSet("length") {
		length := int(cmd.Int("length"))
		update.PlaylistLength = &length
	}
	return update, nil
}

// parsePreferences turns key=value pairs into raw preference values.
//
// Values that are valid JSON are kept as-is (so 5, true and {"a":1} keep their types); anything else is stored
// as a JSON string.
func parsePreferences(pairs []string) (map[string]json.RawMessage, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	prefs := make(map[string]json.RawMessage, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: expected key=value, got %q", shared.ErrInvalidArgument, pair)
		}
		if key == "id" || key == "playlistLength" {
			return nil, fmt.Errorf("%w: %q cannot be set with --set", shared.ErrInvalidArgument, key)
		}

		if json.Valid([]byte(value)) {
			prefs[key] = json.RawMessage(value)
			continue
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode preference %q: %w", key, err)
		}
		prefs[key] = encoded
	}
	return prefs, nil
}
