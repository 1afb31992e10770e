package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/go-playground/validator/v10"
)

// DefaultPlaylistLength is the playlist length given to newly created profiles.
const DefaultPlaylistLength = 20

const (
	fieldID             = "id"
	fieldPlaylistLength = "playlistLength"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// UserProfile is the durable per-profile preference record.
//
// Preferences holds any additional keys a caller stored (e.g. favoriteGenre) as raw JSON values; they are
// flattened next to id and playlistLength when encoded.
type UserProfile struct {
	ID             string
	PlaylistLength int
	Preferences    map[string]json.RawMessage
}

// NewUserProfile returns a profile for id with default preferences.
func NewUserProfile(id string) UserProfile {
	return UserProfile{ID: id, PlaylistLength: DefaultPlaylistLength}
}

// Apply merges the fields present in u over p. Fields absent from u are left untouched; ID is never changed.
func (p *UserProfile) Apply(u ProfileUpdate) {
	if u.PlaylistLength != nil {
		p.PlaylistLength = *u.PlaylistLength
	}
	if len(u.Preferences) == 0 {
		return
	}
	if p.Preferences == nil {
		p.Preferences = make(map[string]json.RawMessage, len(u.Preferences))
	}
	for k, v := range u.Preferences {
		p.Preferences[k] = v
	}
}

// Clone returns a deep copy of p so callers never share the store's maps.
func (p UserProfile) Clone() UserProfile {
	out := p
	if p.Preferences != nil {
		out.Preferences = make(map[string]json.RawMessage, len(p.Preferences))
		for k, v := range p.Preferences {
			out.Preferences[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// Preference decodes the stored preference key into dst. It reports false when the key is absent.
func (p UserProfile) Preference(key string, dst any) (bool, error) {
	raw, ok := p.Preferences[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("failed to decode preference %q: %w", key, err)
	}
	return true, nil
}

func (p UserProfile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Preferences)+2)
	for k, v := range p.Preferences {
		out[k] = v
	}
	out[fieldID] = p.ID
	out[fieldPlaylistLength] = p.PlaylistLength
	return json.Marshal(out)
}

func (p *UserProfile) UnmarshalJSON(data []byte) error {
	var u ProfileUpdate
	if err := json.Unmarshal(data, &u); err != nil {
		return err
	}
	p.ID = u.ID
	p.PlaylistLength = DefaultPlaylistLength
	p.Preferences = nil
	p.Apply(u)
	return nil
}

// ProfileUpdate is a partial profile. Nil or missing fields mean "leave as is".
type ProfileUpdate struct {
	ID             string `validate:"required"`
	PlaylistLength *int   `validate:"omitempty,gt=0"`
	Preferences    map[string]json.RawMessage
}

// NewProfileUpdate builds an update for id; a zero length is left unset.
func NewProfileUpdate(id string, playlistLength int, prefs map[string]json.RawMessage) ProfileUpdate {
	u := ProfileUpdate{ID: id, Preferences: maps.Clone(prefs)}
	if playlistLength != 0 {
		u.PlaylistLength = &playlistLength
	}
	return u
}

// Validate checks that an id is present and that playlistLength, when given, is positive.
func (u ProfileUpdate) Validate() error {
	u.ID = strings.TrimSpace(u.ID)
	if err := validate.Struct(u); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "ID":
				return fmt.Errorf("%w: %s is required", shared.ErrValidation, fieldID)
			case "PlaylistLength":
				return fmt.Errorf("%w: %s must be a positive integer", shared.ErrValidation, fieldPlaylistLength)
			}
		}
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return nil
}

// UnmarshalJSON accepts a flat JSON object: id and playlistLength are typed, every other key becomes a preference.
func (u *ProfileUpdate) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: profile must be a JSON object", shared.ErrValidation)
	}

	*u = ProfileUpdate{}

	if raw, ok := fields[fieldID]; ok {
		if err := json.Unmarshal(raw, &u.ID); err != nil {
			return fmt.Errorf("%w: %s must be a string", shared.ErrValidation, fieldID)
		}
		delete(fields, fieldID)
	}

	if raw, ok := fields[fieldPlaylistLength]; ok {
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			var n int
			if err := json.Unmarshal(raw, &n); err != nil {
				return fmt.Errorf("%w: %s must be a positive integer", shared.ErrValidation, fieldPlaylistLength)
			}
			u.PlaylistLength = &n
		}
		delete(fields, fieldPlaylistLength)
	}

	if len(fields) > 0 {
		u.Preferences = fields
	}
	return nil
}

func (u ProfileUpdate) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Preferences)+2)
	for k, v := range u.Preferences {
		out[k] = v
	}
	if u.ID != "" {
		out[fieldID] = u.ID
	}
	if u.PlaylistLength != nil {
		out[fieldPlaylistLength] = *u.PlaylistLength
	}
	return json.Marshal(out)
}
