package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// ProfileReader looks up stored user profiles. Unknown ids report [shared.ErrNotFound].
type ProfileReader interface {
	Get(ctx context.Context, id string) (models.UserProfile, error)
}

// PlaylistEngine resolves the requested length from a user's profile and delegates to [PlaylistAssembler].
type PlaylistEngine struct {
	assembler     *PlaylistAssembler
	profiles      ProfileReader
	defaultLength int
	logger        *log.Logger
}

// NewPlaylistEngine creates an engine. A non-positive defaultLength falls back to [models.DefaultPlaylistLength];
// profiles may be nil, in which case every request uses the default.
func NewPlaylistEngine(assembler *PlaylistAssembler, profiles ProfileReader, defaultLength int, logger *log.Logger) *PlaylistEngine {
	if defaultLength <= 0 {
		defaultLength = models.DefaultPlaylistLength
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistEngine{
		assembler:     assembler,
		profiles:      profiles,
		defaultLength: defaultLength,
		logger:        logger,
	}
}

// DefaultLength is the length used when no profile applies.
func (e *PlaylistEngine) DefaultLength() int {
	return e.defaultLength
}

// Generate builds the playlist for emotion. When userID names a known profile its playlistLength is used;
// an unknown userID is not an error.
func (e *PlaylistEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate, emotion, userID string) (*models.Playlist, error) {
	if _, err := models.ParseEmotion(emotion); err != nil {
		return nil, err
	}

	length, err := e.RequestedLength(ctx, userID)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		sendProgress(progress, loadProfileUpdate(userID, length))
	}

	return e.assembler.Assemble(ctx, progress, emotion, length)
}

// RequestedLength returns the playlist length for userID, or the default when userID is empty or unknown.
func (e *PlaylistEngine) RequestedLength(ctx context.Context, userID string) (int, error) {
	if userID == "" || e.profiles == nil {
		return e.defaultLength, nil
	}

	profile, err := e.profiles.Get(ctx, userID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		e.logger.Debug("unknown user, using default length", "user", userID, "length", e.defaultLength)
		return e.defaultLength, nil
	case err != nil:
		return 0, fmt.Errorf("failed to load profile %s: %w", userID, err)
	}
	return profile.PlaylistLength, nil
}
