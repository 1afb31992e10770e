package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/services"
	"github.com/desertthunder/moodmix/internal/shared"
)

// CredentialSource hands out valid credentials and accepts notice of rejected ones.
//
// Implemented by [services.CredentialBroker].
type CredentialSource interface {
	Credential(ctx context.Context) (models.Credential, error)
	Invalidate(token string)
}

// ArtistResolver maps an artist display name to a catalog ID.
//
// Implemented by [services.ArtistResolver].
type ArtistResolver interface {
	Resolve(ctx context.Context, name string, cred models.Credential) (string, error)
}

// PlaylistAssembler builds playlists from the static emotion mapping. It holds no per-call state.
type PlaylistAssembler struct {
	catalog     services.Catalog
	credentials CredentialSource
	resolver    ArtistResolver
	logger      *log.Logger
}

// NewPlaylistAssembler creates an assembler over the given collaborators.
func NewPlaylistAssembler(catalog services.Catalog, credentials CredentialSource, resolver ArtistResolver, logger *log.Logger) *PlaylistAssembler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistAssembler{
		catalog:     catalog,
		credentials: credentials,
		resolver:    resolver,
		logger:      logger,
	}
}

// Assemble builds a playlist of at most length tracks for emotion.
//
// length <= 0 yields an empty playlist. Fewer available tracks than length is not an error.
func (a *PlaylistAssembler) Assemble(ctx context.Context, progress chan<- ProgressUpdate, emotion string, length int) (*models.Playlist, error) {
	e, err := models.ParseEmotion(emotion)
	if err != nil {
		return nil, err
	}
	if a.catalog == nil || a.credentials == nil || a.resolver == nil {
		return nil, fmt.Errorf("%w: playlist assembler not initialized", shared.ErrServiceUnavailable)
	}

	artist := e.Artist()
	logger := a.logger.With("emotion", e, "artist", artist)

	sendProgress(progress, authorizeUpdate())
	cred, err := a.credentials.Credential(ctx)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, resolveArtistUpdate(artist))
	artistID, err := a.resolver.Resolve(ctx, artist, cred)
	if err != nil {
		return nil, catalogError(a.credentials, cred, err)
	}

	sendProgress(progress, fetchTracksUpdate(artist, artistID))
	raw, err := a.catalog.ArtistTopTracks(ctx, cred, artistID)
	if err != nil {
		return nil, catalogError(a.credentials, cred, err)
	}

	pl := models.NewPlaylist(e, artist, ShapeTracks(Truncate(raw, length)))
	sendProgress(progress, shapeTracksUpdate(pl))

	logger.Debug("playlist assembled", "requested", length, "available", len(raw), "tracks", pl.TotalTracks)
	return pl, nil
}

// catalogError drops a rejected credential and classifies anything outside the error taxonomy as upstream.
func catalogError(credentials CredentialSource, cred models.Credential, err error) error {
	switch {
	case services.IsAuthError(err):
		credentials.Invalidate(cred.Token)
		return fmt.Errorf("%w (%s)", err, shared.AuthenticationHint)
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrUpstream):
		return err
	default:
		return fmt.Errorf("%w: %w", shared.ErrUpstream, err)
	}
}

// Truncate keeps the first n items in their original order. n <= 0 keeps nothing.
func Truncate[T any](items []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// ShapeTrack reduces a catalog track to the playlist [models.Track]: artists become names, the album becomes its
// name and the album's cover images pass through.
func ShapeTrack(t services.SpotifyTrack) models.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return models.Track{
		ID:           t.ID,
		Name:         t.Name,
		Artists:      artists,
		Album:        t.Album.Name,
		DurationMS:   t.DurationMS,
		PreviewURL:   t.PreviewURL,
		ExternalURLs: t.ExternalURLs,
		Images:       shapeImages(t.Album.Images),
	}
}

// ShapeTracks applies [ShapeTrack] to every track, preserving order.
func ShapeTracks(tracks []services.SpotifyTrack) []models.Track {
	out := make([]models.Track, len(tracks))
	for i, t := range tracks {
		out[i] = ShapeTrack(t)
	}
	return out
}

// ShapeArtist reduces a catalog artist to [models.Artist].
func ShapeArtist(a services.SpotifyArtist) models.Artist {
	genres := a.Genres
	if genres == nil {
		genres = []string{}
	}
	return models.Artist{ID: a.ID, Name: a.Name, Genres: genres, Images: shapeImages(a.Images)}
}

func shapeImages(images []services.SpotifyImage) []models.Image {
	out := make([]models.Image, len(images))
	for i, img := range images {
		out[i] = models.Image{URL: img.URL, Height: img.Height, Width: img.Width}
	}
	return out
}
