package services

import (
	"context"
	"time"

	"github.com/desertthunder/moodmix/internal/models"
)

// Catalog is the read-only surface of the music catalog provider.
//
// Every call is authorized with the given [models.Credential]; implementations never acquire tokens themselves.
type Catalog interface {
	// SearchArtists returns up to limit artists matching query, in provider ranking order.
	SearchArtists(ctx context.Context, cred models.Credential, query string, limit int) ([]SpotifyArtist, error)

	// SearchTracks returns up to limit tracks matching query, in provider ranking order.
	SearchTracks(ctx context.Context, cred models.Credential, query string, limit int) ([]SpotifyTrack, error)

	// ArtistTopTracks returns the artist's top tracks in the order the provider ranks them. Not paginated.
	ArtistTopTracks(ctx context.Context, cred models.Credential, artistID string) ([]SpotifyTrack, error)
}

// TokenIssuer exchanges client credentials for an access token.
type TokenIssuer interface {
	// IssueToken returns a new token and the time-to-live declared by the provider.
	IssueToken(ctx context.Context) (token string, ttl time.Duration, err error)
}

// CredentialProvider hands out a currently valid [models.Credential].
type CredentialProvider interface {
	Credential(ctx context.Context) (models.Credential, error)
}
