// package models defines the data model for the emotion playlist service
package models

import (
	"time"
)

// Credential is a catalog access token and the instant it stops being valid.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// ValidAt reports whether the credential holds a token and now is strictly before its expiry.
func (c Credential) ValidAt(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}

// Image is a cover image reference as returned by the catalog.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Track is a catalog track reduced to the fields a playlist exposes.
type Track struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []string          `json:"artists"`
	Album        string            `json:"album"`
	DurationMS   int               `json:"duration_ms"`
	PreviewURL   *string           `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls,omitempty"`
	Images       []Image           `json:"images"`
}

// Duration returns the track length as a [time.Duration].
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// Artist is a catalog artist as exposed by search.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	Images []Image  `json:"images"`
}

// Playlist is an ordered, length-bounded set of tracks generated for one emotion.
//
// TotalTracks always equals len(Tracks).
type Playlist struct {
	Emotion     Emotion `json:"emotion"`
	Artist      string  `json:"artist"`
	Tracks      []Track `json:"tracks"`
	TotalTracks int     `json:"totalTracks"`
}

// NewPlaylist builds a [Playlist], deriving TotalTracks from tracks.
func NewPlaylist(emotion Emotion, artist string, tracks []Track) *Playlist {
	if tracks == nil {
		tracks = []Track{}
	}
	return &Playlist{
		Emotion:     emotion,
		Artist:      artist,
		Tracks:      tracks,
		TotalTracks: len(tracks),
	}
}
