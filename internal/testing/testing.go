// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/services"
)

// FakeCatalog is a test double for [services.Catalog].
//
// Artists is keyed by search query and TopTracks by artist ID. Err, when set, fails every call;
// TopTracksErr fails only ArtistTopTracks.
type FakeCatalog struct {
	mu sync.Mutex

	Artists      map[string][]services.SpotifyArtist
	Tracks       []services.SpotifyTrack
	TopTracks    map[string][]services.SpotifyTrack
	Err          error
	TopTracksErr error

	ArtistSearches int
	TrackSearches  int
	TopTrackCalls  int
	Tokens         []string
}

var _ services.Catalog = (*FakeCatalog)(nil)

func (f *FakeCatalog) SearchArtists(ctx context.Context, cred models.Credential, query string, limit int) ([]services.SpotifyArtist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ArtistSearches++
	f.Tokens = append(f.Tokens, cred.Token)
	if f.Err != nil {
		return nil, f.Err
	}
	return truncate(f.Artists[query], limit), nil
}

func (f *FakeCatalog) SearchTracks(ctx context.Context, cred models.Credential, query string, limit int) ([]services.SpotifyTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.TrackSearches++
	f.Tokens = append(f.Tokens, cred.Token)
	if f.Err != nil {
		return nil, f.Err
	}
	return truncate(f.Tracks, limit), nil
}

func (f *FakeCatalog) ArtistTopTracks(ctx context.Context, cred models.Credential, artistID string) ([]services.SpotifyTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.TopTrackCalls++
	f.Tokens = append(f.Tokens, cred.Token)
	if f.Err != nil {
		return nil, f.Err
	}
	if f.TopTracksErr != nil {
		return nil, f.TopTracksErr
	}
	return f.TopTracks[artistID], nil
}

// Calls returns the total number of catalog calls made.
func (f *FakeCatalog) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ArtistSearches + f.TrackSearches + f.TopTrackCalls
}

func truncate[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// FakeIssuer is a test double for [services.TokenIssuer] that hands out "token-1", "token-2", ...
type FakeIssuer struct {
	mu    sync.Mutex
	TTL   time.Duration
	Err   error
	calls int
}

var _ services.TokenIssuer = (*FakeIssuer)(nil)

func (f *FakeIssuer) IssueToken(ctx context.Context) (string, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.Err != nil {
		return "", 0, f.Err
	}
	ttl := f.TTL
	if ttl == 0 {
		ttl = time.Hour
	}
	return "token-" + string(rune('0'+f.calls)), ttl, nil
}

func (f *FakeIssuer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Track builds a catalog track by a single artist with one album image.
func Track(id, name, artist string) services.SpotifyTrack {
	return services.SpotifyTrack{
		ID:         id,
		Name:       name,
		Artists:    []services.SpotifyArtist{{ID: artist, Name: artist}},
		Album:      services.SpotifyAlbum{Name: name + " (Album)", Images: []services.SpotifyImage{{URL: "https://i.scdn.co/" + id, Height: 640, Width: 640}}},
		DurationMS: 200000,
		ExternalURLs: map[string]string{
			"spotify": "https://open.spotify.com/track/" + id,
		},
	}
}

// Tracks builds n numbered tracks for artist.
func Tracks(artist string, n int) []services.SpotifyTrack {
	tracks := make([]services.SpotifyTrack, n)
	for i := range n {
		id := artist + "-" + string(rune('a'+i))
		tracks[i] = Track(id, "Song "+string(rune('A'+i)), artist)
	}
	return tracks
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
