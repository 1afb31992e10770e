// Spotify Web API implementation of [Catalog] and [TokenIssuer]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
	defaultMarket   = "US"

	// defaultTokenTTL applies when the token response carries no expiry.
	defaultTokenTTL = time.Hour

	maxSearchLimit = 50
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []SpotifyArtist   `json:"artists"`
	Album        SpotifyAlbum      `json:"album"`
	DurationMS   int               `json:"duration_ms"`
	Explicit     bool              `json:"explicit"`
	Popularity   int               `json:"popularity"`
	PreviewURL   *string           `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	TotalTracks int            `json:"total_tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

type artistSearchResponse struct {
	Artists struct {
		Items []SpotifyArtist `json:"items"`
	} `json:"artists"`
}

type trackSearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type topTracksResponse struct {
	Tracks []SpotifyTrack `json:"tracks"`
}

// SpotifyOpts configures a [SpotifyService]. Empty URLs and market fall back to the public Spotify endpoints and "US".
type SpotifyOpts struct {
	ClientID          string
	ClientSecret      string
	TokenURL          string
	BaseURL           string
	Market            string
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// SpotifyOptsFromConfig maps the [shared.SpotifyConfig] section onto [SpotifyOpts].
func SpotifyOptsFromConfig(c shared.SpotifyConfig) SpotifyOpts {
	return SpotifyOpts{
		ClientID:          c.ClientID,
		ClientSecret:      c.ClientSecret,
		TokenURL:          c.TokenURL,
		BaseURL:           c.APIURL,
		Market:            c.Market,
		RequestsPerSecond: c.RequestsPerSecond,
		HTTPClient:        &http.Client{Timeout: c.Timeout()},
	}
}

// SpotifyService implements [Catalog] and [TokenIssuer] against the Spotify Web API.
//
// Token issuance uses the [clientcredentials] flow; catalog requests are paced by a [rate.Limiter].
type SpotifyService struct {
	config     *clientcredentials.Config
	baseURL    string
	market     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var (
	_ Catalog     = (*SpotifyService)(nil)
	_ TokenIssuer = (*SpotifyService)(nil)
)

// NewSpotifyService creates a new Spotify service from opts.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.Market == "" {
		opts.Market = defaultMarket
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		market:     opts.Market,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// IssueToken performs the client-credentials exchange.
//
// Any failure (bad client id/secret, network error, non-2xx response) is reported as [shared.ErrAuthentication].
func (s *SpotifyService) IssueToken(ctx context.Context) (string, time.Duration, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.config.Token(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("%w: token request failed: %w", shared.ErrAuthentication, err)
	}
	if token.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: token response had no access_token", shared.ErrAuthentication)
	}

	return token.AccessToken, tokenTTL(token), nil
}

func tokenTTL(token *oauth2.Token) time.Duration {
	if token.ExpiresIn > 0 {
		return time.Duration(token.ExpiresIn) * time.Second
	}
	if !token.Expiry.IsZero() {
		if ttl := time.Until(token.Expiry); ttl > 0 {
			return ttl
		}
	}
	return defaultTokenTTL
}

// SearchArtists queries /search with type=artist.
func (s *SpotifyService) SearchArtists(ctx context.Context, cred models.Credential, query string, limit int) ([]SpotifyArtist, error) {
	params, err := searchParams(query, "artist", limit)
	if err != nil {
		return nil, err
	}

	var response artistSearchResponse
	if err := s.doRequest(ctx, cred, "/search", params, &response); err != nil {
		return nil, err
	}
	return response.Artists.Items, nil
}

// SearchTracks queries /search with type=track.
func (s *SpotifyService) SearchTracks(ctx context.Context, cred models.Credential, query string, limit int) ([]SpotifyTrack, error) {
	params, err := searchParams(query, "track", limit)
	if err != nil {
		return nil, err
	}

	var response trackSearchResponse
	if err := s.doRequest(ctx, cred, "/search", params, &response); err != nil {
		return nil, err
	}
	return response.Tracks.Items, nil
}

// ArtistTopTracks retrieves /artists/{id}/top-tracks for the configured market.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, cred models.Credential, artistID string) ([]SpotifyTrack, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist id is required", shared.ErrInvalidArgument)
	}

	endpoint := fmt.Sprintf("/artists/%s/top-tracks", url.PathEscape(artistID))
	params := url.Values{"market": {s.market}}

	var response topTracksResponse
	if err := s.doRequest(ctx, cred, endpoint, params, &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

func searchParams(query, kind string, limit int) (url.Values, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", shared.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	return url.Values{
		"q":     {query},
		"type":  {kind},
		"limit": {strconv.Itoa(limit)},
	}, nil
}

// doRequest performs an authenticated GET against the Spotify API and decodes the JSON body into result.
//
// 401 maps to [shared.ErrAuthentication], 404 to [shared.ErrNotFound] and everything else that is not 2xx,
// including transport and decode failures, to [shared.ErrUpstream].
func (s *SpotifyService) doRequest(ctx context.Context, cred models.Credential, endpoint string, params url.Values, result any) error {
	if cred.Token == "" {
		return fmt.Errorf("%w: no access token", shared.ErrAuthentication)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", shared.ErrUpstream, err)
	}

	apiURL := s.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", shared.ErrUpstream, err)
	}

	req.Header.Set("Authorization", "Bearer "+cred.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify rejected the access token", shared.ErrAuthentication)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: spotify resource %s", shared.ErrNotFound, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify API error: status %d", shared.ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", shared.ErrUpstream, err)
	}

	return nil
}

// IsAuthError reports whether err came from a rejected or unobtainable credential.
func IsAuthError(err error) bool {
	return errors.Is(err, shared.ErrAuthentication)
}
