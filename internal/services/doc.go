// Package services talks to the music catalog provider and coordinates shared access to it.
//
// # Catalog
//
// [Catalog] is the read-only provider surface: artist search, track search and an artist's top tracks.
// [SpotifyService] implements it against the Spotify Web API, pacing requests with a [rate.Limiter].
//
// # Credentials
//
// [SpotifyService] also implements [TokenIssuer] using the OAuth2 client-credentials flow. No user is involved.
//
// [CredentialBroker] keeps the one process-wide token. Callers that find it missing or expired share a single
// issuance through a [singleflight.Group]; a caller that gives up does not cancel the issuance for the rest.
//
// # Artist resolution
//
// [ArtistResolver] caches display name to catalog ID lookups for the process lifetime.
// Lookups that find nothing are not cached.
//
// # Error Handling
//
// Services use the sentinel errors from the shared package:
//   - [shared.ErrMissingCredentials] : client id or secret not configured
//   - [shared.ErrAuthentication] : token exchange failed or the catalog rejected the token (401)
//   - [shared.ErrNotFound] : catalog 404 or an artist search with no results
//   - [shared.ErrUpstream] : any other non-2xx, transport or decode failure
package services
