// Package tasks turns an emotion into a playlist using the catalog services.
//
// # Core Operations
//
//  1. [PlaylistAssembler.Assemble] : emotion → artist → top tracks
//     - Parses the emotion against the closed set before any outbound call
//     - Obtains a credential from the broker
//     - Resolves the mapped artist's catalog ID (cache assisted)
//     - Fetches top tracks, keeps the first n in provider order and shapes them
//
//  2. [PlaylistEngine.Generate] : preference-aware generation
//     - Reads the requested length from a user profile when one is named and known
//     - Falls back to the configured default length otherwise
//
//  3. [CatalogSearch] : track and artist search passthrough, shaped like playlist tracks
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends never block; a full or nil channel drops the update.
//
// # Errors
//
// Failures keep their taxonomy: [shared.ErrUnknownEmotion], [shared.ErrAuthentication], [shared.ErrNotFound] and
// [shared.ErrUpstream]. Catalog errors outside that set are reported as [shared.ErrUpstream].
package tasks
