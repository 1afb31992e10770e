// Package models defines the domain types shared by the catalog, playlist and profile layers.
//
// The package contains three groups of types:
//
// 1. Static configuration
//   - [Emotion] : the closed set of emotional categories and the artist each one maps to
//
// 2. Assembled values (derived per request, never persisted)
//   - [Credential] : catalog access token plus its absolute expiry
//   - [Track] : a catalog track reduced to the fields a playlist exposes
//   - [Playlist] : an ordered, length-bounded list of tracks for one emotion
//
// 3. Persistent entities
//   - [UserProfile] : per-profile playlist preferences, stored as one record in a whole-document collection
//   - [ProfileUpdate] : a partial profile merged shallowly onto an existing record
package models
