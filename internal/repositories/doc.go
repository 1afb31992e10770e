// Package repositories persists user profiles.
//
// The [PreferenceStore] keeps every profile in one document. Each mutation reads the whole document, merges,
// and writes the whole document back while holding the store's write lock, so overlapping saves never drop
// each other's changes.
//
// Backends implement [Collection]:
//   - [FileCollection] : pretty-printed JSON array on disk, replaced atomically via rename
//   - [SQLiteCollection] : a single row of the documents table, created by the embedded migrations
//
// Both backends create an empty collection on first use; initialization is safe to repeat.
package repositories
