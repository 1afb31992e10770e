// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a three-view workflow:
//  1. [EmotionListView] : Pick an emotion (each row shows its mapped artist)
//  2. [GeneratingView] : Follow progress while the playlist is assembled
//  3. [PlaylistView] : Browse the tracks; export the playlist as JSON
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the playlist engine; the final result arrives on a separate channel.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, x, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
