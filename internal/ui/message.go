package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgPlaylistGenerated
	MsgPlaylistExported
)

type generatedData struct {
	playlist *models.Playlist
	err      error
}

type exportedData struct {
	path string
	err  error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// playlistGeneratedMsg is the constructor for [MsgPlaylistGenerated]
func playlistGeneratedMsg(playlist *models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistGenerated, data: generatedData{playlist, err}}
}

// playlistExportedMsg is the constructor for [MsgPlaylistExported]
func playlistExportedMsg(path string, err error) Msg {
	return Msg{kind: MsgPlaylistExported, data: exportedData{path, err}}
}
