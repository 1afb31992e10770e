package ui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodmix/internal/formatter"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	EmotionListView ViewState = iota
	GeneratingView
	PlaylistView
)

// Generator produces a playlist for an emotion, reporting progress on the given channel.
//
// [tasks.PlaylistEngine] satisfies it.
type Generator interface {
	Generate(ctx context.Context, progress chan<- tasks.ProgressUpdate, emotion, userID string) (*models.Playlist, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	generator    Generator
	userID       string
	exportDir    string
	width        int
	height       int
	emotionList  list.Model
	trackList    list.Model
	emotion      models.Emotion
	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate
	playlist     *models.Playlist
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model. userID may be empty; exportDir is where 'x' writes JSON exports.
func NewModel(ctx context.Context, generator Generator, userID, exportDir string) *Model {
	m := &Model{
		ctx:       ctx,
		view:      EmotionListView,
		generator: generator,
		userID:    userID,
		exportDir: exportDir,
		width:     80,
		height:    24,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.emotionList = list.New(emotionItems(), list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.emotionList.Title = "How are you feeling?"
	return m
}

// State returns the active view.
func (m *Model) State() ViewState { return m.view }

// Playlist returns the most recently generated playlist, if any.
func (m *Model) Playlist() *models.Playlist { return m.playlist }

// Init has nothing to fetch; the emotion table is static.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.emotionList.SetSize(msg.Width-4, msg.Height-8)
		if m.playlist != nil {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case EmotionListView:
			return m.handleEmotionKeys(msg)
		case GeneratingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case PlaylistView:
			return m.handlePlaylistKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgPlaylistGenerated:
		data := msg.data.(generatedData)
		m.progressChan, m.doneChan = nil, nil
		if data.err != nil {
			m.err = data.err
			m.view = EmotionListView
			return m, nil
		}
		m.playlist = data.playlist
		m.trackList = list.New(trackItems(data.playlist.Tracks), list.NewDefaultDelegate(), m.width-4, m.height-8)
		m.trackList.Title = fmt.Sprintf("%s • %s", data.playlist.Emotion, data.playlist.Artist)
		m.view = PlaylistView
		return m, nil

	case MsgPlaylistExported:
		data := msg.data.(exportedData)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Export failed: %v", data.err))
		} else {
			m.status = styles.ok.Render(fmt.Sprintf("✓ Saved %s", data.path))
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case EmotionListView:
		return m.renderEmotionList()
	case GeneratingView:
		return m.renderGenerating()
	case PlaylistView:
		return m.renderPlaylist()
	default:
		return ""
	}
}

func (m *Model) handleEmotionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.emotionList.SelectedItem().(emotionItem); ok {
			m.err = nil
			m.emotion = item.info.Emotion
			m.progress = tasks.ProgressUpdate{}
			m.view = GeneratingView
			return m, m.startGeneration(item.info.Emotion)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.emotionList, cmd = m.emotionList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = EmotionListView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.restart):
		m.status = ""
		m.view = GeneratingView
		return m, m.startGeneration(m.emotion)
	case key.Matches(msg, m.keys.export):
		return m, m.exportPlaylist()
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case EmotionListView:
		m.emotionList, cmd = m.emotionList.Update(msg)
	case PlaylistView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// startGeneration runs the generator in the background.
//
// Progress and the final result travel on separate channels so the goroutine never touches the model.
func (m *Model) startGeneration(emotion models.Emotion) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan Msg, 1)
	m.progressChan, m.doneChan = progress, done

	ctx, generator, userID := m.ctx, m.generator, m.userID
	go func() {
		pl, err := generator.Generate(ctx, progress, emotion.String(), userID)
		done <- playlistGeneratedMsg(pl, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) exportPlaylist() tea.Cmd {
	pl := m.playlist
	if pl == nil {
		return nil
	}
	path := filepath.Join(m.exportDir, fmt.Sprintf("%s-playlist.json", pl.Emotion))
	return func() tea.Msg {
		return playlistExportedMsg(path, formatter.WriteFile(pl, formatter.FormatJSON, path))
	}
}

func (m *Model) renderEmotionList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	if m.err != nil {
		errView := styles.err.Render(fmt.Sprintf("Error: %v", m.err))
		return fmt.Sprintf("%s\n\n%s\n\n%s", m.emotionList.View(), errView, helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.emotionList.View(), helpView)
}

func (m *Model) renderGenerating() string {
	title := styles.title.Render(fmt.Sprintf("Building a %s playlist", m.emotion))

	var phase string
	switch m.progress.Phase {
	case tasks.LoadProfile:
		phase = "Loading preferences..."
	case tasks.Authorize:
		phase = "Authorizing with the catalog..."
	case tasks.ResolveArtist:
		phase = fmt.Sprintf("Looking up %s...", m.emotion.Artist())
	case tasks.FetchTracks:
		phase = "Fetching top tracks..."
	case tasks.Shape:
		phase = "Shaping tracks..."
	}
	if m.progress.Total > 0 {
		phase = fmt.Sprintf("[%d/%d] %s", m.progress.Step, m.progress.Total, phase)
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderPlaylist() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.export, m.keys.restart, m.keys.back, m.keys.quit})
	summary := styles.ok.Render(fmt.Sprintf("✓ %d tracks", m.playlist.TotalTracks))
	if m.playlist.TotalTracks == 0 {
		summary = styles.warn.Render("No tracks returned for this artist")
	}
	out := fmt.Sprintf("%s\n\n%s", m.trackList.View(), summary)
	if m.status != "" {
		out = fmt.Sprintf("%s\n%s", out, m.status)
	}
	return fmt.Sprintf("%s\n\n%s", out, helpView)
}
