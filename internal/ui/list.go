package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moodmix/internal/formatter"
	"github.com/desertthunder/moodmix/internal/models"
)

var (
	_ list.Item = emotionItem{}
	_ list.Item = trackItem{}
)

// emotionItem wraps [models.EmotionInfo] to implement [list.Item].
type emotionItem struct {
	info models.EmotionInfo
}

func (i emotionItem) FilterValue() string { return i.info.Emotion.String() }
func (i emotionItem) Title() string       { return i.info.Emotion.String() }
func (i emotionItem) Description() string { return i.info.Artist }

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := strings.Join(i.track.Artists, ", ")
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return fmt.Sprintf("%s • %s", desc, formatter.FormatDuration(i.track.Duration()))
}

func emotionItems() []list.Item {
	catalog := models.EmotionCatalog()
	items := make([]list.Item, len(catalog))
	for i, info := range catalog {
		items[i] = emotionItem{info: info}
	}
	return items
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, track := range tracks {
		items[i] = trackItem{track: track}
	}
	return items
}
