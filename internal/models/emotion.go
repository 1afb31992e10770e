package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/moodmix/internal/shared"
)

// Emotion is an emotional category with a fixed artist mapping.
type Emotion string

const (
	EmotionHappy     Emotion = "happy"
	EmotionEnergized Emotion = "energized"
	EmotionChill     Emotion = "chill"
)

// emotions lists every [Emotion] in presentation order.
var emotions = []Emotion{EmotionHappy, EmotionEnergized, EmotionChill}

// EmotionInfo pairs an emotion with the artist it maps to.
type EmotionInfo struct {
	Emotion Emotion `json:"emotion"`
	Artist  string  `json:"artist"`
}

// Emotions returns every known emotion in presentation order.
func Emotions() []Emotion {
	out := make([]Emotion, len(emotions))
	copy(out, emotions)
	return out
}

// EmotionCatalog returns the full emotion to artist table.
func EmotionCatalog() []EmotionInfo {
	out := make([]EmotionInfo, 0, len(emotions))
	for _, e := range emotions {
		out = append(out, EmotionInfo{Emotion: e, Artist: e.Artist()})
	}
	return out
}

// ParseEmotion normalizes s and matches it against the known emotions.
//
// Anything outside the set fails with [shared.ErrUnknownEmotion], listing the valid values.
func ParseEmotion(s string) (Emotion, error) {
	e := Emotion(shared.NormalizeKey(s))
	if e.Valid() {
		return e, nil
	}
	return "", fmt.Errorf("%w: %q (available emotions: %s)", shared.ErrUnknownEmotion, s, emotionList())
}

// Valid reports whether e is one of the known emotions.
func (e Emotion) Valid() bool {
	return e.Artist() != ""
}

// Artist returns the artist display name mapped to e, or "" for unknown values.
func (e Emotion) Artist() string {
	switch e {
	case EmotionHappy:
		return "Elton John"
	case EmotionEnergized:
		return "Crush 40"
	case EmotionChill:
		return "TheFatRat"
	default:
		return ""
	}
}

func (e Emotion) String() string { return string(e) }

func emotionList() string {
	names := make([]string, len(emotions))
	for i, e := range emotions {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}
