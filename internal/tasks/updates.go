package tasks

import (
	"fmt"

	"github.com/desertthunder/moodmix/internal/models"
)

// ProgressUpdate represents a progress event during playlist generation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number
	Total   int    // Total steps
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadProfile Phase = iota
	Authorize
	ResolveArtist
	FetchTracks
	Shape
)

// assembleSteps is the number of phases reported by [PlaylistAssembler.Assemble].
const assembleSteps = 4

func (p Phase) String() string {
	switch p {
	case LoadProfile:
		return "load_profile"
	case Authorize:
		return "authorize"
	case ResolveArtist:
		return "resolve_artist"
	case FetchTracks:
		return "fetch_tracks"
	case Shape:
		return "shape_tracks"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func loadProfileUpdate(userID string, length int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadProfile,
		Message: fmt.Sprintf("Using playlist length %d for %s", length, userID),
		Data:    length,
	}
}

func authorizeUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authorize,
		Step:    1,
		Total:   assembleSteps,
		Message: "Obtaining catalog credential...",
	}
}

func resolveArtistUpdate(artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtist,
		Step:    2,
		Total:   assembleSteps,
		Message: fmt.Sprintf("Resolving artist %s...", artist),
	}
}

func fetchTracksUpdate(artist, artistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    3,
		Total:   assembleSteps,
		Message: fmt.Sprintf("Fetching top tracks for %s...", artist),
		Data:    artistID,
	}
}

func shapeTracksUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Shape,
		Step:    4,
		Total:   assembleSteps,
		Message: fmt.Sprintf("Playlist ready: %s (%d tracks)", pl.Artist, pl.TotalTracks),
		Data:    pl,
	}
}
