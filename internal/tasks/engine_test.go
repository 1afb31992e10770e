package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

type stubProfiles struct {
	profiles map[string]models.UserProfile
	err      error
	reads    int
}

func (s *stubProfiles) Get(ctx context.Context, id string) (models.UserProfile, error) {
	s.reads++
	if s.err != nil {
		return models.UserProfile{}, s.err
	}
	p, ok := s.profiles[id]
	if !ok {
		return models.UserProfile{}, shared.ErrNotFound
	}
	return p, nil
}

func TestPlaylistEngine(t *testing.T) {
	ctx := context.Background()
	profiles := &stubProfiles{profiles: map[string]models.UserProfile{
		"alice": {ID: "alice", PlaylistLength: 3},
	}}

	t.Run("Uses Profile Length", func(t *testing.T) {
		f := newFixture(25)
		engine := NewPlaylistEngine(f.assembler, profiles, 20, nil)

		pl, err := engine.Generate(ctx, nil, "happy", "alice")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pl.TotalTracks != 3 {
			t.Errorf("expected 3 tracks, got %d", pl.TotalTracks)
		}
	})

	t.Run("Unknown User Uses Default", func(t *testing.T) {
		f := newFixture(25)
		engine := NewPlaylistEngine(f.assembler, profiles, 20, nil)

		pl, err := engine.Generate(ctx, nil, "happy", "bob")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pl.TotalTracks != 20 {
			t.Errorf("expected 20 tracks, got %d", pl.TotalTracks)
		}
	})

	t.Run("No User Uses Default", func(t *testing.T) {
		f := newFixture(25)
		engine := NewPlaylistEngine(f.assembler, nil, 0, nil)

		if engine.DefaultLength() != models.DefaultPlaylistLength {
			t.Errorf("expected default length %d, got %d", models.DefaultPlaylistLength, engine.DefaultLength())
		}

		pl, err := engine.Generate(ctx, nil, "chill", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pl.TotalTracks != models.DefaultPlaylistLength {
			t.Errorf("expected %d tracks, got %d", models.DefaultPlaylistLength, pl.TotalTracks)
		}
	})

	t.Run("Profile Store Failure", func(t *testing.T) {
		f := newFixture(25)
		broken := &stubProfiles{err: errors.New("disk on fire")}
		engine := NewPlaylistEngine(f.assembler, broken, 20, nil)

		if _, err := engine.Generate(ctx, nil, "happy", "alice"); err == nil {
			t.Error("expected error from profile store")
		}
		if f.catalog.Calls() != 0 {
			t.Errorf("expected no catalog calls, got %d", f.catalog.Calls())
		}
	})

	t.Run("Unknown Emotion Skips Profile Read", func(t *testing.T) {
		f := newFixture(25)
		counting := &stubProfiles{profiles: profiles.profiles}
		engine := NewPlaylistEngine(f.assembler, counting, 20, nil)

		_, err := engine.Generate(ctx, nil, "sad", "alice")
		if !errors.Is(err, shared.ErrUnknownEmotion) {
			t.Errorf("expected ErrUnknownEmotion, got %v", err)
		}
		if counting.reads != 0 {
			t.Errorf("expected no profile reads, got %d", counting.reads)
		}
	})
}
