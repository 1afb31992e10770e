package repositories

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// PreferenceStore is the durable per-user profile store.
//
// Mutations hold the write lock across the whole load-merge-store sequence.
type PreferenceStore struct {
	coll   Collection
	logger *log.Logger
	mu     sync.RWMutex
}

// NewPreferenceStore initializes coll and returns a store over it.
func NewPreferenceStore(ctx context.Context, coll Collection, logger *log.Logger) (*PreferenceStore, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if err := coll.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize profile store: %w", err)
	}
	return &PreferenceStore{coll: coll, logger: logger}, nil
}

// Get returns the profile for id or [shared.ErrNotFound].
func (s *PreferenceStore) Get(ctx context.Context, id string) (models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles, err := s.coll.Load(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}

	i := indexOf(profiles, strings.TrimSpace(id))
	if i < 0 {
		return models.UserProfile{}, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}
	return profiles[i], nil
}

// List returns every stored profile in insertion order.
func (s *PreferenceStore) List(ctx context.Context) ([]models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.coll.Load(ctx)
}

// Save creates the profile with defaults when its id is unknown, then merges the given fields over it.
func (s *PreferenceStore) Save(ctx context.Context, u models.ProfileUpdate) (models.UserProfile, error) {
	return s.mutate(ctx, u, true)
}

// UpdatePreferences merges u over the existing profile for id. The id argument overrides any id in u.
// Unknown ids fail with [shared.ErrNotFound] and nothing is written.
func (s *PreferenceStore) UpdatePreferences(ctx context.Context, id string, u models.ProfileUpdate) (models.UserProfile, error) {
	u.ID = id
	return s.mutate(ctx, u, false)
}

func (s *PreferenceStore) mutate(ctx context.Context, u models.ProfileUpdate, create bool) (models.UserProfile, error) {
	if err := u.Validate(); err != nil {
		return models.UserProfile{}, err
	}
	u.ID = strings.TrimSpace(u.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.coll.Load(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}

	i := indexOf(profiles, u.ID)
	switch {
	case i < 0 && !create:
		return models.UserProfile{}, fmt.Errorf("%w: user %s", shared.ErrNotFound, u.ID)
	case i < 0:
		profiles = append(profiles, models.NewUserProfile(u.ID))
		i = len(profiles) - 1
		s.logger.Info("created profile", "user", u.ID)
	}

	profiles[i].Apply(u)

	if err := s.coll.Store(ctx, profiles); err != nil {
		return models.UserProfile{}, err
	}

	s.logger.Debug("saved profile", "user", u.ID, "playlist_length", profiles[i].PlaylistLength)
	return profiles[i].Clone(), nil
}

func indexOf(profiles []models.UserProfile, id string) int {
	return slices.IndexFunc(profiles, func(p models.UserProfile) bool { return p.ID == id })
}
