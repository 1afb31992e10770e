package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// ArtistResolver maps artist display names to catalog IDs and remembers them for the process lifetime.
//
// Entries are set once and never evicted. Failed lookups are not cached.
type ArtistResolver struct {
	catalog Catalog
	logger  *log.Logger

	mu  sync.RWMutex
	ids map[string]string
}

// NewArtistResolver creates an empty resolver backed by catalog.
func NewArtistResolver(catalog Catalog, logger *log.Logger) *ArtistResolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ArtistResolver{catalog: catalog, logger: logger, ids: make(map[string]string)}
}

// Resolve returns the catalog ID for name, searching the catalog on a miss and taking the top-ranked result.
//
// Concurrent misses for the same name may each search; the first stored ID wins.
func (r *ArtistResolver) Resolve(ctx context.Context, name string, cred models.Credential) (string, error) {
	key := shared.NormalizeKey(name)
	if key == "" {
		return "", fmt.Errorf("%w: artist name is required", shared.ErrInvalidArgument)
	}

	if id, ok := r.Lookup(name); ok {
		return id, nil
	}

	artists, err := r.catalog.SearchArtists(ctx, cred, name, 1)
	if err != nil {
		return "", err
	}
	if len(artists) == 0 || artists[0].ID == "" {
		return "", fmt.Errorf("%w: artist %q", shared.ErrNotFound, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.ids[key]; ok {
		return id, nil
	}
	r.ids[key] = artists[0].ID
	r.logger.Debug("resolved artist", "name", name, "id", artists[0].ID)

	return artists[0].ID, nil
}

// Lookup returns a cached ID without contacting the catalog.
func (r *ArtistResolver) Lookup(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.ids[shared.NormalizeKey(name)]
	return id, ok
}

// size reports the number of cached entries.
func (r *ArtistResolver) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}
