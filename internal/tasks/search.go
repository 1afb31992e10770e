package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/services"
	"github.com/desertthunder/moodmix/internal/shared"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

// CatalogSearch is a thin passthrough to catalog search that reuses the playlist track shape.
type CatalogSearch struct {
	catalog     services.Catalog
	credentials CredentialSource
}

func NewCatalogSearch(catalog services.Catalog, credentials CredentialSource) *CatalogSearch {
	return &CatalogSearch{catalog: catalog, credentials: credentials}
}

// ClampLimit maps limit into [1, MaxSearchLimit]; zero selects [DefaultSearchLimit].
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultSearchLimit
	case limit < 1:
		return 1
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	}
	return limit
}

// Tracks searches the catalog for tracks matching query.
func (s *CatalogSearch) Tracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	cred, err := s.credential(ctx, query)
	if err != nil {
		return nil, err
	}

	raw, err := s.catalog.SearchTracks(ctx, cred, query, ClampLimit(limit))
	if err != nil {
		return nil, catalogError(s.credentials, cred, err)
	}
	return ShapeTracks(raw), nil
}

// Artists searches the catalog for artists matching query.
func (s *CatalogSearch) Artists(ctx context.Context, query string, limit int) ([]models.Artist, error) {
	cred, err := s.credential(ctx, query)
	if err != nil {
		return nil, err
	}

	raw, err := s.catalog.SearchArtists(ctx, cred, query, ClampLimit(limit))
	if err != nil {
		return nil, catalogError(s.credentials, cred, err)
	}

	artists := make([]models.Artist, len(raw))
	for i, a := range raw {
		artists[i] = ShapeArtist(a)
	}
	return artists, nil
}

func (s *CatalogSearch) credential(ctx context.Context, query string) (models.Credential, error) {
	if strings.TrimSpace(query) == "" {
		return models.Credential{}, fmt.Errorf("%w: search query is required", shared.ErrValidation)
	}
	return s.credentials.Credential(ctx)
}
