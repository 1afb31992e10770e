package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/repositories"
	"github.com/desertthunder/moodmix/internal/services"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/desertthunder/moodmix/internal/tasks"
	tu "github.com/desertthunder/moodmix/internal/testing"
)

type apiFixture struct {
	catalog *tu.FakeCatalog
	issuer  *tu.FakeIssuer
	store   *repositories.PreferenceStore
	router  http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := log.New(&bytes.Buffer{})
	catalog := &tu.FakeCatalog{
		Artists: map[string][]services.SpotifyArtist{
			"Elton John": {{ID: "elton", Name: "Elton John"}},
			"TheFatRat":  {{ID: "fatrat", Name: "TheFatRat"}},
		},
		TopTracks: map[string][]services.SpotifyTrack{
			"elton":  tu.Tracks("elton", 25),
			"fatrat": tu.Tracks("fatrat", 10),
		},
		Tracks: tu.Tracks("search", 30),
	}
	issuer := &tu.FakeIssuer{}
	broker := services.NewCredentialBroker(issuer, logger)
	resolver := services.NewArtistResolver(catalog, logger)

	store, err := repositories.NewPreferenceStore(context.Background(),
		repositories.NewFileCollection(filepath.Join(t.TempDir(), "users.json")), logger)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	assembler := tasks.NewPlaylistAssembler(catalog, broker, resolver, logger)
	engine := tasks.NewPlaylistEngine(assembler, store, 20, logger)
	search := tasks.NewCatalogSearch(catalog, broker)

	api := NewAPIHandler(engine, store, search, broker, logger)
	return &apiFixture{
		catalog: catalog,
		issuer:  issuer,
		store:   store,
		router:  NewAPIRouter(api, logger),
	}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	resp := decode[ErrorResponse](t, rec)
	if resp.Code != code {
		t.Errorf("expected code %s, got %s", code, resp.Code)
	}
	return resp
}

func TestAPIHandler(t *testing.T) {
	t.Run("Emotions", func(t *testing.T) {
		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, "/api/recommendations/emotions", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decode[struct {
			Emotions []models.EmotionInfo `json:"emotions"`
		}](t, rec)

		if len(resp.Emotions) != 3 {
			t.Fatalf("expected 3 emotions, got %d", len(resp.Emotions))
		}
		if resp.Emotions[0].Emotion != models.EmotionHappy || resp.Emotions[0].Artist != "Elton John" {
			t.Errorf("unexpected first emotion %+v", resp.Emotions[0])
		}
	})

	t.Run("Generate", func(t *testing.T) {
		t.Run("Default Length", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPost, "/api/recommendations/emotion", `{"emotion":"happy"}`)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			pl := decode[models.Playlist](t, rec)
			if pl.Emotion != models.EmotionHappy || pl.Artist != "Elton John" {
				t.Errorf("unexpected playlist header %s/%s", pl.Emotion, pl.Artist)
			}
			if pl.TotalTracks != 20 || len(pl.Tracks) != 20 {
				t.Errorf("expected 20 tracks, got %d/%d", pl.TotalTracks, len(pl.Tracks))
			}
		})

		t.Run("Profile Length", func(t *testing.T) {
			f := newAPIFixture(t)
			if _, err := f.store.Save(context.Background(), models.NewProfileUpdate("alice", 3, nil)); err != nil {
				t.Fatalf("failed to seed profile: %v", err)
			}

			rec := f.do(t, http.MethodPost, "/api/recommendations/emotion", `{"emotion":"happy","userId":"alice"}`)
			pl := decode[models.Playlist](t, rec)
			if pl.TotalTracks != 3 {
				t.Errorf("expected 3 tracks, got %d", pl.TotalTracks)
			}
		})

		t.Run("Fewer Tracks Than Requested", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPost, "/api/recommendations/emotion", `{"emotion":"chill"}`)

			pl := decode[models.Playlist](t, rec)
			if pl.TotalTracks != 10 {
				t.Errorf("expected 10 tracks, got %d", pl.TotalTracks)
			}
		})

		t.Run("Missing Emotion", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPost, "/api/recommendations/emotion", `{"userId":"alice"}`)
			resp := assertError(t, rec, http.StatusBadRequest, CodeValidation)
			if !strings.Contains(resp.Error, "emotion is required") {
				t.Errorf("unexpected message %q", resp.Error)
			}
		})

		t.Run("Unknown Emotion", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPost, "/api/recommendations/emotion", `{"emotion":"sad"}`)
			resp := assertError(t, rec, http.StatusBadRequest, CodeUnknownEmotion)
			if !strings.Contains(resp.Error, "happy, energized, chill") {
				t.Errorf("expected valid set in message, got %q", resp.Error)
			}
			if f.catalog.Calls() != 0 || f.issuer.Calls() != 0 {
				t.Error("expected no outbound calls")
			}
		})

		t.Run("Malformed Body", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPost, "/api/recommendations/emotion", `{"emotion":`)
			assertError(t, rec, http.StatusBadRequest, CodeValidation)
		})

		t.Run("Artist Not Found", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPost, "/api/recommendations/emotion", `{"emotion":"energized"}`)
			assertError(t, rec, http.StatusNotFound, CodeNotFound)
		})

		t.Run("Authentication Failure", func(t *testing.T) {
			f := newAPIFixture(t)
			f.issuer.Err = errors.New("invalid_client")

			rec := f.do(t, http.MethodPost, "/api/recommendations/emotion", `{"emotion":"happy"}`)
			resp := assertError(t, rec, http.StatusBadGateway, CodeAuthentication)
			if !strings.Contains(resp.Error, shared.AuthenticationHint) {
				t.Errorf("expected credential hint, got %q", resp.Error)
			}
		})

		t.Run("Upstream Failure", func(t *testing.T) {
			f := newAPIFixture(t)
			f.catalog.TopTracksErr = shared.ErrUpstream

			rec := f.do(t, http.MethodPost, "/api/recommendations/emotion", `{"emotion":"happy"}`)
			assertError(t, rec, http.StatusBadGateway, CodeUpstream)
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Tracks", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodGet, "/api/music/search/tracks?q=song&limit=5", "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			resp := decode[struct {
				Tracks []models.Track `json:"tracks"`
			}](t, rec)
			if len(resp.Tracks) != 5 {
				t.Errorf("expected 5 tracks, got %d", len(resp.Tracks))
			}
		})

		t.Run("Artists", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodGet, "/api/music/search/artists?q=Elton+John", "")

			resp := decode[struct {
				Artists []models.Artist `json:"artists"`
			}](t, rec)
			if len(resp.Artists) != 1 || resp.Artists[0].ID != "elton" {
				t.Errorf("unexpected artists %+v", resp.Artists)
			}
		})

		t.Run("Missing Query", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodGet, "/api/music/search/tracks", "")
			assertError(t, rec, http.StatusBadRequest, CodeValidation)
		})

		t.Run("Bad Limit", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodGet, "/api/music/search/artists?q=x&limit=ten", "")
			assertError(t, rec, http.StatusBadRequest, CodeValidation)
		})
	})

	t.Run("Users", func(t *testing.T) {
		t.Run("Unknown", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodGet, "/api/users/ghost", "")
			assertError(t, rec, http.StatusNotFound, CodeNotFound)
		})

		t.Run("Create Then Merge", func(t *testing.T) {
			f := newAPIFixture(t)

			rec := f.do(t, http.MethodPost, "/api/users", `{"id":"alice"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			created := decode[struct {
				User map[string]any `json:"user"`
			}](t, rec)
			if created.User["id"] != "alice" || created.User["playlistLength"] != float64(20) {
				t.Errorf("unexpected created user %v", created.User)
			}

			f.do(t, http.MethodPost, "/api/users", `{"id":"alice","playlistLength":30}`)
			f.do(t, http.MethodPost, "/api/users", `{"id":"alice","favoriteGenre":"rock"}`)

			rec = f.do(t, http.MethodGet, "/api/users/alice", "")
			got := decode[struct {
				User map[string]any `json:"user"`
			}](t, rec)
			if got.User["playlistLength"] != float64(30) || got.User["favoriteGenre"] != "rock" {
				t.Errorf("expected merged profile, got %v", got.User)
			}
		})

		t.Run("Create Without ID", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPost, "/api/users", `{"playlistLength":10}`)
			resp := assertError(t, rec, http.StatusBadRequest, CodeValidation)
			if !strings.Contains(resp.Error, "id") {
				t.Errorf("expected field name in message, got %q", resp.Error)
			}
		})

		t.Run("Invalid Length", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPost, "/api/users", `{"id":"alice","playlistLength":"lots"}`)
			assertError(t, rec, http.StatusBadRequest, CodeValidation)
		})

		t.Run("Update Preferences", func(t *testing.T) {
			f := newAPIFixture(t)
			f.do(t, http.MethodPost, "/api/users", `{"id":"bob","playlistLength":8}`)

			rec := f.do(t, http.MethodPut, "/api/users/bob/preferences", `{"theme":"dark"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			got := decode[struct {
				User map[string]any `json:"user"`
			}](t, rec)
			if got.User["playlistLength"] != float64(8) || got.User["theme"] != "dark" {
				t.Errorf("expected merged preferences, got %v", got.User)
			}
		})

		t.Run("Update Preferences Unknown", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodPut, "/api/users/ghost/preferences", `{"playlistLength":5}`)
			assertError(t, rec, http.StatusNotFound, CodeNotFound)

			if _, err := f.store.Get(context.Background(), "ghost"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected no profile written, got %v", err)
			}
		})
	})

	t.Run("Connection Test", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			f := newAPIFixture(t)
			rec := f.do(t, http.MethodGet, "/api/test", "")

			resp := decode[ConnectionResponse](t, rec)
			if rec.Code != http.StatusOK || !resp.Success || !resp.TokenReceived {
				t.Errorf("unexpected response %d %+v", rec.Code, resp)
			}
		})

		t.Run("Failure", func(t *testing.T) {
			f := newAPIFixture(t)
			f.issuer.Err = errors.New("invalid_client")

			rec := f.do(t, http.MethodGet, "/api/test", "")
			resp := decode[ConnectionResponse](t, rec)
			if rec.Code != http.StatusBadGateway || resp.Success || resp.Code != CodeAuthentication {
				t.Errorf("unexpected response %d %+v", rec.Code, resp)
			}
		})
	})

	t.Run("Unknown Route", func(t *testing.T) {
		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, "/api/nope", "")
		assertError(t, rec, http.StatusNotFound, CodeNotFound)
	})

	t.Run("Health", func(t *testing.T) {
		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, "/healthz", "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}
