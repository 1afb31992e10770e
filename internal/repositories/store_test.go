package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// setupTestDB creates a file-backed SQLite database in a temp dir
func setupTestDB(t *testing.T) *SQLiteCollection {
	t.Helper()

	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewSQLiteCollection(db)
}

func setupTestFile(t *testing.T) *FileCollection {
	t.Helper()
	return NewFileCollection(filepath.Join(t.TempDir(), "data", "users.json"))
}

func collections(t *testing.T) map[string]func(t *testing.T) Collection {
	return map[string]func(t *testing.T) Collection{
		"File":   func(t *testing.T) Collection { return setupTestFile(t) },
		"SQLite": func(t *testing.T) Collection { return setupTestDB(t) },
	}
}

func newTestStore(t *testing.T, coll Collection) *PreferenceStore {
	t.Helper()
	store, err := NewPreferenceStore(context.Background(), coll, nil)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestPreferenceStore(t *testing.T) {
	ctx := context.Background()

	for name, open := range collections(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("Get Unknown", func(t *testing.T) {
				store := newTestStore(t, open(t))

				_, err := store.Get(ctx, "ghost")
				if !errors.Is(err, shared.ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
			})

			t.Run("Save Creates With Defaults", func(t *testing.T) {
				store := newTestStore(t, open(t))

				p, err := store.Save(ctx, models.ProfileUpdate{ID: "alice"})
				if err != nil {
					t.Fatalf("failed to save: %v", err)
				}
				if p.PlaylistLength != models.DefaultPlaylistLength {
					t.Errorf("expected default length, got %d", p.PlaylistLength)
				}

				got, err := store.Get(ctx, "alice")
				if err != nil {
					t.Fatalf("failed to get: %v", err)
				}
				if got.ID != "alice" || got.PlaylistLength != models.DefaultPlaylistLength {
					t.Errorf("unexpected profile %+v", got)
				}
			})

			t.Run("Save Merges Fields", func(t *testing.T) {
				store := newTestStore(t, open(t))

				if _, err := store.Save(ctx, models.NewProfileUpdate("alice", 30, nil)); err != nil {
					t.Fatalf("failed to save: %v", err)
				}
				prefs := map[string]json.RawMessage{"favoriteGenre": json.RawMessage(`"rock"`)}
				if _, err := store.Save(ctx, models.NewProfileUpdate("alice", 0, prefs)); err != nil {
					t.Fatalf("failed to save: %v", err)
				}

				got, err := store.Get(ctx, "alice")
				if err != nil {
					t.Fatalf("failed to get: %v", err)
				}
				if got.PlaylistLength != 30 {
					t.Errorf("expected length 30 kept, got %d", got.PlaylistLength)
				}
				var genre string
				if ok, err := got.Preference("favoriteGenre", &genre); !ok || err != nil || genre != "rock" {
					t.Errorf("expected favoriteGenre rock, got %q (%v, %v)", genre, ok, err)
				}
			})

			t.Run("Save Validation", func(t *testing.T) {
				store := newTestStore(t, open(t))

				if _, err := store.Save(ctx, models.ProfileUpdate{ID: "  "}); !errors.Is(err, shared.ErrValidation) {
					t.Errorf("expected ErrValidation for blank id, got %v", err)
				}
				if _, err := store.Save(ctx, models.NewProfileUpdate("alice", -1, nil)); !errors.Is(err, shared.ErrValidation) {
					t.Errorf("expected ErrValidation for negative length, got %v", err)
				}

				profiles, err := store.List(ctx)
				if err != nil {
					t.Fatalf("failed to list: %v", err)
				}
				if len(profiles) != 0 {
					t.Errorf("expected nothing written, got %d profiles", len(profiles))
				}
			})

			t.Run("UpdatePreferences Unknown", func(t *testing.T) {
				store := newTestStore(t, open(t))

				_, err := store.UpdatePreferences(ctx, "ghost", models.NewProfileUpdate("", 10, nil))
				if !errors.Is(err, shared.ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
				if _, err := store.Get(ctx, "ghost"); !errors.Is(err, shared.ErrNotFound) {
					t.Errorf("expected no profile created, got %v", err)
				}
			})

			t.Run("UpdatePreferences Path ID Wins", func(t *testing.T) {
				store := newTestStore(t, open(t))

				if _, err := store.Save(ctx, models.ProfileUpdate{ID: "alice"}); err != nil {
					t.Fatalf("failed to save: %v", err)
				}
				p, err := store.UpdatePreferences(ctx, "alice", models.NewProfileUpdate("mallory", 12, nil))
				if err != nil {
					t.Fatalf("failed to update: %v", err)
				}
				if p.ID != "alice" || p.PlaylistLength != 12 {
					t.Errorf("unexpected profile %+v", p)
				}
				if _, err := store.Get(ctx, "mallory"); !errors.Is(err, shared.ErrNotFound) {
					t.Errorf("expected no mallory profile, got %v", err)
				}
			})

			t.Run("Returned Profile Is Detached", func(t *testing.T) {
				store := newTestStore(t, open(t))

				prefs := map[string]json.RawMessage{"mood": json.RawMessage(`"calm"`)}
				p, err := store.Save(ctx, models.NewProfileUpdate("alice", 5, prefs))
				if err != nil {
					t.Fatalf("failed to save: %v", err)
				}
				p.Preferences["mood"] = json.RawMessage(`"loud"`)

				got, _ := store.Get(ctx, "alice")
				if string(got.Preferences["mood"]) != `"calm"` {
					t.Errorf("expected stored value unchanged, got %s", got.Preferences["mood"])
				}
			})

			t.Run("Concurrent Saves Keep Every Profile", func(t *testing.T) {
				store := newTestStore(t, open(t))

				const users = 20
				var wg sync.WaitGroup
				errs := make(chan error, users)
				for i := range users {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						_, err := store.Save(ctx, models.NewProfileUpdate(fmt.Sprintf("user-%02d", i), i+1, nil))
						errs <- err
					}(i)
				}
				wg.Wait()
				close(errs)

				for err := range errs {
					if err != nil {
						t.Fatalf("save failed: %v", err)
					}
				}

				profiles, err := store.List(ctx)
				if err != nil {
					t.Fatalf("failed to list: %v", err)
				}
				if len(profiles) != users {
					t.Errorf("expected %d profiles, got %d", users, len(profiles))
				}
				for i := range users {
					p, err := store.Get(ctx, fmt.Sprintf("user-%02d", i))
					if err != nil {
						t.Errorf("user-%02d lost: %v", i, err)
						continue
					}
					if p.PlaylistLength != i+1 {
						t.Errorf("user-%02d: expected length %d, got %d", i, i+1, p.PlaylistLength)
					}
				}
			})

			t.Run("Init Is Idempotent", func(t *testing.T) {
				coll := open(t)
				store := newTestStore(t, coll)

				if _, err := store.Save(ctx, models.ProfileUpdate{ID: "alice"}); err != nil {
					t.Fatalf("failed to save: %v", err)
				}

				reopened := newTestStore(t, coll)
				if _, err := reopened.Get(ctx, "alice"); err != nil {
					t.Errorf("expected profile to survive re-init, got %v", err)
				}
			})
		})
	}
}

func TestFileCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("Init Creates Empty Array", func(t *testing.T) {
		coll := setupTestFile(t)

		if err := coll.Init(ctx); err != nil {
			t.Fatalf("failed to init: %v", err)
		}

		data, err := os.ReadFile(coll.Path())
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got %q", data)
		}
	})

	t.Run("Pretty Printed Flat Profiles", func(t *testing.T) {
		coll := setupTestFile(t)
		store := newTestStore(t, coll)

		prefs := map[string]json.RawMessage{"favoriteGenre": json.RawMessage(`"rock"`)}
		if _, err := store.Save(ctx, models.NewProfileUpdate("alice", 30, prefs)); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		data, err := os.ReadFile(coll.Path())
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		content := string(data)
		for _, want := range []string{`"id": "alice"`, `"playlistLength": 30`, `"favoriteGenre": "rock"`, "\n  {"} {
			if !strings.Contains(content, want) {
				t.Errorf("expected %q in %s", want, content)
			}
		}
	})

	t.Run("Survives Restart", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.json")

		first := newTestStore(t, NewFileCollection(path))
		if _, err := first.Save(ctx, models.NewProfileUpdate("bob", 7, nil)); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		second := newTestStore(t, NewFileCollection(path))
		p, err := second.Get(ctx, "bob")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if p.PlaylistLength != 7 {
			t.Errorf("expected length 7, got %d", p.PlaylistLength)
		}
	})

	t.Run("Store Replaces Document In Place", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "users.json")
		c := NewFileCollection(path)
		if err := c.Init(ctx); err != nil {
			t.Fatalf("failed to init: %v", err)
		}

		for _, length := range []int{5, 9} {
			profiles := []models.UserProfile{{ID: "dave", PlaylistLength: length}}
			if err := c.Store(ctx, profiles); err != nil {
				t.Fatalf("failed to store: %v", err)
			}
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "users.json" {
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("expected only users.json, got %v", names)
		}

		got, err := c.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if len(got) != 1 || got[0].PlaylistLength != 9 {
			t.Errorf("expected latest write, got %+v", got)
		}
	})

	t.Run("Reads Existing Document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.json")
		doc := `[{"id": "carol", "playlistLength": 15, "theme": "dark"}]`
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		store := newTestStore(t, NewFileCollection(path))
		p, err := store.Get(ctx, "carol")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if p.PlaylistLength != 15 || string(p.Preferences["theme"]) != `"dark"` {
			t.Errorf("unexpected profile %+v", p)
		}
	})

	t.Run("Corrupt Document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		store := newTestStore(t, NewFileCollection(path))
		if _, err := store.Get(ctx, "anyone"); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestOpenCollection(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Storage.Path = filepath.Join(t.TempDir(), "users.json")

		coll, closer, err := OpenCollection(cfg)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer closer.Close()

		if _, ok := coll.(*FileCollection); !ok {
			t.Errorf("expected *FileCollection, got %T", coll)
		}
	})

	t.Run("SQLite", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Storage.Driver = shared.StorageSQLite
		cfg.Database.Path = filepath.Join(t.TempDir(), "moodmix.db")

		coll, closer, err := OpenCollection(cfg)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer closer.Close()

		if _, ok := coll.(*SQLiteCollection); !ok {
			t.Errorf("expected *SQLiteCollection, got %T", coll)
		}
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Storage.Driver = "redis"

		if _, _, err := OpenCollection(cfg); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
