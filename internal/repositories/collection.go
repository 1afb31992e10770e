package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// Collection is a whole-document store of user profiles.
type Collection interface {
	// Init creates the empty collection if it does not exist. Repeated calls are no-ops.
	Init(ctx context.Context) error

	// Load reads every profile.
	Load(ctx context.Context) ([]models.UserProfile, error)

	// Store replaces the collection with profiles.
	Store(ctx context.Context, profiles []models.UserProfile) error
}

// OpenCollection builds the [Collection] selected by config. The returned closer releases any database handle.
func OpenCollection(config *shared.Config) (Collection, io.Closer, error) {
	switch config.Storage.Driver {
	case shared.StorageFile, "":
		return NewFileCollection(config.Storage.Path), io.NopCloser(nil), nil
	case shared.StorageSQLite:
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		return NewSQLiteCollection(db), db, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, config.Storage.Driver)
	}
}

// FileCollection stores profiles as a pretty-printed JSON array.
type FileCollection struct {
	path string
}

func NewFileCollection(path string) *FileCollection {
	return &FileCollection{path: path}
}

func (c *FileCollection) Path() string {
	return c.path
}

func (c *FileCollection) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if _, err := os.Stat(c.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", c.path, err)
	}

	return c.Store(ctx, nil)
}

func (c *FileCollection) Load(ctx context.Context) ([]models.UserProfile, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}

	var profiles []models.UserProfile
	if len(data) == 0 {
		return profiles, nil
	}
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", c.path, err)
	}
	return profiles, nil
}

// Store writes to a temporary file in the same directory and renames it over the target.
func (c *FileCollection) Store(ctx context.Context, profiles []models.UserProfile) error {
	data, err := encodeProfiles(profiles)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", c.path, err)
	}
	return nil
}

// usersDocument is the documents row holding the profile collection.
const usersDocument = "users"

// SQLiteCollection stores the profile array as one row of the documents table.
type SQLiteCollection struct {
	db   *sql.DB
	name string
}

func NewSQLiteCollection(db *sql.DB) *SQLiteCollection {
	return &SQLiteCollection{db: db, name: usersDocument}
}

// Init applies pending migrations and inserts the empty document row.
func (c *SQLiteCollection) Init(ctx context.Context) error {
	if err := shared.RunMigrations(ctx, c.db); err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO documents (name, body) VALUES (?, '[]')`
	if _, err := c.db.ExecContext(ctx, query, c.name); err != nil {
		return fmt.Errorf("failed to create %s document: %w", c.name, err)
	}
	return nil
}

func (c *SQLiteCollection) Load(ctx context.Context) ([]models.UserProfile, error) {
	var body string
	err := c.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, c.name).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s document not initialized", c.name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s document: %w", c.name, err)
	}

	var profiles []models.UserProfile
	if err := json.Unmarshal([]byte(body), &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse %s document: %w", c.name, err)
	}
	return profiles, nil
}

func (c *SQLiteCollection) Store(ctx context.Context, profiles []models.UserProfile) error {
	data, err := encodeProfiles(profiles)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`
	if _, err := c.db.ExecContext(ctx, query, c.name, string(data)); err != nil {
		return fmt.Errorf("failed to write %s document: %w", c.name, err)
	}
	return nil
}

func encodeProfiles(profiles []models.UserProfile) ([]byte, error) {
	if profiles == nil {
		profiles = []models.UserProfile{}
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profiles: %w", err)
	}
	return append(data, '\n'), nil
}
