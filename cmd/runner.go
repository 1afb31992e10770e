package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmix/internal/repositories"
	"github.com/desertthunder/moodmix/internal/services"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/desertthunder/moodmix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	catalog    services.Catalog
	issuer     services.TokenIssuer
	broker     *services.CredentialBroker
	resolver   *services.ArtistResolver
	assembler  *tasks.PlaylistAssembler
	search     *tasks.CatalogSearch
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Catalog and Issuer are usually the same [services.SpotifyService]; when either is nil the catalog-backed
// commands report [shared.ErrMissingCredentials].
type RunnerOpts struct {
	Config     *shared.Config
	Catalog    services.Catalog
	Issuer     services.TokenIssuer
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if opts.Catalog != nil && opts.Issuer != nil {
		r.catalog = opts.Catalog
		r.issuer = opts.Issuer
		r.wire()
	}

	return r
}

// wire builds the credential broker, resolver, assembler and search over the configured catalog.
func (r *Runner) wire() {
	r.broker = services.NewCredentialBroker(r.issuer, shared.WithLogger(r.logger, "component", "credentials"))
	r.resolver = services.NewArtistResolver(r.catalog, shared.WithLogger(r.logger, "component", "resolver"))
	r.assembler = tasks.NewPlaylistAssembler(r.catalog, r.broker, r.resolver, shared.WithLogger(r.logger, "component", "assembler"))
	r.search = tasks.NewCatalogSearch(r.catalog, r.broker)
}

// SetLogger replaces the runner's logger, e.g. to keep log output away from the TUI.
//
// Catalog components are rebuilt so they log through the new logger; cached credentials and artist ids are dropped.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.catalog != nil && r.issuer != nil {
		r.wire()
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, emotionsCommand, playlistCommand, profileCommand, searchCommand, authCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireCatalog reports [shared.ErrMissingCredentials] when no catalog client was configured.
func (r *Runner) requireCatalog() error {
	if r.catalog == nil || r.broker == nil {
		return fmt.Errorf("%w: %s", shared.ErrMissingCredentials, shared.AuthenticationHint)
	}
	return nil
}

// openStore opens the configured profile collection. The returned closer releases the backing database, if any.
func (r *Runner) openStore(ctx context.Context) (*repositories.PreferenceStore, io.Closer, error) {
	coll, closer, err := repositories.OpenCollection(r.config)
	if err != nil {
		return nil, nil, err
	}

	store, err := repositories.NewPreferenceStore(ctx, coll, shared.WithLogger(r.logger, "component", "preferences"))
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return store, closer, nil
}

// newEngine builds a [tasks.PlaylistEngine] over profiles, which may be nil.
func (r *Runner) newEngine(profiles tasks.ProfileReader) *tasks.PlaylistEngine {
	return tasks.NewPlaylistEngine(r.assembler, profiles, r.config.Playlist.DefaultLength, shared.WithLogger(r.logger, "component", "engine"))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
