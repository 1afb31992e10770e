package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/desertthunder/moodmix/internal/tasks"
)

const maxBodyBytes = 1 << 20

// PlaylistGenerator is implemented by [tasks.PlaylistEngine].
type PlaylistGenerator interface {
	Generate(ctx context.Context, progress chan<- tasks.ProgressUpdate, emotion, userID string) (*models.Playlist, error)
}

// ProfileStore is implemented by [repositories.PreferenceStore].
type ProfileStore interface {
	Get(ctx context.Context, id string) (models.UserProfile, error)
	Save(ctx context.Context, u models.ProfileUpdate) (models.UserProfile, error)
	UpdatePreferences(ctx context.Context, id string, u models.ProfileUpdate) (models.UserProfile, error)
}

// Searcher is implemented by [tasks.CatalogSearch].
type Searcher interface {
	Tracks(ctx context.Context, query string, limit int) ([]models.Track, error)
	Artists(ctx context.Context, query string, limit int) ([]models.Artist, error)
}

// CredentialChecker is implemented by [services.CredentialBroker].
type CredentialChecker interface {
	Credential(ctx context.Context) (models.Credential, error)
}

// APIHandler serves the JSON API under /api/.
type APIHandler struct {
	playlists   PlaylistGenerator
	profiles    ProfileStore
	search      Searcher
	credentials CredentialChecker
	logger      *log.Logger
	mux         *http.ServeMux
}

var _ Handler = (*APIHandler)(nil)

// NewAPIHandler wires the API routes onto an internal mux.
func NewAPIHandler(playlists PlaylistGenerator, profiles ProfileStore, search Searcher, credentials CredentialChecker, logger *log.Logger) *APIHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	h := &APIHandler{
		playlists:   playlists,
		profiles:    profiles,
		search:      search,
		credentials: credentials,
		logger:      logger,
		mux:         http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /api/test", h.handleTest)
	h.mux.HandleFunc("GET /api/recommendations/emotions", h.handleEmotions)
	h.mux.HandleFunc("POST /api/recommendations/emotion", h.handleGenerate)
	h.mux.HandleFunc("GET /api/music/search/tracks", h.handleSearchTracks)
	h.mux.HandleFunc("GET /api/music/search/artists", h.handleSearchArtists)
	h.mux.HandleFunc("GET /api/users/{id}", h.handleGetUser)
	h.mux.HandleFunc("POST /api/users", h.handleSaveUser)
	h.mux.HandleFunc("PUT /api/users/{id}/preferences", h.handleUpdatePreferences)
	h.mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "route not found: " + r.URL.Path, Code: CodeNotFound})
	})

	return h
}

func (h *APIHandler) Routes() []string {
	return []string{"/api/"}
}

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// ConnectionResponse reports whether a catalog credential could be obtained.
type ConnectionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TokenReceived bool   `json:"tokenReceived"`
	Error         string `json:"error,omitempty"`
	Code          string `json:"code,omitempty"`
}

// GenerateRequest is the body of POST /api/recommendations/emotion.
type GenerateRequest struct {
	Emotion string `json:"emotion"`
	UserID  string `json:"userId"`
}

func (h *APIHandler) handleTest(w http.ResponseWriter, r *http.Request) {
	cred, err := h.credentials.Credential(r.Context())
	if err != nil {
		status, code := StatusFor(err)
		h.logger.Error("connection check failed", "error", err, "request_id", RequestIDFrom(r.Context()))
		writeJSON(w, status, ConnectionResponse{
			Message: "Spotify API connection failed",
			Error:   errorMessage(err, code),
			Code:    code,
		})
		return
	}

	writeJSON(w, http.StatusOK, ConnectionResponse{
		Success:       true,
		Message:       "Spotify API connection successful",
		TokenReceived: cred.Token != "",
	})
}

func (h *APIHandler) handleEmotions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"emotions": models.EmotionCatalog()})
}

func (h *APIHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Emotion) == "" {
		h.writeError(w, r, fmt.Errorf("%w: emotion is required", shared.ErrValidation))
		return
	}

	pl, err := h.playlists.Generate(r.Context(), nil, req.Emotion, strings.TrimSpace(req.UserID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (h *APIHandler) handleSearchTracks(w http.ResponseWriter, r *http.Request) {
	query, limit, err := searchQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tracks, err := h.search.Tracks(r.Context(), query, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (h *APIHandler) handleSearchArtists(w http.ResponseWriter, r *http.Request) {
	query, limit, err := searchQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	artists, err := h.search.Artists(r.Context(), query, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artists": artists})
}

func (h *APIHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.profiles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *APIHandler) handleSaveUser(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := decodeBody(r, &update); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.profiles.Save(r.Context(), update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *APIHandler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := decodeBody(r, &update); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.profiles.UpdatePreferences(r.Context(), r.PathValue("id"), update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)

	logger := h.logger.With("path", r.URL.Path, "status", status, "request_id", RequestIDFrom(r.Context()))
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Warn("request rejected", "error", err)
	}

	writeJSON(w, status, ErrorResponse{Error: errorMessage(err, code), Code: code})
}

// decodeBody reads a JSON body of at most maxBodyBytes. Malformed input is a validation error.
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %v", shared.ErrValidation, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("%w: request body is required", shared.ErrValidation)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		if errors.Is(err, shared.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body: %v", shared.ErrValidation, err)
	}
	return nil
}

func searchQuery(r *http.Request) (string, int, error) {
	q := r.URL.Query()

	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		return "", 0, fmt.Errorf(`%w: query parameter "q" is required`, shared.ErrValidation)
	}

	limit := tasks.DefaultSearchLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", 0, fmt.Errorf(`%w: query parameter "limit" must be an integer`, shared.ErrValidation)
		}
		limit = tasks.ClampLimit(n)
	}
	return query, limit, nil
}

// NewAPIRouter builds the router with the standard middleware stack and the API handler.
func NewAPIRouter(api *APIHandler, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), RequestID(), Logging(logger), CORS())
	router.Handler(api)
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	return router
}
