// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/watchmix/watchmix/internal/providers"
	"github.com/watchmix/watchmix/internal/session"
)

// Server is the v1 API server.
type Server struct {
	watchlists   *providers.WatchlistService
	availability *providers.AvailabilityService
	session      *session.Session
	log          *slog.Logger
}

// New creates a new v1 API server.
func New(watchlists *providers.WatchlistService, availability *providers.AvailabilityService, sess *session.Session, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		watchlists:   watchlists,
		availability: availability,
		session:      sess,
		log:          log.With("component", "api"),
	}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Provider endpoints
	mux.HandleFunc("GET /api/v1/watchlist", s.getWatchlist)
	mux.HandleFunc("GET /api/v1/availability", s.getAvailability)
	mux.HandleFunc("GET /api/v1/poster/{movie}", s.getPoster)

	// Session
	mux.HandleFunc("POST /api/v1/query", s.submitQuery)
	mux.HandleFunc("GET /api/v1/collection", s.getCollection)
	mux.HandleFunc("PUT /api/v1/filters", s.updateFilters)

	// System
	mux.HandleFunc("GET /api/v1/health", s.getHealth)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) getWatchlist(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_USERNAME", "username query parameter is required")
		return
	}

	titles, err := s.watchlists.Watchlist(r.Context(), username)
	if err != nil {
		s.writeFetchError(w, err, "Watchlist not found")
		return
	}

	writeJSON(w, http.StatusOK, titles)
}

func (s *Server) getAvailability(w http.ResponseWriter, r *http.Request) {
	movieID := r.URL.Query().Get("movie_id")
	if movieID == "" {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_MOVIE_ID", "movie_id query parameter is required")
		return
	}

	options, err := s.availability.Availability(r.Context(), movieID)
	if err != nil {
		s.writeFetchError(w, err, "Movie could not be found")
		return
	}

	if options == nil {
		options = []session.Option{}
	}
	writeJSON(w, http.StatusOK, options)
}

func (s *Server) getPoster(w http.ResponseWriter, r *http.Request) {
	// The path value is "<slug>-<id>"; the id is the trailing segment.
	movie := r.PathValue("movie")
	i := strings.LastIndex(movie, "-")
	if i <= 0 || i == len(movie)-1 {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_MOVIE", "expected <slug>-<id>")
		return
	}
	slug, id := movie[:i], movie[i+1:]

	data, err := s.watchlists.Poster(r.Context(), slug, id)
	if err != nil {
		s.writeFetchError(w, err, "Poster not found")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type queryRequest struct {
	Usernames []string `json:"usernames"`
}

func (s *Server) submitQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	if _, err := s.session.SubmitQuery(r.Context(), req.Usernames); err != nil {
		if errors.Is(err, session.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, "INVALID_USERNAMES", err.Error())
			return
		}
		s.log.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", "query failed")
		return
	}

	writeJSON(w, http.StatusAccepted, s.session.Snapshot())
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) updateFilters(w http.ResponseWriter, r *http.Request) {
	var filters session.FilterSelection
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	s.session.UpdateFilters(filters)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// writeFetchError maps the session error taxonomy onto provider endpoint
// status codes. Unknown failures get a generic message; raw provider
// payloads are never forwarded.
func (s *Server) writeFetchError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, session.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_INPUT", err.Error())
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", notFoundMsg)
	case errors.Is(err, session.ErrUpstreamUnavailable):
		writeError(w, http.StatusFailedDependency, "UPSTREAM_UNAVAILABLE", "failed to reach upstream provider")
	case errors.Is(err, session.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "exceeded api rate limit")
	default:
		s.log.Error("fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "UNKNOWN", "unexpected error")
	}
}
