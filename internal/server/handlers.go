package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/shared"
	"github.com/desertthunder/featguess/internal/tasks"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Guesser resolves a single guess. Satisfied by [tasks.GuessResolver].
type Guesser interface {
	Resolve(ctx context.Context, req tasks.GuessRequest, progress chan<- tasks.ProgressUpdate) tasks.GuessResult
}

// Suggester returns artist suggestions for partial input. Satisfied by [tasks.AutocompleteResolver].
type Suggester interface {
	Suggest(ctx context.Context, input string) ([]*models.Artist, error)
}

// GuessResponse is the JSON body of /api/guess.
type GuessResponse struct {
	Status string            `json:"status"`
	Cached bool              `json:"cached"`
	Track  *models.TrackView `json:"track,omitempty"`
	Error  string            `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GuessHandler serves GET /api/guess?q=first,second&market=XX.
type GuessHandler struct {
	guesser Guesser
	logger  *log.Logger
}

// NewGuessHandler creates a GuessHandler.
func NewGuessHandler(g Guesser, logger *log.Logger) *GuessHandler {
	return &GuessHandler{guesser: g, logger: logger}
}

func (h *GuessHandler) Routes() []string { return []string{"/api/guess"} }

// ServeHTTP maps the result status to 200 (found), 404 (not found), 400 (invalid) or 502 (catalog failure).
//
// A track that resolved but failed to persist is still returned with 200.
func (h *GuessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := h.guesser.Resolve(r.Context(), tasks.GuessRequest{Input: q.Get("q"), Market: q.Get("market")}, nil)

	body := GuessResponse{Status: res.Status.String(), Cached: res.Cached}
	if res.Track != nil {
		view := res.Track.View()
		body.Track = &view
	}

	code := http.StatusOK
	switch res.Status {
	case tasks.NotFound:
		code = http.StatusNotFound
	case tasks.Invalid:
		code = http.StatusBadRequest
		body.Error = res.Err.Error()
	case tasks.Failed:
		code = http.StatusBadGateway
		body.Error = "catalog unavailable"
	case tasks.Found:
		if res.Err != nil {
			h.logger.Warn("returning unpersisted track", "track", res.Track.ID(), "error", res.Err, "request_id", RequestID(r.Context()))
		}
	}

	writeJSON(w, code, body)
}

// AutocompleteHandler serves GET /api/autocomplete?q=partial.
type AutocompleteHandler struct {
	suggester Suggester
	logger    *log.Logger
}

// NewAutocompleteHandler creates an AutocompleteHandler.
func NewAutocompleteHandler(s Suggester, logger *log.Logger) *AutocompleteHandler {
	return &AutocompleteHandler{suggester: s, logger: logger}
}

func (h *AutocompleteHandler) Routes() []string { return []string{"/api/autocomplete"} }

// ServeHTTP always answers with a JSON array; a catalog failure is a 502 with an empty array.
func (h *AutocompleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	artists, err := h.suggester.Suggest(r.Context(), r.URL.Query().Get("q"))

	views := make([]models.ArtistView, 0, len(artists))
	for _, a := range artists {
		views = append(views, a.View())
	}

	code := http.StatusOK
	if err != nil {
		h.logger.Warn("autocomplete failed", "error", err, "request_id", RequestID(r.Context()))
		code = http.StatusBadGateway
	}
	writeJSON(w, code, views)
}

// HealthHandler serves GET /healthz.
type HealthHandler struct{}

func (HealthHandler) Routes() []string { return []string{"/healthz"} }

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Options holds the dependencies of [New].
type Options struct {
	Guesser   Guesser
	Suggester Suggester
	Logger    *log.Logger
}

// New builds the full router: request IDs, logging and recovery around the guess, autocomplete, health and
// metrics endpoints.
func New(opts Options) *BasicRouter {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	r := NewBasicRouter()
	r.Use(RequestIDMiddleware(), LoggingMiddleware(opts.Logger), RecoverMiddleware(opts.Logger))

	r.Handler(NewGuessHandler(opts.Guesser, opts.Logger))
	r.Handler(NewAutocompleteHandler(opts.Suggester, opts.Logger))
	r.Handler(HealthHandler{})
	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
