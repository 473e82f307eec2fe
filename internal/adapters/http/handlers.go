package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sp3dr4/tern/internal/application"
	"github.com/sp3dr4/tern/internal/domain"
	"github.com/sp3dr4/tern/internal/pkg/logging"
)

const (
	maxRequestBodyBytes = 1 << 20
	readinessTimeout    = 5 * time.Second
	redirectPathPrefix  = "/r/"
)

type Shortener interface {
	Shorten(ctx context.Context, rawURL string) (*application.ShortenResult, error)
}

type Resolver interface {
	Resolve(ctx context.Context, shortCode string) (string, error)
}

// HealthChecker is satisfied by domain.Store.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	shortener Shortener
	resolver  Resolver
	health    HealthChecker
	baseURL   string
}

func NewHandlers(shortener Shortener, resolver Resolver, health HealthChecker, baseURL string) *Handlers {
	return &Handlers{
		shortener: shortener,
		resolver:  resolver,
		health:    health,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// ShortenRequest is the body accepted by POST /shorten.
type ShortenRequest struct {
	URL string `json:"url" example:"https://example.com/some/long/path"`
}

// ShortenResponse is returned for a newly created short URL.
type ShortenResponse struct {
	ShortCode   string `json:"short_code" example:"Ab3dE9"`
	OriginalURL string `json:"original_url" example:"https://example.com/some/long/path"`
	ShortURL    string `json:"short_url" example:"http://localhost:8080/r/Ab3dE9"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid URL format"`
}

// ReadyResponse represents a successful readiness probe.
type ReadyResponse struct {
	Status    string `json:"status" example:"ready"`
	Timestamp string `json:"timestamp" example:"2024-01-31T12:00:00Z"`
}

// HandleHealth handles the health check endpoint.
//
//	@Summary		Health check endpoint
//	@Description	Check if the service is running
//	@Tags			health
//	@Produce		plain
//	@Success		200	{string}	string	"OK"
//	@Router			/health [get]
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// HandleReady handles the readiness check endpoint.
//
//	@Summary		Readiness check endpoint
//	@Description	Check if the service is ready to serve requests (includes store connectivity)
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	ReadyResponse	"Service is ready"
//	@Failure		503	{object}	ErrorResponse	"Service is not ready"
//	@Router			/ready [get]
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.health.HealthCheck(ctx); err != nil {
		logging.FromContext(r.Context()).Error("Readiness check failed", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Service not ready: store unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, ReadyResponse{
		Status:    "ready",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// HandleShorten handles the URL shortening endpoint.
//
//	@Summary		Create a short URL
//	@Description	Assign a fresh random short code to a long URL
//	@Tags			urls
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ShortenRequest	true	"URL to shorten"
//	@Success		201		{object}	ShortenResponse	"Successfully created short URL"
//	@Failure		400		{object}	ErrorResponse	"Invalid request or validation error"
//	@Failure		500		{object}	ErrorResponse	"Store unavailable or no free code found"
//	@Router			/shorten [post]
func (h *Handlers) HandleShorten(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req ShortenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		logger.Warn("Failed to decode request", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.shortener.Shorten(r.Context(), req.URL)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ShortenResponse{
		ShortCode:   result.ShortCode,
		OriginalURL: result.OriginalURL,
		ShortURL:    h.shortURL(result.ShortCode),
	})
}

// HandleRedirect handles the redirect endpoint.
//
//	@Summary		Redirect to original URL
//	@Description	Redirect to the original URL using the short code
//	@Tags			urls
//	@Param			shortCode	path	string	true	"Short code"
//	@Success		302			"Redirect to original URL"
//	@Failure		400			{object}	ErrorResponse	"Malformed short code"
//	@Failure		404			{object}	ErrorResponse	"Short URL not found"
//	@Failure		500			{object}	ErrorResponse	"Store unavailable"
//	@Router			/r/{shortCode} [get]
func (h *Handlers) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	originalURL, err := h.resolver.Resolve(r.Context(), shortCode)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("Redirecting", "short_code", shortCode, "original_url", originalURL)

	// Set directly rather than through http.Redirect so the stored URL is sent byte for byte.
	w.Header().Set("Location", originalURL)
	w.WriteHeader(http.StatusFound)
}

func (h *Handlers) shortURL(code string) string {
	return h.baseURL + redirectPathPrefix + code
}

// handleServiceError is the single place where domain errors become HTTP
// statuses. Backend details go to the log only.
func (h *Handlers) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Short URL not found")
	default:
		logger.Error("Request failed", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}
