// Package server exposes the explorer over HTTP together with health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/compass/internal/failure"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 90 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Explorer is the lookup boundary served by the HTTP handlers.
type Explorer interface {
	GeocodeAddress(ctx context.Context, address string) models.GeocodeResult
	NearbyPOIs(ctx context.Context, center models.Coordinates, radiusKm float64, categories []models.Category) models.POIResult
	NearbyAddress(ctx context.Context, address string, radiusKm float64, categories []models.Category) models.POIResult
}

// Server serves the lookup API, /healthz and /metrics.
type Server struct {
	log      *slog.Logger
	explorer Explorer
	gatherer prometheus.Gatherer
}

// New creates a Server. Metrics are served from gatherer.
func New(log *slog.Logger, explorer Explorer, gatherer prometheus.Gatherer) *Server {
	return &Server{log: log, explorer: explorer, gatherer: gatherer}
}

// Handler returns the routing table of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /geocode", s.handleGeocode)
	mux.HandleFunc("GET /pois", s.handlePOIs)
	mux.HandleFunc("GET /nearby", s.handleNearby)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return mux
}

// Run listens on port until ctx is canceled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting HTTP server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	s.log.InfoContext(ctx, "HTTP server stopped")
	return nil
}

type geocodeResponse struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Status    string   `json:"status"`
	Error     string   `json:"error,omitempty"`
}

type poisResponse struct {
	Center      *models.Coordinates `json:"center"`
	RadiusKm    float64             `json:"radius_km"`
	BoundingBox *models.BoundingBox `json:"bounding_box"`
	POIs        []models.POI        `json:"pois"`
	Status      string              `json:"status"`
	Error       string              `json:"error,omitempty"`
}

func (s *Server) handleGeocode(writer http.ResponseWriter, req *http.Request) {
	address := req.URL.Query().Get("address")
	result := s.explorer.GeocodeAddress(req.Context(), address)

	resp := geocodeResponse{
		Address: address,
		Status:  string(result.Reason),
		Error:   errorText(result.Err),
	}
	if result.OK() {
		resp.Latitude = &result.Coordinates.Latitude
		resp.Longitude = &result.Coordinates.Longitude
	}

	s.writeJSON(req.Context(), writer, statusFor(result.Reason), resp)
}

func (s *Server) handlePOIs(writer http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	lat, err := parseFloat(query, "lat", true)
	if err != nil {
		s.writeInvalid(req.Context(), writer, err)
		return
	}
	lon, err := parseFloat(query, "lon", true)
	if err != nil {
		s.writeInvalid(req.Context(), writer, err)
		return
	}
	radiusKm, categories, err := parseSearch(query)
	if err != nil {
		s.writeInvalid(req.Context(), writer, err)
		return
	}

	center := models.Coordinates{Latitude: lat, Longitude: lon}
	result := s.explorer.NearbyPOIs(req.Context(), center, radiusKm, categories)

	s.writeJSON(req.Context(), writer, statusFor(result.Reason), poisBody(result, true))
}

func (s *Server) handleNearby(writer http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	radiusKm, categories, err := parseSearch(query)
	if err != nil {
		s.writeInvalid(req.Context(), writer, err)
		return
	}

	result := s.explorer.NearbyAddress(req.Context(), query.Get("address"), radiusKm, categories)
	located := result.Center != (models.Coordinates{}) || result.BoundingBox != (models.BoundingBox{})

	s.writeJSON(req.Context(), writer, statusFor(result.Reason), poisBody(result, located))
}

func (s *Server) handleHealth(writer http.ResponseWriter, req *http.Request) {
	s.log.DebugContext(req.Context(), "Performing health checks...")
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write([]byte("OK")); err != nil {
		s.log.ErrorContext(req.Context(), "failed to write reply", "error", err)
	}
}

func (s *Server) writeInvalid(ctx context.Context, writer http.ResponseWriter, err error) {
	s.log.WarnContext(ctx, "Rejected request", "error", err)
	s.writeJSON(ctx, writer, http.StatusBadRequest, poisResponse{
		POIs:   []models.POI{},
		Status: string(models.ReasonInvalidInput),
		Error:  err.Error(),
	})
}

func (s *Server) writeJSON(ctx context.Context, writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}

func poisBody(result models.POIResult, located bool) poisResponse {
	resp := poisResponse{
		RadiusKm: result.RadiusKm,
		POIs:     result.POIs,
		Status:   string(result.Reason),
		Error:    errorText(result.Err),
	}
	if resp.POIs == nil {
		resp.POIs = []models.POI{}
	}
	if located {
		resp.Center = &result.Center
	}
	if result.BoundingBox != (models.BoundingBox{}) {
		resp.BoundingBox = &result.BoundingBox
	}

	return resp
}

// statusFor maps a lookup reason to its HTTP status.
func statusFor(reason models.Reason) int {
	switch reason {
	case models.ReasonOK, models.ReasonNoMatch:
		return http.StatusOK
	case models.ReasonInvalidInput:
		return http.StatusBadRequest
	case models.ReasonTransport, models.ReasonMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseSearch(query url.Values) (float64, []models.Category, error) {
	radiusKm, err := parseFloat(query, "radius_km", false)
	if err != nil {
		return 0, nil, err
	}

	var categories []models.Category
	if raw := query.Get("categories"); raw != "" {
		categories, err = models.ParseCategories(strings.Split(raw, ","))
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %w", failure.ErrInvalidInput, err)
		}
	}

	return radiusKm, categories, nil
}

func parseFloat(query url.Values, key string, required bool) (float64, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		if required {
			return 0, fmt.Errorf("missing parameter %q: %w", key, failure.ErrInvalidInput)
		}
		return 0, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid parameter %q: %w", key, failure.ErrInvalidInput)
	}

	return value, nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
