package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/compass/internal/failure"
	"github.com/UnknownOlympus/compass/internal/geocoding"
	"github.com/UnknownOlympus/compass/internal/metrics"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/UnknownOlympus/compass/internal/poi"
)

// Operation labels used in metrics and logs.
const (
	OpGeocode = "geocode"
	OpPOIs    = "pois"
	OpNearby  = "nearby"
)

// Retriever finds POIs around a point.
type Retriever interface {
	Retrieve(ctx context.Context, q poi.Query) ([]models.POI, models.BoundingBox, error)
}

// Options holds the knobs of an Explorer.
type Options struct {
	ProviderName  string            // geocoding provider label for metrics
	SourceName    string            // feature source label for metrics
	AddressPrefix string            // prepended to every address (country, city, ...)
	RadiusKm      float64           // default search radius
	Categories    []models.Category // default category precedence
}

// Explorer is the boundary in front of the geocoder and the POI retriever.
// None of its methods panic or return bare errors: every failure is logged,
// counted and reported through the result's Reason.
type Explorer struct {
	log       *slog.Logger
	provider  geocoding.Provider
	retriever Retriever
	metrics   *metrics.Metrics
	opts      Options
}

// NewExplorer creates an Explorer. Unset options fall back to the POI defaults.
func NewExplorer(
	log *slog.Logger,
	provider geocoding.Provider,
	retriever Retriever,
	metrics *metrics.Metrics,
	opts Options,
) *Explorer {
	if opts.RadiusKm <= 0 {
		opts.RadiusKm = poi.DefaultRadiusKm
	}
	if len(opts.Categories) == 0 {
		opts.Categories = models.DefaultCategories()
	}

	return &Explorer{
		log:       log,
		provider:  provider,
		retriever: retriever,
		metrics:   metrics,
		opts:      opts,
	}
}

// GeocodeAddress resolves a free-text address. Coordinates are nil unless the
// result reason is ok.
func (e *Explorer) GeocodeAddress(ctx context.Context, address string) (result models.GeocodeResult) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.ErrorContext(ctx, "Recovered from panic while geocoding", "address", address, "panic", rec)
			result = models.GeocodeResult{
				Address: address,
				Reason:  models.ReasonUnknown,
				Err:     fmt.Errorf("geocoding panicked: %v", rec),
			}
			e.metrics.Lookups.WithLabelValues(OpGeocode, string(result.Reason)).Inc()
		}
	}()

	query := address
	if strings.TrimSpace(address) != "" {
		query = e.opts.AddressPrefix + address
	}

	startTime := time.Now()
	coords, err := e.provider.Geocode(ctx, query)
	e.metrics.RequestSeconds.WithLabelValues(e.opts.ProviderName).Observe(time.Since(startTime).Seconds())

	if err == nil && coords == nil {
		err = fmt.Errorf("provider returned no coordinates: %w", failure.ErrNoMatch)
	}

	reason := failure.Classify(err)
	e.metrics.Lookups.WithLabelValues(OpGeocode, string(reason)).Inc()

	if err != nil {
		e.logFailure(ctx, OpGeocode, e.opts.ProviderName, reason, err, "address", query)
		return models.GeocodeResult{Address: address, Reason: reason, Err: err}
	}

	e.log.DebugContext(ctx, "Address geocoded",
		"address", query, "lat", coords.Latitude, "lon", coords.Longitude)

	return models.GeocodeResult{Address: address, Coordinates: coords, Reason: models.ReasonOK}
}

// NearbyPOIs lists POIs within radiusKm of center. A zero radius or empty
// category list selects the explorer defaults.
func (e *Explorer) NearbyPOIs(
	ctx context.Context,
	center models.Coordinates,
	radiusKm float64,
	categories []models.Category,
) (result models.POIResult) {
	if radiusKm == 0 {
		radiusKm = e.opts.RadiusKm
	}
	if len(categories) == 0 {
		categories = e.opts.Categories
	}

	defer func() {
		if rec := recover(); rec != nil {
			e.log.ErrorContext(ctx, "Recovered from panic while retrieving POIs",
				"lat", center.Latitude, "lon", center.Longitude, "panic", rec)
			result = models.POIResult{
				Center:   center,
				RadiusKm: radiusKm,
				POIs:     []models.POI{},
				Reason:   models.ReasonUnknown,
				Err:      fmt.Errorf("POI retrieval panicked: %v", rec),
			}
			e.metrics.Lookups.WithLabelValues(OpPOIs, string(result.Reason)).Inc()
		}
	}()

	startTime := time.Now()
	pois, bbox, err := e.retriever.Retrieve(ctx, poi.Query{
		Center:     center,
		RadiusKm:   radiusKm,
		Categories: categories,
	})
	e.metrics.RequestSeconds.WithLabelValues(e.opts.SourceName).Observe(time.Since(startTime).Seconds())

	if pois == nil {
		pois = []models.POI{}
	}

	reason := failure.Classify(err)
	if err == nil && len(pois) == 0 {
		reason = models.ReasonNoMatch
	}
	e.metrics.Lookups.WithLabelValues(OpPOIs, string(reason)).Inc()

	result = models.POIResult{
		Center:      center,
		RadiusKm:    radiusKm,
		BoundingBox: bbox,
		POIs:        pois,
		Reason:      reason,
		Err:         err,
	}

	if err != nil {
		e.logFailure(ctx, OpPOIs, e.opts.SourceName, reason, err,
			"lat", center.Latitude, "lon", center.Longitude, "radius_km", radiusKm)
		result.POIs = []models.POI{}
		return result
	}

	e.metrics.POIsReturned.Observe(float64(len(pois)))
	e.log.DebugContext(ctx, "POIs retrieved",
		"lat", center.Latitude, "lon", center.Longitude, "radius_km", radiusKm, "count", len(pois))

	return result
}

// NearbyAddress geocodes address and lists the POIs around it. When the address
// cannot be resolved, the geocoding reason is returned with an empty list.
func (e *Explorer) NearbyAddress(
	ctx context.Context,
	address string,
	radiusKm float64,
	categories []models.Category,
) models.POIResult {
	geo := e.GeocodeAddress(ctx, address)
	if !geo.OK() {
		e.metrics.Lookups.WithLabelValues(OpNearby, string(geo.Reason)).Inc()
		return models.POIResult{POIs: []models.POI{}, RadiusKm: radiusKm, Reason: geo.Reason, Err: geo.Err}
	}

	result := e.NearbyPOIs(ctx, *geo.Coordinates, radiusKm, categories)
	e.metrics.Lookups.WithLabelValues(OpNearby, string(result.Reason)).Inc()

	return result
}

// logFailure logs lookups that did not succeed. Misses are informational;
// everything else is an error and counts against the upstream.
func (e *Explorer) logFailure(
	ctx context.Context,
	op, upstream string,
	reason models.Reason,
	err error,
	attrs ...any,
) {
	attrs = append(attrs, "operation", op, "reason", reason, "error", err)

	switch reason {
	case models.ReasonNoMatch:
		e.log.InfoContext(ctx, "Lookup found no match", attrs...)
	case models.ReasonInvalidInput:
		e.log.WarnContext(ctx, "Lookup rejected invalid input", attrs...)
	default:
		e.metrics.UpstreamErrors.WithLabelValues(upstream, string(reason)).Inc()
		e.log.ErrorContext(ctx, "Lookup failed", attrs...)
	}
}
