package poi

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/UnknownOlympus/compass/internal/failure"
	"github.com/UnknownOlympus/compass/internal/geodesy"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/paulmach/orb/planar"
)

// DefaultRadiusKm is used when a query leaves the radius unset.
const DefaultRadiusKm = 0.5

// Query describes one POI search.
type Query struct {
	Center     models.Coordinates
	RadiusKm   float64           // zero selects DefaultRadiusKm
	Categories []models.Category // precedence order; empty selects models.DefaultCategories()
}

// Retriever computes the search box, queries the Source and builds POI records.
type Retriever struct {
	source Source
	model  geodesy.Model
	log    *slog.Logger
}

// NewRetriever creates a Retriever that measures on the given earth model.
func NewRetriever(source Source, model geodesy.Model, log *slog.Logger) *Retriever {
	return &Retriever{source: source, model: model, log: log}
}

// Retrieve returns the POIs around q.Center together with the box that was searched.
// The slice is empty, never nil, when nothing matched.
func (r *Retriever) Retrieve(ctx context.Context, q Query) ([]models.POI, models.BoundingBox, error) {
	q, err := normalize(q)
	if err != nil {
		return []models.POI{}, models.BoundingBox{}, err
	}

	bbox := geodesy.BoundingBox(r.model, q.Center, q.RadiusKm)
	r.log.DebugContext(ctx, "Searching features",
		"lat", q.Center.Latitude,
		"lon", q.Center.Longitude,
		"radius_km", q.RadiusKm,
		"bbox", bbox,
		"categories", q.Categories)

	features, err := r.source.Features(ctx, bbox, q.Categories)
	if err != nil {
		return []models.POI{}, bbox, fmt.Errorf("failed to query features: %w", err)
	}
	if len(features) == 0 {
		return []models.POI{}, bbox, nil
	}

	pois := make([]models.POI, 0, len(features))
	for _, feature := range features {
		if feature.Geometry == nil {
			r.log.DebugContext(ctx, "Skipping feature without geometry", "type", feature.Type, "id", feature.ID)
			continue
		}

		centroid, _ := planar.CentroidArea(feature.Geometry)
		at := models.FromPoint(centroid)

		pois = append(pois, models.POI{
			Name:                 Name(feature.Tags),
			Category:             Categorize(feature.Tags, q.Categories),
			Latitude:             at.Latitude,
			Longitude:            at.Longitude,
			DistanceFromCenterKm: geodesy.Distance(r.model, q.Center, at),
		})
	}

	return pois, bbox, nil
}

// Name returns the feature's name tag or models.NotAvailable.
func Name(tags map[string]string) string {
	if name := tags["name"]; name != "" {
		return name
	}
	return models.NotAvailable
}

// Categorize returns the first category, in the given order, that the tags
// carry with a non-empty value, or models.NotAvailable.
func Categorize(tags map[string]string, categories []models.Category) string {
	for _, cat := range categories {
		if tags[string(cat)] != "" {
			return string(cat)
		}
	}
	return models.NotAvailable
}

func normalize(q Query) (Query, error) {
	if !q.Center.Valid() {
		return q, fmt.Errorf("center %v,%v is out of range: %w",
			q.Center.Latitude, q.Center.Longitude, failure.ErrInvalidInput)
	}
	if math.IsNaN(q.RadiusKm) || math.IsInf(q.RadiusKm, 0) || q.RadiusKm < 0 {
		return q, fmt.Errorf("radius must be a non-negative number of kilometres, got %v: %w",
			q.RadiusKm, failure.ErrInvalidInput)
	}
	if q.RadiusKm == 0 {
		q.RadiusKm = DefaultRadiusKm
	}
	if len(q.Categories) == 0 {
		q.Categories = models.DefaultCategories()
	}

	return q, nil
}
