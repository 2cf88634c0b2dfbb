// Package poi turns tagged map features around a point into POI records.
package poi

import (
	"context"

	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/paulmach/orb"
)

// Feature is a tagged map feature returned by a Source.
type Feature struct {
	Type     string            // element type, e.g. node, way, relation
	ID       int64             // upstream element id
	Tags     map[string]string // element tags
	Geometry orb.Geometry      // feature outline in lon/lat degrees
}

// Source queries a map-feature service for features inside a bounding box
// that carry at least one of the given category tags. Features are returned
// in upstream order; an empty result is not an error.
type Source interface {
	Features(ctx context.Context, bbox models.BoundingBox, categories []models.Category) ([]Feature, error)
}
