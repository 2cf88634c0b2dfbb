// Package geodesy projects destination points and measures great-circle
// distances on the WGS-84 ellipsoid or on a sphere.
package geodesy

import (
	"fmt"
	"strings"

	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/paulmach/orb/geo"
	"github.com/tidwall/geodesic"
)

// Model selects the earth model used for projections and distances.
type Model string

const (
	// ModelEllipsoid solves geodesics on the WGS-84 ellipsoid.
	ModelEllipsoid Model = "ellipsoid"
	// ModelSphere uses spherical formulae on a mean-radius sphere.
	ModelSphere Model = "sphere"
)

// Bearings of the bounding box edges, in degrees clockwise from north.
const (
	BearingNorth = 0
	BearingEast  = 90
	BearingSouth = 180
	BearingWest  = 270
)

const metersPerKm = 1000

// ParseModel converts a configuration value into a Model. Empty selects the ellipsoid.
func ParseModel(name string) (Model, error) {
	switch Model(strings.ToLower(strings.TrimSpace(name))) {
	case ModelEllipsoid, "":
		return ModelEllipsoid, nil
	case ModelSphere:
		return ModelSphere, nil
	default:
		return "", fmt.Errorf("unsupported earth model: %s", name)
	}
}

// Destination returns the point reached by travelling distanceKm from origin
// along the initial bearing (degrees clockwise from north).
func Destination(model Model, origin models.Coordinates, bearing, distanceKm float64) models.Coordinates {
	if model == ModelSphere {
		return models.FromPoint(geo.PointAtBearingAndDistance(origin.Point(), bearing, distanceKm*metersPerKm))
	}

	var dest models.Coordinates
	geodesic.WGS84.Direct(origin.Latitude, origin.Longitude, bearing, distanceKm*metersPerKm,
		&dest.Latitude, &dest.Longitude, nil)

	return dest
}

// Distance returns the geodesic distance between two points in kilometres.
func Distance(model Model, from, to models.Coordinates) float64 {
	if model == ModelSphere {
		return geo.DistanceHaversine(from.Point(), to.Point()) / metersPerKm
	}

	var meters float64
	geodesic.WGS84.Inverse(from.Latitude, from.Longitude, to.Latitude, to.Longitude, &meters, nil, nil)

	return meters / metersPerKm
}

// BoundingBox returns the square box whose edges lie radiusKm from center
// at the four cardinal bearings. Near the antimeridian West is greater than
// East. A box reaching over a pole is widened to that pole and to every longitude.
func BoundingBox(model Model, center models.Coordinates, radiusKm float64) models.BoundingBox {
	box := models.BoundingBox{
		West:  Destination(model, center, BearingWest, radiusKm).Longitude,
		South: Destination(model, center, BearingSouth, radiusKm).Latitude,
		East:  Destination(model, center, BearingEast, radiusKm).Longitude,
		North: Destination(model, center, BearingNorth, radiusKm).Latitude,
	}

	overNorth := box.North < center.Latitude || center.Latitude == 90
	overSouth := box.South > center.Latitude || center.Latitude == -90
	if overNorth {
		box.North = 90
	}
	if overSouth {
		box.South = -90
	}
	if overNorth || overSouth {
		box.West, box.East = -180, 180
	}

	return box
}
