package models

import "github.com/paulmach/orb"

// Coordinates represents a geographical point defined by its latitude and longitude in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}

// Point returns the coordinates as an orb point (x = longitude, y = latitude).
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// FromPoint converts an orb point back to coordinates.
func FromPoint(p orb.Point) Coordinates {
	return Coordinates{Latitude: p.Lat(), Longitude: p.Lon()}
}

// Valid reports whether the coordinates lie within the WGS-84 degree ranges.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// BoundingBox is a rectangular region defined by west/south/east/north bounds in decimal degrees.
// A box crossing the antimeridian has West greater than East.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// CrossesAntimeridian reports whether the box wraps from +180 to -180.
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.West > b.East
}

// Bound returns the box as an orb bound. For a box crossing the antimeridian
// the east edge is unrolled past 180.
func (b BoundingBox) Bound() orb.Bound {
	east := b.East
	if b.CrossesAntimeridian() {
		east += 360
	}

	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{east, b.North},
	}
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinates) bool {
	if c.Latitude < b.South || c.Latitude > b.North {
		return false
	}
	if b.CrossesAntimeridian() {
		return c.Longitude >= b.West || c.Longitude <= b.East
	}

	return c.Longitude >= b.West && c.Longitude <= b.East
}
