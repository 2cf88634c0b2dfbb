package overpass

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

const minRingPoints = 4

type response struct {
	Remark   string    `json:"remark"`
	Elements []element `json:"elements"`
}

// latLon is one geometry vertex. Overpass sends null for vertices it does not resolve.
type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type bounds struct {
	MinLat float64 `json:"minlat"`
	MinLon float64 `json:"minlon"`
	MaxLat float64 `json:"maxlat"`
	MaxLon float64 `json:"maxlon"`
}

type member struct {
	Type     osm.Type  `json:"type"`
	Ref      int64     `json:"ref"`
	Role     string    `json:"role"`
	Geometry []*latLon `json:"geometry"`
}

// element is one entry of an `out geom` response.
type element struct {
	Type     osm.Type          `json:"type"`
	ID       int64             `json:"id"`
	Lat      *float64          `json:"lat"`
	Lon      *float64          `json:"lon"`
	Bounds   *bounds           `json:"bounds"`
	Geometry []*latLon         `json:"geometry"`
	Members  []member          `json:"members"`
	Tags     map[string]string `json:"tags"`
}

// linearTags lists keys whose closed ways stay linear, with the values that
// still make an area.
var linearTags = map[string]map[string]bool{
	"barrier": {"city_wall": true, "ditch": true, "hedge": true, "retaining_wall": true, "spikes": true},
	"highway": {"services": true, "rest_area": true, "escape": true, "elevator": true},
}

// geometry returns the element outline, or nil when it has none.
func (el element) geometry() orb.Geometry {
	switch el.Type {
	case osm.TypeNode:
		if el.Lat == nil || el.Lon == nil {
			return nil
		}
		return orb.Point{*el.Lon, *el.Lat}
	case osm.TypeWay:
		return wayGeometry(el.Geometry, el.Tags)
	case osm.TypeRelation:
		return el.relationGeometry()
	default:
		return nil
	}
}

// wayGeometry builds a polygon for closed area ways and a line string otherwise.
func wayGeometry(points []*latLon, tags map[string]string) orb.Geometry {
	line := toLine(points)
	switch {
	case len(line) == 0:
		return nil
	case len(line) == 1:
		return line[0]
	case isClosed(line) && isArea(tags):
		return orb.Polygon{orb.Ring(line)}
	default:
		return line
	}
}

// isArea applies the area tag first, then the linear key exceptions.
func isArea(tags map[string]string) bool {
	switch tags["area"] {
	case "yes":
		return true
	case "no":
		return false
	}

	for key, areaValues := range linearTags {
		if value, ok := tags[key]; ok && !areaValues[value] {
			return false
		}
	}

	return true
}

// relationGeometry joins outer member ways into rings and returns them as a
// multipolygon; relations without one fall back to the center of their bounds.
func (el element) relationGeometry() orb.Geometry {
	var outers []orb.LineString
	for _, m := range el.Members {
		if m.Type != osm.TypeWay || (m.Role != "outer" && m.Role != "") {
			continue
		}
		if line := toLine(m.Geometry); len(line) > 1 {
			outers = append(outers, line)
		}
	}

	var mp orb.MultiPolygon
	for _, ring := range joinRings(outers) {
		mp = append(mp, orb.Polygon{ring})
	}
	if len(mp) > 0 {
		return mp
	}

	if el.Bounds != nil {
		bound := orb.Bound{
			Min: orb.Point{el.Bounds.MinLon, el.Bounds.MinLat},
			Max: orb.Point{el.Bounds.MaxLon, el.Bounds.MaxLat},
		}
		return bound.Center()
	}

	return nil
}

// joinRings chains ways that share endpoints until they close. Chains that
// never close are dropped.
func joinRings(lines []orb.LineString) []orb.Ring {
	var rings []orb.Ring
	pending := make([]orb.LineString, 0, len(lines))
	for _, line := range lines {
		if isClosed(line) {
			rings = append(rings, orb.Ring(line))
			continue
		}
		pending = append(pending, line)
	}

	for len(pending) > 0 {
		chain := append(orb.LineString{}, pending[0]...)
		pending = pending[1:]

		for !isClosed(chain) {
			next := nextSegment(chain, pending)
			if next < 0 {
				break
			}

			segment := pending[next]
			if !segment[0].Equal(chain[len(chain)-1]) {
				segment = reversed(segment)
			}
			chain = append(chain, segment[1:]...)
			pending = append(pending[:next], pending[next+1:]...)
		}

		if isClosed(chain) {
			rings = append(rings, orb.Ring(chain))
		}
	}

	return rings
}

// nextSegment returns the index of a pending way touching the chain's end, or -1.
func nextSegment(chain orb.LineString, pending []orb.LineString) int {
	end := chain[len(chain)-1]
	for i, segment := range pending {
		if segment[0].Equal(end) || segment[len(segment)-1].Equal(end) {
			return i
		}
	}
	return -1
}

func reversed(line orb.LineString) orb.LineString {
	out := make(orb.LineString, 0, len(line))
	for i := len(line) - 1; i >= 0; i-- {
		out = append(out, line[i])
	}
	return out
}

// toLine converts vertices to points, skipping null entries.
func toLine(points []*latLon) orb.LineString {
	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		if p == nil {
			continue
		}
		line = append(line, orb.Point{p.Lon, p.Lat})
	}
	return line
}

func isClosed(line orb.LineString) bool {
	return len(line) >= minRingPoints && line[0].Equal(line[len(line)-1])
}
