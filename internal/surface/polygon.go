package surface

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/woozymasta/aerosurf/internal/geo"
)

// ErrMalformedPolygon is returned for vertex lists that cannot describe a surface.
var ErrMalformedPolygon = errors.New("malformed surface polygon")

// Polygon is a closed, four cornered surface with per-vertex elevations.
// Vertices holds five points, the last repeating the first.
type Polygon struct {
	Kind     Kind
	Vertices []geo.GeoPoint
	// Bearing is the grid bearing of the runway centerline in degrees.
	Bearing float64
	// Length is the horizontal distance from base to end along the centerline, meters.
	Length float64
}

// NewPolygon builds a polygon of the given kind from [lat, lng, elev] triples.
// Four triples are closed automatically, five must already be closed.
func NewPolygon(kind Kind, triples [][3]float64) (Polygon, error) {
	if !kind.Valid() {
		return Polygon{}, fmt.Errorf("%w: unknown kind %d", ErrMalformedPolygon, int(kind))
	}
	if len(triples) != 4 && len(triples) != 5 {
		return Polygon{}, fmt.Errorf("%w: %d vertices, expected 4 or 5", ErrMalformedPolygon, len(triples))
	}

	vertices := make([]geo.GeoPoint, 0, 5)
	for i, t := range triples {
		p := geo.GeoPoint{Latitude: t[0], Longitude: t[1], Elevation: t[2]}
		if !p.Valid() {
			return Polygon{}, fmt.Errorf("%w: vertex %d %v", ErrMalformedPolygon, i, t)
		}
		vertices = append(vertices, p)
	}
	if len(vertices) == 5 && vertices[4] != vertices[0] {
		return Polygon{}, fmt.Errorf("%w: ring is not closed", ErrMalformedPolygon)
	}
	if len(vertices) == 4 {
		vertices = append(vertices, vertices[0])
	}

	return Polygon{Kind: kind, Vertices: vertices}, nil
}

// Corners returns the four distinct vertices in polygon order.
func (p Polygon) Corners() [4]geo.GeoPoint {
	var c [4]geo.GeoPoint
	copy(c[:], p.Vertices)
	return c
}

// Triples returns the vertices as [lat, lng, elev] arrays.
func (p Polygon) Triples() [][3]float64 {
	out := make([][3]float64, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = [3]float64{v.Latitude, v.Longitude, v.Elevation}
	}
	return out
}

// BaseElevation is the elevation used at the base edge by the evaluator.
func (p Polygon) BaseElevation() float64 {
	return p.edgeElevation(conventions[p.Kind].base)
}

// EndElevation is the elevation used at the far edge by the evaluator.
func (p Polygon) EndElevation() float64 {
	return p.edgeElevation(conventions[p.Kind].end)
}

func (p Polygon) edgeElevation(idx [2]int) float64 {
	if len(p.Vertices) < 4 {
		return math.NaN()
	}
	if conventions[p.Kind].average {
		return (p.Vertices[idx[0]].Elevation + p.Vertices[idx[1]].Elevation) / 2
	}
	return p.Vertices[idx[0]].Elevation
}

type polygonJSON struct {
	Kind     Kind         `json:"kind"`
	Vertices [][3]float64 `json:"vertices"`
	Labels   [4]string    `json:"labels"`
	Bearing  float64      `json:"bearing"`
	Length   float64      `json:"length"`
}

// MarshalJSON encodes the polygon with vertices as [lat, lng, elev] arrays.
func (p Polygon) MarshalJSON() ([]byte, error) {
	return json.Marshal(polygonJSON{
		Kind:     p.Kind,
		Vertices: p.Triples(),
		Labels:   p.Kind.Labels(),
		Bearing:  p.Bearing,
		Length:   p.Length,
	})
}

// UnmarshalJSON decodes and validates a polygon produced by MarshalJSON.
func (p *Polygon) UnmarshalJSON(b []byte) error {
	var raw polygonJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	poly, err := NewPolygon(raw.Kind, raw.Vertices)
	if err != nil {
		return err
	}
	poly.Bearing = raw.Bearing
	poly.Length = raw.Length
	*p = poly
	return nil
}
