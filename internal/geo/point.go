// Package geo handles geographic data structures, coordinate parsing and the
// conversion between WGS84 and the planar working projection.
package geo

import (
	"errors"
	"math"
)

var (
	// ErrNonFinite is returned when a coordinate is NaN or infinite.
	ErrNonFinite = errors.New("non-finite coordinate")
	// ErrOutOfRange is returned for latitudes beyond ±90 or longitudes beyond ±180.
	ErrOutOfRange = errors.New("coordinate out of range")
)

// GeoPoint is a WGS84 position with an elevation in meters above the vertical datum.
type GeoPoint struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lng" yaml:"lng"`
	Elevation float64 `json:"elev" yaml:"elev"`
}

// SurveyPoint is a position as posted by a client. Elevation is a pointer so
// an absent value is not mistaken for zero.
type SurveyPoint struct {
	Latitude  float64  `json:"lat" yaml:"lat"`
	Longitude float64  `json:"lng" yaml:"lng"`
	Elevation *float64 `json:"elev" yaml:"elev"`
}

// GeoPoint returns the position and false when the elevation is missing.
func (p SurveyPoint) GeoPoint() (GeoPoint, bool) {
	pt := GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude}
	if p.Elevation == nil {
		return pt, false
	}
	pt.Elevation = *p.Elevation
	return pt, true
}

// PlanarPoint is a position in the projected system, in meters.
type PlanarPoint struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Valid reports whether all fields are finite and latitude/longitude are in range.
func (p GeoPoint) Valid() bool {
	return checkLatLng(p.Latitude, p.Longitude) == nil && isFinite(p.Elevation)
}

// WithElevation returns a copy of p at elevation z.
func (p GeoPoint) WithElevation(z float64) GeoPoint {
	p.Elevation = z
	return p
}

// Sub returns the vector p-q.
func (p PlanarPoint) Sub(q PlanarPoint) PlanarPoint {
	return PlanarPoint{X: p.X - q.X, Y: p.Y - q.Y}
}

// Offset moves p by distance meters along the grid bearing (radians, clockwise from north).
func (p PlanarPoint) Offset(bearing, distance float64) PlanarPoint {
	return PlanarPoint{
		X: p.X + distance*math.Sin(bearing),
		Y: p.Y + distance*math.Cos(bearing),
	}
}

// Midpoint returns the point halfway between p and q.
func (p PlanarPoint) Midpoint(q PlanarPoint) PlanarPoint {
	return PlanarPoint{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkLatLng(lat, lng float64) error {
	if !isFinite(lat) || !isFinite(lng) {
		return ErrNonFinite
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrOutOfRange
	}
	return nil
}
