package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// OrbPoint converts a GeoPoint to an orb point in [lng, lat] order.
func OrbPoint(p GeoPoint) orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// PointFeature builds a GeoJSON point feature. The elevation goes into the
// "elev" property since orb points are two dimensional.
func PointFeature(p GeoPoint, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(OrbPoint(p))
	for k, v := range props {
		f.Properties[k] = v
	}
	f.Properties["elev"] = p.Elevation
	return f
}

// PolygonFeature builds a single-ring GeoJSON polygon. The ring is closed if
// needed and per-vertex elevations are stored in the "elevations" property.
func PolygonFeature(ring []GeoPoint, props map[string]interface{}) *geojson.Feature {
	r := make(orb.Ring, 0, len(ring)+1)
	elevations := make([]float64, 0, len(ring)+1)
	for _, p := range ring {
		r = append(r, OrbPoint(p))
		elevations = append(elevations, p.Elevation)
	}
	if len(ring) > 0 && !r.Closed() {
		r = append(r, r[0])
		elevations = append(elevations, ring[0].Elevation)
	}

	f := geojson.NewFeature(orb.Polygon{r})
	for k, v := range props {
		f.Properties[k] = v
	}
	f.Properties["elevations"] = elevations
	return f
}
