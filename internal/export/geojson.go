package export

import (
	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/processor"
	"github.com/woozymasta/aerosurf/internal/surface"

	"github.com/paulmach/orb/geojson"
)

// SurfaceFeature returns the polygon as a GeoJSON feature with kind,
// bearing, length and per-vertex elevations as properties.
func SurfaceFeature(poly surface.Polygon, name string) *geojson.Feature {
	labels := poly.Kind.Labels()
	return geo.PolygonFeature(poly.Vertices, map[string]interface{}{
		"name":          name,
		"kind":          poly.Kind.String(),
		"bearing":       poly.Bearing,
		"length":        poly.Length,
		"baseElevation": poly.BaseElevation(),
		"endElevation":  poly.EndElevation(),
		"labels":        labels[:],
	})
}

// SurfaceGeoJSON wraps SurfaceFeature in a FeatureCollection with one
// point feature per corner.
func SurfaceGeoJSON(poly surface.Polygon, name string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(SurfaceFeature(poly, name))

	labels := poly.Kind.Labels()
	for i, v := range poly.Corners() {
		fc.Append(geo.PointFeature(v, map[string]interface{}{
			"name": string(rune('A' + i)),
			"role": labels[i],
		}))
	}
	return fc
}

// ResultsGeoJSON returns the surface and one point feature per result.
func ResultsGeoJSON(report *processor.Report) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(SurfaceFeature(report.Polygon, report.Surface))

	for _, r := range report.Results {
		props := map[string]interface{}{
			"name":           r.Name,
			"classification": r.Classification.String(),
			"x":              r.X,
			"y":              r.Y,
		}
		if r.SurfaceElevation != nil {
			props["surfaceElevation"] = *r.SurfaceElevation
		}
		if p, ok := r.Penetration(); ok {
			props["penetration"] = p
		}
		fc.Append(geo.PointFeature(geo.GeoPoint{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Elevation: r.Elevation,
		}, props))
	}
	return fc
}
