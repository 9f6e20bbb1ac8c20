package obstacle

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/woozymasta/aerosurf/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

var (
	nameKeys      = []string{"name", "Name", "NAME", "OBJECT_NAM"}
	elevationKeys = []string{"elev", "elevation", "ALT_m", "ALT", "Altitude", "ELEVATION", "HEIGHT"}
)

// ReadGeoJSON reads point features from a FeatureCollection. Features that
// are not points or carry no numeric elevation are skipped and reported.
func ReadGeoJSON(r io.Reader) ([]Obstacle, []Skip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode geojson: %w", err)
	}

	var (
		obstacles []Obstacle
		skipped   []Skip
	)
	for i, f := range fc.Features {
		o, reason := featureObstacle(f)
		if reason != "" {
			skipped = append(skipped, Skip{Row: i, Name: o.Name, Reason: reason})
			log.Debug().Int("feature", i).Str("name", o.Name).Str("reason", reason).Msg("obstacle skipped")
			continue
		}
		obstacles = append(obstacles, o)
	}

	log.Debug().Int("obstacles", len(obstacles)).Int("skipped", len(skipped)).Msg("geojson obstacles read")
	return obstacles, skipped, nil
}

func featureObstacle(f *geojson.Feature) (Obstacle, string) {
	var o Obstacle
	for _, k := range nameKeys {
		if s, ok := f.Properties[k].(string); ok && strings.TrimSpace(s) != "" {
			o.Name = strings.TrimSpace(s)
			break
		}
	}

	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		if f.Geometry == nil {
			return o, "missing geometry"
		}
		return o, "geometry is " + f.Geometry.GeoJSONType()
	}

	elev, ok := numericProperty(f.Properties, elevationKeys)
	if !ok {
		return o, "missing elevation"
	}

	o.Position = geo.GeoPoint{Latitude: pt.Lat(), Longitude: pt.Lon(), Elevation: elev}
	if !o.Valid() {
		return o, "invalid position"
	}
	return o, ""
}

func numericProperty(props geojson.Properties, keys []string) (float64, bool) {
	for _, k := range keys {
		switch v := props[k].(type) {
		case float64:
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				return v, true
			}
		case int:
			return float64(v), true
		}
	}
	return 0, false
}

// ToGeoJSON converts obstacles to a point FeatureCollection.
func ToGeoJSON(obstacles []Obstacle) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, o := range obstacles {
		fc.Append(geo.PointFeature(o.Position, map[string]interface{}{"name": o.Name}))
	}
	return fc
}
