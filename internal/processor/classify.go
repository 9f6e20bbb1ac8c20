// Package processor classifies obstacles against a clearance surface and
// assembles evaluation reports.
package processor

import (
	"fmt"
	"math"
	"strings"

	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/obstacle"
	"github.com/woozymasta/aerosurf/internal/surface"

	"github.com/rs/zerolog/log"
)

// Classification is the verdict for an obstacle inside a surface footprint.
type Classification int

const (
	// Undetermined means the surface elevation could not be computed.
	Undetermined Classification = iota
	// NotCritical means the obstacle is at or below the surface.
	NotCritical
	// Critical means the obstacle rises above the surface.
	Critical
)

var classificationNames = [...]string{"Undetermined", "Not critical", "Critical"}

func (c Classification) String() string {
	if c >= 0 && int(c) < len(classificationNames) {
		return classificationNames[c]
	}
	return fmt.Sprintf("classification(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Classification) UnmarshalText(b []byte) error {
	for i, name := range classificationNames {
		if strings.EqualFold(name, string(b)) {
			*c = Classification(i)
			return nil
		}
	}
	return fmt.Errorf("unknown classification %q", b)
}

// Result is the classification record of one obstacle inside the footprint.
type Result struct {
	Ordinal          int            `json:"ordinal" yaml:"ordinal"`
	Name             string         `json:"name" yaml:"name"`
	Latitude         float64        `json:"latitude" yaml:"latitude"`
	Longitude        float64        `json:"longitude" yaml:"longitude"`
	X                float64        `json:"planarX" yaml:"planar_x"`
	Y                float64        `json:"planarY" yaml:"planar_y"`
	Elevation        float64        `json:"obstacleElevation" yaml:"obstacle_elevation"`
	SurfaceElevation *float64       `json:"surfaceElevation" yaml:"surface_elevation"`
	Classification   Classification `json:"classification" yaml:"classification"`
}

// Penetration is obstacle elevation minus surface elevation, when known.
func (r Result) Penetration() (float64, bool) {
	if r.SurfaceElevation == nil {
		return 0, false
	}
	return r.Elevation - *r.SurfaceElevation, true
}

// Status tells why an obstacle did or did not produce a Result.
type Status int

const (
	// Included obstacles lie inside the footprint and have a Result.
	Included Status = iota
	// Outside obstacles lie outside the footprint and are omitted.
	Outside
	// Invalid obstacles have unusable coordinates and are skipped.
	Invalid
)

// Classifier evaluates obstacles against one surface polygon.
// It holds no mutable state and may be shared between goroutines.
type Classifier struct {
	name string
	proj geo.Projector
	poly surface.Polygon
	eval *surface.Evaluator
}

// NewClassifier prepares poly for evaluation in the planar system of p.
func NewClassifier(name string, p geo.Projector, poly surface.Polygon, opts ...surface.Option) (*Classifier, error) {
	eval, err := surface.NewEvaluator(p, poly, opts...)
	if err != nil {
		return nil, err
	}
	return &Classifier{name: name, proj: p, poly: poly, eval: eval}, nil
}

// Name is the label given to the surface.
func (c *Classifier) Name() string { return c.name }

// Polygon returns the surface being evaluated.
func (c *Classifier) Polygon() surface.Polygon { return c.poly }

// Evaluator exposes the underlying surface evaluator.
func (c *Classifier) Evaluator() *surface.Evaluator { return c.eval }

// Classify returns the result for o and whether it lies inside the footprint.
func (c *Classifier) Classify(o obstacle.Obstacle) (Result, bool) {
	r, status := c.classify(0, o)
	return r, status == Included
}

func (c *Classifier) project(o obstacle.Obstacle) (geo.PlanarPoint, bool) {
	if !o.Valid() {
		return geo.PlanarPoint{}, false
	}
	xy, err := c.proj.ToPlanar(o.Position.Latitude, o.Position.Longitude)
	if err != nil {
		log.Trace().Err(err).Str("obstacle", o.Name).Msg("projection failed")
		return geo.PlanarPoint{}, false
	}
	return xy, true
}

func (c *Classifier) classify(ordinal int, o obstacle.Obstacle) (Result, Status) {
	xy, ok := c.project(o)
	if !ok {
		return Result{}, Invalid
	}
	return c.classifyAt(ordinal, o, xy)
}

func (c *Classifier) classifyAt(ordinal int, o obstacle.Obstacle, xy geo.PlanarPoint) (Result, Status) {
	if !c.eval.Contains(xy) {
		return Result{}, Outside
	}

	r := Result{
		Ordinal:        ordinal,
		Name:           o.Name,
		Latitude:       o.Position.Latitude,
		Longitude:      o.Position.Longitude,
		X:              xy.X,
		Y:              xy.Y,
		Elevation:      o.Position.Elevation,
		Classification: Undetermined,
	}

	z, err := c.eval.Sample(xy)
	switch {
	case err != nil:
		log.Trace().Err(err).Str("obstacle", o.Name).Msg("surface elevation undetermined")
	case math.IsNaN(z) || math.IsInf(z, 0):
		log.Trace().Str("obstacle", o.Name).Msg("surface elevation not finite")
	default:
		r.SurfaceElevation = &z
		if o.Position.Elevation > z {
			r.Classification = Critical
		} else {
			r.Classification = NotCritical
		}
	}

	return r, Included
}
