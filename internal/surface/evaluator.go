package surface

import (
	"errors"
	"fmt"
	"strings"

	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/geometry"

	"github.com/paulmach/orb"
)

var (
	// ErrOutside is returned when a sample point is not inside the surface.
	ErrOutside = errors.New("point outside surface")
	// ErrDegenerate is returned when the surface geometry cannot be interpolated.
	ErrDegenerate = errors.New("degenerate surface geometry")
)

// Interpolation selects how elevation is derived inside the polygon.
type Interpolation int

const (
	// Centerline interpolates along the base to end midpoint line and ignores lateral offset.
	Centerline Interpolation = iota
	// PlaneFit uses the plane through the base midpoint and both end corners.
	PlaneFit
	// Bilinear blends the four corner elevations.
	Bilinear
)

var interpolationNames = map[Interpolation]string{
	Centerline: "centerline",
	PlaneFit:   "plane-fit",
	Bilinear:   "bilinear",
}

func (i Interpolation) String() string {
	if s, ok := interpolationNames[i]; ok {
		return s
	}
	return fmt.Sprintf("interpolation(%d)", int(i))
}

// ParseInterpolation parses the names produced by String. Empty means Centerline.
func ParseInterpolation(s string) (Interpolation, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if s == "" {
		return Centerline, nil
	}
	for k, v := range interpolationNames {
		if v == s || strings.ReplaceAll(v, "-", "") == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown interpolation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (i Interpolation) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Interpolation) UnmarshalText(b []byte) error {
	v, err := ParseInterpolation(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithInterpolation overrides the default centerline interpolation.
func WithInterpolation(i Interpolation) Option {
	return func(e *Evaluator) { e.interp = i }
}

// Evaluator answers membership and elevation queries for one polygon.
// It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	kind    Kind
	ring    []geo.PlanarPoint
	corners [4]geometry.Point3
	base    geometry.Point3
	end     geometry.Point3
	bound   orb.Bound
	interp  Interpolation
}

// NewEvaluator projects poly into the planar system of p.
func NewEvaluator(p geo.Projector, poly Polygon, opts ...Option) (*Evaluator, error) {
	if !poly.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformedPolygon, int(poly.Kind))
	}
	if len(poly.Vertices) < 4 {
		return nil, fmt.Errorf("%w: %d vertices", ErrMalformedPolygon, len(poly.Vertices))
	}

	corners := poly.Corners()
	planar, err := geo.ProjectAll(p, corners[:])
	if err != nil {
		return nil, fmt.Errorf("project %s polygon: %w", poly.Kind, err)
	}

	e := &Evaluator{kind: poly.Kind, ring: planar}
	for i := range corners {
		e.corners[i] = geometry.Point3{X: planar[i].X, Y: planar[i].Y, Z: corners[i].Elevation}
	}

	c := conventions[poly.Kind]
	baseMid := planar[c.base[0]].Midpoint(planar[c.base[1]])
	endMid := planar[c.end[0]].Midpoint(planar[c.end[1]])
	e.base = geometry.Point3{X: baseMid.X, Y: baseMid.Y, Z: poly.BaseElevation()}
	e.end = geometry.Point3{X: endMid.X, Y: endMid.Y, Z: poly.EndElevation()}
	e.bound = geometry.Bounds(planar)

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Kind returns the surface kind being evaluated.
func (e *Evaluator) Kind() Kind { return e.kind }

// Interpolation returns the configured interpolation mode.
func (e *Evaluator) Interpolation() Interpolation { return e.interp }

// Bound is the planar bounding box of the surface.
func (e *Evaluator) Bound() orb.Bound { return e.bound }

// BaseMidpoint is the midpoint of the base edge with its elevation.
func (e *Evaluator) BaseMidpoint() geometry.Point3 { return e.base }

// EndMidpoint is the midpoint of the far edge with its elevation.
func (e *Evaluator) EndMidpoint() geometry.Point3 { return e.end }

// Contains reports whether pt is inside the surface outline.
func (e *Evaluator) Contains(pt geo.PlanarPoint) bool {
	if !e.bound.Contains(orb.Point{pt.X, pt.Y}) {
		return false
	}
	return geometry.PointInPolygon(pt, e.ring)
}

// Sample returns the surface elevation at pt, ErrOutside when pt is not
// inside the polygon or ErrDegenerate when the configured interpolation
// has no solution for this geometry.
func (e *Evaluator) Sample(pt geo.PlanarPoint) (float64, error) {
	if !e.Contains(pt) {
		return 0, ErrOutside
	}

	var (
		z  float64
		ok bool
	)
	switch e.interp {
	case PlaneFit:
		// plane through the first three corners; the fourth is ignored
		z, ok = geometry.PlaneFitZ(pt.X, pt.Y, e.corners[0], e.corners[1], e.corners[2])
	case Bilinear:
		z, ok = geometry.BilinearZ(pt.X, pt.Y, e.corners)
	default:
		z, ok = geometry.CenterlineZ(pt.X, pt.Y, e.base, e.end)
	}
	if !ok {
		return 0, ErrDegenerate
	}
	return z, nil
}

// ElevationAt is Sample without the reason: false means the elevation is undetermined.
func (e *Evaluator) ElevationAt(pt geo.PlanarPoint) (float64, bool) {
	z, err := e.Sample(pt)
	return z, err == nil
}
