package surface

import (
	"fmt"
	"math"

	"github.com/woozymasta/aerosurf/internal/geo"

	"github.com/rs/zerolog/log"
)

const (
	// VSSBaseSplay is the half splay of the VSS sides, atan(0.15) in degrees.
	VSSBaseSplay = 8.53076561
	// VSSSlopeCorrection is subtracted from the vertical path angle to get the surface slope.
	VSSSlopeCorrection = 1.12
	// VSSOriginSetback moves the VSS origin this many meters back from the threshold.
	VSSOriginSetback = 60.0

	// DepHalfWidth is half the width of the DEP OIS base, meters.
	DepHalfWidth = 150.0
	// DepLength is the fixed horizontal length of the DEP OIS, meters.
	DepLength = 5000.0
	// DepSplay is the half splay of the DEP OIS sides, degrees.
	DepSplay = 15.0
	// DepClimbGradient is the default DEP OIS gradient, percent.
	DepClimbGradient = 2.5
	// DepBaseHeight raises the DEP OIS base above the runway end, meters.
	DepBaseHeight = 5.0
)

// Builder turns runway parameters into surface polygons.
type Builder struct {
	proj geo.Projector
}

// NewBuilder returns a builder working in the planar system of p.
func NewBuilder(p geo.Projector) *Builder {
	return &Builder{proj: p}
}

// Build dispatches on kind.
func (b *Builder) Build(kind Kind, in RunwayInput) (Polygon, error) {
	switch kind {
	case VSS:
		return b.VSS(in)
	case DepOIS:
		return b.DepOIS(in)
	}
	return Polygon{}, in.Validate(kind)
}

// VSSLength returns the horizontal VSS length for an obstacle clearance
// height in meters and a vertical path angle in degrees.
func VSSLength(och, vpa float64) float64 {
	return och / math.Tan(geo.DegToRad(vpa-VSSSlopeCorrection))
}

// splays returns left and right side angles relative to the centerline.
// A negative offset swings the left side outwards and a positive one the right side.
func splays(offset, base float64) (left, right float64) {
	switch {
	case offset < 0:
		return offset - base, base
	case offset > 0:
		return -base, offset + base
	}
	return -base, base
}

// VSS builds the Visual Segment Surface. The base edge lies VSSOriginSetback
// meters before the threshold at runway elevation, the far edge sits OCH
// higher. Vertices are [leftBase, leftEnd, rightEnd, rightBase, leftBase].
func (b *Builder) VSS(in RunwayInput) (Polygon, error) {
	if err := in.Validate(VSS); err != nil {
		return Polygon{}, err
	}

	thr, end, err := b.project(in)
	if err != nil {
		return Polygon{}, err
	}

	bearing := geo.GridBearing(thr, end)
	br := geo.DegToRad(bearing)
	left, right := splays(in.OffsetAngle, VSSBaseSplay)
	length := VSSLength(in.OCH, in.VerticalPathAngle)

	origin := thr.Offset(br, -VSSOriginSetback)
	leftBase, rightBase := abeam(origin, br, in.StripWidth/2)

	// sides run backwards from the base, away from the runway
	lr, rr := geo.DegToRad(left), geo.DegToRad(right)
	leftEnd := leftBase.Offset(br+lr, -length/math.Cos(lr))
	rightEnd := rightBase.Offset(br+rr, -length/math.Cos(rr))

	baseElev := in.Threshold.Elevation
	endElev := baseElev + in.OCH

	vertices, err := b.unproject([]elevated{
		{leftBase, baseElev},
		{leftEnd, endElev},
		{rightEnd, endElev},
		{rightBase, baseElev},
	})
	if err != nil {
		return Polygon{}, err
	}

	log.Debug().
		Float64("bearing", bearing).
		Float64("length", length).
		Float64("left_splay", left).
		Float64("right_splay", right).
		Msg("vss built")

	return Polygon{Kind: VSS, Vertices: vertices, Bearing: bearing, Length: length}, nil
}

// DepOIS builds the Departure Obstacle Identification Surface. The base
// edge is centered on the departure end, or the far end of the clearway,
// DepBaseHeight above the end elevation. The surface climbs at the climb
// gradient for DepLength meters. Vertices are
// [baseRight, leftEnd, rightEnd, baseLeft, baseRight].
func (b *Builder) DepOIS(in RunwayInput) (Polygon, error) {
	if err := in.Validate(DepOIS); err != nil {
		return Polygon{}, err
	}

	start, end, err := b.project(in)
	if err != nil {
		return Polygon{}, err
	}

	bearing := geo.GridBearing(start, end)
	br := geo.DegToRad(bearing)

	origin := end
	if in.ClearwayLength > 0 {
		origin = origin.Offset(br, in.ClearwayLength)
	}
	baseLeft, baseRight := abeam(origin, br, DepHalfWidth)

	// each end corner continues the side of the base corner next to it in
	// the ring, so both sides open outwards from the centerline
	left, right := splays(in.OffsetAngle, DepSplay)
	lr, rr := geo.DegToRad(left), geo.DegToRad(right)
	leftEnd := baseRight.Offset(br+lr, DepLength)
	rightEnd := baseLeft.Offset(br+rr, DepLength)

	gradient := in.ClimbGradient
	if gradient == 0 {
		gradient = DepClimbGradient
	}
	baseElev := in.End.Elevation + DepBaseHeight
	endElev := baseElev + DepLength*gradient/100

	vertices, err := b.unproject([]elevated{
		{baseRight, baseElev},
		{leftEnd, endElev},
		{rightEnd, endElev},
		{baseLeft, baseElev},
	})
	if err != nil {
		return Polygon{}, err
	}

	log.Debug().
		Float64("bearing", bearing).
		Float64("gradient", gradient).
		Float64("clearway", in.ClearwayLength).
		Msg("dep ois built")

	return Polygon{Kind: DepOIS, Vertices: vertices, Bearing: bearing, Length: DepLength}, nil
}

// abeam returns the points half meters either side of p, perpendicular to
// the bearing. The first result is offset by (cos b, -sin b).
func abeam(p geo.PlanarPoint, bearing, half float64) (geo.PlanarPoint, geo.PlanarPoint) {
	dx, dy := half*math.Cos(bearing), -half*math.Sin(bearing)
	return geo.PlanarPoint{X: p.X + dx, Y: p.Y + dy},
		geo.PlanarPoint{X: p.X - dx, Y: p.Y - dy}
}

type elevated struct {
	p    geo.PlanarPoint
	elev float64
}

func (b *Builder) project(in RunwayInput) (geo.PlanarPoint, geo.PlanarPoint, error) {
	thr, err := b.proj.ToPlanar(in.Threshold.Latitude, in.Threshold.Longitude)
	if err != nil {
		return geo.PlanarPoint{}, geo.PlanarPoint{}, fmt.Errorf("threshold: %w", err)
	}
	end, err := b.proj.ToPlanar(in.End.Latitude, in.End.Longitude)
	if err != nil {
		return geo.PlanarPoint{}, geo.PlanarPoint{}, fmt.Errorf("runway end: %w", err)
	}
	if thr == end {
		return geo.PlanarPoint{}, geo.PlanarPoint{}, &ValidationError{
			Field: "end", Value: in.End.Latitude, Reason: "coincides with threshold",
		}
	}
	return thr, end, nil
}

func (b *Builder) unproject(corners []elevated) ([]geo.GeoPoint, error) {
	out := make([]geo.GeoPoint, 0, len(corners)+1)
	for i, c := range corners {
		g, err := b.proj.ToGeographic(c.p.X, c.p.Y)
		if err != nil {
			return nil, fmt.Errorf("corner %d: %w", i, err)
		}
		out = append(out, g.WithElevation(c.elev))
	}
	return append(out, out[0]), nil
}
