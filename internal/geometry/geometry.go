// Package geometry contains the planar kernel used to evaluate surfaces:
// point-in-polygon membership and elevation interpolation.
package geometry

import (
	"math"

	"github.com/woozymasta/aerosurf/internal/geo"

	"github.com/paulmach/orb"
)

const (
	// edgeEpsilon keeps the ray-casting division finite on horizontal edges.
	edgeEpsilon = 1e-12
	// degenerateEpsilon is the determinant magnitude below which a solve is refused.
	degenerateEpsilon = 1e-8
)

// Point3 is a planar position with an elevation.
type Point3 struct {
	X, Y, Z float64
}

// XY drops the elevation.
func (p Point3) XY() geo.PlanarPoint {
	return geo.PlanarPoint{X: p.X, Y: p.Y}
}

// PointInPolygon reports whether p lies inside ring using the even-odd rule.
// The ring may be open or closed. Points exactly on an edge may go either way.
func PointInPolygon(p geo.PlanarPoint, ring []geo.PlanarPoint) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y

		if (yi > p.Y) != (yj > p.Y) &&
			p.X < (xj-xi)*(p.Y-yi)/(yj-yi+edgeEpsilon)+xi {
			inside = !inside
		}
	}
	return inside
}

// Bounds returns the axis aligned bounding box of a planar ring.
func Bounds(ring []geo.PlanarPoint) orb.Bound {
	mp := make(orb.MultiPoint, len(ring))
	for i, p := range ring {
		mp[i] = orb.Point{p.X, p.Y}
	}
	return mp.Bound()
}

// PlaneFitZ returns the elevation at (x, y) of the plane through p0, p1 and p2.
// It solves z = a*x + b*y + c with Cramer's rule and fails for collinear points.
func PlaneFitZ(x, y float64, p0, p1, p2 Point3) (float64, bool) {
	det := det3(
		p0.X, p0.Y, 1,
		p1.X, p1.Y, 1,
		p2.X, p2.Y, 1,
	)
	if math.Abs(det) < degenerateEpsilon {
		return 0, false
	}

	a := det3(
		p0.Z, p0.Y, 1,
		p1.Z, p1.Y, 1,
		p2.Z, p2.Y, 1,
	) / det
	b := det3(
		p0.X, p0.Z, 1,
		p1.X, p1.Z, 1,
		p2.X, p2.Z, 1,
	) / det
	c := det3(
		p0.X, p0.Y, p0.Z,
		p1.X, p1.Y, p1.Z,
		p2.X, p2.Y, p2.Z,
	) / det

	return a*x + b*y + c, true
}

func det3(a, b, c, d, e, f, g, h, i float64) float64 {
	return a*(e*i-h*f) - b*(d*i-g*f) + c*(d*h-g*e)
}

// BilinearZ interpolates over quad [A, B, C, D]. (u, v) are solved in the
// parallelogram basis A->B, A->D and clamped to [0, 1], so points outside the
// quad take the elevation of the nearest edge instead of being extrapolated.
func BilinearZ(x, y float64, quad [4]Point3) (float64, bool) {
	a, b, c, d := quad[0], quad[1], quad[2], quad[3]

	abx, aby := b.X-a.X, b.Y-a.Y
	adx, ady := d.X-a.X, d.Y-a.Y
	apx, apy := x-a.X, y-a.Y

	det := abx*ady - aby*adx
	if math.Abs(det) < degenerateEpsilon {
		return 0, false
	}

	u := clamp01((apx*ady - apy*adx) / det)
	v := clamp01((abx*apy - aby*apx) / det)

	z := (1-u)*(1-v)*a.Z +
		u*(1-v)*b.Z +
		u*v*c.Z +
		(1-u)*v*d.Z
	return z, true
}

// BarycentricZ interpolates the elevation of (x, y) over triangle p0, p1, p2.
func BarycentricZ(x, y float64, p0, p1, p2 Point3) (float64, bool) {
	denom := (p1.Y-p2.Y)*(p0.X-p2.X) + (p2.X-p1.X)*(p0.Y-p2.Y)
	if math.Abs(denom) < degenerateEpsilon {
		return 0, false
	}

	w1 := ((p1.Y-p2.Y)*(x-p2.X) + (p2.X-p1.X)*(y-p2.Y)) / denom
	w2 := ((p2.Y-p0.Y)*(x-p2.X) + (p0.X-p2.X)*(y-p2.Y)) / denom
	w3 := 1 - w1 - w2

	return w1*p0.Z + w2*p1.Z + w3*p2.Z, true
}

// CenterlineZ projects (x, y) onto the base->end segment and interpolates
// linearly between the two elevations. The fraction is clamped to [0, 1].
// Lateral position is ignored. A zero length centerline has no direction
// and yields false.
func CenterlineZ(x, y float64, base, end Point3) (float64, bool) {
	dx, dy := end.X-base.X, end.Y-base.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return 0, false
	}

	t := clamp01(((x-base.X)*dx + (y-base.Y)*dy) / lengthSq)
	if t == 0 {
		return base.Z, true
	}
	if t == 1 {
		return end.Z, true
	}
	return base.Z + (end.Z-base.Z)*t, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
