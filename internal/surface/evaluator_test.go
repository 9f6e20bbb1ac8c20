package surface

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/woozymasta/aerosurf/internal/geo"
)

// flat maps latitude to Y and longitude to X unchanged.
type flat struct{}

func (flat) ToPlanar(lat, lng float64) (geo.PlanarPoint, error) {
	return geo.PlanarPoint{X: lng, Y: lat}, nil
}

func (flat) ToGeographic(x, y float64) (geo.GeoPoint, error) {
	return geo.GeoPoint{Latitude: y, Longitude: x}, nil
}

// scaled maps one degree to 100 planar meters on both axes.
type scaled struct{}

func (scaled) ToPlanar(lat, lng float64) (geo.PlanarPoint, error) {
	return geo.PlanarPoint{X: lng * 100, Y: lat * 100}, nil
}

func (scaled) ToGeographic(x, y float64) (geo.GeoPoint, error) {
	return geo.GeoPoint{Latitude: y / 100, Longitude: x / 100}, nil
}

// trapezoid returns a surface whose planar base, under scaled, runs along
// y=0 from x=-10 to x=10 at elevation 0 and whose far edge runs along y=-100
// from x=-30 to x=30 at 50.
func trapezoid(t *testing.T, kind Kind) Polygon {
	t.Helper()
	var triples [][3]float64
	switch kind {
	case VSS:
		// leftBase, leftEnd, rightEnd, rightBase
		triples = [][3]float64{{0, 0.1, 0}, {-1, 0.3, 50}, {-1, -0.3, 50}, {0, -0.1, 0}}
	case DepOIS:
		// baseRight, leftEnd, rightEnd, baseLeft with uneven edges to exercise averaging
		triples = [][3]float64{{0, -0.1, -2}, {-1, -0.3, 48}, {-1, 0.3, 52}, {0, 0.1, 2}}
	}
	poly, err := NewPolygon(kind, triples)
	if err != nil {
		t.Fatal(err)
	}
	return poly
}

func TestEvaluatorCenterline(t *testing.T) {
	for _, kind := range Kinds {
		e, err := NewEvaluator(scaled{}, trapezoid(t, kind))
		if err != nil {
			t.Fatal(err)
		}

		for _, tc := range []struct {
			name string
			p    geo.PlanarPoint
			want float64
		}{
			{"near base", geo.PlanarPoint{X: 0, Y: -0.5}, 0.25},
			{"halfway", geo.PlanarPoint{X: 0, Y: -50}, 25},
			{"halfway lateral", geo.PlanarPoint{X: 15, Y: -50}, 25},
			{"near end", geo.PlanarPoint{X: -20, Y: -99}, 49.5},
		} {
			z, ok := e.ElevationAt(tc.p)
			if !ok {
				t.Errorf("%s %s: undetermined", kind, tc.name)
				continue
			}
			if math.Abs(z-tc.want) > 1e-9 {
				t.Errorf("%s %s: got %v, expected %v", kind, tc.name, z, tc.want)
			}
		}

		for _, p := range []geo.PlanarPoint{
			{X: 0, Y: 5},
			{X: 0, Y: -101},
			{X: 25, Y: -10},
			{X: 1000, Y: 1000},
		} {
			if e.Contains(p) {
				t.Errorf("%s: %v should be outside", kind, p)
			}
			if _, err := e.Sample(p); !errors.Is(err, ErrOutside) {
				t.Errorf("%s: %v expected ErrOutside, got %v", kind, p, err)
			}
		}
	}
}

func TestEvaluatorMidpoints(t *testing.T) {
	e, err := NewEvaluator(scaled{}, trapezoid(t, DepOIS))
	if err != nil {
		t.Fatal(err)
	}
	if b := e.BaseMidpoint(); b.X != 0 || b.Y != 0 || b.Z != 0 {
		t.Errorf("base midpoint: got %v", b)
	}
	if m := e.EndMidpoint(); m.X != 0 || m.Y != -100 || m.Z != 50 {
		t.Errorf("end midpoint: got %v", m)
	}

	v, err := NewEvaluator(scaled{}, trapezoid(t, VSS))
	if err != nil {
		t.Fatal(err)
	}
	if b := v.BaseMidpoint(); b.Z != 0 {
		t.Errorf("vss base elevation: got %v", b.Z)
	}
}

func TestEvaluatorInterpolationModes(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		mode Interpolation
		p    geo.PlanarPoint
		want float64
	}{
		{VSS, PlaneFit, geo.PlanarPoint{X: 0, Y: -50}, 25},
		{VSS, PlaneFit, geo.PlanarPoint{X: 12, Y: -40}, 20},
		// tilted plane through (-10,0,-2), (-30,-100,48) and (30,-100,52)
		{DepOIS, PlaneFit, geo.PlanarPoint{X: 0, Y: -50}, 73.0 / 3},
		{DepOIS, PlaneFit, geo.PlanarPoint{X: -10, Y: -0.5}, -2 + 0.5*154.0/300},
		{VSS, Bilinear, geo.PlanarPoint{X: 0, Y: -0.001}, 0.0005},
		{VSS, Bilinear, geo.PlanarPoint{X: 0, Y: -99.999}, 49.9995},
	} {
		e, err := NewEvaluator(scaled{}, trapezoid(t, tc.kind), WithInterpolation(tc.mode))
		if err != nil {
			t.Fatal(err)
		}
		if e.Interpolation() != tc.mode {
			t.Errorf("mode not applied: %v", e.Interpolation())
		}
		z, ok := e.ElevationAt(tc.p)
		if !ok {
			t.Errorf("%s %v %v: undetermined", tc.kind, tc.mode, tc.p)
			continue
		}
		if math.Abs(z-tc.want) > 1e-6 {
			t.Errorf("%s %v %v: got %v, expected %v", tc.kind, tc.mode, tc.p, z, tc.want)
		}
	}
}

func TestEvaluatorDegenerate(t *testing.T) {
	// base and end midpoints coincide, leaving no centerline direction
	poly, err := NewPolygon(VSS, [][3]float64{{0, -1, 0}, {1, 0, 10}, {-1, 0, 10}, {0, 1, 0}})
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEvaluator(flat{}, poly)
	if err != nil {
		t.Fatal(err)
	}

	p := geo.PlanarPoint{X: -0.3, Y: 0.1}
	if !e.Contains(p) {
		t.Fatalf("%v should be inside", p)
	}
	if _, err := e.Sample(p); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
	if _, ok := e.ElevationAt(p); ok {
		t.Errorf("degenerate centerline must be undetermined")
	}
}

func TestEvaluatorBuiltSurface(t *testing.T) {
	p := nztm(t)
	in := vssInput()
	poly, err := NewBuilder(p).VSS(in)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEvaluator(p, poly)
	if err != nil {
		t.Fatal(err)
	}

	base, end := e.BaseMidpoint(), e.EndMidpoint()
	br := geo.DegToRad(poly.Bearing)

	inside := base.XY().Offset(br, -0.5)
	z, ok := e.ElevationAt(inside)
	if !ok {
		t.Fatal("point just inside the base is undetermined")
	}
	if math.Abs(z-10) > 0.05 {
		t.Errorf("near base: got %v, expected about 10", z)
	}

	half := base.XY().Midpoint(end.XY())
	z, ok = e.ElevationAt(half)
	if !ok || math.Abs(z-86.2) > 0.01 {
		t.Errorf("halfway: got %v (%v), expected 86.2", z, ok)
	}

	if e.Contains(end.XY().Offset(br, -10)) {
		t.Errorf("point beyond the far edge should be outside")
	}
}

func TestPolygon(t *testing.T) {
	if _, err := NewPolygon(VSS, [][3]float64{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}); !errors.Is(err, ErrMalformedPolygon) {
		t.Errorf("three vertices: expected ErrMalformedPolygon, got %v", err)
	}
	if _, err := NewPolygon(VSS, [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {5, 5, 0}}); !errors.Is(err, ErrMalformedPolygon) {
		t.Errorf("open five vertex ring: expected ErrMalformedPolygon, got %v", err)
	}
	if _, err := NewPolygon(VSS, [][3]float64{{0, 0, math.NaN()}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}); !errors.Is(err, ErrMalformedPolygon) {
		t.Errorf("nan elevation: expected ErrMalformedPolygon, got %v", err)
	}

	poly := trapezoid(t, DepOIS)
	if poly.BaseElevation() != 0 || poly.EndElevation() != 50 {
		t.Errorf("dep ois edges: got %v / %v, expected 0 / 50", poly.BaseElevation(), poly.EndElevation())
	}

	b, err := json.Marshal(poly)
	if err != nil {
		t.Fatal(err)
	}
	var back Polygon
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	if back.Kind != DepOIS || len(back.Vertices) != 5 || back.Vertices[2] != poly.Vertices[2] {
		t.Errorf("round trip mismatch: %s", b)
	}
}

func TestParseKind(t *testing.T) {
	for s, want := range map[string]Kind{"vss": VSS, "VSS": VSS, "dep_ois": DepOIS, "DEP-OIS": DepOIS} {
		got, err := ParseKind(s)
		if err != nil || got != want {
			t.Errorf("%q: got %v, %v", s, got, err)
		}
	}
	if _, err := ParseKind("toda"); err == nil {
		t.Errorf("unknown kind accepted")
	}
}
