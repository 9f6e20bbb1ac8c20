package processor

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/obstacle"
	"github.com/woozymasta/aerosurf/internal/surface"

	"github.com/google/uuid"
)

// flat maps latitude to Y and longitude to X unchanged.
type flat struct{}

func (flat) ToPlanar(lat, lng float64) (geo.PlanarPoint, error) {
	return geo.PlanarPoint{X: lng, Y: lat}, nil
}

func (flat) ToGeographic(x, y float64) (geo.GeoPoint, error) {
	return geo.GeoPoint{Latitude: y, Longitude: x}, nil
}

// flatSurface is a VSS whose base runs along y=0 (x ±10, elevation 0) and
// whose far edge runs along y=-50 (x ±30, elevation 50).
func flatSurface(t *testing.T) *Classifier {
	t.Helper()
	poly, err := surface.NewPolygon(surface.VSS, [][3]float64{
		{0, 10, 0}, {-50, 30, 50}, {-50, -30, 50}, {0, -10, 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClassifier("flat", flat{}, poly)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func at(name string, x, y, elev float64) obstacle.Obstacle {
	return obstacle.Obstacle{Name: name, Position: geo.GeoPoint{Latitude: y, Longitude: x, Elevation: elev}}
}

func TestClassifyScenario(t *testing.T) {
	proj, err := geo.NZTM()
	if err != nil {
		t.Fatal(err)
	}

	poly, err := surface.NewBuilder(proj).VSS(surface.RunwayInput{
		Threshold:         geo.GeoPoint{Latitude: -43, Longitude: 172, Elevation: 10},
		End:               geo.GeoPoint{Latitude: -43.01, Longitude: 172, Elevation: 10},
		StripWidth:        280,
		OCH:               152.4,
		VerticalPathAngle: 3,
	})
	if err != nil {
		t.Fatal(err)
	}

	c, err := NewClassifier("NZXX 02", proj, poly)
	if err != nil {
		t.Fatal(err)
	}

	// half a meter inside the base edge, on the centerline
	br := geo.DegToRad(poly.Bearing)
	inside := c.Evaluator().BaseMidpoint().XY().Offset(br, -0.5)
	pos, err := proj.ToGeographic(inside.X, inside.Y)
	if err != nil {
		t.Fatal(err)
	}

	mast := obstacle.Obstacle{Name: "mast", Position: pos.WithElevation(20)}
	r, ok := c.Classify(mast)
	if !ok {
		t.Fatal("obstacle near the base should be inside")
	}
	if r.Classification != Critical {
		t.Errorf("got %v, expected Critical", r.Classification)
	}
	if r.SurfaceElevation == nil || math.Abs(*r.SurfaceElevation-10) > 0.05 {
		t.Errorf("surface elevation: got %v", r.SurfaceElevation)
	}
	if p, ok := r.Penetration(); !ok || math.Abs(p-10) > 0.05 {
		t.Errorf("penetration: got %v, %v", p, ok)
	}

	// one meter above the 10 m base
	eleven := obstacle.Obstacle{Name: "eleven", Position: pos.WithElevation(11)}
	if r, _ := c.Classify(eleven); r.Classification != Critical {
		t.Errorf("11 m obstacle: got %v, expected Critical", r.Classification)
	}

	low := obstacle.Obstacle{Name: "low", Position: pos.WithElevation(5)}
	if r, _ := c.Classify(low); r.Classification != NotCritical {
		t.Errorf("low obstacle: got %v, expected Not critical", r.Classification)
	}

	far := obstacle.Obstacle{Name: "far", Position: geo.GeoPoint{Latitude: -41, Longitude: 174, Elevation: 500}}
	if _, ok := c.Classify(far); ok {
		t.Errorf("distant obstacle should be outside")
	}
}

func TestEvaluateStats(t *testing.T) {
	c := flatSurface(t)

	obstacles := []obstacle.Obstacle{
		at("above", 0, -25, 30),
		at("below", 5, -25, 20),
		at("level", 0, -25, 25),
		at("outside", 100, 0, 1),
		at("broken", math.NaN(), -25, 1),
		at("out of range", 0, -95, 1),
	}

	results, stats := c.Evaluate(obstacles)

	// latitude -95 is not a valid position, so it counts as invalid
	want := Stats{Total: 6, Included: 3, Outside: 1, Invalid: 2, Critical: 1, NotCritical: 2}
	if stats != want {
		t.Errorf("stats: got %+v, expected %+v", stats, want)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	for i, tc := range []struct {
		name string
		c    Classification
	}{
		{"above", Critical},
		{"below", NotCritical},
		{"level", NotCritical},
	} {
		if results[i].Name != tc.name || results[i].Classification != tc.c {
			t.Errorf("result %d: got %s %v, expected %s %v", i, results[i].Name, results[i].Classification, tc.name, tc.c)
		}
		if results[i].Ordinal != i {
			t.Errorf("result %d: ordinal %d", i, results[i].Ordinal)
		}
	}
}

func TestClassifyUndetermined(t *testing.T) {
	// base and end midpoints coincide
	poly, err := surface.NewPolygon(surface.VSS, [][3]float64{{0, -1, 0}, {1, 0, 10}, {-1, 0, 10}, {0, 1, 0}})
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClassifier("degenerate", flat{}, poly)
	if err != nil {
		t.Fatal(err)
	}

	r, ok := c.Classify(at("x", -0.3, 0.1, 1000))
	if !ok {
		t.Fatal("obstacle should be inside")
	}
	if r.Classification != Undetermined || r.SurfaceElevation != nil {
		t.Errorf("got %v with surface %v, expected Undetermined", r.Classification, r.SurfaceElevation)
	}
	if _, ok := r.Penetration(); ok {
		t.Errorf("undetermined result has a penetration")
	}
}

func grid() []obstacle.Obstacle {
	var out []obstacle.Obstacle
	i := 0
	for y := -60.0; y <= 10; y += 1.5 {
		for x := -40.0; x <= 40; x += 2 {
			out = append(out, at("g", x, y, float64(i%60)))
			i++
		}
	}
	return out
}

func TestEvaluateStrategiesAgree(t *testing.T) {
	c := flatSurface(t)
	obstacles := grid()
	if len(obstacles) < IndexThreshold {
		t.Fatalf("grid too small to exercise the index: %d", len(obstacles))
	}

	// reference: one Classify call per obstacle
	var want []Result
	for i, o := range obstacles {
		if r, ok := c.Classify(o); ok {
			r.Ordinal = i
			want = append(want, r)
		}
	}
	if len(want) == 0 {
		t.Fatal("no obstacle inside the surface")
	}

	indexed, stats := c.Evaluate(obstacles)
	if !reflect.DeepEqual(indexed, want) {
		t.Errorf("indexed evaluation differs: %d vs %d results", len(indexed), len(want))
	}
	if stats.Included != len(want) || stats.Included+stats.Outside != stats.Total {
		t.Errorf("indexed stats inconsistent: %+v", stats)
	}

	for _, workers := range []int{1, 2, 8} {
		got, s := c.EvaluateConcurrent(obstacles, workers)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%d workers: results differ", workers)
		}
		if s != stats {
			t.Errorf("%d workers: stats %+v, expected %+v", workers, s, stats)
		}
	}

	again, _ := c.Evaluate(obstacles)
	if !reflect.DeepEqual(again, indexed) {
		t.Errorf("repeated evaluation is not deterministic")
	}
}

func TestRun(t *testing.T) {
	c := flatSurface(t)
	skips := []obstacle.Skip{{Row: 3, Reason: "missing elevation"}}

	report := c.Run([]obstacle.Obstacle{at("a", 0, -25, 30), at("b", 0, -25, 1)}, skips, 4)

	if report.ID == uuid.Nil {
		t.Errorf("report has no id")
	}
	if report.Surface != "flat" || report.Kind != surface.VSS || report.Interpolation != surface.Centerline {
		t.Errorf("unexpected header: %+v", report)
	}
	if report.Stats.Included != 2 || len(report.Skipped) != 1 {
		t.Errorf("unexpected stats %+v / skips %v", report.Stats, report.Skipped)
	}
	if crit := report.Critical(); len(crit) != 1 || crit[0].Name != "a" {
		t.Errorf("critical: got %v", crit)
	}

	other := c.Run(nil, nil, 4)
	if other.ID == report.ID {
		t.Errorf("run ids collide")
	}
}

func TestClassificationText(t *testing.T) {
	for _, c := range []Classification{Undetermined, NotCritical, Critical} {
		b, err := c.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Classification
		if err := back.UnmarshalText(b); err != nil || back != c {
			t.Errorf("%s: got %v, %v", b, back, err)
		}
	}
	if NotCritical.String() != "Not critical" {
		t.Errorf("got %q", NotCritical.String())
	}
}

func TestResultJSONKeys(t *testing.T) {
	c := flatSurface(t)
	r, ok := c.Classify(at("mast", 0, -25, 30))
	if !ok {
		t.Fatal("obstacle should be inside")
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "latitude", "longitude", "planarX", "planarY", "obstacleElevation", "surfaceElevation", "classification"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in %s", key, b)
		}
	}
	if got["classification"] != "Critical" || got["obstacleElevation"] != 30.0 {
		t.Errorf("values: got %s", b)
	}
}
