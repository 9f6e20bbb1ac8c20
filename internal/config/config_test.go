package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/obstacle"
	"github.com/woozymasta/aerosurf/internal/runway"
	"github.com/woozymasta/aerosurf/internal/surface"
)

const sampleConfig = `
runways: runways.csv
interpolation: plane-fit
obstacles:
  source: obstacles.csv
  columns: {name: Name, lat: Lat, lng: Lng, elev: "3"}
surfaces:
  - name: NZCH 02 VSS
    kind: vss
    aerodrome: NZCH
    runway: THR 02
    strip_width: 280
    och_ft: 500
    vpa: 3
  - name: custom DEP
    kind: dep_ois
    threshold: {lat: "43 29 22.55S", lng: "172 31 35.14E", elev: 37.5}
    end: {lat: -43.5131, lng: 172.5456, elev: 32.1}
    clearway: 60
`

const runwaysCSV = `designator,a,b,elevation,c,latitude,longitude,d,e,f,g,h,i,j,k,l,icao
THR 02,,,37.5,,-43.4896,172.5264,,,,,,,,,,NZCH
THR 20,,,32.1,,-43.5131,172.5456,,,,,,,,,,NZCH
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Workers != DefaultWorkers || cfg.Interpolation != surface.PlaneFit {
		t.Errorf("defaults: got workers %d, interpolation %v", cfg.Workers, cfg.Interpolation)
	}
	want := obstacle.Columns{Name: "Name", Latitude: "Lat", Longitude: "Lng", Elevation: "3"}
	if cfg.Columns() != want {
		t.Errorf("columns: got %+v", cfg.Columns())
	}
	if len(cfg.Surfaces) != 2 || cfg.Surfaces[1].Kind != surface.DepOIS {
		t.Fatalf("surfaces: got %+v", cfg.Surfaces)
	}
	if _, ok := cfg.Find("NZCH 02 VSS"); !ok {
		t.Errorf("surface not found by name")
	}
}

func TestInput(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	dir, err := runway.Load(strings.NewReader(runwaysCSV))
	if err != nil {
		t.Fatal(err)
	}

	vss, err := cfg.Surfaces[0].Input(dir)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(vss.OCH-152.4) > 1e-9 {
		t.Errorf("och: got %v, expected 152.4", vss.OCH)
	}
	if vss.Threshold.Elevation != 37.5 || vss.End.Latitude != -43.5131 {
		t.Errorf("runway lookup: got %+v / %+v", vss.Threshold, vss.End)
	}
	if err := vss.Validate(surface.VSS); err != nil {
		t.Errorf("resolved input invalid: %v", err)
	}

	dep, err := cfg.Surfaces[1].Input(nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dep.Threshold.Latitude+(43+29.0/60+22.55/3600)) > 1e-9 || dep.ClearwayLength != 60 {
		t.Errorf("explicit points: got %+v", dep)
	}

	if _, err := cfg.Surfaces[0].Input(nil); err == nil {
		t.Errorf("lookup without a directory succeeded")
	}

	missing := cfg.Surfaces[0]
	missing.Runway = "07"
	if _, err := missing.Input(dir); !errors.Is(err, runway.ErrNotFound) {
		t.Errorf("missing runway: got %v", err)
	}

	bad := cfg.Surfaces[1]
	bad.Threshold = &Point{Latitude: "43 29 22.55E", Longitude: "172E"}
	if _, err := bad.Input(nil); !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Errorf("bad hemisphere: got %v", err)
	}

	noElev := cfg.Surfaces[1]
	noElev.End = &Point{Latitude: "-43.5131", Longitude: "172.5456"}
	var verr *surface.ValidationError
	if _, err := noElev.Input(nil); !errors.As(err, &verr) || verr.Field != "end.elev" {
		t.Errorf("missing elevation: got %v", err)
	}
}

func TestValidate(t *testing.T) {
	for name, doc := range map[string]string{
		"no name":     "surfaces: [{kind: vss, aerodrome: X, runway: '02'}]\nrunways: r.csv",
		"duplicate":   "runways: r.csv\nsurfaces: [{name: a, kind: vss, aerodrome: X, runway: '02'}, {name: a, kind: vss, aerodrome: X, runway: '20'}]",
		"no kind":     "runways: r.csv\nsurfaces: [{name: a, aerodrome: X, runway: '02'}]",
		"bad kind":    "runways: r.csv\nsurfaces: [{name: a, kind: ils, aerodrome: X, runway: '02'}]",
		"no location": "surfaces: [{name: a, kind: vss}]",
		"no runways":  "surfaces: [{name: a, kind: vss, aerodrome: X, runway: '02'}]",
		"two och":     "runways: r.csv\nsurfaces: [{name: a, kind: vss, aerodrome: X, runway: '02', och_m: 100, och_ft: 300}]",
		"bad interp":  "interpolation: spline\nsurfaces: []",
		"no elev":     "surfaces: [{name: a, kind: vss, threshold: {lat: '-43', lng: '172', elev: 10}, end: {lat: '-43.01', lng: '172'}}]",
	} {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestProjector(t *testing.T) {
	cfg := &Config{}
	p, err := cfg.Projector()
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition() != geo.NZTMDefinition {
		t.Errorf("default projection: got %s", p.Definition())
	}
}
