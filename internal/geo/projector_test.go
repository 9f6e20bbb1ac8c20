package geo

import (
	"errors"
	"math"
	"testing"
)

func TestNZTMFalseOrigin(t *testing.T) {
	p, err := NZTM()
	if err != nil {
		t.Fatalf("NZTM: %v", err)
	}

	xy, err := p.ToPlanar(0, 173)
	if err != nil {
		t.Fatalf("ToPlanar: %v", err)
	}
	if math.Abs(xy.X-1600000) > 1e-3 || math.Abs(xy.Y-10000000) > 1e-3 {
		t.Errorf("central meridian on equator: got (%.4f, %.4f), expected (1600000, 10000000)", xy.X, xy.Y)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	p, err := NZTM()
	if err != nil {
		t.Fatalf("NZTM: %v", err)
	}

	// whole operational box, edges included
	for i := 0; i <= 27; i++ {
		lat := -47.5 + float64(i)*0.5
		for j := 0; j <= 26; j++ {
			lng := 166.0 + float64(j)*0.5
			xy, err := p.ToPlanar(lat, lng)
			if err != nil {
				t.Fatalf("ToPlanar(%v, %v): %v", lat, lng, err)
			}
			back, err := p.ToGeographic(xy.X, xy.Y)
			if err != nil {
				t.Fatalf("ToGeographic(%v, %v): %v", xy.X, xy.Y, err)
			}
			if math.Abs(back.Latitude-lat) > 1e-6 || math.Abs(back.Longitude-lng) > 1e-6 {
				t.Errorf("(%v, %v): round trip gave (%.9f, %.9f)", lat, lng, back.Latitude, back.Longitude)
			}

			again, err := p.ToPlanar(back.Latitude, back.Longitude)
			if err != nil {
				t.Fatalf("ToPlanar(%v, %v): %v", back.Latitude, back.Longitude, err)
			}
			if d := math.Hypot(again.X-xy.X, again.Y-xy.Y); d > 1e-3 {
				t.Errorf("(%v, %v): planar drift %.6f m", lat, lng, d)
			}
		}
	}
}

func TestProjectionOrientation(t *testing.T) {
	p, err := NZTM()
	if err != nil {
		t.Fatalf("NZTM: %v", err)
	}

	a, _ := p.ToPlanar(-43.0, 172.0)
	east, _ := p.ToPlanar(-43.0, 172.01)
	south, _ := p.ToPlanar(-43.01, 172.0)

	if east.X <= a.X {
		t.Errorf("easting should grow eastward: %v -> %v", a.X, east.X)
	}
	if south.Y >= a.Y {
		t.Errorf("northing should shrink southward: %v -> %v", a.Y, south.Y)
	}
	if d := a.Y - south.Y; math.Abs(d-1111) > 15 {
		t.Errorf("0.01 degree of latitude should be about 1111 m, got %.1f", d)
	}
}

func TestProjectionRejectsNonFinite(t *testing.T) {
	p, err := NZTM()
	if err != nil {
		t.Fatalf("NZTM: %v", err)
	}

	if _, err := p.ToPlanar(math.NaN(), 172); !errors.Is(err, ErrNonFinite) {
		t.Errorf("NaN latitude: expected ErrNonFinite, got %v", err)
	}
	if _, err := p.ToPlanar(-43, math.Inf(1)); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Inf longitude: expected ErrNonFinite, got %v", err)
	}
	if _, err := p.ToPlanar(-93, 172); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("latitude -93: expected ErrOutOfRange, got %v", err)
	}
	if _, err := p.ToGeographic(math.NaN(), 5e6); !errors.Is(err, ErrNonFinite) {
		t.Errorf("NaN easting: expected ErrNonFinite, got %v", err)
	}
}

func TestGridBearing(t *testing.T) {
	o := PlanarPoint{}
	for _, tc := range []struct {
		to   PlanarPoint
		want float64
	}{
		{PlanarPoint{0, 10}, 0},
		{PlanarPoint{10, 0}, 90},
		{PlanarPoint{0, -10}, 180},
		{PlanarPoint{-10, 0}, 270},
	} {
		if got := GridBearing(o, tc.to); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("bearing to %v: got %v, expected %v", tc.to, got, tc.want)
		}
	}

	if got := NormalizeBearing(-90); got != 270 {
		t.Errorf("NormalizeBearing(-90) = %v", got)
	}
}
