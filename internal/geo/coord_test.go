package geo

import (
	"errors"
	"math"
	"testing"
)

func TestParseCoordinate(t *testing.T) {
	type testCase struct {
		str    string
		want   float64
		format string
	}

	for _, tc := range []testCase{
		{str: "43.5", want: 43.5, format: "decimal"},
		{str: "-43.5", want: -43.5, format: "decimal"},
		{str: "+172.25", want: 172.25, format: "decimal"},
		{str: "  43.5  ", want: 43.5, format: "decimal"},
		{str: "43.5S", want: -43.5, format: "decimal-hemisphere"},
		{str: "S 43.5", want: -43.5, format: "decimal-hemisphere"},
		{str: "172.5 e", want: 172.5, format: "decimal-hemisphere"},
		{str: "W075.5", want: -75.5, format: "decimal-hemisphere"},
		{str: `43°30'15.5"S`, want: -(43 + 30.0/60 + 15.5/3600), format: "dms"},
		{str: "S43° 30' 15.5\"", want: -(43 + 30.0/60 + 15.5/3600), format: "dms"},
		{str: "172 32 06 E", want: 172 + 32.0/60 + 6.0/3600, format: "dms"},
		{str: "43:30:15", want: 43 + 30.0/60 + 15.0/3600, format: "dms"},
		{str: "43 30.1234S", want: -(43 + 30.1234/60), format: "dmm"},
		{str: "172°32.5'E", want: 172 + 32.5/60, format: "dmm"},
		{str: "433015.5S", want: -43.504306, format: "compact-dms"},
		{str: "S433015.5", want: -43.504306, format: "compact-dms"},
		{str: "1723206E", want: 172 + 32.0/60 + 6.0/3600, format: "compact-dms"},
		{str: "4330.1234S", want: -(43 + 30.1234/60), format: "compact-dmm"},
		{str: "17232.5E", want: 172 + 32.5/60, format: "compact-dmm"},
	} {
		r, format, err := ParseCoordinateFormat(tc.str)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.str, err)
			continue
		}
		if math.Abs(r.Degrees-tc.want) > 1e-6 {
			t.Errorf("%q: got %.9f, expected %.9f", tc.str, r.Degrees, tc.want)
		}
		if format != tc.format {
			t.Errorf("%q: matched %s, expected %s", tc.str, format, tc.format)
		}
	}
}

func TestParseCoordinateExactDecimal(t *testing.T) {
	v, err := ParseCoordinate("43.5")
	if err != nil {
		t.Fatal(err)
	}
	if v != 43.5 {
		t.Errorf("got %v, expected exactly 43.5", v)
	}
}

func TestParseCoordinateInvalid(t *testing.T) {
	for _, invalid := range []string{
		"",
		"   ",
		"abc",
		"N43.5S",
		"-43.5N",
		"43°75'00\"S",
		"43 30 75",
		"4375.0S",
		"12345678",
		"1e5",
		"NaN",
		"43.5X",
	} {
		v, err := ParseCoordinate(invalid)
		if err == nil {
			t.Errorf("%q: no error was returned, got %v", invalid, v)
			continue
		}
		if !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("%q: expected ErrInvalidCoordinate, got %v", invalid, err)
		}
	}
}

func TestParseAxis(t *testing.T) {
	if _, err := ParseLatitude("172.5E"); err == nil {
		t.Errorf("latitude with E hemisphere should fail")
	}
	if _, err := ParseLongitude("43.5S"); err == nil {
		t.Errorf("longitude with S hemisphere should fail")
	}
	if _, err := ParseLatitude("95.0"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("latitude 95: expected ErrOutOfRange, got %v", err)
	}
	if v, err := ParseLongitude("172.5"); err != nil || v != 172.5 {
		t.Errorf("longitude 172.5: got %v, %v", v, err)
	}
	if v, err := ParseLatitude("433015.5S"); err != nil || math.Abs(v+43.504306) > 1e-6 {
		t.Errorf("latitude 433015.5S: got %v, %v", v, err)
	}
}

func TestFormatDMS(t *testing.T) {
	for _, tc := range []struct {
		deg   float64
		isLat bool
		want  string
	}{
		{-(43 + 30.0/60 + 15.5/3600), true, `43° 30' 15.500"S`},
		{172 + 32.0/60 + 6.25/3600, false, `172° 32' 6.25"E`},
		{5.5, true, `05° 30' 0.000"N`},
		{-7.25, false, `007° 15' 0.00"W`},
		{-(10 + 59.0/60 + 59.9999/3600), true, `11° 00' 0.000"S`},
	} {
		if got := FormatDMS(tc.deg, tc.isLat); got != tc.want {
			t.Errorf("FormatDMS(%v, %v) = %s, expected %s", tc.deg, tc.isLat, got, tc.want)
		}
	}
}
