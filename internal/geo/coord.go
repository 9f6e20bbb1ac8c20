package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidCoordinate is returned when no coordinate format matches the input.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Reading is the outcome of a successful format match.
// Hemisphere is 'N', 'S', 'E', 'W' or zero when only a sign (or nothing) was given.
type Reading struct {
	Degrees    float64
	Hemisphere byte
}

// CoordinateFormat is one textual latitude/longitude notation.
type CoordinateFormat interface {
	Name() string
	TryParse(s string) (Reading, bool)
}

// Formats lists the supported notations in match priority order.
var Formats = []CoordinateFormat{
	&regexFormat{
		name: "decimal",
		re:   regexp.MustCompile(`^([+-])?(\d{1,3}(?:\.\d+)?)$`),
		read: func(m []string) (float64, string, string, bool) {
			v, err := strconv.ParseFloat(m[2], 64)
			return v, m[1], "", err == nil
		},
	},
	&regexFormat{
		name: "decimal-hemisphere",
		re:   regexp.MustCompile(`(?i)^([NSEW+-])?\s*(\d{1,3}(?:\.\d+)?)\s*([NSEW])?$`),
		read: func(m []string) (float64, string, string, bool) {
			v, err := strconv.ParseFloat(m[2], 64)
			return v, m[1], m[3], err == nil
		},
	},
	&regexFormat{
		name: "dms",
		re: regexp.MustCompile(`(?i)^([NSEW+-])?\s*(\d{1,3})\s*(?:[°º˚d:]\s*|\s+)` +
			`(\d{1,2})\s*(?:['′’:]\s*|\s+)` +
			`(\d{1,2}(?:\.\d+)?)\s*(?:["″”]|'')?\s*([NSEW])?$`),
		read: func(m []string) (float64, string, string, bool) {
			v, ok := sexagesimal(m[2], m[3], m[4])
			return v, m[1], m[5], ok
		},
	},
	&regexFormat{
		name: "dmm",
		re: regexp.MustCompile(`(?i)^([NSEW+-])?\s*(\d{1,3})\s*(?:[°º˚d:]\s*|\s+)` +
			`(\d{1,2}(?:\.\d+)?)\s*['′’]?\s*([NSEW])?$`),
		read: func(m []string) (float64, string, string, bool) {
			v, ok := sexagesimal(m[2], m[3], "")
			return v, m[1], m[4], ok
		},
	},
	&compactFormat{name: "compact-dms", seconds: true},
	&compactFormat{name: "compact-dmm", seconds: false},
}

var reCompact = regexp.MustCompile(`(?i)^([NSEW+-])?\s*(\d{4,7})(\.\d+)?\s*([NSEW])?$`)

type regexFormat struct {
	name string
	re   *regexp.Regexp
	// read returns magnitude, leading indicator and trailing hemisphere.
	read func(m []string) (float64, string, string, bool)
}

func (f *regexFormat) Name() string { return f.name }

func (f *regexFormat) TryParse(s string) (Reading, bool) {
	m := f.re.FindStringSubmatch(s)
	if m == nil {
		return Reading{}, false
	}
	v, lead, trail, ok := f.read(m)
	if !ok {
		return Reading{}, false
	}
	return applyHemisphere(v, lead, trail)
}

// compactFormat handles digit runs without delimiters. The length of the
// integer part decides the split: 6-7 digits are DMS, 4-5 digits are DMM,
// with degrees taking the leading 2 or 3 digits.
type compactFormat struct {
	name    string
	seconds bool
}

func (f *compactFormat) Name() string { return f.name }

func (f *compactFormat) TryParse(s string) (Reading, bool) {
	m := reCompact.FindStringSubmatch(s)
	if m == nil {
		return Reading{}, false
	}
	digits, frac := m[2], m[3]
	n := len(digits)

	var v float64
	var ok bool
	if f.seconds {
		if n < 6 {
			return Reading{}, false
		}
		v, ok = sexagesimal(digits[:n-4], digits[n-4:n-2], digits[n-2:]+frac)
	} else {
		if n > 5 {
			return Reading{}, false
		}
		v, ok = sexagesimal(digits[:n-2], digits[n-2:]+frac, "")
	}
	if !ok {
		return Reading{}, false
	}

	return applyHemisphere(v, m[1], m[4])
}

// sexagesimal combines degree, minute and second strings. Empty parts are zero.
func sexagesimal(deg, min, sec string) (float64, bool) {
	parse := func(s string) (float64, bool) {
		if s == "" {
			return 0, true
		}
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	}

	d, ok1 := parse(deg)
	m, ok2 := parse(min)
	sc, ok3 := parse(sec)
	if !ok1 || !ok2 || !ok3 {
		return 0, false
	}
	if d > 180 || m >= 60 || sc >= 60 {
		return 0, false
	}

	return d + m/60 + sc/3600, true
}

// applyHemisphere signs the magnitude. A leading sign counts as a hemisphere;
// contradicting indicators (e.g. "N43S" or "-43N") fail the match.
func applyHemisphere(v float64, lead, trail string) (Reading, bool) {
	if v > 180 {
		return Reading{}, false
	}
	lead = strings.ToUpper(lead)
	trail = strings.ToUpper(trail)

	var hemi byte
	negative := false
	seen := false

	for _, ind := range []string{lead, trail} {
		if ind == "" {
			continue
		}
		neg := ind == "-" || ind == "S" || ind == "W"
		if seen && neg != negative {
			return Reading{}, false
		}
		if ind != "+" && ind != "-" {
			if hemi != 0 && hemi != ind[0] {
				return Reading{}, false
			}
			hemi = ind[0]
		}
		negative = neg
		seen = true
	}

	if negative {
		v = -v
	}
	return Reading{Degrees: v, Hemisphere: hemi}, true
}

// ParseCoordinateFormat parses text and reports the matching format name.
func ParseCoordinateFormat(text string) (Reading, string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Reading{}, "", fmt.Errorf("empty string: %w", ErrInvalidCoordinate)
	}

	for _, f := range Formats {
		if r, ok := f.TryParse(s); ok {
			return r, f.Name(), nil
		}
	}

	return Reading{}, "", fmt.Errorf("%q: %w", text, ErrInvalidCoordinate)
}

// ParseCoordinate parses a latitude or longitude string to decimal degrees.
func ParseCoordinate(text string) (float64, error) {
	r, _, err := ParseCoordinateFormat(text)
	if err != nil {
		return 0, err
	}
	return r.Degrees, nil
}

// ParseLatitude parses text and rejects E/W hemispheres and values beyond ±90.
func ParseLatitude(text string) (float64, error) {
	return parseAxis(text, 'E', 'W', 90)
}

// ParseLongitude parses text and rejects N/S hemispheres and values beyond ±180.
func ParseLongitude(text string) (float64, error) {
	return parseAxis(text, 'N', 'S', 180)
}

func parseAxis(text string, bad1, bad2 byte, limit float64) (float64, error) {
	r, _, err := ParseCoordinateFormat(text)
	if err != nil {
		return 0, err
	}
	if r.Hemisphere == bad1 || r.Hemisphere == bad2 {
		return 0, fmt.Errorf("%q: wrong hemisphere %c: %w", text, r.Hemisphere, ErrInvalidCoordinate)
	}
	if math.Abs(r.Degrees) > limit {
		return 0, fmt.Errorf("%q: %w", text, ErrOutOfRange)
	}
	return r.Degrees, nil
}

// FormatDMS renders decimal degrees as e.g. 43° 30' 15.500"S.
// Latitudes get 2 degree digits and 3 second decimals, longitudes 3 and 2.
func FormatDMS(deg float64, isLat bool) string {
	hemi := "E"
	width, prec := 3, 2
	if isLat {
		hemi = "N"
		width, prec = 2, 3
		if deg < 0 {
			hemi = "S"
		}
	} else if deg < 0 {
		hemi = "W"
	}

	scale := math.Pow(10, float64(prec))
	total := math.Round(math.Abs(deg)*3600*scale) / scale
	d := math.Floor(total / 3600)
	m := math.Floor((total - d*3600) / 60)
	s := total - d*3600 - m*60

	return fmt.Sprintf("%0*d° %02d' %.*f\"%s", width, int(d), int(m), prec, s, hemi)
}
