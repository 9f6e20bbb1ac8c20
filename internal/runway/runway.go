// Package runway provides the aerodrome runway directory used to prefill
// surface inputs from a runways CSV export.
package runway

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/woozymasta/aerosurf/internal/geo"

	"github.com/rs/zerolog/log"
)

// Column layout of the runways export.
const (
	colDesignator = 0
	colElevation  = 3
	colLatitude   = 5
	colLongitude  = 6
	colICAO       = 16
	minColumns    = 17
)

// ErrNotFound is returned when a runway end is not in the directory.
var ErrNotFound = errors.New("runway not found")

var reIdent = regexp.MustCompile(`(?i)(\d{1,2})([A-Z])?$`)

// Runway is one runway end (threshold) of an aerodrome.
type Runway struct {
	ICAO       string       `json:"icao" yaml:"icao"`
	Designator string       `json:"designator" yaml:"designator"`
	Number     int          `json:"number" yaml:"number"`
	Suffix     string       `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Threshold  geo.GeoPoint `json:"threshold" yaml:"threshold"`
}

// Ident returns the short designator such as "02" or "23L".
func (r Runway) Ident() string {
	return fmt.Sprintf("%02d%s", r.Number, r.Suffix)
}

// ParseIdent splits "THR 05G", "RWY 23L" or "5" into number and suffix.
func ParseIdent(s string) (int, string, bool) {
	m := reIdent.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 36 {
		return 0, "", false
	}
	return n, strings.ToUpper(m[2]), true
}

// Directory holds runways grouped by aerodrome in file order.
type Directory struct {
	icaos   []string
	runways map[string][]Runway
}

// Open loads a directory from a CSV file.
func Open(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load parses the runways CSV. The first row is a header. Rows that are too
// short, lack an ICAO code or have unparsable coordinates are ignored.
func Load(r io.Reader) (*Directory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	d := &Directory{runways: make(map[string][]Runway)}

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return d, nil
		}
		return nil, fmt.Errorf("read runways header: %w", err)
	}

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read runways row %d: %w", row, err)
		}
		if len(rec) < minColumns {
			continue
		}

		icao := strings.ToUpper(strings.TrimSpace(rec[colICAO]))
		designator := strings.TrimSpace(rec[colDesignator])
		if icao == "" || designator == "" {
			continue
		}

		rwy, err := parseRow(icao, designator, rec)
		if err != nil {
			log.Warn().Err(err).Int("row", row).Str("icao", icao).Str("runway", designator).Msg("Runway row ignored")
			continue
		}
		d.add(rwy)
	}

	log.Debug().Int("aerodromes", len(d.icaos)).Msg("Runway directory loaded")
	return d, nil
}

func parseRow(icao, designator string, rec []string) (Runway, error) {
	num, suffix, ok := ParseIdent(designator)
	if !ok {
		return Runway{}, fmt.Errorf("bad designator %q", designator)
	}

	lat, err := geo.ParseLatitude(rec[colLatitude])
	if err != nil {
		return Runway{}, err
	}
	lng, err := geo.ParseLongitude(rec[colLongitude])
	if err != nil {
		return Runway{}, err
	}

	var elev float64
	if s := strings.TrimSpace(rec[colElevation]); s != "" {
		if elev, err = strconv.ParseFloat(s, 64); err != nil {
			return Runway{}, fmt.Errorf("bad elevation %q", s)
		}
	}

	return Runway{
		ICAO:       icao,
		Designator: designator,
		Number:     num,
		Suffix:     suffix,
		Threshold:  geo.GeoPoint{Latitude: lat, Longitude: lng, Elevation: elev},
	}, nil
}

func (d *Directory) add(r Runway) {
	list, seen := d.runways[r.ICAO]
	if !seen {
		d.icaos = append(d.icaos, r.ICAO)
	}
	for _, existing := range list {
		if existing.Designator == r.Designator {
			return
		}
	}
	d.runways[r.ICAO] = append(list, r)
}

// ICAOs returns aerodrome codes in first-seen order.
func (d *Directory) ICAOs() []string {
	out := make([]string, len(d.icaos))
	copy(out, d.icaos)
	return out
}

// Runways returns the runway ends of an aerodrome.
func (d *Directory) Runways(icao string) []Runway {
	list := d.runways[strings.ToUpper(strings.TrimSpace(icao))]
	out := make([]Runway, len(list))
	copy(out, list)
	return out
}

// Find looks up a runway end by designator ("THR 02") or ident ("02").
func (d *Directory) Find(icao, designator string) (Runway, error) {
	num, suffix, ok := ParseIdent(designator)
	if !ok {
		return Runway{}, fmt.Errorf("%w: %s %q", ErrNotFound, icao, designator)
	}
	for _, r := range d.Runways(icao) {
		if r.Number == num && r.Suffix == suffix {
			return r, nil
		}
	}
	return Runway{}, fmt.Errorf("%w: %s %s", ErrNotFound, icao, designator)
}

// Opposite returns the reciprocal runway end: heading plus 180 degrees,
// with L and R swapped. When no end carries the expected suffix any end
// with the reciprocal number is returned.
func (d *Directory) Opposite(icao, designator string) (Runway, error) {
	num, suffix, ok := ParseIdent(designator)
	if !ok {
		return Runway{}, fmt.Errorf("%w: %s %q", ErrNotFound, icao, designator)
	}

	opp := (num + 18) % 36
	if opp == 0 {
		opp = 36
	}
	want := suffix
	switch suffix {
	case "L":
		want = "R"
	case "R":
		want = "L"
	}

	var fallback *Runway
	for _, r := range d.Runways(icao) {
		if r.Number != opp {
			continue
		}
		if r.Suffix == want {
			return r, nil
		}
		if fallback == nil {
			r := r
			fallback = &r
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return Runway{}, fmt.Errorf("%w: opposite of %s %s", ErrNotFound, icao, designator)
}
