package obstacle

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/woozymasta/aerosurf/internal/geo"

	"github.com/rs/zerolog/log"
)

// Columns maps obstacle fields to CSV columns. Each entry is a zero based
// index ("3"), a spreadsheet letter ("D") or a header name ("Elevation").
type Columns struct {
	Name      string `json:"name" yaml:"name"`
	Latitude  string `json:"lat" yaml:"lat"`
	Longitude string `json:"lng" yaml:"lng"`
	Elevation string `json:"elev" yaml:"elev"`
}

// DefaultColumns is the A-D layout: name, latitude, longitude, elevation.
var DefaultColumns = Columns{Name: "A", Latitude: "B", Longitude: "C", Elevation: "D"}

type columnIndex struct {
	name, lat, lng, elev int
}

func (c Columns) resolve(header []string) (columnIndex, error) {
	var (
		idx columnIndex
		err error
	)
	fields := []struct {
		label string
		ref   string
		dst   *int
	}{
		{"name", c.Name, &idx.name},
		{"latitude", c.Latitude, &idx.lat},
		{"longitude", c.Longitude, &idx.lng},
		{"elevation", c.Elevation, &idx.elev},
	}
	for _, f := range fields {
		if *f.dst, err = columnOf(f.ref, header); err != nil {
			return idx, fmt.Errorf("%s column: %w", f.label, err)
		}
	}
	return idx, nil
}

func columnOf(ref string, header []string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, errors.New("not set")
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 0 || n >= len(header) {
			return 0, fmt.Errorf("index %d out of range (%d columns)", n, len(header))
		}
		return n, nil
	}

	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), ref) {
			return i, nil
		}
	}

	if n, ok := letterIndex(ref); ok && n < len(header) {
		return n, nil
	}

	return 0, fmt.Errorf("no column %q", ref)
}

// letterIndex converts "A".."Z", "AA".. to a zero based index.
func letterIndex(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	n := 0
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, true
}

// ReadCSV reads obstacles from CSV text with a header row. Rows with an
// unparsable coordinate or elevation are skipped and reported.
func ReadCSV(r io.Reader, cols Columns) ([]Obstacle, []Skip, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty csv")
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx, err := cols.resolve(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		obstacles []Obstacle
		skipped   []Skip
	)
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row %d: %w", row, err)
		}
		if blank(rec) {
			continue
		}

		o, reason := parseRecord(rec, idx)
		if reason != "" {
			skipped = append(skipped, Skip{Row: row, Name: o.Name, Reason: reason})
			log.Debug().Int("row", row).Str("name", o.Name).Str("reason", reason).Msg("obstacle skipped")
			continue
		}
		obstacles = append(obstacles, o)
	}

	log.Debug().Int("obstacles", len(obstacles)).Int("skipped", len(skipped)).Msg("csv obstacles read")
	return obstacles, skipped, nil
}

func parseRecord(rec []string, idx columnIndex) (Obstacle, string) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	o := Obstacle{Name: field(idx.name)}

	lat, err := geo.ParseLatitude(field(idx.lat))
	if err != nil {
		return o, "latitude: " + err.Error()
	}
	lng, err := geo.ParseLongitude(field(idx.lng))
	if err != nil {
		return o, "longitude: " + err.Error()
	}

	raw := field(idx.elev)
	if raw == "" {
		return o, "missing elevation"
	}
	elev, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(elev) || math.IsInf(elev, 0) {
		return o, fmt.Sprintf("invalid elevation %q", raw)
	}

	o.Position = geo.GeoPoint{Latitude: lat, Longitude: lng, Elevation: elev}
	return o, ""
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
