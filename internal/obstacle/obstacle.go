// Package obstacle reads candidate obstacles from CSV and GeoJSON sources
// and indexes their planar positions.
package obstacle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/aerosurf/internal/geo"
)

// Obstacle is a named point with an elevation in meters.
type Obstacle struct {
	Name     string       `json:"name" yaml:"name"`
	Position geo.GeoPoint `json:"position" yaml:"position"`
}

// Valid reports whether the position is finite and in range.
func (o Obstacle) Valid() bool {
	return o.Position.Valid()
}

// Input is an obstacle as posted by a client, before its elevation is known
// to be present.
type Input struct {
	Name     string          `json:"name" yaml:"name"`
	Position geo.SurveyPoint `json:"position" yaml:"position"`
}

// FromInputs converts posted obstacles. Entries without an elevation are
// skipped; Row is the index in the input list.
func FromInputs(in []Input) ([]Obstacle, []Skip) {
	var (
		obstacles = make([]Obstacle, 0, len(in))
		skipped   []Skip
	)
	for i, o := range in {
		pos, ok := o.Position.GeoPoint()
		if !ok {
			skipped = append(skipped, Skip{Row: i, Name: o.Name, Reason: "missing elevation"})
			continue
		}
		obstacles = append(obstacles, Obstacle{Name: o.Name, Position: pos})
	}
	return obstacles, skipped
}

// Skip records an input row that was not turned into an obstacle.
type Skip struct {
	Row    int    `json:"row" yaml:"row"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

func (s Skip) String() string {
	if s.Name != "" {
		return fmt.Sprintf("row %d (%s): %s", s.Row, s.Name, s.Reason)
	}
	return fmt.Sprintf("row %d: %s", s.Row, s.Reason)
}

// Load reads obstacles from path, choosing the reader by file extension.
// Columns is only used for CSV files.
func Load(path string, cols Columns) ([]Obstacle, []Skip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		return ReadCSV(f, cols)
	case ".geojson", ".json":
		return ReadGeoJSON(f)
	default:
		return nil, nil, fmt.Errorf("unsupported obstacle file type %q", ext)
	}
}
