// Package config handles configuration loading and surface definitions.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/obstacle"
	"github.com/woozymasta/aerosurf/internal/runway"
	"github.com/woozymasta/aerosurf/internal/surface"

	"gopkg.in/yaml.v3"
)

// DefaultWorkers is used when the configuration leaves workers unset.
const DefaultWorkers = 4

// Config represents the root configuration file structure.
type Config struct {
	// proj4 definition of the planar grid, NZTM2000 when empty
	Projection    string                `yaml:"projection,omitempty" json:"projection,omitempty"`
	Runways       string                `yaml:"runways,omitempty" json:"-"`
	Output        string                `yaml:"output,omitempty" json:"-"`
	Workers       int                   `yaml:"workers,omitempty" json:"workers,omitempty"`
	Interpolation surface.Interpolation `yaml:"interpolation,omitempty" json:"interpolation"`
	Obstacles     Obstacles             `yaml:"obstacles,omitempty" json:"-"`
	Surfaces      []Surface             `yaml:"surfaces" json:"surfaces"`
}

// Obstacles points at the obstacle survey to evaluate.
type Obstacles struct {
	Columns *obstacle.Columns `yaml:"columns,omitempty"`
	// file path or http(s) URL
	Source string `yaml:"source,omitempty"`
}

// Point is a surveyed position written as coordinate strings in any
// supported notation.
type Point struct {
	Latitude  string `yaml:"lat" json:"lat"`
	Longitude string `yaml:"lng" json:"lng"`
	// meters, required
	Elevation *float64 `yaml:"elev" json:"elev"`
}

// ErrMissingElevation is returned for a point written without elev.
var ErrMissingElevation = errors.New("missing elevation")

// Surface is one obstacle-clearance surface to construct.
type Surface struct {
	Threshold *Point   `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	End       *Point   `yaml:"end,omitempty" json:"end,omitempty"`
	OCHFeet   *float64 `yaml:"och_ft,omitempty" json:"-"`

	Name      string       `yaml:"name" json:"name"`
	Aerodrome string       `yaml:"aerodrome,omitempty" json:"aerodrome,omitempty"`
	Runway    string       `yaml:"runway,omitempty" json:"runway,omitempty"`
	Opposite  string       `yaml:"opposite,omitempty" json:"opposite,omitempty"` // reciprocal lookup when empty
	Kind      surface.Kind `yaml:"kind" json:"kind"`

	StripWidth    float64 `yaml:"strip_width,omitempty" json:"stripWidth,omitempty"`
	OCH           float64 `yaml:"och_m,omitempty" json:"och,omitempty"`
	VPA           float64 `yaml:"vpa,omitempty" json:"vpa,omitempty"`
	Offset        float64 `yaml:"offset,omitempty" json:"offset,omitempty"`
	Clearway      float64 `yaml:"clearway,omitempty" json:"clearway,omitempty"`
	ClimbGradient float64 `yaml:"climb_gradient,omitempty" json:"climbGradient,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the structure of the surface list. Runway parameters are
// validated later, when the surface is built.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Surfaces))
	for i, s := range c.Surfaces {
		if s.Name == "" {
			return fmt.Errorf("surface #%d: name is required", i+1)
		}
		if seen[s.Name] {
			return fmt.Errorf("surface %q: duplicate name", s.Name)
		}
		seen[s.Name] = true

		if err := s.validate(); err != nil {
			return fmt.Errorf("surface %q: %w", s.Name, err)
		}
		if s.usesDirectory() && c.Runways == "" {
			return fmt.Errorf("surface %q: runway lookup needs a runways file", s.Name)
		}
	}
	return nil
}

// Projector builds the configured planar projection.
func (c *Config) Projector() (*geo.TransverseMercator, error) {
	if c.Projection == "" {
		return geo.NZTM()
	}
	return geo.NewProjector(c.Projection)
}

// Columns returns the obstacle column mapping, A-D by default.
func (c *Config) Columns() obstacle.Columns {
	if c.Obstacles.Columns == nil {
		return obstacle.DefaultColumns
	}
	return *c.Obstacles.Columns
}

// Find returns the surface with the given name.
func (c *Config) Find(name string) (Surface, bool) {
	for _, s := range c.Surfaces {
		if s.Name == name {
			return s, true
		}
	}
	return Surface{}, false
}

func (s Surface) usesDirectory() bool {
	return s.Threshold == nil || s.End == nil
}

func (s Surface) validate() error {
	if !s.Kind.Valid() {
		return errors.New("kind must be vss or dep_ois")
	}
	if s.usesDirectory() && (s.Aerodrome == "" || s.Runway == "") {
		return errors.New("either threshold and end points or aerodrome and runway are required")
	}
	if s.OCHFeet != nil && s.OCH != 0 {
		return errors.New("och_m and och_ft are mutually exclusive")
	}
	if s.Threshold != nil && s.Threshold.Elevation == nil {
		return errors.New("threshold: elev is required")
	}
	if s.End != nil && s.End.Elevation == nil {
		return errors.New("end: elev is required")
	}
	return nil
}

// Input resolves the surface into runway parameters. Points missing from
// the surface definition are looked up in dir, which may be nil when both
// points are given explicitly.
func (s Surface) Input(dir *runway.Directory) (surface.RunwayInput, error) {
	in := surface.RunwayInput{
		StripWidth:        s.StripWidth,
		OCH:               s.OCH,
		VerticalPathAngle: s.VPA,
		OffsetAngle:       s.Offset,
		ClearwayLength:    s.Clearway,
		ClimbGradient:     s.ClimbGradient,
	}
	if s.OCHFeet != nil {
		in.OCH = *s.OCHFeet * geo.FeetToMeters
	}

	var err error
	if s.Threshold != nil {
		if in.Threshold, err = s.Threshold.resolve("threshold"); err != nil {
			return in, err
		}
	}
	if s.End != nil {
		if in.End, err = s.End.resolve("end"); err != nil {
			return in, err
		}
	}
	if !s.usesDirectory() {
		return in, nil
	}

	if dir == nil {
		return in, errors.New("runway directory not loaded")
	}
	if s.Threshold == nil {
		thr, err := dir.Find(s.Aerodrome, s.Runway)
		if err != nil {
			return in, err
		}
		in.Threshold = thr.Threshold
	}
	if s.End == nil {
		var end runway.Runway
		if s.Opposite != "" {
			end, err = dir.Find(s.Aerodrome, s.Opposite)
		} else {
			end, err = dir.Opposite(s.Aerodrome, s.Runway)
		}
		if err != nil {
			return in, err
		}
		in.End = end.Threshold
	}

	return in, nil
}

// GeoPoint parses the coordinate strings.
func (p Point) GeoPoint() (geo.GeoPoint, error) {
	lat, err := geo.ParseLatitude(strings.TrimSpace(p.Latitude))
	if err != nil {
		return geo.GeoPoint{}, err
	}
	lng, err := geo.ParseLongitude(strings.TrimSpace(p.Longitude))
	if err != nil {
		return geo.GeoPoint{}, err
	}
	if p.Elevation == nil {
		return geo.GeoPoint{}, ErrMissingElevation
	}
	return geo.GeoPoint{Latitude: lat, Longitude: lng, Elevation: *p.Elevation}, nil
}

func (p Point) resolve(name string) (geo.GeoPoint, error) {
	pt, err := p.GeoPoint()
	switch {
	case errors.Is(err, ErrMissingElevation):
		return pt, &surface.ValidationError{Field: name + ".elev", Reason: "missing elevation"}
	case err != nil:
		return pt, fmt.Errorf("%s: %w", name, err)
	}
	return pt, nil
}
