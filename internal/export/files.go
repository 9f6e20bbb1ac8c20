package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/aerosurf/internal/processor"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Options control WriteReport.
type Options struct {
	// Force overwrites files that already exist.
	Force bool
	// Minify compacts KML and JSON output.
	Minify bool
	// Format of the results document, "json" or "yaml".
	Format string
	// KMLName overrides the KML file name.
	KMLName string
}

// WriteReport writes the surface KML and GeoJSON, the results document and
// the results CSV of a report into dir. Existing files are kept unless
// opts.Force is set. It returns the paths it wrote.
func WriteReport(dir string, report *processor.Report, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	kmlName := opts.KMLName
	if kmlName == "" {
		kmlName = "surface.kml"
	}
	resultsName := "results.json"
	if opts.Format == "yaml" {
		resultsName = "results.yaml"
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{kmlName, func(w io.Writer) error {
			return KML(w, report.Polygon, report.Surface, opts.Minify)
		}},
		{"surface.geojson", func(w io.Writer) error {
			return encodeJSON(w, SurfaceGeoJSON(report.Polygon, report.Surface), opts.Minify)
		}},
		{"results.geojson", func(w io.Writer) error {
			return encodeJSON(w, ResultsGeoJSON(report), opts.Minify)
		}},
		{resultsName, func(w io.Writer) error {
			if opts.Format == "yaml" {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(report); err != nil {
					return err
				}
				return enc.Close()
			}
			return encodeJSON(w, report, opts.Minify)
		}},
		{"results.csv", func(w io.Writer) error {
			return WriteResultsCSV(w, report.Results)
		}},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if !opts.Force {
			if info, err := os.Stat(path); err == nil && info.Size() > 0 {
				log.Debug().Str("path", path).Msg("Output exists, skipping")
				continue
			}
		}
		if err := writeFile(path, f.write); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, path)
	}

	return written, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return write(f)
}

func encodeJSON(w io.Writer, v interface{}, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// SafeName turns a surface name into a file or directory name by replacing
// everything but ASCII letters, digits, '-' and '_' with '-'.
func SafeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.TrimSpace(name))
	if name == "" {
		return "surface"
	}
	return name
}
