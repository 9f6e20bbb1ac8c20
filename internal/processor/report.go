package processor

import (
	"time"

	"github.com/woozymasta/aerosurf/internal/obstacle"
	"github.com/woozymasta/aerosurf/internal/surface"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Report is the outcome of evaluating one obstacle batch against one surface.
type Report struct {
	ID            uuid.UUID             `json:"id" yaml:"id"`
	Surface       string                `json:"surface" yaml:"surface"`
	Kind          surface.Kind          `json:"kind" yaml:"kind"`
	Interpolation surface.Interpolation `json:"interpolation" yaml:"interpolation"`
	Polygon       surface.Polygon       `json:"polygon" yaml:"-"`
	CreatedAt     time.Time             `json:"createdAt" yaml:"created_at"`
	Stats         Stats                 `json:"stats" yaml:"stats"`
	Skipped       []obstacle.Skip       `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Results       []Result              `json:"results" yaml:"results"`
}

// Critical returns the results that penetrate the surface.
func (r *Report) Critical() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Classification == Critical {
			out = append(out, res)
		}
	}
	return out
}

// Run evaluates obstacles with the given number of workers and wraps the
// outcome in a Report. Skips from ingestion are carried through unchanged.
func (c *Classifier) Run(obstacles []obstacle.Obstacle, skipped []obstacle.Skip, workers int) *Report {
	start := time.Now()
	results, stats := c.EvaluateConcurrent(obstacles, workers)

	report := &Report{
		ID:            uuid.New(),
		Surface:       c.name,
		Kind:          c.poly.Kind,
		Interpolation: c.eval.Interpolation(),
		Polygon:       c.poly,
		CreatedAt:     start.UTC(),
		Stats:         stats,
		Skipped:       skipped,
		Results:       results,
	}

	log.Info().
		Str("id", report.ID.String()).
		Str("surface", c.name).
		Str("kind", c.poly.Kind.String()).
		Int("obstacles", stats.Total).
		Int("included", stats.Included).
		Int("critical", stats.Critical).
		Int("undetermined", stats.Undetermined).
		Dur("took", time.Since(start)).
		Msg("Evaluation finished")

	return report
}
