package processor

import (
	"sort"
	"sync"

	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/obstacle"

	"github.com/rs/zerolog/log"
)

// IndexThreshold is the batch size from which Evaluate prefilters obstacles
// with an R-tree over their planar positions.
const IndexThreshold = 256

// Stats counts what happened to each obstacle of a batch.
type Stats struct {
	Total        int `json:"total" yaml:"total"`
	Included     int `json:"included" yaml:"included"`
	Outside      int `json:"outside" yaml:"outside"`
	Invalid      int `json:"invalid" yaml:"invalid"`
	Critical     int `json:"critical" yaml:"critical"`
	NotCritical  int `json:"notCritical" yaml:"not_critical"`
	Undetermined int `json:"undetermined" yaml:"undetermined"`
}

func (s *Stats) add(r Result, status Status) {
	switch status {
	case Outside:
		s.Outside++
		return
	case Invalid:
		s.Invalid++
		return
	}

	s.Included++
	switch r.Classification {
	case Critical:
		s.Critical++
	case NotCritical:
		s.NotCritical++
	default:
		s.Undetermined++
	}
}

// Evaluate classifies obstacles in input order and returns the results of
// those inside the footprint.
func (c *Classifier) Evaluate(obstacles []obstacle.Obstacle) ([]Result, Stats) {
	stats := Stats{Total: len(obstacles)}
	if len(obstacles) >= IndexThreshold {
		return c.evaluateIndexed(obstacles, stats)
	}

	results := make([]Result, 0)
	for i, o := range obstacles {
		r, status := c.classify(i, o)
		stats.add(r, status)
		if status == Included {
			results = append(results, r)
		}
	}
	return results, stats
}

// evaluateIndexed projects every obstacle once and only runs the polygon
// test on those whose position falls in the surface bounding box.
func (c *Classifier) evaluateIndexed(obstacles []obstacle.Obstacle, stats Stats) ([]Result, Stats) {
	planar := make([]geo.PlanarPoint, len(obstacles))
	ix := obstacle.NewIndex()
	for i, o := range obstacles {
		xy, ok := c.project(o)
		if !ok {
			stats.add(Result{}, Invalid)
			continue
		}
		planar[i] = xy
		ix.Insert(i, xy)
	}

	candidates := ix.Query(c.eval.Bound())
	log.Debug().
		Str("surface", c.name).
		Int("indexed", ix.Size()).
		Int("candidates", len(candidates)).
		Msg("obstacle prefilter")

	results := make([]Result, 0, len(candidates))
	for _, i := range candidates {
		r, status := c.classifyAt(i, obstacles[i], planar[i])
		stats.add(r, status)
		if status == Included {
			results = append(results, r)
		}
	}
	stats.Outside += ix.Size() - len(candidates)

	return results, stats
}

type job struct {
	Ordinal  int
	Obstacle obstacle.Obstacle
}

type result struct {
	Result Result
	Status Status
}

// EvaluateConcurrent classifies obstacles on a pool of workers. Results are
// ordered by input position, so the output equals Evaluate.
func (c *Classifier) EvaluateConcurrent(obstacles []obstacle.Obstacle, workers int) ([]Result, Stats) {
	if workers <= 1 || len(obstacles) < 2 {
		return c.Evaluate(obstacles)
	}

	jobs := make(chan job, len(obstacles))
	results := make(chan result, len(obstacles))

	go func() {
		for i, o := range obstacles {
			jobs <- job{Ordinal: i, Obstacle: o}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				r, status := c.classify(j.Ordinal, j.Obstacle)
				results <- result{Result: r, Status: status}
			}
		}()
	}
	wg.Wait()
	close(results)

	stats := Stats{Total: len(obstacles)}
	included := make([]Result, 0)
	for res := range results {
		stats.add(res.Result, res.Status)
		if res.Status == Included {
			included = append(included, res.Result)
		}
	}

	sort.Slice(included, func(i, j int) bool {
		return included[i].Ordinal < included[j].Ordinal
	})

	return included, stats
}
