package server

import (
	"sort"

	"github.com/woozymasta/aerosurf/internal/config"
	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/runway"
	"github.com/woozymasta/aerosurf/internal/surface"

	"github.com/rs/zerolog/log"
)

// defaultMaxBody caps request bodies (obstacle uploads included).
const defaultMaxBody = 32 << 20

// NamedSurface is a configured surface built at startup.
type NamedSurface struct {
	Name    string          `json:"name"`
	Kind    surface.Kind    `json:"kind"`
	Polygon surface.Polygon `json:"polygon"`
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Projector geo.Projector
	Builder   *surface.Builder
	Runways   *runway.Directory // nil when no runways file is configured
	Metrics   *Metrics
	Surfaces  map[string]NamedSurface
	Names     []string
	Workers   int
	MaxBody   int64
}

// NewServerContext initializes the context and builds the configured surfaces.
// Surfaces that cannot be resolved or built are skipped with a warning.
func NewServerContext(cfg *config.Config, p geo.Projector, dir *runway.Directory, m *Metrics) *ServerContext {
	log.Info().Int("config_surfaces_count", len(cfg.Surfaces)).Msg("Initializing server context")

	s := &ServerContext{
		Config:    cfg,
		Projector: p,
		Builder:   surface.NewBuilder(p),
		Runways:   dir,
		Metrics:   m,
		Surfaces:  make(map[string]NamedSurface, len(cfg.Surfaces)),
		Workers:   cfg.Workers,
		MaxBody:   defaultMaxBody,
	}
	if s.Workers <= 0 {
		s.Workers = config.DefaultWorkers
	}

	for _, def := range cfg.Surfaces {
		in, err := def.Input(dir)
		if err != nil {
			log.Warn().Err(err).Str("surface", def.Name).Msg("Skipping surface: runway input not resolved")
			continue
		}

		poly, err := s.Builder.Build(def.Kind, in)
		if err != nil {
			log.Warn().Err(err).Str("surface", def.Name).Msg("Skipping surface: build failed")
			continue
		}

		s.Surfaces[def.Name] = NamedSurface{Name: def.Name, Kind: def.Kind, Polygon: poly}
		s.Names = append(s.Names, def.Name)
		m.surfaceBuilt(def.Kind)

		log.Debug().
			Str("surface", def.Name).
			Str("kind", def.Kind.String()).
			Float64("bearing", poly.Bearing).
			Float64("length", poly.Length).
			Msg("Surface built and added to context")
	}

	sort.Strings(s.Names)

	log.Info().
		Int("valid_surfaces_count", len(s.Names)).
		Msg("Server context initialized successfully")

	return s
}
