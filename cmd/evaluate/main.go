package main

import (
	"crypto/tls"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/aerosurf/internal/config"
	"github.com/woozymasta/aerosurf/internal/export"
	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/logger"
	"github.com/woozymasta/aerosurf/internal/obstacle"
	"github.com/woozymasta/aerosurf/internal/processor"
	"github.com/woozymasta/aerosurf/internal/runway"
	"github.com/woozymasta/aerosurf/internal/surface"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile    string   `short:"c" long:"config"        env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Obstacles     string   `short:"i" long:"obstacles"     env:"OBSTACLES"      description:"Obstacle CSV/GeoJSON file or URL, overrides the configuration"`
	Output        string   `short:"o" long:"output"        env:"OUTPUT_DIR"     description:"Output directory, overrides the configuration"`
	Format        string   `long:"format"                  env:"RESULTS_FORMAT" description:"Results document format" choice:"json" choice:"yaml" default:"json"`
	Interpolation string   `long:"interpolation"           env:"INTERPOLATION"  description:"Surface elevation model, overrides the configuration" choice:"centerline" choice:"plane-fit" choice:"bilinear"`
	Sort          string   `short:"s" long:"sort"          env:"SORT"           description:"Sort results by ordinal, name, elevation, surface, penetration or classification"`
	Limit         []string `short:"l" long:"limit"         env:"LIMIT_NAMES"    description:"Limit processing to specific surface names"`
	Workers       int      `short:"w" long:"workers"       env:"WORKERS"        description:"Evaluation workers per surface"`
	Parallel      int      `short:"p" long:"parallel"      env:"PARALLEL"       description:"Surfaces evaluated at once" default:"2"`
	Descending    bool     `short:"d" long:"descending"    description:"Sort in descending order"`
	Force         bool     `short:"f" long:"force"         description:"Force overwrite of existing files"`
	Minify        bool     `short:"m" long:"minify"        description:"Minify KML and JSON output"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.Obstacles != "" {
		cfg.Obstacles.Source = opts.Obstacles
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}
	if cfg.Output == "" {
		cfg.Output = "out"
	}
	if opts.Interpolation != "" {
		if cfg.Interpolation, err = surface.ParseInterpolation(opts.Interpolation); err != nil {
			log.Fatal().Err(err).Msg("Invalid interpolation")
		}
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 1
	}

	sortKey, err := processor.ParseSortKey(opts.Sort)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid sort key")
	}

	if cfg.Obstacles.Source == "" {
		log.Fatal().Msg("No obstacle source: set obstacles.source or --obstacles")
	}

	proj, err := cfg.Projector()
	if err != nil {
		log.Fatal().Err(err).Str("projection", cfg.Projection).Msg("Failed to build projection")
	}

	var dir *runway.Directory
	if cfg.Runways != "" {
		if dir, err = runway.Open(cfg.Runways); err != nil {
			log.Fatal().Err(err).Str("path", cfg.Runways).Msg("Failed to load runways")
		}
	}

	obstacles, skipped, err := loadObstacles(cfg.Obstacles.Source, cfg.Columns())
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Obstacles.Source).Msg("Failed to load obstacles")
	}
	for _, s := range skipped {
		log.Warn().Int("row", s.Row).Str("name", s.Name).Str("reason", s.Reason).Msg("Obstacle skipped")
	}

	// Filter surfaces if limit is set
	surfacesToProcess := cfg.Surfaces
	if len(opts.Limit) > 0 {
		surfacesToProcess = make([]config.Surface, 0)
		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			if seen[limitName] {
				continue
			}
			seen[limitName] = true

			if s, ok := cfg.Find(limitName); ok {
				surfacesToProcess = append(surfacesToProcess, s)
			} else {
				log.Error().
					Str("name", limitName).
					Msg("Surface specified in --limit not found in configuration")
			}
		}
	}

	log.Info().
		Int("surfaces_total", len(cfg.Surfaces)).
		Int("surfaces_queued", len(surfacesToProcess)).
		Int("obstacles", len(obstacles)).
		Int("skipped", len(skipped)).
		Str("interpolation", cfg.Interpolation.String()).
		Msg("Starting evaluation")

	builder := surface.NewBuilder(proj)
	exportOpts := export.Options{Force: opts.Force, Minify: opts.Minify, Format: opts.Format}

	var eg errgroup.Group
	eg.SetLimit(opts.Parallel)

	for _, def := range surfacesToProcess {
		eg.Go(func() error {
			err := evaluate(builder, proj, dir, cfg, def, obstacles, skipped, sortKey, opts.Descending, exportOpts)
			if err != nil {
				log.Error().Err(err).Str("surface", def.Name).Msg("Failed to evaluate surface")
			}
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		log.Fatal().Msg("Evaluation finished with errors")
	}

	log.Info().Msg("Evaluation finished successfully")
}

func loadObstacles(source string, cols obstacle.Columns) ([]obstacle.Obstacle, []obstacle.Skip, error) {
	if !obstacle.IsURL(source) {
		return obstacle.Load(source, cols)
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto: make(map[string]func(string, *tls.Conn) http.RoundTripper),
		},
		Timeout: 60 * time.Second,
	}
	return obstacle.Fetch(client, source, cols)
}

func evaluate(
	builder *surface.Builder,
	proj geo.Projector,
	dir *runway.Directory,
	cfg *config.Config,
	def config.Surface,
	obstacles []obstacle.Obstacle,
	skipped []obstacle.Skip,
	sortKey processor.SortKey,
	descending bool,
	opts export.Options,
) error {
	in, err := def.Input(dir)
	if err != nil {
		return err
	}

	poly, err := builder.Build(def.Kind, in)
	if err != nil {
		return err
	}

	c, err := processor.NewClassifier(def.Name, proj, poly, surface.WithInterpolation(cfg.Interpolation))
	if err != nil {
		return err
	}

	report := c.Run(obstacles, skipped, cfg.Workers)
	processor.SortResults(report.Results, sortKey, descending)

	opts.KMLName = export.KMLFileName(def.Aerodrome, def.Runway, def.Kind)
	outDir := filepath.Join(cfg.Output, export.SafeName(def.Name))

	written, err := export.WriteReport(outDir, report, opts)
	if err != nil {
		return err
	}

	log.Info().
		Str("surface", def.Name).
		Str("dir", outDir).
		Int("files", len(written)).
		Int("critical", report.Stats.Critical).
		Msg("Surface report written")

	return nil
}
