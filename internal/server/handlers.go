// Package server exposes surface construction and obstacle evaluation over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/woozymasta/aerosurf/internal/export"
	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/obstacle"
	"github.com/woozymasta/aerosurf/internal/processor"
	"github.com/woozymasta/aerosurf/internal/runway"
	"github.com/woozymasta/aerosurf/internal/surface"

	"github.com/rs/zerolog/log"
)

// Routes registers all API endpoints on a new mux. Every route is
// instrumented when metrics are enabled.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.Metrics.Instrument(pattern, h))
	}

	handle("GET /api/aerodromes", s.HandleAerodromes)
	handle("GET /api/aerodromes/{icao}/runways", s.HandleRunways)
	handle("GET /api/aerodromes/{icao}/runways/{designator}/opposite", s.HandleOpposite)
	handle("GET /api/surfaces", s.HandleSurfaceList)
	handle("GET /api/surfaces/{name}", s.HandleSurface)
	handle("GET /api/surfaces/{name}/kml", s.HandleSurfaceKML)
	handle("POST /api/surfaces/{kind}", s.HandleBuild)
	handle("POST /api/kml", s.HandleKML)
	handle("POST /api/evaluate", s.HandleEvaluate)
	handle("POST /api/obstacles/csv", s.HandleObstaclesCSV)
	handle("POST /api/coordinates/parse", s.HandleParseCoordinate)

	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}

	return mux
}

type errorResponse struct {
	Error  string  `json:"error"`
	Field  string  `json:"field,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps validation failures to 422 and everything else to status.
func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}

	var verr *surface.ValidationError
	if errors.As(err, &verr) {
		status = http.StatusUnprocessableEntity
		resp.Field, resp.Value, resp.Reason = verr.Field, verr.Value, verr.Reason
	}

	writeJSON(w, status, resp)
}

func (s *ServerContext) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, s.MaxBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

func (s *ServerContext) directory(w http.ResponseWriter) (*runway.Directory, bool) {
	if s.Runways == nil {
		writeError(w, http.StatusNotFound, errors.New("runway directory not configured"))
		return nil, false
	}
	return s.Runways, true
}

// HandleAerodromes lists aerodromes of the runway directory.
func (s *ServerContext) HandleAerodromes(w http.ResponseWriter, r *http.Request) {
	dir, ok := s.directory(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dir.ICAOs())
}

// HandleRunways lists runway ends of one aerodrome.
func (s *ServerContext) HandleRunways(w http.ResponseWriter, r *http.Request) {
	dir, ok := s.directory(w)
	if !ok {
		return
	}
	rwys := dir.Runways(r.PathValue("icao"))
	if len(rwys) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", runway.ErrNotFound, r.PathValue("icao")))
		return
	}
	writeJSON(w, http.StatusOK, rwys)
}

// HandleOpposite returns the reciprocal end of a runway.
func (s *ServerContext) HandleOpposite(w http.ResponseWriter, r *http.Request) {
	dir, ok := s.directory(w)
	if !ok {
		return
	}
	rwy, err := dir.Opposite(r.PathValue("icao"), r.PathValue("designator"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, rwy)
}

// HandleSurfaceList lists the configured surfaces.
func (s *ServerContext) HandleSurfaceList(w http.ResponseWriter, r *http.Request) {
	out := make([]NamedSurface, 0, len(s.Names))
	for _, name := range s.Names {
		out = append(out, s.Surfaces[name])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *ServerContext) named(w http.ResponseWriter, name string) (NamedSurface, bool) {
	ns, ok := s.Surfaces[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("surface %q not found", name))
	}
	return ns, ok
}

// HandleSurface returns one configured surface polygon.
func (s *ServerContext) HandleSurface(w http.ResponseWriter, r *http.Request) {
	if ns, ok := s.named(w, r.PathValue("name")); ok {
		writeJSON(w, http.StatusOK, ns)
	}
}

// HandleSurfaceKML downloads a configured surface as KML.
func (s *ServerContext) HandleSurfaceKML(w http.ResponseWriter, r *http.Request) {
	if ns, ok := s.named(w, r.PathValue("name")); ok {
		s.writeKML(w, ns.Polygon, ns.Name, export.SafeName(ns.Name)+".kml")
	}
}

// HandleBuild constructs a surface from a RunwayInput body.
func (s *ServerContext) HandleBuild(w http.ResponseWriter, r *http.Request) {
	kind, err := surface.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	var in surface.RunwayInput
	if !s.decode(w, r, &in) {
		return
	}

	poly, err := s.Builder.Build(kind, in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.Metrics.surfaceBuilt(kind)

	writeJSON(w, http.StatusOK, poly)
}

type kmlRequest struct {
	Name       string          `json:"name"`
	Aerodrome  string          `json:"aerodrome"`
	Designator string          `json:"designator"`
	Polygon    surface.Polygon `json:"polygon"`
}

// HandleKML renders a posted polygon as a KML attachment.
func (s *ServerContext) HandleKML(w http.ResponseWriter, r *http.Request) {
	var req kmlRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Polygon.Vertices) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("polygon is required"))
		return
	}
	s.writeKML(w, req.Polygon, req.Name, export.KMLFileName(req.Aerodrome, req.Designator, req.Polygon.Kind))
}

func (s *ServerContext) writeKML(w http.ResponseWriter, poly surface.Polygon, name, file string) {
	var buf bytes.Buffer
	if err := export.KML(&buf, poly, name, true); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", export.KMLContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	_, _ = w.Write(buf.Bytes())
}

type evaluateRequest struct {
	// configured surface name, used when Polygon is absent
	Surface       string                `json:"surface"`
	Polygon       *surface.Polygon      `json:"polygon"`
	Interpolation surface.Interpolation `json:"interpolation"`
	Obstacles     []obstacle.Input      `json:"obstacles"`
	GeoJSON       json.RawMessage       `json:"geojson"`
	Sort          string                `json:"sort"`
	Descending    bool                  `json:"descending"`
}

// HandleEvaluate classifies obstacles against a configured or posted surface.
func (s *ServerContext) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !s.decode(w, r, &req) {
		return
	}

	name := req.Surface
	var poly surface.Polygon
	switch {
	case req.Polygon != nil:
		poly = *req.Polygon
		if name == "" {
			name = poly.Kind.Title()
		}
	case req.Surface != "":
		ns, ok := s.named(w, req.Surface)
		if !ok {
			return
		}
		poly = ns.Polygon
	default:
		writeError(w, http.StatusBadRequest, errors.New("surface or polygon is required"))
		return
	}

	key, err := processor.ParseSortKey(req.Sort)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	obstacles, skipped := obstacle.FromInputs(req.Obstacles)
	if len(req.GeoJSON) > 0 {
		more, skips, err := obstacle.ReadGeoJSON(bytes.NewReader(req.GeoJSON))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		obstacles = append(obstacles, more...)
		skipped = append(skipped, skips...)
	}

	c, err := processor.NewClassifier(name, s.Projector, poly, surface.WithInterpolation(req.Interpolation))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report := c.Run(obstacles, skipped, s.Workers)
	processor.SortResults(report.Results, key, req.Descending)
	s.Metrics.reportEvaluated(report.Stats)

	writeJSON(w, http.StatusOK, report)
}

type obstaclesResponse struct {
	Obstacles interface{}     `json:"obstacles"`
	Skipped   []obstacle.Skip `json:"skipped"`
}

// HandleObstaclesCSV converts an uploaded obstacle CSV to GeoJSON. Columns
// are taken from the name, lat, lng and elev query parameters.
func (s *ServerContext) HandleObstaclesCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cols := obstacle.DefaultColumns
	for _, c := range []struct {
		key string
		dst *string
	}{
		{"name", &cols.Name},
		{"lat", &cols.Latitude},
		{"lng", &cols.Longitude},
		{"elev", &cols.Elevation},
	} {
		if v := strings.TrimSpace(q.Get(c.key)); v != "" {
			*c.dst = v
		}
	}

	body := http.MaxBytesReader(w, r.Body, s.MaxBody)
	obstacles, skipped, err := obstacle.ReadCSV(body, cols)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	log.Debug().Int("obstacles", len(obstacles)).Int("skipped", len(skipped)).Msg("Obstacle CSV converted")

	if skipped == nil {
		skipped = []obstacle.Skip{}
	}
	writeJSON(w, http.StatusOK, obstaclesResponse{
		Obstacles: obstacle.ToGeoJSON(obstacles),
		Skipped:   skipped,
	})
}

type coordinateRequest struct {
	Text string `json:"text"`
	// "lat", "lng" or empty for either
	Axis string `json:"axis"`
}

type coordinateResponse struct {
	Value  float64 `json:"value"`
	Format string  `json:"format"`
	DMS    string  `json:"dms,omitempty"`
}

// HandleParseCoordinate parses one coordinate string.
func (s *ServerContext) HandleParseCoordinate(w http.ResponseWriter, r *http.Request) {
	var req coordinateRequest
	if !s.decode(w, r, &req) {
		return
	}

	reading, format, err := geo.ParseCoordinateFormat(req.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp := coordinateResponse{Value: reading.Degrees, Format: format}

	switch strings.ToLower(req.Axis) {
	case "lat", "latitude":
		if resp.Value, err = geo.ParseLatitude(req.Text); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		resp.DMS = geo.FormatDMS(resp.Value, true)
	case "lng", "lon", "longitude":
		if resp.Value, err = geo.ParseLongitude(req.Text); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		resp.DMS = geo.FormatDMS(resp.Value, false)
	case "":
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown axis %q", req.Axis))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
