package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/woozymasta/aerosurf/internal/geo"
	"github.com/woozymasta/aerosurf/internal/processor"
)

var resultsHeader = []string{
	"Name", "Latitude", "Longitude", "X", "Y",
	"Elevation (m)", "Surface Elevation (m)", "Penetration (m)", "Remarks",
}

// WriteResultsCSV writes the results table: DMS coordinates, planar x/y,
// elevations and penetration. Unknown surface values are left empty.
func WriteResultsCSV(w io.Writer, results []processor.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultsHeader); err != nil {
		return err
	}

	for _, r := range results {
		surf, pen := "", ""
		if r.SurfaceElevation != nil {
			surf = strconv.FormatFloat(*r.SurfaceElevation, 'f', 3, 64)
		}
		if p, ok := r.Penetration(); ok {
			pen = strconv.FormatFloat(p, 'f', 3, 64)
		}

		if err := cw.Write([]string{
			r.Name,
			geo.FormatDMS(r.Latitude, true),
			geo.FormatDMS(r.Longitude, false),
			strconv.FormatFloat(r.X, 'f', 2, 64),
			strconv.FormatFloat(r.Y, 'f', 2, 64),
			strconv.FormatFloat(r.Elevation, 'f', -1, 64),
			surf,
			pen,
			r.Classification.String(),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
