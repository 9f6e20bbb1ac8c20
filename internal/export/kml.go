// Package export renders surfaces and evaluation results as KML, GeoJSON and CSV.
package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/woozymasta/aerosurf/internal/surface"

	"github.com/tdewolff/minify/v2"
	xmlmin "github.com/tdewolff/minify/v2/xml"
)

const kmlNamespace = "http://www.opengis.net/kml/2.2"

// KMLContentType is the media type of KML documents.
const KMLContentType = "application/vnd.google-earth.kml+xml"

var vertexIcons = [4]string{
	"http://maps.google.com/mapfiles/kml/paddle/A.png",
	"http://maps.google.com/mapfiles/kml/paddle/B.png",
	"http://maps.google.com/mapfiles/kml/paddle/C.png",
	"http://maps.google.com/mapfiles/kml/paddle/D.png",
}

// KML colors are aabbggrr.
var polygonColors = map[surface.Kind][2]string{
	surface.VSS:    {"ff0000ff", "cc0000ff"},
	surface.DepOIS: {"ff00a5ff", "cc00a5ff"},
}

type kmlRoot struct {
	XMLName  xml.Name    `xml:"kml"`
	Xmlns    string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name       string         `xml:"name,omitempty"`
	Styles     []kmlStyle     `xml:"Style"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlStyle struct {
	ID        string        `xml:"id,attr"`
	IconStyle *kmlIconStyle `xml:"IconStyle,omitempty"`
	LineStyle *kmlLineStyle `xml:"LineStyle,omitempty"`
	PolyStyle *kmlPolyStyle `xml:"PolyStyle,omitempty"`
}

type kmlIconStyle struct {
	Href string `xml:"Icon>href"`
}

type kmlLineStyle struct {
	Color string `xml:"color"`
	Width int    `xml:"width"`
}

type kmlPolyStyle struct {
	Color string `xml:"color"`
}

type kmlPlacemark struct {
	Name        string      `xml:"name"`
	Description string      `xml:"description,omitempty"`
	StyleURL    string      `xml:"styleUrl"`
	Polygon     *kmlPolygon `xml:"Polygon,omitempty"`
	Point       *kmlPoint   `xml:"Point,omitempty"`
}

type kmlPolygon struct {
	Extrude      int    `xml:"extrude"`
	AltitudeMode string `xml:"altitudeMode"`
	Coordinates  string `xml:"outerBoundaryIs>LinearRing>coordinates"`
}

type kmlPoint struct {
	Coordinates  string `xml:"coordinates"`
	AltitudeMode string `xml:"altitudeMode"`
}

func coord(lng, lat, alt float64) string {
	return strconv.FormatFloat(lng, 'f', -1, 64) + "," +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(alt, 'f', -1, 64)
}

// KML writes poly as a KML 2.2 document: the surface polygon at absolute
// altitude plus one placemark per corner labelled A to D. With compact set
// the document is minified.
func KML(w io.Writer, poly surface.Polygon, name string, compact bool) error {
	if len(poly.Vertices) < 4 {
		return fmt.Errorf("%w: %d vertices", surface.ErrMalformedPolygon, len(poly.Vertices))
	}
	if name == "" {
		name = poly.Kind.Title() + " Polygon"
	}

	colors, ok := polygonColors[poly.Kind]
	if !ok {
		colors = polygonColors[surface.VSS]
	}
	styleID := strings.ReplaceAll(poly.Kind.String(), "_", "") + "PolyStyle"

	doc := kmlDocument{Name: name}
	for i, icon := range vertexIcons {
		doc.Styles = append(doc.Styles, kmlStyle{
			ID:        fmt.Sprintf("marker%d", i),
			IconStyle: &kmlIconStyle{Href: icon},
		})
	}
	doc.Styles = append(doc.Styles, kmlStyle{
		ID:        styleID,
		LineStyle: &kmlLineStyle{Color: colors[0], Width: 2},
		PolyStyle: &kmlPolyStyle{Color: colors[1]},
	})

	ring := make([]string, 0, len(poly.Vertices))
	for _, v := range poly.Vertices {
		ring = append(ring, coord(v.Longitude, v.Latitude, v.Elevation))
	}
	doc.Placemarks = append(doc.Placemarks, kmlPlacemark{
		Name:     name,
		StyleURL: "#" + styleID,
		Polygon: &kmlPolygon{
			AltitudeMode: "absolute",
			Coordinates:  strings.Join(ring, " "),
		},
	})

	labels := poly.Kind.Labels()
	for i, v := range poly.Corners() {
		doc.Placemarks = append(doc.Placemarks, kmlPlacemark{
			Name:        string(rune('A' + i)),
			Description: fmt.Sprintf("%s, %.2f m", labels[i], v.Elevation),
			StyleURL:    fmt.Sprintf("#marker%d", i),
			Point: &kmlPoint{
				Coordinates:  coord(v.Longitude, v.Latitude, v.Elevation),
				AltitudeMode: "absolute",
			},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(kmlRoot{Xmlns: kmlNamespace, Document: doc}); err != nil {
		return fmt.Errorf("encode kml: %w", err)
	}
	buf.WriteByte('\n')

	if !compact {
		_, err := buf.WriteTo(w)
		return err
	}

	m := minify.New()
	m.AddFunc("text/xml", xmlmin.Minify)
	if err := m.Minify("text/xml", w, &buf); err != nil {
		return fmt.Errorf("minify kml: %w", err)
	}
	return nil
}

var reDesignator = regexp.MustCompile(`(?i)(\d{2})([A-Z])?$`)

// KMLFileName derives "ICAO-RWYnnX.kml" from an aerodrome code and a
// threshold designator such as "THR 05G". Missing parts fall back to
// "ICAO-RWY.kml" or "<kind>.kml".
func KMLFileName(icao, designator string, kind surface.Kind) string {
	icao = strings.ToUpper(strings.TrimSpace(icao))

	thr := ""
	if m := reDesignator.FindStringSubmatch(strings.TrimSpace(designator)); m != nil {
		thr = m[1] + strings.ToUpper(m[2])
	}

	switch {
	case icao != "" && thr != "":
		return icao + "-RWY" + thr + ".kml"
	case icao != "":
		return icao + "-RWY.kml"
	}
	return kind.String() + ".kml"
}
