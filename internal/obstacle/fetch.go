package obstacle

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
)

// Fetch downloads an obstacle list. The format is taken from the response
// content type and falls back to the URL extension.
func Fetch(client *http.Client, url string, cols Columns) ([]Obstacle, []Skip, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	log.Debug().Str("url", url).Int("bytes", len(body)).Msg("Obstacles downloaded")

	if isCSV(resp.Header.Get("Content-Type"), url) {
		return ReadCSV(bytes.NewReader(body), cols)
	}
	return ReadGeoJSON(bytes.NewReader(body))
}

func isCSV(contentType, url string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "text/csv", "application/csv":
			return true
		case "application/geo+json", "application/json":
			return false
		}
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return strings.EqualFold(path.Ext(url), ".csv")
}

// IsURL reports whether source should be fetched rather than opened.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
