package obstacle

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/obstacles.csv":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(obstaclesCSV))
		case "/export":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			_, _ = w.Write([]byte(obstaclesCSV))
		case "/obstacles":
			w.Header().Set("Content-Type", "application/geo+json")
			_, _ = w.Write([]byte(obstaclesGeoJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	for _, tc := range []struct {
		path string
		want int
	}{
		{"/obstacles.csv", 3},
		{"/obstacles.csv?v=2", 3},
		{"/export", 3},
		{"/obstacles", 2},
	} {
		obstacles, _, err := Fetch(srv.Client(), srv.URL+tc.path, DefaultColumns)
		if err != nil {
			t.Errorf("%s: %v", tc.path, err)
			continue
		}
		if len(obstacles) != tc.want {
			t.Errorf("%s: got %d obstacles, expected %d", tc.path, len(obstacles), tc.want)
		}
	}

	if _, _, err := Fetch(srv.Client(), srv.URL+"/missing", DefaultColumns); err == nil {
		t.Errorf("404 accepted")
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL("https://example.com/o.csv") || IsURL("data/o.csv") {
		t.Errorf("IsURL misclassified a source")
	}
}
