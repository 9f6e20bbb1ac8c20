package processor

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey names a results table column.
type SortKey string

// Sortable columns.
const (
	SortByOrdinal        SortKey = "ordinal"
	SortByName           SortKey = "name"
	SortByElevation      SortKey = "elevation"
	SortBySurface        SortKey = "surface"
	SortByPenetration    SortKey = "penetration"
	SortByClassification SortKey = "classification"
)

// ParseSortKey accepts column names and the short aliases z, surfElev and remarks.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ordinal", "input":
		return SortByOrdinal, nil
	case "name":
		return SortByName, nil
	case "elevation", "elev", "z":
		return SortByElevation, nil
	case "surface", "surfelev", "surface_elevation":
		return SortBySurface, nil
	case "penetration":
		return SortByPenetration, nil
	case "classification", "remarks":
		return SortByClassification, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// SortResults orders results in place. Rows without a surface elevation
// sort after all others when ordering by surface or penetration, in both
// directions. Ties keep their input order.
func SortResults(results []Result, key SortKey, descending bool) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		switch key {
		case SortBySurface, SortByPenetration:
			x, okX := metric(a, key)
			y, okY := metric(b, key)
			if !okX || !okY {
				return okX && !okY
			}
			return ordered(x < y, x == y, descending)
		case SortByName:
			x, y := strings.ToLower(a.Name), strings.ToLower(b.Name)
			return ordered(x < y, x == y, descending)
		case SortByElevation:
			return ordered(a.Elevation < b.Elevation, a.Elevation == b.Elevation, descending)
		case SortByClassification:
			return ordered(a.Classification < b.Classification, a.Classification == b.Classification, descending)
		}
		return ordered(a.Ordinal < b.Ordinal, a.Ordinal == b.Ordinal, descending)
	})
}

func metric(r Result, key SortKey) (float64, bool) {
	if key == SortBySurface {
		if r.SurfaceElevation == nil {
			return 0, false
		}
		return *r.SurfaceElevation, true
	}
	return r.Penetration()
}

func ordered(lt, eq, descending bool) bool {
	if eq {
		return false
	}
	if descending {
		return !lt
	}
	return lt
}
