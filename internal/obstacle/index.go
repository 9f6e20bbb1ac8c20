package obstacle

import (
	"sort"

	"github.com/woozymasta/aerosurf/internal/geo"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// pointTolerance is the half size of the box each point occupies in the tree.
const pointTolerance = 0.01

type indexEntry struct {
	ordinal int
	rect    rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *indexEntry) Bounds() rtreego.Rect {
	return e.rect
}

// Index is an R-tree over planar obstacle positions keyed by input ordinal.
type Index struct {
	tree *rtreego.Rtree
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{tree: rtreego.NewTree(2, 25, 50)}
}

// Insert adds the planar position of the obstacle at ordinal.
func (ix *Index) Insert(ordinal int, p geo.PlanarPoint) {
	rect, err := rtreego.NewRect(
		rtreego.Point{p.X - pointTolerance, p.Y - pointTolerance},
		[]float64{2 * pointTolerance, 2 * pointTolerance},
	)
	if err != nil {
		return
	}
	ix.tree.Insert(&indexEntry{ordinal: ordinal, rect: rect})
}

// Size returns the number of indexed points.
func (ix *Index) Size() int {
	return ix.tree.Size()
}

// Query returns the ordinals of points whose boxes intersect b, ascending.
func (ix *Index) Query(b orb.Bound) []int {
	w, h := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	if w <= 0 || h <= 0 {
		return nil
	}

	rect, err := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
	if err != nil {
		return nil
	}

	hits := ix.tree.SearchIntersect(rect)
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*indexEntry).ordinal)
	}
	sort.Ints(out)
	return out
}
