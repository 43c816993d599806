package kml

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/woozymasta/kmldoc/internal/geo"
)

// Index is an R-tree over the placemarks and ground overlays of a feature tree.
type Index struct {
	tree *rtreego.Rtree
	size int
}

type indexedFeature struct {
	feature Feature
	box     geo.BoundingBox
	seq     int
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return boxRect(f.box)
}

// boxRect converts a box to an R-tree rectangle. Degenerate extents (points,
// meridian lines) are widened to about 11 m because rectangles need a non-zero size.
func boxRect(b geo.BoundingBox) rtreego.Rect {
	const epsilon = 0.0001

	lonLength := b.East - b.West
	latLength := b.North - b.South
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}

	rect, _ := rtreego.NewRect(rtreego.Point{b.West, b.South}, []float64{lonLength, latLength})
	return rect
}

// NewIndex indexes every leaf feature under root that has a bounding box.
func NewIndex(root Feature) *Index {
	ix := &Index{tree: rtreego.NewTree(2, 25, 50)}
	Walk(root, func(f Feature) {
		if f.Kind() == KindFolder {
			return
		}
		box, ok := f.BoundingBox()
		if !ok {
			return
		}
		ix.tree.Insert(&indexedFeature{feature: f, box: box, seq: ix.size})
		ix.size++
	})
	return ix
}

// Len returns the number of indexed features.
func (ix *Index) Len() int {
	return ix.size
}

// Search returns the indexed features whose boxes intersect box, in document order.
func (ix *Index) Search(box geo.BoundingBox) []Feature {
	if ix.size == 0 {
		return nil
	}

	hits := ix.tree.SearchIntersect(boxRect(box))
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].(*indexedFeature).seq < hits[j].(*indexedFeature).seq
	})

	out := make([]Feature, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*indexedFeature).feature)
	}
	return out
}
