package processor

import (
	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/kml"
)

// Crop returns a copy of doc keeping only the placemarks and ground overlays that
// intersect box. Folders are kept even when emptied.
func Crop(doc *kml.Document, box geo.BoundingBox) *kml.Document {
	out := doc.Clone()

	keep := make(map[kml.Feature]bool)
	for _, f := range out.Search(box) {
		keep[f] = true
	}

	var prune func(folder *kml.Folder)
	prune = func(folder *kml.Folder) {
		// iterate over a copy, Remove edits Children
		for _, c := range append([]kml.Feature(nil), folder.Children...) {
			if sub, ok := c.(*kml.Folder); ok {
				prune(sub)
				continue
			}
			if !keep[c] {
				out.Remove(folder, c)
			}
		}
	}
	prune(out.Root)

	return out
}
