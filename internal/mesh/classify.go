package mesh

// Size class thresholds in model units (millimeters for virtually all STL
// exports in the wild).
const (
	miniatureMaxDim = 50.0
	largeMinDim     = 200.0

	highDetailTriangles = 100_000
	lowPolyTriangles    = 1_000
)

// Classify derives descriptive tags from a solid's geometry. Tags are
// ordered size class first, then detail class; either may be absent.
func Classify(solid *Solid) []string {
	var tags []string

	switch dim := solid.Bounds.MaxDimension(); {
	case len(solid.Triangles) == 0:
		// Empty solids get no size class.
	case dim <= miniatureMaxDim:
		tags = append(tags, "miniature")
	case dim >= largeMinDim:
		tags = append(tags, "large-format")
	}

	switch count := len(solid.Triangles); {
	case count >= highDetailTriangles:
		tags = append(tags, "high-detail")
	case count > 0 && count <= lowPolyTriangles:
		tags = append(tags, "low-poly")
	}

	return tags
}
