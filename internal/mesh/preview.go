package mesh

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
)

// RenderPreview rasterizes an orthographic front view (looking down -Y) of
// the solid into a square PNG of the given edge length. Facets are flat
// shaded by their normal's alignment with a fixed light direction and
// resolved with a depth buffer, so identical geometry always renders to
// identical bytes.
func RenderPreview(solid *Solid, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("preview size must be positive, got %d", size)
	}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	background := color.NRGBA{R: 0x1e, G: 0x1e, B: 0x24, A: 0xff}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = background.R
		img.Pix[i+1] = background.G
		img.Pix[i+2] = background.B
		img.Pix[i+3] = background.A
	}

	if len(solid.Triangles) > 0 {
		rasterize(img, solid, size)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func rasterize(img *image.NRGBA, solid *Solid, size int) {
	b := solid.Bounds
	extent := b.MaxDimension()
	if extent <= 0 {
		extent = 1
	}
	// Fit the model into the frame with a small margin, X right and Z up.
	margin := float64(size) * 0.08
	scale := (float64(size) - 2*margin) / extent
	offsetX := (float64(size) - scale*b.Width()) / 2
	offsetZ := (float64(size) - scale*b.Height()) / 2

	depth := make([]float64, size*size)
	for i := range depth {
		depth[i] = math.Inf(1)
	}

	light := normalize([3]float64{-0.4, -1, 0.6})
	for _, tri := range solid.Triangles {
		n := faceNormal(tri)
		shade := math.Abs(dot(n, light))
		gray := uint8(60 + shade*180)

		var px, pz, py [3]float64
		for v := 0; v < 3; v++ {
			px[v] = offsetX + (tri.V[v][0]-b.MinX)*scale
			pz[v] = float64(size) - (offsetZ + (tri.V[v][2]-b.MinZ)*scale)
			py[v] = tri.V[v][1]
		}
		fillTriangle(img, depth, size, px, pz, py, gray)
	}
}

func fillTriangle(img *image.NRGBA, depth []float64, size int, px, pz, py [3]float64, gray uint8) {
	minX := int(math.Floor(min3(px[0], px[1], px[2])))
	maxX := int(math.Ceil(max3(px[0], px[1], px[2])))
	minZ := int(math.Floor(min3(pz[0], pz[1], pz[2])))
	maxZ := int(math.Ceil(max3(pz[0], pz[1], pz[2])))
	if minX < 0 {
		minX = 0
	}
	if minZ < 0 {
		minZ = 0
	}
	if maxX >= size {
		maxX = size - 1
	}
	if maxZ >= size {
		maxZ = size - 1
	}

	area := edge(px[0], pz[0], px[1], pz[1], px[2], pz[2])
	if area == 0 {
		return
	}

	c := color.NRGBA{R: gray, G: gray, B: gray, A: 0xff}
	for y := minZ; y <= maxZ; y++ {
		for x := minX; x <= maxX; x++ {
			cx, cy := float64(x)+0.5, float64(y)+0.5
			w0 := edge(px[1], pz[1], px[2], pz[2], cx, cy) / area
			w1 := edge(px[2], pz[2], px[0], pz[0], cx, cy) / area
			w2 := edge(px[0], pz[0], px[1], pz[1], cx, cy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			d := w0*py[0] + w1*py[1] + w2*py[2]
			idx := y*size + x
			if d >= depth[idx] {
				continue
			}
			depth[idx] = d
			img.SetNRGBA(x, y, c)
		}
	}
}

func edge(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

func faceNormal(tri Triangle) [3]float64 {
	u := sub(tri.V[1], tri.V[0])
	v := sub(tri.V[2], tri.V[0])
	return normalize([3]float64{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	})
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func normalize(v [3]float64) [3]float64 {
	length := math.Sqrt(dot(v, v))
	if length == 0 {
		return v
	}
	return [3]float64{v[0] / length, v[1] / length, v[2] / length}
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }

func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }
